package decoder

// Result is the outcome of decoding one recognized payload.
type Result struct {
	Line    int
	Program string
	Decoded *Decoded // nil when Err is set
	Err     error
}

// Parser classifies and decodes every payload in a notification's logs.
type Parser struct {
	classifier *Classifier
}

// NewParser creates a parser over classifier. A nil classifier uses the defaults.
func NewParser(classifier *Classifier) *Parser {
	if classifier == nil {
		classifier = NewClassifier()
	}
	return &Parser{classifier: classifier}
}

// Classifier returns the underlying classifier.
func (p *Parser) Classifier() *Classifier {
	return p.classifier
}

// Parse decodes every recognized "Program data:" payload in logs, in order.
// Unrecognized payloads are skipped silently; decode failures are returned
// per payload and do not stop the remaining ones.
func (p *Parser) Parse(logs []string) []Result {
	var out []Result
	for _, payload := range ExtractPayloads(logs) {
		tag := p.classify(payload)
		if tag == TagUnrecognized {
			continue
		}
		decoded, err := Decode(tag, payload.Data)
		out = append(out, Result{
			Line:    payload.Line,
			Program: payload.Program,
			Decoded: decoded,
			Err:     err,
		})
	}
	return out
}

// ParsePayload classifies and decodes a single raw payload.
func (p *Parser) ParsePayload(data []byte) (*Decoded, error) {
	tag := p.classifier.Classify(data)
	if tag == TagUnrecognized {
		return nil, ErrUnrecognized
	}
	return Decode(tag, data)
}

func (p *Parser) classify(payload Payload) Tag {
	if payload.Program != "" {
		if tag := p.classifier.ClassifyFor(payload.Program, payload.Data); tag != TagUnrecognized {
			return tag
		}
	}
	return p.classifier.Classify(payload.Data)
}
