package decoder

import (
	"encoding/base64"
	"strings"
)

const (
	programDataPrefix = "Program data: "
	instructionPrefix = "Program log: Instruction: "
)

// Payload is a base64 body extracted from a "Program data:" log line.
type Payload struct {
	Line    int    // index into the log slice
	Program string // program executing when the line was logged, if known
	Data    []byte
}

// ExtractPayloads returns the decoded bodies of every "Program data:" line.
// Lines whose body is not valid base64 are skipped.
func ExtractPayloads(logs []string) []Payload {
	var (
		out   []Payload
		stack programStack
	)
	for i, line := range logs {
		if stack.track(line) {
			continue
		}
		idx := strings.Index(line, programDataPrefix)
		if idx < 0 {
			continue
		}
		body := strings.TrimSpace(line[idx+len(programDataPrefix):])
		data, err := base64.StdEncoding.DecodeString(body)
		if err != nil || len(data) == 0 {
			continue
		}
		out = append(out, Payload{Line: i, Program: stack.current(), Data: data})
	}
	return out
}

// Instruction is a launchpad instruction recognized from log text.
type Instruction struct {
	Line int
	Tag  Tag
}

var instructionNames = map[string]Tag{
	"BuyExactIn":   TagBuyExactIn,
	"BuyExactOut":  TagBuyExactOut,
	"SellExactIn":  TagSellExactIn,
	"SellExactOut": TagSellExactOut,
	"Initialize":   TagInitialize,
}

var snakeInstructionNames = []struct {
	name string
	tag  Tag
}{
	{"buy_exact_in", TagBuyExactIn},
	{"buy_exact_out", TagBuyExactOut},
	{"sell_exact_in", TagSellExactIn},
	{"sell_exact_out", TagSellExactOut},
}

// DetectInstructions finds launchpad instructions named in logs. Nothing is
// returned unless the launchpad program was invoked.
func DetectInstructions(logs []string) []Instruction {
	if !invokes(logs, LaunchpadProgram) {
		return nil
	}

	var (
		out   []Instruction
		stack programStack
	)
	for i, line := range logs {
		if stack.track(line) {
			continue
		}
		if prog := stack.current(); prog != "" && prog != LaunchpadProgram {
			continue
		}
		if idx := strings.Index(line, instructionPrefix); idx >= 0 {
			name := strings.TrimSpace(line[idx+len(instructionPrefix):])
			if tag, ok := instructionNames[name]; ok {
				out = append(out, Instruction{Line: i, Tag: tag})
			}
			continue
		}
		for _, s := range snakeInstructionNames {
			if strings.Contains(line, s.name) {
				out = append(out, Instruction{Line: i, Tag: s.tag})
				break
			}
		}
	}
	return out
}

func invokes(logs []string, programID string) bool {
	marker := "Program " + programID + " invoke ["
	for _, line := range logs {
		if strings.HasPrefix(line, marker) {
			return true
		}
	}
	return false
}

// programStack follows "invoke"/"success"/"failed" lines to attribute output
// to the executing program.
type programStack []string

// track updates the stack and reports whether line was a control line.
func (s *programStack) track(line string) bool {
	if !strings.HasPrefix(line, "Program ") {
		return false
	}
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return false
	}
	switch {
	case fields[2] == "invoke":
		*s = append(*s, fields[1])
		return true
	case fields[2] == "success" || fields[2] == "failed:" || fields[2] == "failed":
		if n := len(*s); n > 0 {
			*s = (*s)[:n-1]
		}
		return true
	}
	return false
}

func (s programStack) current() string {
	if len(s) == 0 {
		return ""
	}
	return s[len(s)-1]
}
