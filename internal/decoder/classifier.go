package decoder

import "sort"

// Classifier maps payload discriminators to tags, per program.
type Classifier struct {
	programs map[string]map[Discriminator]Tag // programID -> registry
	all      map[Discriminator]Tag
}

// NewClassifier creates a classifier with the pump.fun and launchpad tags registered.
func NewClassifier() *Classifier {
	c := &Classifier{
		programs: make(map[string]map[Discriminator]Tag),
		all:      make(map[Discriminator]Tag),
	}

	c.Register(PumpFunProgram, CreateEventDiscriminator, TagCreate)
	c.Register(PumpFunProgram, TradeEventDiscriminator, TagTrade)
	c.Register(PumpFunProgram, CompleteEventDiscriminator, TagComplete)

	c.Register(LaunchpadProgram, InitializeDiscriminator, TagInitialize)
	c.Register(LaunchpadProgram, BuyExactInDiscriminator, TagBuyExactIn)
	c.Register(LaunchpadProgram, SellExactInDiscriminator, TagSellExactIn)
	c.Register(LaunchpadProgram, BuyExactOutDiscriminator, TagBuyExactOut)
	c.Register(LaunchpadProgram, SellExactOutDiscriminator, TagSellExactOut)

	return c
}

// Register adds a discriminator for programID.
func (c *Classifier) Register(programID string, d Discriminator, tag Tag) {
	reg, ok := c.programs[programID]
	if !ok {
		reg = make(map[Discriminator]Tag)
		c.programs[programID] = reg
	}
	reg[d] = tag
	c.all[d] = tag
}

// Classify matches the 8-byte prefix of data against every registered program.
// Returns TagUnrecognized for short or unknown payloads.
func (c *Classifier) Classify(data []byte) Tag {
	d, ok := prefix(data)
	if !ok {
		return TagUnrecognized
	}
	if tag, ok := c.all[d]; ok {
		return tag
	}
	return TagUnrecognized
}

// ClassifyFor matches data only against programID's registry.
func (c *Classifier) ClassifyFor(programID string, data []byte) Tag {
	d, ok := prefix(data)
	if !ok {
		return TagUnrecognized
	}
	if tag, ok := c.programs[programID][d]; ok {
		return tag
	}
	return TagUnrecognized
}

// Programs returns the registered program IDs in sorted order.
func (c *Classifier) Programs() []string {
	out := make([]string, 0, len(c.programs))
	for id := range c.programs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func prefix(data []byte) (Discriminator, bool) {
	var d Discriminator
	if len(data) < DiscriminatorSize {
		return d, false
	}
	copy(d[:], data[:DiscriminatorSize])
	return d, true
}
