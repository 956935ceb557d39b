package decoder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"solana-launch-monitor/internal/decoder"
)

func TestClassifier_DefaultTags(t *testing.T) {
	c := decoder.NewClassifier()

	cases := []struct {
		d    decoder.Discriminator
		want decoder.Tag
	}{
		{decoder.CreateEventDiscriminator, decoder.TagCreate},
		{decoder.TradeEventDiscriminator, decoder.TagTrade},
		{decoder.CompleteEventDiscriminator, decoder.TagComplete},
		{decoder.InitializeDiscriminator, decoder.TagInitialize},
		{decoder.BuyExactInDiscriminator, decoder.TagBuyExactIn},
		{decoder.SellExactInDiscriminator, decoder.TagSellExactIn},
		{decoder.BuyExactOutDiscriminator, decoder.TagBuyExactOut},
		{decoder.SellExactOutDiscriminator, decoder.TagSellExactOut},
	}
	for _, tc := range cases {
		t.Run(tc.want.String(), func(t *testing.T) {
			data := append(tc.d[:], 0xde, 0xad)
			assert.Equal(t, tc.want, c.Classify(data))
		})
	}
}

func TestClassifier_Unrecognized(t *testing.T) {
	c := decoder.NewClassifier()

	assert.Equal(t, decoder.TagUnrecognized, c.Classify(nil))
	assert.Equal(t, decoder.TagUnrecognized, c.Classify(decoder.CreateEventDiscriminator[:7]))
	assert.Equal(t, decoder.TagUnrecognized, c.Classify([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9}))

	// One differing byte is enough to miss.
	d := decoder.CreateEventDiscriminator
	d[7]++
	assert.Equal(t, decoder.TagUnrecognized, c.Classify(d[:]))
}

func TestClassifier_ClassifyFor(t *testing.T) {
	c := decoder.NewClassifier()

	data := decoder.CreateEventDiscriminator[:]
	assert.Equal(t, decoder.TagCreate, c.ClassifyFor(decoder.PumpFunProgram, data))
	assert.Equal(t, decoder.TagUnrecognized, c.ClassifyFor(decoder.LaunchpadProgram, data))
	assert.Equal(t, decoder.TagUnrecognized, c.ClassifyFor("unknown", data))
}

func TestClassifier_Register(t *testing.T) {
	c := decoder.NewClassifier()
	custom := decoder.Discriminator{1, 2, 3, 4, 5, 6, 7, 8}

	c.Register("Custom111", custom, decoder.TagComplete)

	assert.Equal(t, decoder.TagComplete, c.Classify(custom[:]))
	assert.Equal(t, []string{decoder.PumpFunProgram, "Custom111", decoder.LaunchpadProgram}, c.Programs())
}

func TestTag_Schema(t *testing.T) {
	assert.Equal(t, decoder.SchemaCurve, decoder.TagTrade.Schema())
	assert.Equal(t, decoder.SchemaLaunchpad, decoder.TagSellExactOut.Schema())
	assert.Equal(t, decoder.SchemaNone, decoder.TagUnrecognized.Schema())
	assert.True(t, decoder.TagBuyExactOut.IsBuy())
	assert.True(t, decoder.TagSellExactIn.IsSell())
	assert.False(t, decoder.TagSellExactIn.NeedsEnrichment())
}
