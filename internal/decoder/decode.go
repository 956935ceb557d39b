package decoder

import (
	"fmt"

	"solana-launch-monitor/internal/domain"
)

// Decoded is one decoded payload. At most one payload field is set; launchpad
// buys and sells carry none.
type Decoded struct {
	Tag        Tag
	Launch     *domain.Launch
	Trade      *domain.Trade
	Completion *domain.Completion
	Initialize *domain.LaunchpadInit
}

// Decode decodes data, which must start with the discriminator of tag.
func Decode(tag Tag, data []byte) (*Decoded, error) {
	if len(data) < DiscriminatorSize {
		return nil, &DecodeError{Tag: tag, Field: "discriminator", Need: DiscriminatorSize, Have: len(data)}
	}

	r := newReader(tag, data)
	if err := r.skip("discriminator", DiscriminatorSize); err != nil {
		return nil, err
	}

	out := &Decoded{Tag: tag}
	var err error
	switch tag {
	case TagCreate:
		out.Launch, err = decodeCreate(r)
	case TagTrade:
		out.Trade, err = decodeTrade(r)
	case TagComplete:
		out.Completion, err = decodeComplete(r)
	case TagInitialize:
		out.Initialize, err = decodeInitialize(r)
	case TagBuyExactIn, TagBuyExactOut, TagSellExactIn, TagSellExactOut:
		// Identified through the enclosing transaction's accounts.
	default:
		return nil, fmt.Errorf("decode: unsupported tag %s", tag)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
