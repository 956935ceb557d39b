package decoder

import "solana-launch-monitor/internal/domain"

// Optional section sizes of an initialize payload.
const (
	curveParamsSize   = 1 + 8 + 8 + 8
	vestingParamsSize = 8 + 8 + 8
)

// decodeInitialize reads MintParams and, when enough bytes remain, CurveParams
// and VestingParams.
func decodeInitialize(r *reader) (*domain.LaunchpadInit, error) {
	var (
		out domain.LaunchpadInit
		err error
	)
	if out.Mint.Decimals, err = r.u8("decimals"); err != nil {
		return nil, err
	}
	if out.Mint.Name, err = r.str("name"); err != nil {
		return nil, err
	}
	if out.Mint.Symbol, err = r.str("symbol"); err != nil {
		return nil, err
	}
	if out.Mint.URI, err = r.str("uri"); err != nil {
		return nil, err
	}

	if r.remaining() >= curveParamsSize {
		var c domain.CurveParams
		if c.CurveType, err = r.u8("curve_type"); err != nil {
			return nil, err
		}
		if c.VirtualBase, err = r.u64("virtual_base"); err != nil {
			return nil, err
		}
		if c.VirtualQuote, err = r.u64("virtual_quote"); err != nil {
			return nil, err
		}
		if c.Supply, err = r.u64("supply"); err != nil {
			return nil, err
		}
		out.Curve = &c
	}

	if r.remaining() >= vestingParamsSize {
		var v domain.VestingParams
		if v.StartTime, err = r.u64("start_time"); err != nil {
			return nil, err
		}
		if v.EndTime, err = r.u64("end_time"); err != nil {
			return nil, err
		}
		if v.TotalAmount, err = r.u64("total_amount"); err != nil {
			return nil, err
		}
		out.Vesting = &v
	}

	return &out, nil
}
