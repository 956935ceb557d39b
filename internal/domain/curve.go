package domain

// Bonding curve constants.
const (
	// DefaultTargetQuote is the real quote reserve (SOL) at which a curve completes.
	DefaultTargetQuote = 85.0

	// DefaultNearCompletionRatio is the progress fraction that flags a curve as near completion.
	DefaultNearCompletionRatio = 0.80

	// QuoteScale converts native quote units (lamports) to display units.
	QuoteScale = 1e9
)

// Source is the launch program that created a curve.
type Source string

const (
	SourcePumpFun   Source = "PUMP_FUN"
	SourceLaunchpad Source = "RAYDIUM_LAUNCHPAD"
)

func (s Source) String() string {
	return string(s)
}

// CurveState is the lifecycle record of one bonding curve, keyed by mint.
type CurveState struct {
	Mint         string
	Name         string // empty if unknown
	Symbol       string // empty if unknown
	URI          string
	Source       Source
	BondingCurve string // curve account (pump.fun)
	Pool         string // pool state account (launchpad)
	Creator      string

	VirtualQuoteReserves float64 // display units
	VirtualBaseReserves  uint64  // raw token units
	RealQuoteReserves    float64 // display units
	RealBaseReserves     uint64  // raw token units

	Progress       float64 // 0..100
	Target         float64 // quote units required for completion
	NearCompletion bool    // sticky once set
	Completed      bool
	Active         bool
	TradeCount     int

	CreatedAt    int64 // ms
	LastActivity int64 // ms
}

// ComputeProgress returns realQuote/target as a percentage capped to [0, 100].
func ComputeProgress(realQuote, target float64) float64 {
	if target <= 0 || realQuote <= 0 {
		return 0
	}
	p := realQuote / target * 100
	if p > 100 {
		return 100
	}
	return p
}

// Clone returns a copy safe to hand out of the tracker.
func (c *CurveState) Clone() *CurveState {
	cp := *c
	return &cp
}
