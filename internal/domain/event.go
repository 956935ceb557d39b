package domain

// EventKind identifies the payload carried by an Event.
type EventKind string

const (
	EventLaunch              EventKind = "launch"
	EventTrade               EventKind = "trade"
	EventCompletion          EventKind = "completion"
	EventNearCompletion      EventKind = "near_completion"
	EventLaunchpadInitialize EventKind = "launchpad_initialize"
	EventLaunchpadBuy        EventKind = "launchpad_buy"
)

// Priority orders events for downstream consumers.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Event is a decoded or derived domain event. Exactly one payload field is set,
// matching Kind.
type Event struct {
	ID        string
	Kind      EventKind
	Priority  Priority
	Mint      string
	Signature string
	Slot      int64
	Timestamp int64 // ms

	Launch     *Launch        `json:",omitempty"`
	Trade      *Trade         `json:",omitempty"`
	Completion *Completion    `json:",omitempty"`
	Initialize *LaunchpadInit `json:",omitempty"`
	Buy        *LaunchpadBuy  `json:",omitempty"`
	Curve      *CurveState    `json:",omitempty"`
}

// Launch is a new token launch (pump.fun CreateEvent or a resolved launchpad buy).
type Launch struct {
	Mint         string
	Name         string
	Symbol       string
	URI          string
	BondingCurve string
	Pool         string
	Creator      string
	Source       Source
	Timestamp    int64 // ms
}

// Trade is a bonding curve trade. Quote values are in display units.
type Trade struct {
	Mint                 string
	QuoteAmount          float64
	BaseAmount           uint64
	IsBuy                bool
	User                 string
	Timestamp            int64 // unix seconds as emitted on chain
	VirtualQuoteReserves float64
	VirtualBaseReserves  uint64
	RealQuoteReserves    float64
	RealBaseReserves     uint64
}

// Completion marks a bonding curve as fully filled.
type Completion struct {
	User         string
	Mint         string
	BondingCurve string
	Timestamp    int64 // unix seconds as emitted on chain
}

// MintParams is the token description carried by a launchpad initialize.
type MintParams struct {
	Decimals uint8
	Name     string
	Symbol   string
	URI      string
}

// CurveParams is the optional curve section of a launchpad initialize.
type CurveParams struct {
	CurveType    uint8
	VirtualBase  uint64
	VirtualQuote uint64
	Supply       uint64
}

// VestingParams is the optional vesting section of a launchpad initialize.
type VestingParams struct {
	StartTime   uint64
	EndTime     uint64
	TotalAmount uint64
}

// LaunchpadInit is a decoded launchpad initialize instruction payload.
type LaunchpadInit struct {
	Mint    MintParams
	Curve   *CurveParams   `json:",omitempty"`
	Vesting *VestingParams `json:",omitempty"`
}

// LaunchpadBuy is a launchpad buy resolved from the enclosing transaction's accounts.
type LaunchpadBuy struct {
	Signature    string
	Buyer        string
	Pool         string
	Mint         string
	Quote        string
	PoolVerified bool
	ExactOut     bool
}
