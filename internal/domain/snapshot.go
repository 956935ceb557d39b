package domain

// CurveSnapshot is a point-in-time copy of a curve state for time series storage.
type CurveSnapshot struct {
	SnapshotID           string
	Mint                 string
	Source               Source
	Progress             float64
	VirtualQuoteReserves float64
	VirtualBaseReserves  uint64
	RealQuoteReserves    float64
	RealBaseReserves     uint64
	NearCompletion       bool
	Completed            bool
	Active               bool
	Timestamp            int64 // ms
}

// NewCurveSnapshot copies the fields of s observed at ts (ms). The caller sets SnapshotID.
func NewCurveSnapshot(s CurveState, ts int64) *CurveSnapshot {
	return &CurveSnapshot{
		Mint:                 s.Mint,
		Source:               s.Source,
		Progress:             s.Progress,
		VirtualQuoteReserves: s.VirtualQuoteReserves,
		VirtualBaseReserves:  s.VirtualBaseReserves,
		RealQuoteReserves:    s.RealQuoteReserves,
		RealBaseReserves:     s.RealBaseReserves,
		NearCompletion:       s.NearCompletion,
		Completed:            s.Completed,
		Active:               s.Active,
		Timestamp:            ts,
	}
}
