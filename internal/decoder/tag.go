package decoder

// Tag is the classified payload layout.
type Tag int

const (
	TagUnrecognized Tag = iota
	TagCreate
	TagTrade
	TagComplete
	TagInitialize
	TagBuyExactIn
	TagSellExactIn
	TagBuyExactOut
	TagSellExactOut
)

var tagNames = map[Tag]string{
	TagUnrecognized: "unrecognized",
	TagCreate:       "create",
	TagTrade:        "trade",
	TagComplete:     "complete",
	TagInitialize:   "initialize",
	TagBuyExactIn:   "buy_exact_in",
	TagSellExactIn:  "sell_exact_in",
	TagBuyExactOut:  "buy_exact_out",
	TagSellExactOut: "sell_exact_out",
}

// String returns the snake_case name of the tag.
func (t Tag) String() string {
	if s, ok := tagNames[t]; ok {
		return s
	}
	return "unknown"
}

// Schema groups tags by payload family.
type Schema string

const (
	SchemaNone      Schema = ""
	SchemaCurve     Schema = "curve"     // pump.fun events
	SchemaLaunchpad Schema = "launchpad" // launchpad instructions
)

// Schema returns the family the tag belongs to.
func (t Tag) Schema() Schema {
	switch t {
	case TagCreate, TagTrade, TagComplete:
		return SchemaCurve
	case TagInitialize, TagBuyExactIn, TagSellExactIn, TagBuyExactOut, TagSellExactOut:
		return SchemaLaunchpad
	}
	return SchemaNone
}

// IsBuy reports whether the tag is a launchpad buy.
func (t Tag) IsBuy() bool {
	return t == TagBuyExactIn || t == TagBuyExactOut
}

// IsSell reports whether the tag is a launchpad sell.
func (t Tag) IsSell() bool {
	return t == TagSellExactIn || t == TagSellExactOut
}

// NeedsEnrichment reports whether the payload alone cannot identify the mint.
func (t Tag) NeedsEnrichment() bool {
	return t.IsBuy()
}
