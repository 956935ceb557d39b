package decoder

import "solana-launch-monitor/internal/domain"

// decodeCreate reads a CreateEvent body: name, symbol, uri, mint, bonding curve, creator.
func decodeCreate(r *reader) (*domain.Launch, error) {
	var (
		l   = &domain.Launch{Source: domain.SourcePumpFun}
		err error
	)
	if l.Name, err = r.str("name"); err != nil {
		return nil, err
	}
	if l.Symbol, err = r.str("symbol"); err != nil {
		return nil, err
	}
	if l.URI, err = r.str("uri"); err != nil {
		return nil, err
	}
	if l.Mint, err = r.address("mint"); err != nil {
		return nil, err
	}
	if l.BondingCurve, err = r.address("bonding_curve"); err != nil {
		return nil, err
	}
	if l.Creator, err = r.address("creator"); err != nil {
		return nil, err
	}
	return l, nil
}

// decodeTrade reads a TradeEvent body. SOL amounts are scaled to display units.
func decodeTrade(r *reader) (*domain.Trade, error) {
	var (
		t   = &domain.Trade{}
		err error
	)
	if t.Mint, err = r.address("mint"); err != nil {
		return nil, err
	}
	if t.QuoteAmount, err = r.quote("sol_amount"); err != nil {
		return nil, err
	}
	if t.BaseAmount, err = r.u64("token_amount"); err != nil {
		return nil, err
	}
	if t.IsBuy, err = r.boolean("is_buy"); err != nil {
		return nil, err
	}
	if t.User, err = r.address("user"); err != nil {
		return nil, err
	}
	if t.Timestamp, err = r.i64("timestamp"); err != nil {
		return nil, err
	}
	if t.VirtualQuoteReserves, err = r.quote("virtual_sol_reserves"); err != nil {
		return nil, err
	}
	if t.VirtualBaseReserves, err = r.u64("virtual_token_reserves"); err != nil {
		return nil, err
	}
	if t.RealQuoteReserves, err = r.quote("real_sol_reserves"); err != nil {
		return nil, err
	}
	if t.RealBaseReserves, err = r.u64("real_token_reserves"); err != nil {
		return nil, err
	}
	return t, nil
}

// decodeComplete reads a CompleteEvent body: user, mint, bonding curve, timestamp.
func decodeComplete(r *reader) (*domain.Completion, error) {
	var (
		c   = &domain.Completion{}
		err error
	)
	if c.User, err = r.address("user"); err != nil {
		return nil, err
	}
	if c.Mint, err = r.address("mint"); err != nil {
		return nil, err
	}
	if c.BondingCurve, err = r.address("bonding_curve"); err != nil {
		return nil, err
	}
	if c.Timestamp, err = r.i64("timestamp"); err != nil {
		return nil, err
	}
	return c, nil
}
