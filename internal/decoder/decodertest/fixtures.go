// Package decodertest builds wire payloads and log lines for tests.
package decodertest

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"math"

	"github.com/mr-tron/base58"

	"solana-launch-monitor/internal/decoder"
	"solana-launch-monitor/internal/domain"
)

// Key returns a deterministic base58 address whose bytes are all n.
func Key(n byte) string {
	return base58.Encode(bytes.Repeat([]byte{n}, 32))
}

type writer struct {
	buf bytes.Buffer
}

func newWriter(d decoder.Discriminator) *writer {
	w := &writer{}
	w.buf.Write(d[:])
	return w
}

func (w *writer) u8(v uint8)   { w.buf.WriteByte(v) }
func (w *writer) u32(v uint32) { binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *writer) u64(v uint64) { binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *writer) i64(v int64)  { binary.Write(&w.buf, binary.LittleEndian, v) }

func (w *writer) boolean(v bool) {
	if v {
		w.u8(1)
		return
	}
	w.u8(0)
}

func (w *writer) str(s string) {
	w.u32(uint32(len(s)))
	w.buf.WriteString(s)
}

func (w *writer) quote(v float64) {
	w.u64(uint64(math.Round(v * domain.QuoteScale)))
}

func (w *writer) address(addr string) {
	raw, err := base58.Decode(addr)
	if err != nil || len(raw) != 32 {
		panic("decodertest: invalid address " + addr)
	}
	w.buf.Write(raw)
}

func (w *writer) bytes() []byte {
	return w.buf.Bytes()
}

// CreateEvent encodes a pump.fun CreateEvent.
func CreateEvent(l domain.Launch) []byte {
	w := newWriter(decoder.CreateEventDiscriminator)
	w.str(l.Name)
	w.str(l.Symbol)
	w.str(l.URI)
	w.address(l.Mint)
	w.address(l.BondingCurve)
	w.address(l.Creator)
	return w.bytes()
}

// TradeEvent encodes a pump.fun TradeEvent.
func TradeEvent(t domain.Trade) []byte {
	w := newWriter(decoder.TradeEventDiscriminator)
	w.address(t.Mint)
	w.quote(t.QuoteAmount)
	w.u64(t.BaseAmount)
	w.boolean(t.IsBuy)
	w.address(t.User)
	w.i64(t.Timestamp)
	w.quote(t.VirtualQuoteReserves)
	w.u64(t.VirtualBaseReserves)
	w.quote(t.RealQuoteReserves)
	w.u64(t.RealBaseReserves)
	return w.bytes()
}

// CompleteEvent encodes a pump.fun CompleteEvent.
func CompleteEvent(c domain.Completion) []byte {
	w := newWriter(decoder.CompleteEventDiscriminator)
	w.address(c.User)
	w.address(c.Mint)
	w.address(c.BondingCurve)
	w.i64(c.Timestamp)
	return w.bytes()
}

// Initialize encodes a launchpad initialize payload with its optional sections.
func Initialize(in domain.LaunchpadInit) []byte {
	w := newWriter(decoder.InitializeDiscriminator)
	w.u8(in.Mint.Decimals)
	w.str(in.Mint.Name)
	w.str(in.Mint.Symbol)
	w.str(in.Mint.URI)
	if c := in.Curve; c != nil {
		w.u8(c.CurveType)
		w.u64(c.VirtualBase)
		w.u64(c.VirtualQuote)
		w.u64(c.Supply)
	}
	if v := in.Vesting; v != nil {
		w.u64(v.StartTime)
		w.u64(v.EndTime)
		w.u64(v.TotalAmount)
	}
	return w.bytes()
}

// Instruction encodes a launchpad trade instruction with two u64 amounts.
func Instruction(d decoder.Discriminator, amount, limit uint64) []byte {
	w := newWriter(d)
	w.u64(amount)
	w.u64(limit)
	w.u64(0) // share fee rate
	return w.bytes()
}

// ProgramData renders payload as a "Program data:" log line.
func ProgramData(payload []byte) string {
	return "Program data: " + base64.StdEncoding.EncodeToString(payload)
}

// Invocation wraps body in invoke/success lines for programID at depth 1.
func Invocation(programID string, body ...string) []string {
	logs := make([]string, 0, len(body)+2)
	logs = append(logs, "Program "+programID+" invoke [1]")
	logs = append(logs, body...)
	logs = append(logs, "Program "+programID+" success")
	return logs
}

// LaunchpadBuyLogs are the logs of a top-level launchpad BuyExactIn.
func LaunchpadBuyLogs() []string {
	return Invocation(decoder.LaunchpadProgram,
		"Program log: Instruction: BuyExactIn",
		"Program "+decoder.LaunchpadProgram+" consumed 41021 of 200000 compute units",
	)
}
