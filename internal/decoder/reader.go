package decoder

import (
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/mr-tron/base58"

	"solana-launch-monitor/internal/domain"
)

const addressSize = 32

// reader reads little-endian borsh fields and reports short buffers as DecodeError.
type reader struct {
	tag  Tag
	size int
	dec  *bin.Decoder
}

func newReader(tag Tag, data []byte) *reader {
	return &reader{tag: tag, size: len(data), dec: bin.NewBorshDecoder(data)}
}

func (r *reader) remaining() int {
	return r.dec.Remaining()
}

func (r *reader) offset() int {
	return r.size - r.dec.Remaining()
}

func (r *reader) need(field string, n int) error {
	if have := r.dec.Remaining(); have < n {
		return &DecodeError{Tag: r.tag, Field: field, Offset: r.offset(), Need: n, Have: have}
	}
	return nil
}

func (r *reader) skip(field string, n int) error {
	if err := r.need(field, n); err != nil {
		return err
	}
	_, err := r.dec.ReadNBytes(n)
	return err
}

func (r *reader) u8(field string) (uint8, error) {
	if err := r.need(field, 1); err != nil {
		return 0, err
	}
	return r.dec.ReadUint8()
}

func (r *reader) boolean(field string) (bool, error) {
	if err := r.need(field, 1); err != nil {
		return false, err
	}
	b, err := r.dec.ReadUint8()
	return b != 0, err
}

func (r *reader) u32(field string) (uint32, error) {
	if err := r.need(field, 4); err != nil {
		return 0, err
	}
	return r.dec.ReadUint32(bin.LE)
}

func (r *reader) u64(field string) (uint64, error) {
	if err := r.need(field, 8); err != nil {
		return 0, err
	}
	return r.dec.ReadUint64(bin.LE)
}

func (r *reader) i64(field string) (int64, error) {
	if err := r.need(field, 8); err != nil {
		return 0, err
	}
	return r.dec.ReadInt64(bin.LE)
}

// quote reads a u64 lamport amount and scales it to display units.
func (r *reader) quote(field string) (float64, error) {
	v, err := r.u64(field)
	return float64(v) / domain.QuoteScale, err
}

// str reads a u32 length-prefixed UTF-8 string.
func (r *reader) str(field string) (string, error) {
	n, err := r.u32(field + ".len")
	if err != nil {
		return "", err
	}
	if uint64(n) > uint64(r.dec.Remaining()) {
		return "", &DecodeError{Tag: r.tag, Field: field, Offset: r.offset(), Need: int(n), Have: r.dec.Remaining()}
	}
	b, err := r.dec.ReadNBytes(int(n))
	if err != nil {
		return "", err
	}
	// Invalid sequences are replaced rather than rejected.
	return strings.ToValidUTF8(string(b), "\uFFFD"), nil
}

// address reads a raw 32-byte public key and renders it base58.
func (r *reader) address(field string) (string, error) {
	if err := r.need(field, addressSize); err != nil {
		return "", err
	}
	b, err := r.dec.ReadNBytes(addressSize)
	if err != nil {
		return "", err
	}
	return base58.Encode(b), nil
}
