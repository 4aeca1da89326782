// Package codec implements the engine's self-describing binary encoding: a
// type-id byte followed by a length-prefixed payload, plus an RLP framing
// helper for Package/Component blobs. Grounded on core/virtual_machine.go's
// use of encoding/json for Receipt logs (replaced here with a binary
// encoding, since guest<->host argument marshaling is on the hot path and
// the engine's own wire format, not a debugging aid) and on the domain-stack
// wiring of github.com/ethereum/go-ethereum/rlp for the outer frame length
// prefix.
package codec

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/ethereum/go-ethereum/rlp"
)

// TypeID tags the payload that follows so a decoder can dispatch without
// external context.
type TypeID byte

const (
	TypeBytes TypeID = iota
	TypeUint64
	TypeDecimalRaw
	TypeAddress
	TypeHash
	TypeBool
	TypeString
)

var ErrTruncated = errors.New("codec: truncated input")

// Encoder appends self-describing (type, length, payload) triples to an
// internal buffer.
type Encoder struct {
	buf []byte
}

func NewEncoder() *Encoder { return &Encoder{} }

func (e *Encoder) writeTyped(t TypeID, payload []byte) {
	e.buf = append(e.buf, byte(t))
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	e.buf = append(e.buf, lenBuf[:]...)
	e.buf = append(e.buf, payload...)
}

func (e *Encoder) Bytes(b []byte) *Encoder { e.writeTyped(TypeBytes, b); return e }

func (e *Encoder) Uint64(v uint64) *Encoder {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.writeTyped(TypeUint64, b[:])
	return e
}

func (e *Encoder) Bool(v bool) *Encoder {
	b := byte(0)
	if v {
		b = 1
	}
	e.writeTyped(TypeBool, []byte{b})
	return e
}

func (e *Encoder) String(s string) *Encoder { e.writeTyped(TypeString, []byte(s)); return e }

func (e *Encoder) Finish() []byte { return e.buf }

// Decoder reads back the (type, length, payload) triples an Encoder wrote,
// in the same order they were written.
type Decoder struct {
	buf []byte
	pos int
}

func NewDecoder(b []byte) *Decoder { return &Decoder{buf: b} }

func (d *Decoder) next() (TypeID, []byte, error) {
	if d.pos+5 > len(d.buf) {
		return 0, nil, ErrTruncated
	}
	t := TypeID(d.buf[d.pos])
	n := binary.LittleEndian.Uint32(d.buf[d.pos+1 : d.pos+5])
	start := d.pos + 5
	end := start + int(n)
	if end > len(d.buf) {
		return 0, nil, ErrTruncated
	}
	d.pos = end
	return t, d.buf[start:end], nil
}

func (d *Decoder) Bytes() ([]byte, error) {
	_, payload, err := d.next()
	return payload, err
}

func (d *Decoder) Uint64() (uint64, error) {
	_, payload, err := d.next()
	if err != nil {
		return 0, err
	}
	if len(payload) != 8 {
		return 0, ErrTruncated
	}
	return binary.LittleEndian.Uint64(payload), nil
}

func (d *Decoder) Bool() (bool, error) {
	_, payload, err := d.next()
	if err != nil {
		return false, err
	}
	if len(payload) != 1 {
		return false, ErrTruncated
	}
	return payload[0] == 1, nil
}

func (d *Decoder) String() (string, error) {
	_, payload, err := d.next()
	return string(payload), err
}

// Done reports whether every encoded field has been consumed.
func (d *Decoder) Done() bool { return d.pos >= len(d.buf) }

// frame is the RLP shape wrapping a Package/Component blob: a 4-byte
// little-endian length prefix (per spec's framing convention) followed by
// the raw payload, itself RLP-encoded as a single byte string.
type frame struct {
	Len     [4]byte
	Payload []byte
}

// EncodeFrame wraps a blob with its little-endian length prefix and
// RLP-encodes the result, for Package code and Component state storage.
func EncodeFrame(payload []byte) ([]byte, error) {
	f := frame{Payload: payload}
	binary.LittleEndian.PutUint32(f.Len[:], uint32(len(payload)))
	return rlp.EncodeToBytes(f)
}

// DecodeFrame reverses EncodeFrame, validating the embedded length against
// the actual payload size.
func DecodeFrame(b []byte) ([]byte, error) {
	var f frame
	if err := rlp.DecodeBytes(b, &f); err != nil {
		return nil, err
	}
	if int(binary.LittleEndian.Uint32(f.Len[:])) != len(f.Payload) {
		return nil, io.ErrUnexpectedEOF
	}
	return f.Payload, nil
}
