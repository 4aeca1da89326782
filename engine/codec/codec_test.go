package codec

import "testing"

func TestEncoderDecoderRoundTrip(t *testing.T) {
	b := NewEncoder().
		Bytes([]byte("payload")).
		Uint64(42).
		Bool(true).
		String("hello").
		Finish()

	d := NewDecoder(b)
	bs, err := d.Bytes()
	if err != nil || string(bs) != "payload" {
		t.Fatalf("Bytes: %v %q", err, bs)
	}
	n, err := d.Uint64()
	if err != nil || n != 42 {
		t.Fatalf("Uint64: %v %d", err, n)
	}
	flag, err := d.Bool()
	if err != nil || !flag {
		t.Fatalf("Bool: %v %v", err, flag)
	}
	s, err := d.String()
	if err != nil || s != "hello" {
		t.Fatalf("String: %v %q", err, s)
	}
	if !d.Done() {
		t.Fatal("expected decoder exhausted")
	}
}

func TestDecoderTruncatedInput(t *testing.T) {
	d := NewDecoder([]byte{0, 1, 2})
	if _, err := d.Bytes(); err != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestDecoderWrongFixedLength(t *testing.T) {
	b := NewEncoder().Bytes([]byte("ab")).Finish()
	d := NewDecoder(b)
	if _, err := d.Uint64(); err != ErrTruncated {
		t.Fatalf("expected ErrTruncated for mis-sized uint64, got %v", err)
	}
}

func TestEncodeDecodeFrameRoundTrip(t *testing.T) {
	payload := []byte("component state blob")
	framed, err := EncodeFrame(payload)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	out, err := DecodeFrame(framed)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if string(out) != string(payload) {
		t.Fatalf("expected %q, got %q", payload, out)
	}
}
