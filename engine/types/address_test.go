package types

import "testing"

func TestAddressRoundTripsThroughBytes(t *testing.T) {
	var body [26]byte
	for i := range body {
		body[i] = byte(i + 1)
	}
	a := NewAddress(AddressComponent, body)
	if a.Variant() != AddressComponent {
		t.Fatalf("expected Component variant, got %v", a.Variant())
	}
	if a.Body() != body {
		t.Fatalf("body round-trip mismatch")
	}

	back, err := AddressFromBytes(a.Bytes())
	if err != nil {
		t.Fatalf("AddressFromBytes: %v", err)
	}
	if back != a {
		t.Fatalf("expected round-tripped address to match original")
	}
}

func TestAddressFromBytesRejectsWrongLength(t *testing.T) {
	if _, err := AddressFromBytes([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for short byte slice")
	}
}

func TestAddressFromBytesRejectsUnknownVariant(t *testing.T) {
	var raw [27]byte
	raw[0] = 0xFF
	if _, err := AddressFromBytes(raw[:]); err == nil {
		t.Fatal("expected error for unrecognized variant")
	}
}

func TestAddressIsZero(t *testing.T) {
	var a Address
	if !a.IsZero() {
		t.Fatal("expected zero-value address to report IsZero")
	}
	var body [26]byte
	body[0] = 1
	if NewAddress(AddressPackage, body).IsZero() {
		t.Fatal("expected non-zero address to report not zero")
	}
}

func TestAddressVariantString(t *testing.T) {
	cases := map[AddressVariant]string{
		AddressPackage:     "Package",
		AddressComponent:   "Component",
		AddressResourceDef: "ResourceDef",
		AddressVariant(99): "Unknown(99)",
	}
	for variant, want := range cases {
		if got := variant.String(); got != want {
			t.Fatalf("variant %d: expected %q, got %q", variant, want, got)
		}
	}
}

func TestHashFromBytesRejectsWrongLength(t *testing.T) {
	if _, err := HashFromBytes([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for short byte slice")
	}
}
