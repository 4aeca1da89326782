package main

import (
	"testing"

	"github.com/synnergy/assetengine/engine/process"
)

func TestParseManifestBasicTransfer(t *testing.T) {
	var resourceAddr [27]byte
	resourceAddr[0] = 3
	doc := `{
		"transaction_hash": "` + hexOf(make([]byte, 32)) + `",
		"signers": [],
		"instructions": [
			{"kind": "take_all_from_worktop", "resource": "` + hexOf(resourceAddr[:]) + `"},
			{"kind": "assert_worktop_contains", "resource": "` + hexOf(resourceAddr[:]) + `", "amount": "0"}
		]
	}`

	_, signers, instrs, err := parseManifest([]byte(doc))
	if err != nil {
		t.Fatalf("parseManifest: %v", err)
	}
	if len(signers) != 0 {
		t.Fatalf("expected no signers, got %d", len(signers))
	}
	if len(instrs) != 2 {
		t.Fatalf("expected 2 instructions, got %d", len(instrs))
	}
	if instrs[0].Kind != process.KindTakeAllFromWorktop {
		t.Fatalf("expected KindTakeAllFromWorktop, got %v", instrs[0].Kind)
	}
	if instrs[1].Kind != process.KindAssertWorktopContains {
		t.Fatalf("expected KindAssertWorktopContains, got %v", instrs[1].Kind)
	}
}

func TestParseManifestUnknownKindFails(t *testing.T) {
	doc := `{"instructions": [{"kind": "not_a_real_kind"}]}`
	if _, _, _, err := parseManifest([]byte(doc)); err == nil {
		t.Fatal("expected error for unknown instruction kind")
	}
}

func TestParseManifestBadAmountFails(t *testing.T) {
	var resourceAddr [27]byte
	resourceAddr[0] = 3
	doc := `{"instructions": [{"kind": "take_all_from_worktop", "resource": "` + hexOf(resourceAddr[:]) + `", "amount": "not-a-number"}]}`
	if _, _, _, err := parseManifest([]byte(doc)); err == nil {
		t.Fatal("expected error for malformed amount")
	}
}

func hexOf(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = digits[c>>4]
		out[i*2+1] = digits[c&0x0F]
	}
	return string(out)
}
