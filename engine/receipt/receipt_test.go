package receipt

import (
	"errors"
	"testing"
	"time"

	"github.com/synnergy/assetengine/engine/process"
	"github.com/synnergy/assetengine/engine/track"
	"github.com/synnergy/assetengine/engine/types"
)

func newTestTrack() *track.Track {
	var h types.Hash
	h[0] = 3
	return track.New(track.NewMemoryStore(), h, nil)
}

func TestFromSuccessReportsOutcomeAndHash(t *testing.T) {
	tr := newTestTrack()
	results := []process.Result{{Bid: 1}}
	r := FromSuccess(tr, results, 5*time.Millisecond)

	if r.Outcome != OutcomeSuccess {
		t.Fatalf("expected OutcomeSuccess, got %v", r.Outcome)
	}
	if r.Outcome.String() != "Success" {
		t.Fatalf("expected String()==Success, got %q", r.Outcome.String())
	}
	if r.TxHash != tr.TransactionHash() {
		t.Fatalf("tx hash mismatch")
	}
	if len(r.Results) != 1 || r.Results[0].Bid != 1 {
		t.Fatalf("results not carried through: %+v", r.Results)
	}
	if r.Error != "" {
		t.Fatalf("expected no error on success, got %q", r.Error)
	}
}

func TestFromFailureCarriesErrorAndDropsResults(t *testing.T) {
	tr := newTestTrack()
	want := errors.New("boom")
	r := FromFailure(tr, want, time.Second)

	if r.Outcome != OutcomeFailure {
		t.Fatalf("expected OutcomeFailure, got %v", r.Outcome)
	}
	if r.Outcome.String() != "Failure" {
		t.Fatalf("expected String()==Failure, got %q", r.Outcome.String())
	}
	if r.Error != "boom" {
		t.Fatalf("expected error message carried, got %q", r.Error)
	}
	if len(r.Results) != 0 || len(r.NewEntities) != 0 {
		t.Fatalf("expected no results/entities on failure, got %+v %+v", r.Results, r.NewEntities)
	}
}
