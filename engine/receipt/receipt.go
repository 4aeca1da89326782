// Package receipt builds the outward-facing summary of one executed
// transaction: outcome, log buffer, and newly created entity addresses.
// Grounded on original_source/radix-engine/src/engine/track.rs's
// TransactionReceipt (status + logs + new_entities) and on core/ledger.go's
// receipt-shaped return values for the surrounding Go idiom.
package receipt

import (
	"time"

	"github.com/synnergy/assetengine/engine/process"
	"github.com/synnergy/assetengine/engine/track"
	"github.com/synnergy/assetengine/engine/types"
)

// Outcome is the final disposition of a transaction.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
)

func (o Outcome) String() string {
	if o == OutcomeSuccess {
		return "Success"
	}
	return "Failure"
}

// TransactionReceipt is returned to the caller of the engine regardless of
// outcome: on failure, NewEntities and Results are empty and Error names
// what aborted the transaction.
type TransactionReceipt struct {
	TxHash      types.Hash
	Outcome     Outcome
	Error       string
	Logs        []track.LogEntry
	NewEntities []types.Address
	Results     []process.Result
	Elapsed     time.Duration
}

// FromSuccess builds a receipt for a transaction whose Track has already
// been committed.
func FromSuccess(t *track.Track, results []process.Result, elapsed time.Duration) *TransactionReceipt {
	return &TransactionReceipt{
		TxHash:      t.TransactionHash(),
		Outcome:     OutcomeSuccess,
		Logs:        t.Logs(),
		NewEntities: t.NewEntities(),
		Results:     results,
		Elapsed:     elapsed,
	}
}

// FromFailure builds a receipt for an aborted transaction. The Track's
// staged writes are never committed; only its log buffer survives into the
// receipt, since logs document what happened up to the abort point.
func FromFailure(t *track.Track, err error, elapsed time.Duration) *TransactionReceipt {
	return &TransactionReceipt{
		TxHash:  t.TransactionHash(),
		Outcome: OutcomeFailure,
		Error:   err.Error(),
		Logs:    t.Logs(),
		Elapsed: elapsed,
	}
}
