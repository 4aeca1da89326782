package process

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/synnergy/assetengine/engine/abi"
	"github.com/synnergy/assetengine/engine/idalloc"
	"github.com/synnergy/assetengine/engine/types"
)

// ErrWorktopNotEmptyAtEnd reports the only allowed failure at the end of an
// instruction stream: a non-empty Worktop with no CallMethodWithAllResources
// to absorb the remainder.
var ErrWorktopNotEmptyAtEnd = errors.New("process: worktop non-empty at end of transaction")

// Instruction is one manifest-level step. Each Kind reads only the fields
// it needs and ignores the rest; this mirrors the teacher's flat instruction-struct
// style (core/virtual_machine.go's VMContext) rather than a sum-type
// hierarchy, since the manifest format itself is out of scope — only the
// instruction list this engine executes needs a Go shape.
type Kind int

const (
	KindTakeFromWorktop Kind = iota
	KindTakeAllFromWorktop
	KindTakeNonFungiblesFromWorktop
	KindReturnToWorktop
	KindAssertWorktopContains
	KindCallFunction
	KindCallMethod
	KindCallMethodWithAllResources
)

type Instruction struct {
	Kind Kind

	Resource types.Address
	Amount   types.Decimal
	Keys     []types.NonFungibleKey
	Bid      types.Bid

	Package   types.Address
	Blueprint string
	Function  string
	Component types.Address
	Method    string
	Args      [][]byte
	Buckets   []types.Bid
	Proofs    []types.Rid

	DepositMethod string
}

// Result is one instruction's outcome, folded into the transaction receipt.
type Result struct {
	Bid    types.Bid
	Call   *abi.CallResult
}

// Run executes a full instruction stream against the root frame, in order,
// aborting on the first error. A non-nil error always means the caller
// should discard the Track rather than commit it.
func (p *Process) Run(instructions []Instruction) ([]Result, error) {
	root := NewRootFrame(p)
	results := make([]Result, 0, len(instructions))
	depositDone := false

	for i, instr := range instructions {
		res, deposit, err := p.runOne(root, instr)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		if deposit {
			depositDone = true
		}
		results = append(results, res)
	}

	// The virtual signature bucket is not subject to the linearity check.
	if err := root.finish([]types.Bid{idalloc.ECDSATokenBid}); err != nil {
		return nil, err
	}
	if !p.worktop.IsEmpty() && !depositDone {
		return nil, ErrWorktopNotEmptyAtEnd
	}
	log.WithFields(log.Fields{"instructions": len(instructions)}).Info("process: transaction run complete")
	return results, nil
}

func (p *Process) runOne(root *Frame, instr Instruction) (Result, bool, error) {
	switch instr.Kind {
	case KindTakeFromWorktop:
		rd, ok := p.track.GetResourceDef(instr.Resource)
		if !ok {
			return Result{}, false, ErrResourceNotFound
		}
		if err := rd.CheckAmount(instr.Amount); err != nil {
			return Result{}, false, err
		}
		bid, err := p.track.NewBid()
		if err != nil {
			return Result{}, false, err
		}
		b, err := p.worktop.Take(instr.Resource, instr.Amount, bid)
		if err != nil {
			return Result{}, false, err
		}
		root.buckets[bid] = b
		return Result{Bid: bid}, false, nil

	case KindTakeAllFromWorktop:
		bid, err := p.track.NewBid()
		if err != nil {
			return Result{}, false, err
		}
		b, err := p.worktop.TakeAll(instr.Resource, bid)
		if err != nil {
			return Result{}, false, err
		}
		root.buckets[bid] = b
		return Result{Bid: bid}, false, nil

	case KindTakeNonFungiblesFromWorktop:
		bid, err := p.track.NewBid()
		if err != nil {
			return Result{}, false, err
		}
		b, err := p.worktop.TakeNonFungibles(instr.Resource, instr.Keys, bid)
		if err != nil {
			return Result{}, false, err
		}
		root.buckets[bid] = b
		return Result{Bid: bid}, false, nil

	case KindReturnToWorktop:
		b, ok := root.activeBucket(instr.Bid)
		if !ok {
			return Result{}, false, ErrBucketNotActive
		}
		if err := p.worktop.Return(b); err != nil {
			return Result{}, false, err
		}
		delete(root.buckets, instr.Bid)
		return Result{}, false, nil

	case KindAssertWorktopContains:
		if err := p.worktop.AssertContains(instr.Resource, instr.Amount); err != nil {
			return Result{}, false, err
		}
		return Result{}, false, nil

	case KindCallFunction:
		call, err := root.CallFunction(abi.CallFunctionArgs{
			Package:   instr.Package,
			Blueprint: instr.Blueprint,
			Function:  instr.Function,
			Args:      instr.Args,
			Buckets:   instr.Buckets,
			Proofs:    instr.Proofs,
		})
		if err != nil {
			return Result{}, false, err
		}
		return Result{Call: &call}, false, nil

	case KindCallMethod:
		call, err := root.CallMethod(abi.CallMethodArgs{
			Component: instr.Component,
			Method:    instr.Method,
			Args:      instr.Args,
			Buckets:   instr.Buckets,
			Proofs:    instr.Proofs,
		})
		if err != nil {
			return Result{}, false, err
		}
		return Result{Call: &call}, false, nil

	case KindCallMethodWithAllResources:
		drained, err := p.worktop.DrainAll(p.track.NewBid)
		if err != nil {
			return Result{}, false, err
		}
		bids := make([]types.Bid, 0, len(drained))
		for _, b := range drained {
			root.buckets[b.ID()] = b
			bids = append(bids, b.ID())
		}
		call, err := root.CallMethod(abi.CallMethodArgs{
			Component: instr.Component,
			Method:    instr.DepositMethod,
			Buckets:   bids,
		})
		if err != nil {
			return Result{}, false, err
		}
		return Result{Call: &call}, true, nil

	default:
		return Result{}, false, fmt.Errorf("process: unknown instruction kind %d", instr.Kind)
	}
}
