// Package process implements the execution frame: the per-call boundary
// that marshals Bucket/Proof arguments, loads guest code through Track,
// runs it against a GuestVM, and enforces linearity on return. Grounded on
// original_source/radix-engine/src/model/validated_transaction.rs's
// ValidatedInstruction vocabulary (TakeFromWorktop/CallFunction/CallMethod/
// CallMethodWithAllResources, the set this package's Kind enum mirrors) and
// original_source/radix-engine/tests/account.rs's call-depth/worktop-drain
// scenarios (withdraw_from_account, call_method_with_all_resources), plus
// core/virtual_machine.go's VMContext/Receipt plumbing for the surrounding
// Go idiom (constructor functions, sentinel errors, logrus field logging).
package process

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/synnergy/assetengine/engine/abi"
	"github.com/synnergy/assetengine/engine/gas"
	"github.com/synnergy/assetengine/engine/idalloc"
	"github.com/synnergy/assetengine/engine/resource"
	"github.com/synnergy/assetengine/engine/track"
	"github.com/synnergy/assetengine/engine/types"
	"github.com/synnergy/assetengine/engine/vm"
	"github.com/synnergy/assetengine/engine/worktop"
)

// DefaultMaxDepth bounds CallFunction/CallMethod recursion. Not mandated by
// any invariant; a defensive guard against runaway guest recursion, the
// same role golang.org/x/time/rate plays for host-call issue rate below.
const DefaultMaxDepth = 32

// Process owns the resources shared across every frame of one transaction:
// the Track, the transaction-wide Worktop, the guest VM backend, and an
// optional gas meter.
type Process struct {
	track    *track.Track
	vm       vm.GuestVM
	worktop  *worktop.Worktop
	gas      *gas.Meter
	maxDepth int
	limiter  *rate.Limiter
}

// Option configures a Process at construction time.
type Option func(*Process)

// WithGasMeter sets the meter that frames' host calls charge. Only the host
// calls that go through consumeGas are charged: bucket and vault creation,
// puts and takes, proof creation and cloning, resource creation, mint and
// burn, lazy-map entry reads and writes, CallFunction, CallMethod, EmitLog
// and GenerateUUID. The other ops are not charged.
func WithGasMeter(m *gas.Meter) Option { return func(p *Process) { p.gas = m } }

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(depth int) Option { return func(p *Process) { p.maxDepth = depth } }

// WithHostCallRateLimit bounds how many host calls this Process's frames may
// collectively issue per second, with a burst allowance. Not mandated by any
// invariant in this engine — a defensive guard against a guest busy-looping
// on host calls, mirroring the role core/virtual_machine.go's HeavyVM gives
// rate limiting. Off by default. It applies to the same host calls that
// charge gas (see WithGasMeter); the other ops are not rate-limited.
func WithHostCallRateLimit(callsPerSecond float64, burst int) Option {
	return func(p *Process) { p.limiter = rate.NewLimiter(rate.Limit(callsPerSecond), burst) }
}

// New constructs a Process bound to one Track and guest VM for the
// lifetime of a single transaction.
func New(t *track.Track, guestVM vm.GuestVM, opts ...Option) *Process {
	p := &Process{
		track:    t,
		vm:       guestVM,
		worktop:  worktop.New(),
		gas:      gas.NewMeter(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Process) Worktop() *worktop.Worktop { return p.worktop }
func (p *Process) Track() *track.Track       { return p.track }

// Frame is one call (function or method) invocation: a depth counter, the
// owning component (zero Address for a package-function call that hasn't
// instantiated a component), a local bucket table, a local proof table
// (AuthZone), and a view onto the transaction-wide Worktop.
type Frame struct {
	proc     *Process
	depth    int
	owner    types.Address
	worktop  *worktop.Worktop
	authzone *worktop.AuthZone
	buckets  map[types.Bid]*resource.Bucket
}

// NewRootFrame builds the depth-0 frame for a transaction, seeding the
// virtual signature bucket unconditionally (even for zero signers), bound
// to the reserved ECDSA_TOKEN ids.
func NewRootFrame(p *Process) *Frame {
	f := &Frame{
		proc:     p,
		depth:    0,
		worktop:  p.worktop,
		authzone: worktop.NewAuthZone(),
		buckets:  make(map[types.Bid]*resource.Bucket),
	}
	sigBucket := p.track.SeedVirtualSignatureBucket()
	f.buckets[sigBucket.ID()] = sigBucket
	// The freshly seeded bucket is active, so CreateBucketRef cannot fail.
	_, _ = f.authzone.CreateBucketRef(idalloc.ECDSATokenRid, sigBucket)
	return f
}

func (f *Frame) childFrame(owner types.Address) (*Frame, error) {
	if f.depth+1 >= f.proc.maxDepth {
		return nil, ErrMaxDepthExceeded
	}
	return &Frame{
		proc:     f.proc,
		depth:    f.depth + 1,
		owner:    owner,
		worktop:  f.worktop,
		authzone: worktop.NewAuthZone(),
		buckets:  make(map[types.Bid]*resource.Bucket),
	}, nil
}

func (f *Frame) activeBucket(bid types.Bid) (*resource.Bucket, bool) {
	b, ok := f.buckets[bid]
	if !ok || b.State() != resource.BucketStateActive {
		return nil, false
	}
	return b, true
}

func (f *Frame) consumeGas(op abi.Op) error {
	if f.proc.limiter != nil {
		if err := f.proc.limiter.Wait(context.Background()); err != nil {
			return fmt.Errorf("process: host-call rate limit: %w", err)
		}
	}
	if f.proc.gas == nil {
		return nil
	}
	return f.proc.gas.Consume(op)
}

func (f *Frame) log(level track.LogLevel, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	f.proc.track.AddLog(level, msg)
	log.WithFields(log.Fields{"depth": f.depth}).Debug("process: " + msg)
}

// moveBuckets pulls the named buckets out of the caller's table into the
// callee's, per step 1 of the invocation sequence: "any Bucket/Proof
// referenced in args is moved out of the caller's table into the callee's".
func (f *Frame) moveBuckets(callee *Frame, bids []types.Bid) error {
	for _, bid := range bids {
		b, ok := f.activeBucket(bid)
		if !ok {
			return ErrBucketNotActive
		}
		delete(f.buckets, bid)
		b.MarkMoved()
		reactivated := resource.NewBucket(bid, b.Container())
		callee.buckets[bid] = reactivated
	}
	return nil
}

func (f *Frame) moveProofs(callee *Frame, rids []types.Rid) error {
	for _, rid := range rids {
		p, ok := f.authzone.Get(rid)
		if !ok {
			return worktop.ErrProofNotFound
		}
		f.authzone.DropBucketRef(rid)
		callee.authzone.AdoptProof(p)
	}
	return nil
}

// finish enforces step 6 of the invocation sequence at frame exit: every
// bucket not returned, stored, or burned is a linearity violation; any
// proof still held is silently dropped.
func (f *Frame) finish(returnedBids []types.Bid) error {
	returned := make(map[types.Bid]struct{}, len(returnedBids))
	for _, bid := range returnedBids {
		returned[bid] = struct{}{}
	}
	for bid, b := range f.buckets {
		if b.State() != resource.BucketStateActive {
			continue
		}
		if _, ok := returned[bid]; ok {
			continue
		}
		return fmt.Errorf("%w: bid=%d", ErrDanglingBucket, bid)
	}
	f.authzone.Clear()
	return nil
}
