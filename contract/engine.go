package contract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/DavideSigurta/Donatio-sub000/sdk"
)

// DefaultVotingPeriod applies until an admin changes it.
const DefaultVotingPeriod = 5 * time.Minute

// Options tunes an Engine. The zero value is usable; New fills the gaps.
type Options struct {
	// VotingPeriod is the fallback when no period was stored through SetVotingPeriod.
	VotingPeriod time.Duration
	// GovernanceDisabled activates campaigns as soon as milestones are finalized.
	GovernanceDisabled bool
	// Factory may open campaign proposals next to admins.
	Factory sdk.Address
	// Asset is used for campaigns created without one.
	Asset        sdk.Asset
	Capabilities Capabilities
	Refunds      RefundPolicy
	Logger       *slog.Logger
	Tracer       trace.Tracer
	// NewID generates donation ids.
	NewID func() string
}

// Engine runs every campaign, milestone and governance operation as one serialized,
// all-or-nothing call against the shared state.
type Engine struct {
	mu    sync.Mutex
	store *Store
	host  sdk.Host
	opts  Options
	log   *slog.Logger
}

// New wires an engine over store and host. Missing host parts fall back to a fresh
// in-memory ledger, an empty creator registry, the system clock and discarded events.
func New(store *Store, host sdk.Host, opts Options) *Engine {
	if store == nil {
		store = NewMemoryStore()
	}
	if host.Ledger == nil {
		host.Ledger = sdk.NewMemLedger()
	}
	if host.Auth == nil {
		host.Auth = sdk.NewCreatorRegistry()
	}
	if host.Clock == nil {
		host.Clock = sdk.SystemClock{}
	}
	if host.Events == nil {
		host.Events = sdk.DiscardEvents{}
	}
	if opts.VotingPeriod <= 0 {
		opts.VotingPeriod = DefaultVotingPeriod
	}
	if opts.Asset == "" {
		opts.Asset = sdk.AssetDonatio
	}
	if opts.Capabilities == nil {
		opts.Capabilities = DefaultCapabilities()
	}
	if opts.Refunds == nil {
		opts.Refunds = ProRataRefunds{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("github.com/DavideSigurta/Donatio-sub000/contract")
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Engine{store: store, host: host, opts: opts, log: opts.Logger}
}

// Host exposes the collaborators, mainly so callers can query balances.
func (e *Engine) Host() sdk.Host { return e.host }

// ------------------------------------------------------------------
// Transactions
// ------------------------------------------------------------------

// txn is the scope of one call: buffered state, journaled transfers, queued events.
type txn struct {
	ctx    context.Context
	e      *Engine
	st     *overlay
	caller sdk.Address
	now    int64
	moves  []transfer
	events []sdk.Event
}

type transfer struct {
	from, to sdk.Address
	amount   int64
	asset    sdk.Asset
	pulled   bool // drawn from an allowance granted to `to`
}

func (tx *txn) state() State { return tx.st }

// transfer moves funds on the ledger and journals the move for rollback.
func (tx *txn) transfer(from, to sdk.Address, amount int64, asset sdk.Asset) error {
	if err := tx.e.host.Ledger.Transfer(from, to, amount, asset); err != nil {
		return err
	}
	tx.moves = append(tx.moves, transfer{from: from, to: to, amount: amount, asset: asset})
	return nil
}

// pull moves owner funds into escrow. When the ledger supports allowances and owner
// approved at least amount for escrow, the allowance is drawn; otherwise it is a plain
// transfer from the caller's account.
func (tx *txn) pull(owner, escrow sdk.Address, amount int64, asset sdk.Asset) error {
	al, ok := tx.e.host.Ledger.(sdk.AllowanceLedger)
	if !ok || al.Allowance(owner, escrow, asset) < amount {
		return tx.transfer(owner, escrow, amount, asset)
	}
	if err := al.TransferFrom(escrow, owner, escrow, amount, asset); err != nil {
		return err
	}
	tx.moves = append(tx.moves, transfer{from: owner, to: escrow, amount: amount, asset: asset, pulled: true})
	return nil
}

func (tx *txn) emit(name string, attrs ...sdk.Attr) {
	tx.events = append(tx.events, sdk.Event{Name: name, Attrs: attrs})
}

// rollback reverses journaled transfers newest first. State writes are simply dropped.
func (tx *txn) rollback() {
	for i := len(tx.moves) - 1; i >= 0; i-- {
		m := tx.moves[i]
		if err := tx.e.host.Ledger.Transfer(m.to, m.from, m.amount, m.asset); err != nil {
			tx.e.log.Error("ledger rollback failed", "from", m.to, "to", m.from, "amount", m.amount, "asset", m.asset, "err", err)
			continue
		}
		if al, ok := tx.e.host.Ledger.(sdk.AllowanceLedger); ok && m.pulled {
			al.Approve(m.from, m.to, al.Allowance(m.from, m.to, m.asset)+m.amount, m.asset)
		}
	}
	tx.moves = nil
}

// exec runs fn as one atomic call. On error nothing is written, transfers are reversed
// and no event leaves the engine.
func (e *Engine) exec(ctx context.Context, op string, caller sdk.Address, fn func(tx *txn) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, span := e.opts.Tracer.Start(ctx, op, trace.WithAttributes(attribute.String("caller", caller.String())))
	defer span.End()

	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.log.Warn("call failed", "op", op, "caller", caller, "err", err)
		return &CallError{Op: op, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	tx := &txn{ctx: ctx, e: e, st: newOverlay(e.store), caller: caller, now: e.host.Clock.Now()}
	if err := fn(tx); err != nil {
		tx.rollback()
		return fail(err)
	}
	if err := e.store.commit(ctx, tx.st.writes); err != nil {
		tx.rollback()
		return fail(err)
	}
	for _, ev := range tx.events {
		e.host.Events.Emit(ev)
	}
	e.log.Debug("call committed", "op", op, "caller", caller, "writes", len(tx.st.writes), "events", len(tx.events))
	return nil
}

// view runs a read-only query against committed state.
func (e *Engine) view(fn func(st State) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(readOnly{e.store})
}

// ------------------------------------------------------------------
// Runtime configuration
// ------------------------------------------------------------------

const votingPeriodName = "voting_period_min"

// votingPeriod reads the stored period in minutes, falling back to the engine default.
func (e *Engine) votingPeriod(st State) time.Duration {
	if n := getCount(st, configKey(votingPeriodName)); n > 0 {
		return time.Duration(n) * time.Minute
	}
	return e.opts.VotingPeriod
}

// SetVotingPeriod changes the voting window for proposals created afterwards.
// Proposals already running keep their end time.
func (e *Engine) SetVotingPeriod(ctx context.Context, caller sdk.Address, minutes uint32) error {
	return e.exec(ctx, OpSetVotingPeriod, caller, func(tx *txn) error {
		if err := e.authorize(OpSetVotingPeriod, caller, nil); err != nil {
			return err
		}
		if minutes == 0 {
			return fmt.Errorf("%w: voting period must be at least one minute", ErrInvalidInput)
		}
		old := e.votingPeriod(tx.state())
		setCount(tx.state(), configKey(votingPeriodName), uint64(minutes))
		emitVotingPeriodChanged(tx, old, time.Duration(minutes)*time.Minute)
		return nil
	})
}

// VotingPeriod returns the window new proposals will get.
func (e *Engine) VotingPeriod(ctx context.Context) (time.Duration, error) {
	var d time.Duration
	err := e.view(func(st State) error {
		d = e.votingPeriod(st)
		return nil
	})
	return d, err
}

// notFound keeps the "what is missing" wording uniform.
func notFound(what string, id any) error {
	return fmt.Errorf("%w: %s %v", ErrNotFound, what, id)
}

// IsNotFound is shorthand for errors.Is(err, ErrNotFound).
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
