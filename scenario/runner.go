package scenario

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/DavideSigurta/Donatio-sub000/contract"
	"github.com/DavideSigurta/Donatio-sub000/contract/crowd"
	"github.com/DavideSigurta/Donatio-sub000/sdk"
)

// ErrExpectation is returned when a step succeeds or fails against its expect_error.
var ErrExpectation = errors.New("scenario expectation failed")

// Result is the outcome of one step.
type Result struct {
	Step   int
	Action string
	As     sdk.Address
	Detail string
	Err    error
	// Kind is contract.ErrorKind(Err), empty on success.
	Kind     string
	Expected string
	// Receipt is set for successful donations.
	Receipt *crowd.DonationReceipt
}

// OK is true when the step did what the scenario asked for.
func (r Result) OK() bool {
	return r.Kind == r.Expected
}

// Runner replays a scenario against an engine with in-memory ledger, clock and
// creator registry.
type Runner struct {
	Engine *contract.Engine
	Ledger *sdk.MemLedger
	Clock  *sdk.ManualClock
	Auth   *sdk.CreatorRegistry
	Events *sdk.EventRecorder

	asset   sdk.Asset
	receipt *crowd.DonationReceipt
}

// NewRunner seeds balances and roles from sc and builds the engine over store. extra
// receives every event next to the runner's own recorder.
func NewRunner(sc *Scenario, store *contract.Store, opts contract.Options, auth *sdk.CreatorRegistry, extra sdk.EventSink) (*Runner, error) {
	if auth == nil {
		auth = sdk.NewCreatorRegistry()
	}
	r := &Runner{
		Ledger: sdk.NewMemLedger(),
		Clock:  sdk.NewManualClock(sc.Start),
		Auth:   auth,
		Events: &sdk.EventRecorder{},
		asset:  opts.Asset,
	}
	if r.asset == "" {
		r.asset = sdk.AssetDonatio
	}
	admins := lo.Map(sc.Admins, func(a string, _ int) sdk.Address { return sdk.Address(a).Normalize() })
	if len(admins) > 0 {
		// scenario admins replace whatever the config seeded
		r.Auth = sdk.NewCreatorRegistry(admins...)
	}
	for _, c := range sc.Creators {
		r.Auth.Grant(sdk.Address(c).Normalize())
	}
	for addr, bal := range sc.Accounts {
		a, err := crowd.ParseAmount(bal)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", addr, err)
		}
		r.Ledger.Mint(sdk.Address(addr).Normalize(), crowd.AmountToInt64(a), r.asset)
	}

	var sink sdk.EventSink = r.Events
	if extra != nil {
		sink = sdk.MultiSink{r.Events, extra}
	}
	host := sdk.Host{Ledger: r.Ledger, Auth: r.Auth, Clock: r.Clock, Events: sink}
	r.Engine = contract.New(store, host, opts)
	return r, nil
}

// Run executes the steps in order. It stops at the first step whose outcome does not
// match its expect_error and returns ErrExpectation with the results so far.
func (r *Runner) Run(ctx context.Context, steps []Step) ([]Result, error) {
	out := make([]Result, 0, len(steps))
	for i, st := range steps {
		res := r.Step(ctx, i+1, st)
		out = append(out, res)
		if !res.OK() {
			if res.Err == nil {
				return out, fmt.Errorf("%w: step %d (%s) succeeded, wanted %s", ErrExpectation, res.Step, res.Action, res.Expected)
			}
			return out, fmt.Errorf("%w: step %d (%s): %v", ErrExpectation, res.Step, res.Action, res.Err)
		}
	}
	return out, nil
}

// Step runs a single step and classifies its error.
func (r *Runner) Step(ctx context.Context, n int, st Step) Result {
	res := Result{Step: n, Action: st.Action, As: sdk.Address(st.As).Normalize(), Expected: st.ExpectError}
	fn, ok := actions[st.Action]
	if !ok {
		res.Err = fmt.Errorf("unknown action %q", st.Action)
		res.Kind = "internal"
		return res
	}
	r.receipt = nil
	res.Detail, res.Err = fn(ctx, r, res.As, st)
	res.Kind = contract.ErrorKind(res.Err)
	res.Receipt = r.receipt
	return res
}

// Balance of addr in the scenario asset.
func (r *Runner) Balance(addr sdk.Address) crowd.Amount {
	return crowd.Amount(r.Ledger.BalanceOf(addr, r.asset))
}

// ------------------------------------------------------------------
// Actions
// ------------------------------------------------------------------

type action func(ctx context.Context, r *Runner, as sdk.Address, st Step) (string, error)

var actions = map[string]action{
	"create_campaign":   createCampaign,
	"add_milestone":     addMilestone,
	"finalize":          finalize,
	"donate":            donate,
	"approve":           approve,
	"reject":            reject,
	"release":           release,
	"report":            report,
	"propose_campaign":  proposeCampaign,
	"propose_milestone": proposeMilestone,
	"vote":              vote,
	"execute":           execute,
	"finalize_expired":  finalizeExpired,
	"set_voting_period": setVotingPeriod,
	"advance":           advance,
	"request_creator":   requestCreator,
	"approve_creator":   approveCreator,
}

// Actions lists the step actions a scenario may use, sorted.
func Actions() []string {
	return slices.Sorted(maps.Keys(actions))
}

func parseAmount(field, s string) (crowd.Amount, error) {
	a, err := crowd.ParseAmount(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", contract.ErrInvalidInput, field, err)
	}
	return a, nil
}

func createCampaign(ctx context.Context, r *Runner, as sdk.Address, st Step) (string, error) {
	goal, err := parseAmount("amount", st.Amount)
	if err != nil {
		return "", err
	}
	args := crowd.CampaignArgs{
		Title:       st.Text,
		Description: st.Description,
		GoalAmount:  goal,
		Beneficiary: sdk.Address(st.Beneficiary),
	}
	var id uint64
	if len(st.Milestones) == 0 {
		id, err = r.Engine.CreateCampaign(ctx, as, args)
	} else {
		titles := make([]string, len(st.Milestones))
		descs := make([]string, len(st.Milestones))
		targets := make([]crowd.Amount, len(st.Milestones))
		for i, m := range st.Milestones {
			titles[i], descs[i] = m.Title, m.Description
			if targets[i], err = parseAmount(fmt.Sprintf("milestones[%d].target", i), m.Target); err != nil {
				return "", err
			}
		}
		id, err = r.Engine.CreateCampaignWithMilestones(ctx, as, args, titles, descs, targets)
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("campaign %d", id), nil
}

func addMilestone(ctx context.Context, r *Runner, as sdk.Address, st Step) (string, error) {
	target, err := parseAmount("amount", st.Amount)
	if err != nil {
		return "", err
	}
	idx, err := r.Engine.AddMilestone(ctx, as, st.Campaign, crowd.MilestoneArgs{Title: st.Text, Description: st.Description, TargetAmount: target})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("milestone %d", idx), nil
}

func finalize(ctx context.Context, r *Runner, as sdk.Address, st Step) (string, error) {
	return "", r.Engine.FinalizeMilestones(ctx, as, st.Campaign)
}

func donate(ctx context.Context, r *Runner, as sdk.Address, st Step) (string, error) {
	amount, err := parseAmount("amount", st.Amount)
	if err != nil {
		return "", err
	}
	rc, err := r.Engine.Donate(ctx, as, st.Campaign, amount, st.Text)
	if err != nil {
		return "", err
	}
	r.receipt = rc
	parts := lo.Map(rc.Allocations, func(a crowd.Allocation, _ int) string {
		return fmt.Sprintf("m%d+%s", a.MilestoneIndex, a.Amount)
	})
	detail := strings.Join(parts, " ")
	if len(rc.NewlyEligible) > 0 {
		detail += fmt.Sprintf(" eligible=%v", rc.NewlyEligible)
	}
	return detail, nil
}

func approve(ctx context.Context, r *Runner, as sdk.Address, st Step) (string, error) {
	return "", r.Engine.ApproveMilestone(ctx, as, st.Campaign, st.Milestone)
}

func reject(ctx context.Context, r *Runner, as sdk.Address, st Step) (string, error) {
	if err := r.Engine.RejectMilestone(ctx, as, st.Campaign, st.Milestone, st.Text); err != nil {
		return "", err
	}
	v, err := r.Engine.GetCampaign(ctx, st.Campaign)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("refunded %s", v.Campaign.RefundedAmount), nil
}

func release(ctx context.Context, r *Runner, as sdk.Address, st Step) (string, error) {
	paid, err := r.Engine.ReleaseMilestoneFunds(ctx, as, st.Campaign, st.Milestone)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("paid %s", paid), nil
}

func report(ctx context.Context, r *Runner, as sdk.Address, st Step) (string, error) {
	return "", r.Engine.SubmitMilestoneReport(ctx, as, st.Campaign, st.Milestone, st.Text)
}

func proposeCampaign(ctx context.Context, r *Runner, as sdk.Address, st Step) (string, error) {
	id, err := r.Engine.CreateCampaignProposal(ctx, as, st.Campaign)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("proposal %d", id), nil
}

func proposeMilestone(ctx context.Context, r *Runner, as sdk.Address, st Step) (string, error) {
	id, err := r.Engine.CreateMilestoneProposal(ctx, as, st.Campaign, st.Milestone)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("proposal %d", id), nil
}

func vote(ctx context.Context, r *Runner, as sdk.Address, st Step) (string, error) {
	power, err := r.Engine.Vote(ctx, as, st.Proposal, st.Support)
	if err != nil {
		return "", err
	}
	p, err := r.Engine.GetProposal(ctx, st.Proposal)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("power %s, %s", power, p.State()), nil
}

func execute(ctx context.Context, r *Runner, as sdk.Address, st Step) (string, error) {
	return "", r.Engine.ExecuteProposal(ctx, as, st.Proposal)
}

func finalizeExpired(ctx context.Context, r *Runner, as sdk.Address, st Step) (string, error) {
	return "", r.Engine.FinalizeExpiredProposal(ctx, as, st.Proposal)
}

func setVotingPeriod(ctx context.Context, r *Runner, as sdk.Address, st Step) (string, error) {
	return "", r.Engine.SetVotingPeriod(ctx, as, st.Minutes)
}

func advance(_ context.Context, r *Runner, _ sdk.Address, st Step) (string, error) {
	d := time.Duration(st.Minutes)*time.Minute + time.Duration(st.Seconds)*time.Second
	if d <= 0 {
		return "", fmt.Errorf("%w: advance needs minutes or seconds", contract.ErrInvalidInput)
	}
	r.Clock.Advance(d)
	return fmt.Sprintf("now %d", r.Clock.Now()), nil
}

func requestCreator(_ context.Context, r *Runner, as sdk.Address, st Step) (string, error) {
	if err := r.Auth.Request(as, st.Text, r.Clock.Now()); err != nil {
		return "", fmt.Errorf("%w: %v", contract.ErrSequence, err)
	}
	return "", nil
}

// approveCreator takes the requesting address from beneficiary.
func approveCreator(_ context.Context, r *Runner, as sdk.Address, st Step) (string, error) {
	err := r.Auth.Approve(as, sdk.Address(st.Beneficiary).Normalize())
	switch {
	case errors.Is(err, sdk.ErrNotAdmin):
		return "", fmt.Errorf("%w: %v", contract.ErrAuthorization, err)
	case err != nil:
		return "", fmt.Errorf("%w: %v", contract.ErrNotFound, err)
	}
	return "", nil
}
