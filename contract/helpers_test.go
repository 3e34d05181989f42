package contract_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DavideSigurta/Donatio-sub000/contract"
	"github.com/DavideSigurta/Donatio-sub000/contract/crowd"
	"github.com/DavideSigurta/Donatio-sub000/sdk"
)

const (
	admin   sdk.Address = "hive:admin"
	factory sdk.Address = "hive:factory"
	creator sdk.Address = "hive:creator"
	bene    sdk.Address = "hive:beneficiary"
	alice   sdk.Address = "hive:alice"
	bob     sdk.Address = "hive:bob"
	carol   sdk.Address = "hive:carol"
	dave    sdk.Address = "hive:dave"
	nobody  sdk.Address = "hive:nobody"

	startTime = int64(1_750_000_000)
)

type fixture struct {
	t      *testing.T
	ctx    context.Context
	eng    *contract.Engine
	ledger *sdk.MemLedger
	auth   *sdk.CreatorRegistry
	clock  *sdk.ManualClock
	events *sdk.EventRecorder
	ids    int
}

// newFixture builds an engine over in-memory collaborators. Every regular account
// starts with 1000 tokens.
func newFixture(t *testing.T, tweak ...func(*contract.Options)) *fixture {
	t.Helper()
	return newFixtureOn(t, contract.NewMemoryStore(), tweak...)
}

// newFixtureOn is newFixture over a caller supplied store.
func newFixtureOn(t *testing.T, store *contract.Store, tweak ...func(*contract.Options)) *fixture {
	t.Helper()
	f := &fixture{
		t:      t,
		ctx:    context.Background(),
		ledger: sdk.NewMemLedger(),
		auth:   sdk.NewCreatorRegistry(admin),
		clock:  sdk.NewManualClock(startTime),
		events: &sdk.EventRecorder{},
	}
	f.auth.Grant(creator)
	for _, a := range []sdk.Address{alice, bob, carol, dave} {
		f.ledger.Mint(a, crowd.AmountToInt64(amt("1000")), sdk.AssetDonatio)
	}
	opts := contract.Options{
		Factory: factory,
		NewID: func() string {
			f.ids++
			return fmt.Sprintf("don-%d", f.ids)
		},
	}
	for _, fn := range tweak {
		fn(&opts)
	}
	host := sdk.Host{Ledger: f.ledger, Auth: f.auth, Clock: f.clock, Events: f.events}
	f.eng = contract.New(store, host, opts)
	return f
}

func amt(s string) crowd.Amount { return crowd.MustAmount(s) }

func (f *fixture) balance(addr sdk.Address) crowd.Amount {
	return crowd.Amount(f.ledger.BalanceOf(addr, sdk.AssetDonatio))
}

// setBalance tops an account up (or creates it) to exactly the given amount.
func (f *fixture) setBalance(addr sdk.Address, s string) {
	want := amt(s)
	have := f.balance(addr)
	if want > have {
		f.ledger.Mint(addr, crowd.AmountToInt64(want-have), sdk.AssetDonatio)
	}
	require.Equal(f.t, want, f.balance(addr), "setBalance only tops up")
}

// createDefaultCampaign creates and finalizes a campaign with the given goal and
// milestone targets, still inactive.
func (f *fixture) createDefaultCampaign(goal string, targets ...string) uint64 {
	f.t.Helper()
	titles := make([]string, len(targets))
	descs := make([]string, len(targets))
	amounts := make([]crowd.Amount, len(targets))
	for i, s := range targets {
		titles[i] = fmt.Sprintf("phase %d", i)
		descs[i] = "milestone " + s
		amounts[i] = amt(s)
	}
	id, err := f.eng.CreateCampaignWithMilestones(f.ctx, creator, crowd.CampaignArgs{
		Title:       "school roof",
		Description: "new roof before winter",
		GoalAmount:  amt(goal),
		Beneficiary: bene,
	}, titles, descs, amounts)
	require.NoError(f.t, err)
	return id
}

// activate runs the campaign vote with three voters and executes it as the creator,
// which works whoever the beneficiary is.
func (f *fixture) activate(campaignID uint64) {
	f.t.Helper()
	pid, err := f.eng.CreateCampaignProposal(f.ctx, admin, campaignID)
	require.NoError(f.t, err)
	for _, v := range []sdk.Address{alice, bob, carol} {
		_, err := f.eng.Vote(f.ctx, v, pid, true)
		require.NoError(f.t, err)
	}
	require.NoError(f.t, f.eng.ExecuteProposal(f.ctx, creator, pid))
}

// activeCampaign is createDefaultCampaign plus activation.
func (f *fixture) activeCampaign(goal string, targets ...string) uint64 {
	f.t.Helper()
	id := f.createDefaultCampaign(goal, targets...)
	f.activate(id)
	return id
}

func (f *fixture) donate(from sdk.Address, campaignID uint64, s string) *crowd.DonationReceipt {
	f.t.Helper()
	r, err := f.eng.Donate(f.ctx, from, campaignID, amt(s), "")
	require.NoError(f.t, err)
	return r
}

func (f *fixture) campaign(id uint64) *crowd.CampaignView {
	f.t.Helper()
	v, err := f.eng.GetCampaign(f.ctx, id)
	require.NoError(f.t, err)
	return v
}

func (f *fixture) milestone(campaignID uint64, idx uint32) *crowd.Milestone {
	f.t.Helper()
	m, err := f.eng.GetMilestone(f.ctx, campaignID, idx)
	require.NoError(f.t, err)
	return m
}

func (f *fixture) proposal(id uint64) *crowd.Proposal {
	f.t.Helper()
	p, err := f.eng.GetProposal(f.ctx, id)
	require.NoError(f.t, err)
	return p
}

// passMilestone opens a milestone proposal and votes it through with three non-donors.
func (f *fixture) passMilestone(campaignID uint64, idx uint32) uint64 {
	f.t.Helper()
	pid, err := f.eng.CreateMilestoneProposal(f.ctx, bene, campaignID, idx)
	require.NoError(f.t, err)
	for _, v := range []sdk.Address{bob, carol, dave} {
		_, err := f.eng.Vote(f.ctx, v, pid, true)
		require.NoError(f.t, err)
		if f.proposal(pid).Status == crowd.StatusReadyForExecution {
			break
		}
	}
	require.Equal(f.t, crowd.StatusReadyForExecution, f.proposal(pid).Status)
	return pid
}

func (f *fixture) advance(d time.Duration) { f.clock.Advance(d) }
