package contract_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DavideSigurta/Donatio-sub000/contract"
	"github.com/DavideSigurta/Donatio-sub000/contract/crowd"
	"github.com/DavideSigurta/Donatio-sub000/sdk"
)

// =============================================================================
// Thresholds
// =============================================================================

// TestApprovalFlipsOnExactThreshold uses goal 100 (quota 10, cap 2, approval at 5) and
// hand-sized balances so the sum reaches 5.000 on the last vote and not one earlier.
func TestApprovalFlipsOnExactThreshold(t *testing.T) {
	f := newFixture(t)
	id := f.createDefaultCampaign("100", "30", "70")
	pid, err := f.eng.CreateCampaignProposal(f.ctx, factory, id)
	require.NoError(t, err)

	voters := []struct {
		addr    sdk.Address
		balance string
		power   string
	}{
		{"hive:w1", "50", "2"},
		{"hive:w2", "2", "2"},
		{"hive:w3", "0.999", "0.999"},
		{"hive:w4", "0.001", "0.001"},
	}
	for i, v := range voters {
		f.setBalance(v.addr, v.balance)
		power, err := f.eng.Vote(f.ctx, v.addr, pid, true)
		require.NoError(t, err)
		assert.Equal(t, amt(v.power), power)
		want := crowd.StatusActive
		if i == len(voters)-1 {
			want = crowd.StatusReadyForExecution
		}
		assert.Equal(t, want, f.proposal(pid).Status, "after vote %d", i+1)
	}
	assert.Equal(t, amt("5"), f.proposal(pid).PositiveVotes)

	_, err = f.eng.Vote(f.ctx, alice, pid, true)
	assert.ErrorIs(t, err, contract.ErrProposalClosed, "ready proposals take no more votes")
}

// TestRejectionNeedsOnlyThirtyPercent checks the asymmetric rule: 3.000 of a 10.000
// quota against is enough to reject.
func TestRejectionNeedsOnlyThirtyPercent(t *testing.T) {
	f := newFixture(t)
	id := f.createDefaultCampaign("100", "30", "70")
	pid, err := f.eng.CreateCampaignProposal(f.ctx, admin, id)
	require.NoError(t, err)

	_, err = f.eng.Vote(f.ctx, alice, pid, false)
	require.NoError(t, err)
	assert.Equal(t, crowd.StatusActive, f.proposal(pid).Status)

	f.setBalance("hive:w1", "0.999")
	_, err = f.eng.Vote(f.ctx, "hive:w1", pid, false)
	require.NoError(t, err)
	assert.Equal(t, crowd.StatusActive, f.proposal(pid).Status, "2.999 is below 3.000")

	f.setBalance("hive:w2", "0.001")
	_, err = f.eng.Vote(f.ctx, "hive:w2", pid, false)
	require.NoError(t, err)
	p := f.proposal(pid)
	assert.Equal(t, crowd.StatusRejected, p.Status)
	assert.False(t, p.Executed)
	assert.False(t, f.campaign(id).Campaign.Active)

	_, pending := f.eng.PendingProposal(f.ctx, id, crowd.ProposalCampaign, 0)
	assert.False(t, pending)
	err = f.eng.ExecuteProposal(f.ctx, bene, pid)
	assert.ErrorIs(t, err, contract.ErrProposalClosed)
}

// TestMinorityAgainstDoesNotBlock: negatives below 30% of the quota leave the proposal
// open and it still passes once positives reach half.
func TestMinorityAgainstDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	id := f.createDefaultCampaign("100", "30", "70")
	pid, err := f.eng.CreateCampaignProposal(f.ctx, admin, id)
	require.NoError(t, err)

	_, err = f.eng.Vote(f.ctx, alice, pid, false)
	require.NoError(t, err)
	_, err = f.eng.Vote(f.ctx, bob, pid, true)
	require.NoError(t, err)
	_, err = f.eng.Vote(f.ctx, carol, pid, true)
	require.NoError(t, err)
	// negatives 2 < 3, positives 4 < 5
	assert.Equal(t, crowd.StatusActive, f.proposal(pid).Status)
	_, err = f.eng.Vote(f.ctx, dave, pid, true)
	require.NoError(t, err)
	assert.Equal(t, crowd.StatusReadyForExecution, f.proposal(pid).Status)
}

// =============================================================================
// Vote preconditions
// =============================================================================

func TestVoteOnlyOnce(t *testing.T) {
	f := newFixture(t)
	id := f.createDefaultCampaign("100", "30", "70")
	pid, err := f.eng.CreateCampaignProposal(f.ctx, admin, id)
	require.NoError(t, err)

	_, err = f.eng.Vote(f.ctx, alice, pid, true)
	require.NoError(t, err)
	_, err = f.eng.Vote(f.ctx, alice, pid, false)
	assert.ErrorIs(t, err, contract.ErrAlreadyVoted)

	p := f.proposal(pid)
	assert.Equal(t, amt("2"), p.PositiveVotes)
	assert.Equal(t, crowd.Amount(0), p.NegativeVotes)
	assert.Equal(t, uint64(1), p.VoterCount)

	r, err := f.eng.VoteReceipt(f.ctx, pid, alice)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.True(t, r.Support)
	assert.Equal(t, amt("2"), r.Power)

	// already-voted wins over expiry
	f.advance(time.Hour)
	_, err = f.eng.Vote(f.ctx, alice, pid, true)
	assert.ErrorIs(t, err, contract.ErrAlreadyVoted)
}

func TestVoteWithoutBalance(t *testing.T) {
	f := newFixture(t)
	id := f.createDefaultCampaign("100", "30", "70")
	pid, err := f.eng.CreateCampaignProposal(f.ctx, admin, id)
	require.NoError(t, err)

	_, err = f.eng.Vote(f.ctx, nobody, pid, true)
	assert.ErrorIs(t, err, contract.ErrNoVotingPower)
	voted, err := f.eng.HasVoted(f.ctx, pid, nobody)
	require.NoError(t, err)
	assert.False(t, voted)

	_, err = f.eng.Vote(f.ctx, alice, 999, true)
	assert.ErrorIs(t, err, contract.ErrNotFound)
}

// TestMilestonePowerFavoursDonors: same balance, donors get 20% of it and others 15%.
func TestMilestonePowerFavoursDonors(t *testing.T) {
	f := newFixture(t)
	id := f.activeCampaign("1000", "100", "900")
	f.donate(alice, id, "100")
	_, err := f.eng.ReleaseMilestoneFunds(f.ctx, bene, id, 0)
	require.NoError(t, err)
	f.donate(bob, id, "900")

	pid, err := f.eng.CreateMilestoneProposal(f.ctx, bene, id, 1)
	require.NoError(t, err)
	// quota 90, cap 18
	f.setBalance("hive:d1", "40")
	f.setBalance("hive:d2", "40")
	f.donate("hive:d1", f.otherCampaign(), "10")

	p1, err := f.eng.PreviewVotingPower(f.ctx, pid, "hive:d1")
	require.NoError(t, err)
	p2, err := f.eng.PreviewVotingPower(f.ctx, pid, "hive:d2")
	require.NoError(t, err)
	assert.Equal(t, amt("4.5"), p1, "donor to another campaign counts as non-donor here")
	assert.Equal(t, amt("6"), p2)

	pAlice, err := f.eng.PreviewVotingPower(f.ctx, pid, alice)
	require.NoError(t, err)
	assert.Equal(t, amt("18"), pAlice, "capped at 20% of the quota")
}

// otherCampaign is a second, active campaign used to make someone a donor elsewhere.
func (f *fixture) otherCampaign() uint64 {
	f.t.Helper()
	id, err := f.eng.CreateCampaignWithMilestones(f.ctx, creator, crowd.CampaignArgs{
		Title: "side project", GoalAmount: amt("100"), Beneficiary: carol,
	}, []string{"all"}, []string{""}, []crowd.Amount{amt("100")})
	require.NoError(f.t, err)
	f.activate(id)
	return id
}

// =============================================================================
// Proposal lifecycle
// =============================================================================

func TestDuplicateProposals(t *testing.T) {
	f := newFixture(t)
	id := f.createDefaultCampaign("100", "30", "70")
	pid, err := f.eng.CreateCampaignProposal(f.ctx, admin, id)
	require.NoError(t, err)
	_, err = f.eng.CreateCampaignProposal(f.ctx, factory, id)
	assert.ErrorIs(t, err, contract.ErrDuplicateProposal)

	for _, v := range []sdk.Address{alice, bob, carol} {
		_, err := f.eng.Vote(f.ctx, v, pid, true)
		require.NoError(t, err)
	}
	// ready but not executed is still pending
	_, err = f.eng.CreateCampaignProposal(f.ctx, admin, id)
	assert.ErrorIs(t, err, contract.ErrDuplicateProposal)

	require.NoError(t, f.eng.ExecuteProposal(f.ctx, creator, pid))
	_, err = f.eng.CreateCampaignProposal(f.ctx, admin, id)
	assert.ErrorIs(t, err, contract.ErrSequence, "campaign is active now")

	f.donate(alice, id, "100")
	mid, err := f.eng.CreateMilestoneProposal(f.ctx, bene, id, 1)
	require.NoError(t, err)
	_, err = f.eng.CreateMilestoneProposal(f.ctx, bene, id, 1)
	assert.ErrorIs(t, err, contract.ErrDuplicateProposal)
	got, ok := f.eng.PendingProposal(f.ctx, id, crowd.ProposalMilestone, 1)
	assert.True(t, ok)
	assert.Equal(t, mid, got)

	all, err := f.eng.ListCampaignProposals(f.ctx, id)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, crowd.ProposalCampaign, all[0].Type)
	assert.Equal(t, crowd.ProposalMilestone, all[1].Type)
}

func TestMilestoneProposalEligibility(t *testing.T) {
	f := newFixture(t)
	id := f.activeCampaign("100", "30", "70")

	_, err := f.eng.CreateMilestoneProposal(f.ctx, bene, id, 0)
	assert.ErrorIs(t, err, contract.ErrSequence, "bootstrap milestone is pre-approved")

	f.donate(alice, id, "50")
	_, err = f.eng.CreateMilestoneProposal(f.ctx, bene, id, 1)
	assert.ErrorIs(t, err, contract.ErrSequence, "only 20 of 70 raised")

	_, err = f.eng.CreateMilestoneProposal(f.ctx, bene, id, 5)
	assert.ErrorIs(t, err, contract.ErrNotFound)

	f.donate(bob, id, "50")
	_, err = f.eng.CreateMilestoneProposal(f.ctx, alice, id, 1)
	assert.ErrorIs(t, err, contract.ErrAuthorization)
	_, err = f.eng.CreateMilestoneProposal(f.ctx, bene, id, 1)
	assert.NoError(t, err)

	eligible, err := f.eng.EligibleMilestones(f.ctx, id)
	require.NoError(t, err)
	assert.Empty(t, eligible, "in voting is not eligible")
}

// TestExecuteRespectsMilestoneOrder: a passed vote on milestone 2 cannot be executed
// before milestone 1 is approved and paid out.
func TestExecuteRespectsMilestoneOrder(t *testing.T) {
	f := newFixture(t)
	id := f.activeCampaign("100", "30", "30", "40")
	f.donate(alice, id, "100")

	p2 := f.passMilestone(id, 2)
	err := f.eng.ExecuteProposal(f.ctx, bene, p2)
	assert.ErrorIs(t, err, contract.ErrSequence)
	assert.Equal(t, crowd.StatusReadyForExecution, f.proposal(p2).Status, "failed execute leaves the proposal ready")

	p1 := f.passMilestone(id, 1)
	err = f.eng.ExecuteProposal(f.ctx, bene, p1)
	assert.ErrorIs(t, err, contract.ErrSequence, "milestone 0 not released yet")

	_, err = f.eng.ReleaseMilestoneFunds(f.ctx, bene, id, 0)
	require.NoError(t, err)
	require.NoError(t, f.eng.ExecuteProposal(f.ctx, bene, p1))
	_, err = f.eng.ReleaseMilestoneFunds(f.ctx, bene, id, 1)
	require.NoError(t, err)
	require.NoError(t, f.eng.ExecuteProposal(f.ctx, bene, p2))
	assert.True(t, f.milestone(id, 2).Approved)

	err = f.eng.ExecuteProposal(f.ctx, bene, p2)
	assert.ErrorIs(t, err, contract.ErrProposalClosed)
}

func TestExecuteNeedsPassedProposal(t *testing.T) {
	f := newFixture(t)
	id := f.createDefaultCampaign("100", "30", "70")
	pid, err := f.eng.CreateCampaignProposal(f.ctx, admin, id)
	require.NoError(t, err)

	err = f.eng.ExecuteProposal(f.ctx, bene, pid)
	assert.ErrorIs(t, err, contract.ErrVotingOpen)
	err = f.eng.ExecuteProposal(f.ctx, alice, pid)
	assert.ErrorIs(t, err, contract.ErrAuthorization)
}

// TestGovernanceRejectsMilestone: a milestone vote that fails rejects the milestone and
// refunds it plus everything after it.
func TestGovernanceRejectsMilestone(t *testing.T) {
	f := newFixture(t)
	id := f.activeCampaign("100", "30", "70")
	f.donate(alice, id, "100")

	pid, err := f.eng.CreateMilestoneProposal(f.ctx, bene, id, 1)
	require.NoError(t, err)
	// quota 7, reject at 2.1; two capped non-donors give 2.8
	for _, v := range []sdk.Address{bob, carol} {
		_, err := f.eng.Vote(f.ctx, v, pid, false)
		require.NoError(t, err)
	}
	assert.Equal(t, crowd.StatusRejected, f.proposal(pid).Status)

	m1 := f.milestone(id, 1)
	assert.True(t, m1.Rejected)
	assert.True(t, m1.Refunded)
	assert.Equal(t, contract.ReasonGovernanceRejected, m1.RejectionReason)
	assert.Equal(t, amt("970"), f.balance(alice), "70 came back")
	assert.False(t, f.milestone(id, 0).Refunded)

	// milestone 0 was never paid out and is still releasable
	paid, err := f.eng.ReleaseMilestoneFunds(f.ctx, bene, id, 0)
	require.NoError(t, err)
	assert.Equal(t, amt("30"), paid)
}

func TestSetVotingPeriod(t *testing.T) {
	f := newFixture(t)
	id := f.createDefaultCampaign("100", "30", "70")

	err := f.eng.SetVotingPeriod(f.ctx, alice, 10)
	assert.ErrorIs(t, err, contract.ErrAuthorization)
	err = f.eng.SetVotingPeriod(f.ctx, admin, 0)
	assert.ErrorIs(t, err, contract.ErrInvalidInput)
	require.NoError(t, f.eng.SetVotingPeriod(f.ctx, admin, 10))

	d, err := f.eng.VotingPeriod(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, d)

	pid, err := f.eng.CreateCampaignProposal(f.ctx, admin, id)
	require.NoError(t, err)
	p := f.proposal(pid)
	assert.Equal(t, int64(600), p.EndTime-p.StartTime)
	assert.Len(t, f.events.Named(contract.EventVotingPeriodChanged), 1)
}

func TestFinalizeExpiredIsAdminOnly(t *testing.T) {
	f := newFixture(t)
	id := f.createDefaultCampaign("100", "30", "70")
	pid, err := f.eng.CreateCampaignProposal(f.ctx, admin, id)
	require.NoError(t, err)
	f.advance(time.Hour)

	err = f.eng.FinalizeExpiredProposal(f.ctx, bene, pid)
	assert.ErrorIs(t, err, contract.ErrAuthorization)
	assert.Equal(t, crowd.StatusActive, f.proposal(pid).Status)
}

func TestGovernanceDisabledActivatesOnFinalize(t *testing.T) {
	f := newFixture(t, func(o *contract.Options) { o.GovernanceDisabled = true })
	id := f.createDefaultCampaign("100", "30", "70")
	assert.True(t, f.campaign(id).Campaign.Active)
	r := f.donate(alice, id, "10")
	assert.Equal(t, amt("10"), r.Amount)
}
