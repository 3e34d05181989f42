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
// Setup
// =============================================================================

// TestMilestoneSetup checks the step by step creation flow so we dont break it again.
func TestMilestoneSetup(t *testing.T) {
	f := newFixture(t)
	id, err := f.eng.CreateCampaign(f.ctx, creator, crowd.CampaignArgs{Title: "library", GoalAmount: amt("50"), Beneficiary: bene})
	require.NoError(t, err)

	_, err = f.eng.AddMilestone(f.ctx, alice, id, crowd.MilestoneArgs{Title: "books", TargetAmount: amt("20")})
	assert.ErrorIs(t, err, contract.ErrAuthorization)

	idx, err := f.eng.AddMilestone(f.ctx, creator, id, crowd.MilestoneArgs{Title: "books", TargetAmount: amt("20")})
	require.NoError(t, err)
	assert.Equal(t, uint32(0), idx)
	_, err = f.eng.AddMilestone(f.ctx, creator, id, crowd.MilestoneArgs{Title: "shelves", TargetAmount: amt("20")})
	require.NoError(t, err)

	err = f.eng.FinalizeMilestones(f.ctx, creator, id)
	assert.ErrorIs(t, err, contract.ErrConfiguration, "40 != 50")
	assert.False(t, f.campaign(id).Campaign.Finalized)

	_, err = f.eng.AddMilestone(f.ctx, creator, id, crowd.MilestoneArgs{Title: "chairs", TargetAmount: amt("10")})
	require.NoError(t, err)
	require.NoError(t, f.eng.FinalizeMilestones(f.ctx, creator, id))

	v := f.campaign(id)
	assert.True(t, v.Campaign.Finalized)
	assert.False(t, v.Campaign.Active)
	require.Len(t, v.Milestones, 3)
	assert.True(t, v.Milestones[0].Approved, "bootstrap milestone")
	assert.False(t, v.Milestones[1].Approved)

	var sum crowd.Amount
	for _, m := range v.Milestones {
		sum += m.TargetAmount
	}
	assert.Equal(t, v.Campaign.GoalAmount, sum)

	_, err = f.eng.AddMilestone(f.ctx, creator, id, crowd.MilestoneArgs{Title: "late", TargetAmount: amt("1")})
	assert.ErrorIs(t, err, contract.ErrConfiguration)
	err = f.eng.FinalizeMilestones(f.ctx, creator, id)
	assert.ErrorIs(t, err, contract.ErrSequence)
}

func TestCampaignSetupValidation(t *testing.T) {
	f := newFixture(t)
	args := crowd.CampaignArgs{Title: "well", GoalAmount: amt("100"), Beneficiary: bene}

	_, err := f.eng.CreateCampaignWithMilestones(f.ctx, creator, args,
		[]string{"a", "b"}, []string{"a"}, []crowd.Amount{amt("50"), amt("50")})
	assert.ErrorIs(t, err, contract.ErrConfiguration)
	assert.Equal(t, uint64(0), f.eng.CampaignCount(f.ctx), "nothing written")

	_, err = f.eng.CreateCampaignWithMilestones(f.ctx, creator, args,
		[]string{"a", "b"}, []string{"", ""}, []crowd.Amount{amt("50"), amt("40")})
	assert.ErrorIs(t, err, contract.ErrConfiguration)
	assert.Equal(t, uint64(0), f.eng.CampaignCount(f.ctx))

	_, err = f.eng.CreateCampaign(f.ctx, alice, args)
	assert.ErrorIs(t, err, contract.ErrAuthorization, "alice is no authorized creator")

	require.NoError(t, f.auth.Request(alice, "village well", startTime))
	require.NoError(t, f.auth.Approve(admin, alice))
	_, err = f.eng.CreateCampaign(f.ctx, alice, args)
	assert.NoError(t, err)

	bad := args
	bad.GoalAmount = 0
	_, err = f.eng.CreateCampaign(f.ctx, creator, bad)
	assert.ErrorIs(t, err, contract.ErrConfiguration)

	bad = args
	bad.Beneficiary = "nonsense"
	_, err = f.eng.CreateCampaign(f.ctx, creator, bad)
	assert.ErrorIs(t, err, contract.ErrInvalidInput)

	_, err = f.eng.CreateCampaignWithMilestones(f.ctx, creator, args, nil, nil, nil)
	assert.ErrorIs(t, err, contract.ErrConfiguration, "no milestones")
}

// =============================================================================
// Release & report
// =============================================================================

func TestReleaseOnlyOnce(t *testing.T) {
	f := newFixture(t)
	id := f.activeCampaign("100", "30", "70")

	f.donate(alice, id, "30")
	_, err := f.eng.ReleaseMilestoneFunds(f.ctx, alice, id, 0)
	assert.ErrorIs(t, err, contract.ErrAuthorization)

	paid, err := f.eng.ReleaseMilestoneFunds(f.ctx, admin, id, 0)
	require.NoError(t, err)
	assert.Equal(t, amt("30"), paid)

	_, err = f.eng.ReleaseMilestoneFunds(f.ctx, bene, id, 0)
	assert.ErrorIs(t, err, contract.ErrAlreadyReleased)
	assert.Equal(t, amt("30"), f.balance(bene), "paid exactly once")
	assert.Len(t, f.events.Named(contract.EventFundsReleased), 1)

	f.donate(alice, id, "70")
	_, err = f.eng.ReleaseMilestoneFunds(f.ctx, bene, id, 1)
	assert.ErrorIs(t, err, contract.ErrSequence, "funded but not approved")
}

// TestPartialRelease: an approved milestone pays out what it holds and takes no
// further donations afterwards.
func TestPartialRelease(t *testing.T) {
	f := newFixture(t)
	id := f.activeCampaign("100", "30", "70")
	f.donate(alice, id, "10")

	paid, err := f.eng.ReleaseMilestoneFunds(f.ctx, bene, id, 0)
	require.NoError(t, err)
	assert.Equal(t, amt("10"), paid)
	assert.Equal(t, amt("10"), f.balance(bene))
	assert.Equal(t, crowd.PhaseReleased, f.milestone(id, 0).Phase())

	r := f.donate(bob, id, "20")
	assert.Equal(t, []crowd.Allocation{{MilestoneIndex: 1, Amount: amt("20")}}, r.Allocations)
	assert.Equal(t, amt("10"), f.milestone(id, 0).RaisedAmount)

	_, err = f.eng.Donate(f.ctx, bob, id, amt("60"), "")
	assert.ErrorIs(t, err, contract.ErrAllocation, "only 50 left once milestone 0 closed short")
}

// TestReleaseAfterLaterRejection: rejecting a later milestone closes the campaign but
// the approved earlier one can still be paid out.
func TestReleaseAfterLaterRejection(t *testing.T) {
	f := newFixture(t)
	id := f.activeCampaign("100", "30", "70")
	f.donate(alice, id, "10")
	escrow := f.campaign(id).Campaign.Address

	require.NoError(t, f.eng.RejectMilestone(f.ctx, admin, id, 1, "supplier gone"))
	require.True(t, f.campaign(id).Campaign.Closed)
	assert.Equal(t, amt("10"), f.balance(escrow))

	paid, err := f.eng.ReleaseMilestoneFunds(f.ctx, bene, id, 0)
	require.NoError(t, err)
	assert.Equal(t, amt("10"), paid)
	assert.Equal(t, amt("10"), f.balance(bene))
	assert.Zero(t, f.balance(escrow))
}

func TestReportAfterRelease(t *testing.T) {
	f := newFixture(t)
	id := f.activeCampaign("100", "30", "70")
	f.donate(alice, id, "30")

	err := f.eng.SubmitMilestoneReport(f.ctx, bene, id, 0, "bought bricks")
	assert.ErrorIs(t, err, contract.ErrSequence)

	_, err = f.eng.ReleaseMilestoneFunds(f.ctx, bene, id, 0)
	require.NoError(t, err)

	err = f.eng.SubmitMilestoneReport(f.ctx, creator, id, 0, "bought bricks")
	assert.ErrorIs(t, err, contract.ErrAuthorization)
	err = f.eng.SubmitMilestoneReport(f.ctx, bene, id, 0, "   ")
	assert.ErrorIs(t, err, contract.ErrConfiguration)

	require.NoError(t, f.eng.SubmitMilestoneReport(f.ctx, bene, id, 0, "bought bricks"))
	err = f.eng.SubmitMilestoneReport(f.ctx, bene, id, 0, "again")
	assert.ErrorIs(t, err, contract.ErrDuplicateReport)

	m := f.milestone(id, 0)
	assert.Equal(t, "bought bricks", m.Report)
	assert.Equal(t, crowd.PhaseReported, m.Phase())
}

// =============================================================================
// Approval & rejection by admin
// =============================================================================

func TestAdminApprovalOrdering(t *testing.T) {
	f := newFixture(t)
	id := f.activeCampaign("90", "30", "30", "30")
	f.donate(alice, id, "90")

	err := f.eng.ApproveMilestone(f.ctx, bene, id, 1)
	assert.ErrorIs(t, err, contract.ErrAuthorization)
	err = f.eng.ApproveMilestone(f.ctx, admin, id, 2)
	assert.ErrorIs(t, err, contract.ErrSequence)
	err = f.eng.ApproveMilestone(f.ctx, admin, id, 1)
	assert.ErrorIs(t, err, contract.ErrSequence, "milestone 0 approved but not released")
	err = f.eng.ApproveMilestone(f.ctx, admin, id, 0)
	assert.ErrorIs(t, err, contract.ErrSequence, "already approved")

	_, err = f.eng.ReleaseMilestoneFunds(f.ctx, bene, id, 0)
	require.NoError(t, err)
	require.NoError(t, f.eng.ApproveMilestone(f.ctx, admin, id, 1))
	assert.True(t, f.milestone(id, 1).Approved)
	assert.False(t, f.milestone(id, 2).Approved)
}

func TestRejectRules(t *testing.T) {
	f := newFixture(t)
	id := f.activeCampaign("100", "30", "70")
	f.donate(alice, id, "30")
	_, err := f.eng.ReleaseMilestoneFunds(f.ctx, bene, id, 0)
	require.NoError(t, err)

	err = f.eng.RejectMilestone(f.ctx, bene, id, 1, "nope")
	assert.ErrorIs(t, err, contract.ErrAuthorization)
	err = f.eng.RejectMilestone(f.ctx, admin, id, 1, " ")
	assert.ErrorIs(t, err, contract.ErrInvalidInput)
	err = f.eng.RejectMilestone(f.ctx, admin, id, 0, "late")
	assert.ErrorIs(t, err, contract.ErrSequence, "paid out milestones stay")

	// nothing raised for milestone 1 yet: rejection closes the campaign without transfers
	require.NoError(t, f.eng.RejectMilestone(f.ctx, admin, id, 1, "scope changed"))
	v := f.campaign(id)
	assert.True(t, v.Campaign.Closed)
	assert.Equal(t, crowd.Amount(0), v.Campaign.RefundedAmount)
	err = f.eng.RejectMilestone(f.ctx, admin, id, 1, "twice")
	assert.ErrorIs(t, err, contract.ErrSequence)

	err = f.eng.ApproveMilestone(f.ctx, admin, id, 1)
	assert.ErrorIs(t, err, contract.ErrSequence)
}

// TestRejectionClosesPendingVotes: refunding a milestone under a running vote settles
// that vote as rejected.
func TestRejectionClosesPendingVotes(t *testing.T) {
	f := newFixture(t)
	id := f.activeCampaign("100", "20", "30", "50")
	f.donate(alice, id, "100")

	p2, err := f.eng.CreateMilestoneProposal(f.ctx, bene, id, 2)
	require.NoError(t, err)
	require.NoError(t, f.eng.RejectMilestone(f.ctx, admin, id, 1, "insufficient progress"))

	assert.Equal(t, crowd.StatusRejected, f.proposal(p2).Status)
	_, pending := f.eng.PendingProposal(f.ctx, id, crowd.ProposalMilestone, 2)
	assert.False(t, pending)
	_, err = f.eng.Vote(f.ctx, bob, p2, true)
	assert.ErrorIs(t, err, contract.ErrProposalClosed)
}

// =============================================================================
// Allocation
// =============================================================================

func TestDonationSpillsIntoNextMilestone(t *testing.T) {
	f := newFixture(t)
	id := f.activeCampaign("100", "30", "30", "40")

	r := f.donate(alice, id, "25")
	assert.Equal(t, []crowd.Allocation{{MilestoneIndex: 0, Amount: amt("25")}}, r.Allocations)

	r = f.donate(bob, id, "45")
	assert.Equal(t, []crowd.Allocation{
		{MilestoneIndex: 0, Amount: amt("5")},
		{MilestoneIndex: 1, Amount: amt("30")},
		{MilestoneIndex: 2, Amount: amt("10")},
	}, r.Allocations)
	assert.Equal(t, []uint32{1}, r.NewlyEligible)

	v := f.campaign(id)
	assert.Equal(t, amt("70"), v.Campaign.RaisedAmount)
	for _, m := range v.Milestones {
		assert.LessOrEqual(t, m.RaisedAmount, m.TargetAmount)
		assert.GreaterOrEqual(t, m.RaisedAmount, crowd.Amount(0))
	}
	assert.Equal(t, uint64(2), v.Campaign.DonorsCount)
	assert.Len(t, f.events.Named(contract.EventMilestoneFunded), 2)

	r = f.donate(alice, id, "30")
	assert.Equal(t, []uint32{2}, r.NewlyEligible)
	v = f.campaign(id)
	assert.Equal(t, v.Campaign.GoalAmount, v.Campaign.RaisedAmount)
	assert.Equal(t, uint64(2), v.Campaign.DonorsCount, "alice counted once")
	assert.Equal(t, uint64(3), v.Campaign.DonationCount)

	_, err := f.eng.Donate(f.ctx, carol, id, amt("0.001"), "")
	assert.ErrorIs(t, err, contract.ErrGoalExceeded)
}

func TestDonationPreconditions(t *testing.T) {
	f := newFixture(t)
	id := f.createDefaultCampaign("100", "30", "70")

	_, err := f.eng.Donate(f.ctx, alice, id, amt("10"), "")
	assert.ErrorIs(t, err, contract.ErrInactiveCampaign, "not active before the vote")

	f.activate(id)
	_, err = f.eng.Donate(f.ctx, alice, id, 0, "")
	assert.ErrorIs(t, err, contract.ErrInvalidInput)
	_, err = f.eng.Donate(f.ctx, alice, 42, amt("1"), "")
	assert.ErrorIs(t, err, contract.ErrNotFound)

	f.setBalance("hive:poor", "5")
	_, err = f.eng.Donate(f.ctx, "hive:poor", id, amt("6"), "")
	assert.ErrorIs(t, err, contract.ErrInsufficientBalance)
	assert.ErrorIs(t, err, sdk.ErrInsufficientBalance)
	v := f.campaign(id)
	assert.Equal(t, crowd.Amount(0), v.Campaign.RaisedAmount)
	assert.Equal(t, crowd.Amount(0), v.Milestones[0].RaisedAmount, "allocation rolled back with the transfer")
}

func TestDonationRecords(t *testing.T) {
	f := newFixture(t)
	id := f.activeCampaign("100", "30", "70")
	r := f.donate(alice, id, "12.5")
	f.advance(time.Minute)
	_, err := f.eng.Donate(f.ctx, alice, id, amt("7.5"), "for the roof")
	require.NoError(t, err)

	ds, err := f.eng.Donations(f.ctx, id)
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, r.DonationID, ds[0].ID)
	assert.Equal(t, alice, ds[0].Donor)
	assert.Equal(t, amt("7.5"), ds[1].Amount)
	assert.Equal(t, "for the roof", ds[1].Message)

	total, err := f.eng.DonorTotal(f.ctx, id, alice)
	require.NoError(t, err)
	assert.Equal(t, amt("20"), total)
	total, err = f.eng.DonorTotal(f.ctx, id, bob)
	require.NoError(t, err)
	assert.Equal(t, crowd.Amount(0), total)

	ev := f.events.Named(contract.EventDonationReceived)
	require.Len(t, ev, 2)
	assert.Equal(t, "12.500", ev[0].Get("am"))
}
