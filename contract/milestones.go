package contract

import (
	"context"
	"fmt"
	"strings"

	"github.com/DavideSigurta/Donatio-sub000/contract/crowd"
	"github.com/DavideSigurta/Donatio-sub000/sdk"
)

// ReasonGovernanceRejected is stored on milestones rejected by a proposal vote.
const ReasonGovernanceRejected = "rejected by governance vote"

// AddMilestone appends a milestone to a draft campaign and returns its index.
func (e *Engine) AddMilestone(ctx context.Context, caller sdk.Address, campaignID uint64, args crowd.MilestoneArgs) (uint32, error) {
	var idx uint32
	err := e.exec(ctx, OpAddMilestone, caller, func(tx *txn) error {
		c, err := loadCampaign(tx.state(), campaignID)
		if err != nil {
			return err
		}
		if err := e.authorize(OpAddMilestone, caller, c); err != nil {
			return err
		}
		idx, err = e.addMilestone(tx, c, args)
		return err
	})
	return idx, err
}

func (e *Engine) addMilestone(tx *txn, c *crowd.Campaign, args crowd.MilestoneArgs) (uint32, error) {
	if c.Finalized {
		return 0, fmt.Errorf("%w: campaign %d milestones are frozen", ErrConfiguration, c.ID)
	}
	if c.MilestoneCount >= MaxMilestones {
		return 0, fmt.Errorf("%w: at most %d milestones", ErrConfiguration, MaxMilestones)
	}
	title := strings.TrimSpace(args.Title)
	if title == "" || len(title) > MaxTitleLength {
		return 0, fmt.Errorf("%w: milestone title must be 1-%d characters", ErrInvalidInput, MaxTitleLength)
	}
	if len(args.Description) > MaxDescriptionLength {
		return 0, fmt.Errorf("%w: milestone description longer than %d", ErrInvalidInput, MaxDescriptionLength)
	}
	if args.TargetAmount <= 0 {
		return 0, fmt.Errorf("%w: milestone target must be positive", ErrConfiguration)
	}
	m := &crowd.Milestone{
		Index:        c.MilestoneCount,
		Title:        title,
		Description:  args.Description,
		TargetAmount: args.TargetAmount,
	}
	st := tx.state()
	saveMilestone(st, c.ID, m)
	c.MilestoneCount++
	saveCampaign(st, c)
	emitMilestoneAdded(tx, c.ID, m)
	return m.Index, nil
}

// FinalizeMilestones freezes the milestone list. The targets must add up to the goal
// exactly. Milestone 0 is approved right away so the first tranche needs no vote.
func (e *Engine) FinalizeMilestones(ctx context.Context, caller sdk.Address, campaignID uint64) error {
	return e.exec(ctx, OpFinalizeMilestones, caller, func(tx *txn) error {
		c, err := loadCampaign(tx.state(), campaignID)
		if err != nil {
			return err
		}
		if err := e.authorize(OpFinalizeMilestones, caller, c); err != nil {
			return err
		}
		return e.finalizeMilestones(tx, c)
	})
}

func (e *Engine) finalizeMilestones(tx *txn, c *crowd.Campaign) error {
	if c.Finalized {
		return fmt.Errorf("%w: campaign %d already finalized", ErrSequence, c.ID)
	}
	st := tx.state()
	ms, err := loadMilestones(st, c)
	if err != nil {
		return err
	}
	if len(ms) == 0 {
		return fmt.Errorf("%w: campaign %d has no milestones", ErrConfiguration, c.ID)
	}
	var sum crowd.Amount
	for _, m := range ms {
		sum += m.TargetAmount
	}
	if sum != c.GoalAmount {
		return fmt.Errorf("%w: milestone targets sum to %s, goal is %s", ErrConfiguration, sum, c.GoalAmount)
	}

	first := ms[0]
	first.Approved = true
	first.ApprovedAt = tx.now
	saveMilestone(st, c.ID, &first)

	c.Finalized = true
	saveCampaign(st, c)
	emitMilestonesFinalized(tx, c)
	emitMilestoneApproved(tx, c.ID, 0, "bootstrap")
	if e.opts.GovernanceDisabled {
		activateCampaign(tx, c, "config")
	}
	return nil
}

// ------------------------------------------------------------------
// Allocation
// ------------------------------------------------------------------

// distribution is the outcome of routing one amount over the milestones.
type distribution struct {
	allocations []crowd.Allocation
	filled      []uint32 // reached target with this amount
	touched     []*crowd.Milestone
}

// distributeFunds is the only way money enters milestones. It fills the first
// milestone with room, spills the rest into the next, and fails without writing
// anything when the amount does not fit in the remaining capacity.
func distributeFunds(st State, c *crowd.Campaign, amount crowd.Amount) (*distribution, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	ms, err := loadMilestones(st, c)
	if err != nil {
		return nil, err
	}
	var capacity crowd.Amount
	for i := range ms {
		if !ms[i].Rejected && !ms[i].Refunded && !ms[i].FundsReleased {
			capacity += ms[i].Remaining()
		}
	}
	if amount > capacity {
		return nil, fmt.Errorf("%w: %s does not fit, %s capacity left", ErrAllocation, amount, capacity)
	}

	d := &distribution{}
	left := amount
	for i := range ms {
		if left == 0 {
			break
		}
		m := &ms[i]
		// a paid-out milestone is closed even when it was released short of target
		if m.Rejected || m.Refunded || m.FundsReleased || m.FullyFunded() {
			continue
		}
		part := crowd.MinAmount(left, m.Remaining())
		m.RaisedAmount += part
		left -= part
		d.allocations = append(d.allocations, crowd.Allocation{MilestoneIndex: m.Index, Amount: part})
		d.touched = append(d.touched, m)
		if m.FullyFunded() {
			d.filled = append(d.filled, m.Index)
		}
	}
	for _, m := range d.touched {
		saveMilestone(st, c.ID, m)
	}
	return d, nil
}

// eligibleForVote is the derived predicate for opening a milestone proposal.
func eligibleForVote(st State, c *crowd.Campaign, m *crowd.Milestone) bool {
	return m.Index > 0 &&
		m.FullyFunded() &&
		!m.Approved &&
		!m.Rejected &&
		!m.Refunded &&
		pendingProposal(st, c.ID, crowd.ProposalMilestone, m.Index) == 0
}

// ------------------------------------------------------------------
// Approval
// ------------------------------------------------------------------

// ApproveMilestone lets an admin approve directly, bypassing a vote. Ordering rules
// are the same as for an executed proposal.
func (e *Engine) ApproveMilestone(ctx context.Context, caller sdk.Address, campaignID uint64, idx uint32) error {
	return e.exec(ctx, OpApproveMilestone, caller, func(tx *txn) error {
		c, err := loadCampaign(tx.state(), campaignID)
		if err != nil {
			return err
		}
		if err := e.authorize(OpApproveMilestone, caller, c); err != nil {
			return err
		}
		return approveMilestone(tx, c, idx, "admin")
	})
}

// approveMilestone requires the previous milestone to be resolved: approved and paid
// out, or rejected.
func approveMilestone(tx *txn, c *crowd.Campaign, idx uint32, via string) error {
	st := tx.state()
	m, err := loadMilestone(st, c, idx)
	if err != nil {
		return err
	}
	switch {
	case m.Approved:
		return fmt.Errorf("%w: milestone %d already approved", ErrSequence, idx)
	case m.Rejected:
		return fmt.Errorf("%w: milestone %d was rejected", ErrSequence, idx)
	case m.Refunded:
		return fmt.Errorf("%w: milestone %d was refunded after an earlier rejection", ErrSequence, idx)
	}
	if idx > 0 {
		prev, err := loadMilestone(st, c, idx-1)
		if err != nil {
			return err
		}
		if !(prev.Approved && prev.FundsReleased) && !prev.Rejected {
			return fmt.Errorf("%w: milestone %d is not resolved yet", ErrSequence, idx-1)
		}
	}
	m.Approved = true
	m.ApprovedAt = tx.now
	saveMilestone(st, c.ID, m)
	emitMilestoneApproved(tx, c.ID, idx, via)
	return nil
}

// ------------------------------------------------------------------
// Release & report
// ------------------------------------------------------------------

// ReleaseMilestoneFunds pays whatever an approved milestone has raised out to the
// beneficiary and closes it to further donations. It returns the amount transferred.
// A second call fails with ErrAlreadyReleased.
func (e *Engine) ReleaseMilestoneFunds(ctx context.Context, caller sdk.Address, campaignID uint64, idx uint32) (crowd.Amount, error) {
	var paid crowd.Amount
	err := e.exec(ctx, OpReleaseFunds, caller, func(tx *txn) error {
		st := tx.state()
		c, err := loadCampaign(st, campaignID)
		if err != nil {
			return err
		}
		if err := e.authorize(OpReleaseFunds, caller, c); err != nil {
			return err
		}
		m, err := loadMilestone(st, c, idx)
		if err != nil {
			return err
		}
		switch {
		case m.FundsReleased:
			return fmt.Errorf("%w: milestone %d", ErrAlreadyReleased, idx)
		case m.Rejected || m.Refunded:
			return fmt.Errorf("%w: milestone %d funds were refunded", ErrSequence, idx)
		case !m.Approved:
			return fmt.Errorf("%w: milestone %d not approved", ErrSequence, idx)
		}
		if m.RaisedAmount > 0 {
			if err := tx.transfer(c.Address, c.Beneficiary, crowd.AmountToInt64(m.RaisedAmount), c.Asset); err != nil {
				return err
			}
		}
		m.FundsReleased = true
		m.ReleasedAt = tx.now
		saveMilestone(st, c.ID, m)
		paid = m.RaisedAmount
		emitFundsReleased(tx, c.ID, idx, c.Beneficiary, paid)
		return nil
	})
	return paid, err
}

// SubmitMilestoneReport stores the beneficiary's report for a paid-out milestone, once.
func (e *Engine) SubmitMilestoneReport(ctx context.Context, caller sdk.Address, campaignID uint64, idx uint32, text string) error {
	return e.exec(ctx, OpSubmitReport, caller, func(tx *txn) error {
		st := tx.state()
		c, err := loadCampaign(st, campaignID)
		if err != nil {
			return err
		}
		if err := e.authorize(OpSubmitReport, caller, c); err != nil {
			return err
		}
		m, err := loadMilestone(st, c, idx)
		if err != nil {
			return err
		}
		if !m.FundsReleased {
			return fmt.Errorf("%w: milestone %d funds not released", ErrSequence, idx)
		}
		if m.Report != "" {
			return fmt.Errorf("%w: milestone %d", ErrDuplicateReport, idx)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return fmt.Errorf("%w: empty report", ErrConfiguration)
		}
		if len(text) > MaxReportLength {
			return fmt.Errorf("%w: report longer than %d", ErrInvalidInput, MaxReportLength)
		}
		m.Report = text
		saveMilestone(st, c.ID, m)
		emitReportSubmitted(tx, c.ID, idx)
		return nil
	})
}

// ------------------------------------------------------------------
// Rejection
// ------------------------------------------------------------------

// RejectMilestone rejects a milestone with a reason. Its funds and those of every later
// unresolved milestone go back through the refund policy and the campaign closes.
func (e *Engine) RejectMilestone(ctx context.Context, caller sdk.Address, campaignID uint64, idx uint32, reason string) error {
	return e.exec(ctx, OpRejectMilestone, caller, func(tx *txn) error {
		c, err := loadCampaign(tx.state(), campaignID)
		if err != nil {
			return err
		}
		if err := e.authorize(OpRejectMilestone, caller, c); err != nil {
			return err
		}
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return fmt.Errorf("%w: rejection needs a reason", ErrInvalidInput)
		}
		return e.rejectMilestone(tx, c, idx, reason, 0)
	})
}

// rejectMilestone marks idx rejected and cascades refunds forward. skipProposal is the
// proposal driving the rejection, which the caller already settled.
func (e *Engine) rejectMilestone(tx *txn, c *crowd.Campaign, idx uint32, reason string, skipProposal uint64) error {
	st := tx.state()
	ms, err := loadMilestones(st, c)
	if err != nil {
		return err
	}
	if int(idx) >= len(ms) {
		return notFound(fmt.Sprintf("campaign %d milestone", c.ID), idx)
	}
	target := &ms[idx]
	switch {
	case target.Rejected:
		return fmt.Errorf("%w: milestone %d already rejected", ErrSequence, idx)
	case target.Refunded:
		return fmt.Errorf("%w: milestone %d already refunded", ErrSequence, idx)
	case target.FundsReleased:
		return fmt.Errorf("%w: milestone %d already paid out", ErrSequence, idx)
	}

	target.Rejected = true
	target.RejectionReason = reason
	emitMilestoneRejected(tx, c.ID, idx, reason)

	var total crowd.Amount
	for i := int(idx); i < len(ms); i++ {
		m := &ms[i]
		if i > int(idx) && m.Resolved() {
			continue
		}
		m.Refunded = true
		m.RefundedAmount = m.RaisedAmount
		total += m.RaisedAmount
		saveMilestone(st, c.ID, m)
		emitMilestoneRefunded(tx, c.ID, m.Index, m.RaisedAmount, i > int(idx))

		if pid := pendingProposal(st, c.ID, crowd.ProposalMilestone, m.Index); pid != 0 && pid != skipProposal {
			if err := closeProposal(tx, pid); err != nil {
				return err
			}
		}
	}

	if total > 0 {
		if err := e.refund(tx, c, total); err != nil {
			return err
		}
	}
	c.RefundedAmount += total
	c.Closed = true
	saveCampaign(st, c)
	return nil
}

// closeProposal rejects a pending proposal whose milestone got refunded under it.
func closeProposal(tx *txn, id uint64) error {
	st := tx.state()
	p, err := loadProposal(st, id)
	if err != nil {
		return err
	}
	p.Status = crowd.StatusRejected
	saveProposal(st, p)
	clearPendingProposal(st, p)
	emitProposalStatusChanged(tx, p)
	return nil
}

// firstRejected returns the lowest rejected index, or -1.
func firstRejected(ms []crowd.Milestone) int {
	for i := range ms {
		if ms[i].Rejected {
			return i
		}
	}
	return -1
}
