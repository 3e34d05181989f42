package contract

import (
	"context"
	"fmt"

	"github.com/DavideSigurta/Donatio-sub000/contract/crowd"
	"github.com/DavideSigurta/Donatio-sub000/sdk"
)

// CreateCampaignProposal opens the vote that activates a finalized campaign. The
// proposal targets the campaign goal.
func (e *Engine) CreateCampaignProposal(ctx context.Context, caller sdk.Address, campaignID uint64) (uint64, error) {
	var id uint64
	err := e.exec(ctx, OpCreateCampaignProposal, caller, func(tx *txn) error {
		st := tx.state()
		c, err := loadCampaign(st, campaignID)
		if err != nil {
			return err
		}
		if err := e.authorize(OpCreateCampaignProposal, caller, c); err != nil {
			return err
		}
		if !c.Finalized {
			return fmt.Errorf("%w: campaign %d milestones not finalized", ErrSequence, c.ID)
		}
		if c.Active {
			return fmt.Errorf("%w: campaign %d already active", ErrSequence, c.ID)
		}
		if pid := pendingProposal(st, c.ID, crowd.ProposalCampaign, 0); pid != 0 {
			return fmt.Errorf("%w: proposal %d pending for campaign %d", ErrDuplicateProposal, pid, c.ID)
		}
		p, err := e.openProposal(tx, c, crowd.ProposalCampaign, 0, c.GoalAmount)
		if err != nil {
			return err
		}
		id = p.ID
		return nil
	})
	return id, err
}

// CreateMilestoneProposal opens the vote on a fully funded milestone. Only the
// beneficiary may ask, and only while the milestone is eligible.
func (e *Engine) CreateMilestoneProposal(ctx context.Context, caller sdk.Address, campaignID uint64, idx uint32) (uint64, error) {
	var id uint64
	err := e.exec(ctx, OpCreateMilestoneProposal, caller, func(tx *txn) error {
		st := tx.state()
		c, err := loadCampaign(st, campaignID)
		if err != nil {
			return err
		}
		if err := e.authorize(OpCreateMilestoneProposal, caller, c); err != nil {
			return err
		}
		m, err := loadMilestone(st, c, idx)
		if err != nil {
			return err
		}
		if pid := pendingProposal(st, c.ID, crowd.ProposalMilestone, idx); pid != 0 {
			return fmt.Errorf("%w: proposal %d pending for milestone %d", ErrDuplicateProposal, pid, idx)
		}
		if !eligibleForVote(st, c, m) {
			return fmt.Errorf("%w: milestone %d not eligible for a vote (phase %s)", ErrSequence, idx, m.Phase())
		}
		p, err := e.openProposal(tx, c, crowd.ProposalMilestone, idx, m.TargetAmount)
		if err != nil {
			return err
		}
		id = p.ID
		return nil
	})
	return id, err
}

func (e *Engine) openProposal(tx *txn, c *crowd.Campaign, kind crowd.ProposalType, idx uint32, target crowd.Amount) (*crowd.Proposal, error) {
	quota := approvalQuota(target)
	if quota <= 0 {
		return nil, fmt.Errorf("%w: target %s gives no approval quota", ErrConfiguration, target)
	}
	st := tx.state()
	period := e.votingPeriod(st)
	p := &crowd.Proposal{
		ID:             nextID(st, ProposalsCount),
		Type:           kind,
		CampaignID:     c.ID,
		MilestoneIndex: idx,
		Proposer:       tx.caller,
		TargetAmount:   target,
		ApprovalQuota:  quota,
		StartTime:      tx.now,
		EndTime:        tx.now + int64(period.Seconds()),
		Status:         crowd.StatusActive,
	}
	saveProposal(st, p)
	setPendingProposal(st, p)
	indexCampaignProposal(st, c, p.ID)
	saveCampaign(st, c)
	emitProposalCreated(tx, p)
	return p, nil
}

// ExecuteProposal applies a proposal that reached READY_FOR_EXECUTION: a campaign
// proposal activates the campaign, a milestone proposal approves the milestone.
func (e *Engine) ExecuteProposal(ctx context.Context, caller sdk.Address, proposalID uint64) error {
	return e.exec(ctx, OpExecuteProposal, caller, func(tx *txn) error {
		st := tx.state()
		p, err := loadProposal(st, proposalID)
		if err != nil {
			return err
		}
		c, err := loadCampaign(st, p.CampaignID)
		if err != nil {
			return err
		}
		if err := e.authorize(OpExecuteProposal, caller, c); err != nil {
			return err
		}
		switch {
		case p.Executed:
			return fmt.Errorf("%w: proposal %d already %s", ErrProposalClosed, p.ID, p.State())
		case p.Status == crowd.StatusActive:
			return fmt.Errorf("%w: proposal %d has not passed", ErrVotingOpen, p.ID)
		case p.Status != crowd.StatusReadyForExecution:
			return fmt.Errorf("%w: proposal %d is %s", ErrProposalClosed, p.ID, p.State())
		}

		switch p.Type {
		case crowd.ProposalCampaign:
			if c.Active {
				return fmt.Errorf("%w: campaign %d already active", ErrSequence, c.ID)
			}
			activateCampaign(tx, c, "governance")
		case crowd.ProposalMilestone:
			if err := approveMilestone(tx, c, p.MilestoneIndex, "governance"); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: proposal type %d", ErrInvalidInput, p.Type)
		}

		p.Executed = true
		p.ExecutedAt = tx.now
		saveProposal(st, p)
		clearPendingProposal(st, p)
		emitProposalExecuted(tx, p, caller)
		emitProposalStatusChanged(tx, p)
		return nil
	})
}

// FinalizeExpiredProposal closes an ACTIVE proposal whose window has passed. Nothing
// besides the proposal changes.
func (e *Engine) FinalizeExpiredProposal(ctx context.Context, caller sdk.Address, proposalID uint64) error {
	return e.exec(ctx, OpFinalizeExpired, caller, func(tx *txn) error {
		st := tx.state()
		p, err := loadProposal(st, proposalID)
		if err != nil {
			return err
		}
		if err := e.authorize(OpFinalizeExpired, caller, nil); err != nil {
			return err
		}
		if p.Status != crowd.StatusActive {
			return fmt.Errorf("%w: proposal %d is %s", ErrProposalClosed, p.ID, p.State())
		}
		if tx.now <= p.EndTime {
			return fmt.Errorf("%w: proposal %d ends at %d", ErrVotingOpen, p.ID, p.EndTime)
		}
		p.Status = crowd.StatusExpired
		p.Executed = true
		saveProposal(st, p)
		clearPendingProposal(st, p)
		emitProposalStatusChanged(tx, p)
		return nil
	})
}
