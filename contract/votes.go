package contract

import (
	"context"
	"fmt"

	"github.com/DavideSigurta/Donatio-sub000/contract/crowd"
	"github.com/DavideSigurta/Donatio-sub000/sdk"
)

// Vote casts the caller's capped power for or against a proposal and returns the power
// applied. Tallies are evaluated right after: positive votes reaching half the quota
// make the proposal ready for execution, otherwise negative votes reaching 30% of the
// quota reject it. A rejected milestone proposal rejects the milestone too.
// Example payload: Vote(ctx, "hive:bob", 3, true)
func (e *Engine) Vote(ctx context.Context, voter sdk.Address, proposalID uint64, support bool) (crowd.Amount, error) {
	var power crowd.Amount
	err := e.exec(ctx, OpVote, voter, func(tx *txn) error {
		st := tx.state()
		p, err := loadProposal(st, proposalID)
		if err != nil {
			return err
		}
		receipt, err := loadVoteReceipt(st, p.ID, voter)
		if err != nil {
			return err
		}
		if receipt != nil {
			return fmt.Errorf("%w: %s on proposal %d", ErrAlreadyVoted, voter, p.ID)
		}
		if tx.now > p.EndTime || p.Status == crowd.StatusExpired {
			return fmt.Errorf("%w: proposal %d ended at %d", ErrExpiredProposal, p.ID, p.EndTime)
		}
		if p.Status != crowd.StatusActive {
			return fmt.Errorf("%w: proposal %d is %s", ErrProposalClosed, p.ID, p.State())
		}
		c, err := loadCampaign(st, p.CampaignID)
		if err != nil {
			return err
		}
		power = e.voterPower(st, c, p, voter)
		if power <= 0 {
			return fmt.Errorf("%w: %s on proposal %d", ErrNoVotingPower, voter, p.ID)
		}

		if support {
			p.PositiveVotes += power
		} else {
			p.NegativeVotes += power
		}
		p.VoterCount++
		saveVoteReceipt(st, p.ID, voter, &crowd.VoteReceipt{Support: support, Power: power, VotedAt: tx.now})
		emitVoteCast(tx, p.ID, voter, support, power)

		switch evaluate(p) {
		case crowd.StatusReadyForExecution:
			p.Status = crowd.StatusReadyForExecution
			saveProposal(st, p)
			emitProposalStatusChanged(tx, p)
		case crowd.StatusRejected:
			p.Status = crowd.StatusRejected
			saveProposal(st, p)
			clearPendingProposal(st, p)
			emitProposalStatusChanged(tx, p)
			if p.Type == crowd.ProposalMilestone {
				return e.rejectFromVote(tx, c, p)
			}
		default:
			saveProposal(st, p)
		}
		return nil
	})
	return power, err
}

// evaluate applies the thresholds to the current tallies. Approval is checked first.
func evaluate(p *crowd.Proposal) crowd.ProposalStatus {
	if p.PositiveVotes >= approvalThreshold(p.ApprovalQuota) {
		return crowd.StatusReadyForExecution
	}
	if p.NegativeVotes >= rejectionThreshold(p.ApprovalQuota) {
		return crowd.StatusRejected
	}
	return crowd.StatusActive
}

// rejectFromVote rejects the voted milestone unless something else already settled it.
func (e *Engine) rejectFromVote(tx *txn, c *crowd.Campaign, p *crowd.Proposal) error {
	m, err := loadMilestone(tx.state(), c, p.MilestoneIndex)
	if err != nil {
		return err
	}
	if m.Rejected || m.Refunded || m.FundsReleased {
		return nil
	}
	return e.rejectMilestone(tx, c, p.MilestoneIndex, ReasonGovernanceRejected, p.ID)
}
