package contract

import (
	"context"

	"github.com/DavideSigurta/Donatio-sub000/contract/crowd"
	"github.com/DavideSigurta/Donatio-sub000/sdk"
)

// GetCampaign returns the campaign with its milestones.
func (e *Engine) GetCampaign(ctx context.Context, id uint64) (*crowd.CampaignView, error) {
	var out *crowd.CampaignView
	err := e.view(func(st State) error {
		c, err := loadCampaign(st, id)
		if err != nil {
			return err
		}
		ms, err := loadMilestones(st, c)
		if err != nil {
			return err
		}
		out = &crowd.CampaignView{Campaign: *c, Milestones: ms}
		return nil
	})
	return out, err
}

// CampaignCount is the highest campaign id handed out so far.
func (e *Engine) CampaignCount(ctx context.Context) uint64 {
	var n uint64
	_ = e.view(func(st State) error {
		n = getCount(st, CampaignsCount)
		return nil
	})
	return n
}

func (e *Engine) GetMilestone(ctx context.Context, campaignID uint64, idx uint32) (*crowd.Milestone, error) {
	var out *crowd.Milestone
	err := e.view(func(st State) error {
		c, err := loadCampaign(st, campaignID)
		if err != nil {
			return err
		}
		out, err = loadMilestone(st, c, idx)
		return err
	})
	return out, err
}

// EligibleMilestones lists milestones a milestone proposal could be opened for now.
func (e *Engine) EligibleMilestones(ctx context.Context, campaignID uint64) ([]uint32, error) {
	var out []uint32
	err := e.view(func(st State) error {
		c, err := loadCampaign(st, campaignID)
		if err != nil {
			return err
		}
		ms, err := loadMilestones(st, c)
		if err != nil {
			return err
		}
		for i := range ms {
			if eligibleForVote(st, c, &ms[i]) {
				out = append(out, ms[i].Index)
			}
		}
		return nil
	})
	return out, err
}

// IsCascadeRefunded is true for every milestone after the first rejected one.
func (e *Engine) IsCascadeRefunded(ctx context.Context, campaignID uint64, idx uint32) (bool, error) {
	var out bool
	err := e.view(func(st State) error {
		c, err := loadCampaign(st, campaignID)
		if err != nil {
			return err
		}
		if idx >= c.MilestoneCount {
			return notFound("milestone", idx)
		}
		ms, err := loadMilestones(st, c)
		if err != nil {
			return err
		}
		first := firstRejected(ms)
		out = first >= 0 && int(idx) > first
		return nil
	})
	return out, err
}

func (e *Engine) Donations(ctx context.Context, campaignID uint64) ([]crowd.Donation, error) {
	var out []crowd.Donation
	err := e.view(func(st State) error {
		c, err := loadCampaign(st, campaignID)
		if err != nil {
			return err
		}
		out, err = loadDonations(st, c)
		return err
	})
	return out, err
}

// DonorTotal is what addr gave to the campaign in total; zero for non-donors.
func (e *Engine) DonorTotal(ctx context.Context, campaignID uint64, addr sdk.Address) (crowd.Amount, error) {
	var out crowd.Amount
	err := e.view(func(st State) error {
		if _, err := loadCampaign(st, campaignID); err != nil {
			return err
		}
		out = donorTotal(st, campaignID, addr)
		return nil
	})
	return out, err
}

func (e *Engine) GetProposal(ctx context.Context, id uint64) (*crowd.Proposal, error) {
	var out *crowd.Proposal
	err := e.view(func(st State) error {
		var err error
		out, err = loadProposal(st, id)
		return err
	})
	return out, err
}

// ListCampaignProposals returns every proposal of the campaign in creation order.
func (e *Engine) ListCampaignProposals(ctx context.Context, campaignID uint64) ([]crowd.Proposal, error) {
	var out []crowd.Proposal
	err := e.view(func(st State) error {
		c, err := loadCampaign(st, campaignID)
		if err != nil {
			return err
		}
		out, err = loadCampaignProposals(st, c)
		return err
	})
	return out, err
}

// PendingProposal returns the id of the proposal currently holding the slot, if any.
// idx is ignored for campaign proposals.
func (e *Engine) PendingProposal(ctx context.Context, campaignID uint64, kind crowd.ProposalType, idx uint32) (uint64, bool) {
	var id uint64
	_ = e.view(func(st State) error {
		id = pendingProposal(st, campaignID, kind, idx)
		return nil
	})
	return id, id != 0
}

func (e *Engine) HasVoted(ctx context.Context, proposalID uint64, voter sdk.Address) (bool, error) {
	r, err := e.VoteReceipt(ctx, proposalID, voter)
	return r != nil, err
}

// VoteReceipt returns nil, nil when the voter has not voted.
func (e *Engine) VoteReceipt(ctx context.Context, proposalID uint64, voter sdk.Address) (*crowd.VoteReceipt, error) {
	var out *crowd.VoteReceipt
	err := e.view(func(st State) error {
		if _, err := loadProposal(st, proposalID); err != nil {
			return err
		}
		var err error
		out, err = loadVoteReceipt(st, proposalID, voter)
		return err
	})
	return out, err
}

// PreviewVotingPower computes what voter would bring to the proposal right now.
func (e *Engine) PreviewVotingPower(ctx context.Context, proposalID uint64, voter sdk.Address) (crowd.Amount, error) {
	var out crowd.Amount
	err := e.view(func(st State) error {
		p, err := loadProposal(st, proposalID)
		if err != nil {
			return err
		}
		c, err := loadCampaign(st, p.CampaignID)
		if err != nil {
			return err
		}
		out = e.voterPower(st, c, p, voter)
		return nil
	})
	return out, err
}
