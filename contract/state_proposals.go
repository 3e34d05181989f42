package contract

import (
	"fmt"
	"strconv"

	"github.com/DavideSigurta/Donatio-sub000/contract/crowd"
	"github.com/DavideSigurta/Donatio-sub000/sdk"
)

func saveProposal(st State, p *crowd.Proposal) {
	st.Set(proposalKey(p.ID), string(crowd.EncodeProposal(p)))
}

func loadProposal(st State, id uint64) (*crowd.Proposal, error) {
	ptr := st.Get(proposalKey(id))
	if ptr == nil || *ptr == "" {
		return nil, notFound("proposal", id)
	}
	p, err := crowd.DecodeProposal([]byte(*ptr))
	if err != nil {
		return nil, fmt.Errorf("proposal %d: %w", id, err)
	}
	return p, nil
}

// pendingProposal returns the id holding the slot, or 0 when the slot is free.
func pendingProposal(st State, campaignID uint64, kind crowd.ProposalType, idx uint32) uint64 {
	return getCount(st, pendingProposalKey(campaignID, kind, idx))
}

func setPendingProposal(st State, p *crowd.Proposal) {
	setCount(st, pendingProposalKey(p.CampaignID, p.Type, p.MilestoneIndex), p.ID)
}

// clearPendingProposal frees the slot once the proposal can no longer change anything.
func clearPendingProposal(st State, p *crowd.Proposal) {
	key := pendingProposalKey(p.CampaignID, p.Type, p.MilestoneIndex)
	if getCount(st, key) == p.ID {
		st.Delete(key)
	}
}

// indexCampaignProposal appends the id to the campaign's proposal list.
func indexCampaignProposal(st State, c *crowd.Campaign, proposalID uint64) {
	st.Set(campaignProposalKey(c.ID, c.ProposalCount), strconv.FormatUint(proposalID, 10))
	c.ProposalCount++
}

func loadCampaignProposals(st State, c *crowd.Campaign) ([]crowd.Proposal, error) {
	out := make([]crowd.Proposal, 0, c.ProposalCount)
	for i := uint64(0); i < c.ProposalCount; i++ {
		id := getCount(st, campaignProposalKey(c.ID, i))
		p, err := loadProposal(st, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func saveVoteReceipt(st State, proposalID uint64, voter sdk.Address, r *crowd.VoteReceipt) {
	st.Set(voteReceiptKey(proposalID, voter), string(crowd.EncodeVoteReceipt(r)))
}

// loadVoteReceipt returns nil when the voter has not voted on the proposal.
func loadVoteReceipt(st State, proposalID uint64, voter sdk.Address) (*crowd.VoteReceipt, error) {
	ptr := st.Get(voteReceiptKey(proposalID, voter))
	if ptr == nil {
		return nil, nil
	}
	return crowd.DecodeVoteReceipt([]byte(*ptr))
}
