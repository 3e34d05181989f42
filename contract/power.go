package contract

import (
	"github.com/DavideSigurta/Donatio-sub000/contract/crowd"
	"github.com/DavideSigurta/Donatio-sub000/sdk"
)

// Voting weights in percent.
const (
	PowerCapPercent       = 20 // of the approval quota, for every voter
	DonorWeightPercent    = 20 // of balance, milestone votes by donors of the campaign
	NonDonorWeightPercent = 15 // of balance, milestone votes by everyone else
	ApprovalQuotaDivisor  = 10 // quota = target / 10
)

// VotingPower is the capped weight a voter brings to a proposal. It depends only on
// its inputs:
//
//	campaign:  min(balance, quota*20%)
//	milestone: min(balance*w, quota*20%), w = 20% for donors, 15% otherwise
func VotingPower(kind crowd.ProposalType, balance crowd.Amount, donor bool, quota crowd.Amount) crowd.Amount {
	if balance <= 0 || quota <= 0 {
		return 0
	}
	limit := crowd.MulDiv(quota, PowerCapPercent, 100)
	switch kind {
	case crowd.ProposalCampaign:
		return crowd.MinAmount(balance, limit)
	case crowd.ProposalMilestone:
		weight := crowd.Amount(NonDonorWeightPercent)
		if donor {
			weight = DonorWeightPercent
		}
		return crowd.MinAmount(crowd.MulDiv(balance, weight, 100), limit)
	default:
		return 0
	}
}

// approvalQuota is the fixed 10% rule.
func approvalQuota(target crowd.Amount) crowd.Amount {
	return target / ApprovalQuotaDivisor
}

// Thresholds are floored in raw units. Approval needs half the quota, rejection only
// 30% of it; the asymmetry is intended.
func approvalThreshold(quota crowd.Amount) crowd.Amount {
	return quota / 2
}

func rejectionThreshold(quota crowd.Amount) crowd.Amount {
	return crowd.MulDiv(quota, 3, 10)
}

// voterPower resolves balance and donor status for a live proposal.
func (e *Engine) voterPower(st State, c *crowd.Campaign, p *crowd.Proposal, voter sdk.Address) crowd.Amount {
	balance := crowd.Amount(e.host.Ledger.BalanceOf(voter, c.Asset))
	donor := donorTotal(st, c.ID, voter) > 0
	return VotingPower(p.Type, balance, donor, p.ApprovalQuota)
}
