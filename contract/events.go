package contract

import (
	"strconv"
	"time"

	"github.com/DavideSigurta/Donatio-sub000/contract/crowd"
	"github.com/DavideSigurta/Donatio-sub000/sdk"
)

// Event names emitted by the engine.
const (
	EventCampaignCreated       = "CampaignCreated"
	EventMilestoneAdded        = "MilestoneAdded"
	EventMilestonesFinalized   = "MilestonesFinalized"
	EventCampaignActivated     = "CampaignActivated"
	EventDonationReceived      = "DonationReceived"
	EventMilestoneFunded       = "MilestoneFunded"
	EventMilestoneApproved     = "MilestoneApproved"
	EventMilestoneRejected     = "MilestoneRejected"
	EventMilestoneRefunded     = "MilestoneRefunded"
	EventFundsReleased         = "FundsReleased"
	EventReportSubmitted       = "ReportSubmitted"
	EventProposalCreated       = "ProposalCreated"
	EventVoteCast              = "VoteCast"
	EventProposalStatusChanged = "ProposalStatusChanged"
	EventProposalExecuted      = "ProposalExecuted"
	EventVotingPeriodChanged   = "VotingPeriodChanged"
)

func attr(k, v string) sdk.Attr { return sdk.Attr{Key: k, Value: v} }

func idAttr(k string, id uint64) sdk.Attr { return attr(k, strconv.FormatUint(id, 10)) }

func idxAttr(idx uint32) sdk.Attr { return attr("m", strconv.FormatUint(uint64(idx), 10)) }

// emitCampaignCreated gives explorers a neat ping without scanning full storage diffs.
func emitCampaignCreated(tx *txn, c *crowd.Campaign) {
	tx.emit(EventCampaignCreated,
		idAttr("c", c.ID),
		attr("by", c.Creator.String()),
		attr("to", c.Beneficiary.String()),
		attr("goal", c.GoalAmount.String()),
		attr("as", c.Asset.String()),
	)
}

func emitMilestoneAdded(tx *txn, campaignID uint64, m *crowd.Milestone) {
	tx.emit(EventMilestoneAdded, idAttr("c", campaignID), idxAttr(m.Index), attr("am", m.TargetAmount.String()))
}

func emitMilestonesFinalized(tx *txn, c *crowd.Campaign) {
	tx.emit(EventMilestonesFinalized, idAttr("c", c.ID), attr("n", strconv.FormatUint(uint64(c.MilestoneCount), 10)))
}

func emitCampaignActivated(tx *txn, campaignID uint64, via string) {
	tx.emit(EventCampaignActivated, idAttr("c", campaignID), attr("via", via))
}

// emitDonationReceived carries the full split so funding can be replayed from logs only.
func emitDonationReceived(tx *txn, campaignID uint64, d *crowd.Donation) {
	tx.emit(EventDonationReceived,
		idAttr("c", campaignID),
		attr("id", d.ID),
		attr("by", d.Donor.String()),
		attr("am", d.Amount.String()),
	)
}

// emitMilestoneFunded fires once, when a milestone reaches its target.
func emitMilestoneFunded(tx *txn, campaignID uint64, idx uint32) {
	tx.emit(EventMilestoneFunded, idAttr("c", campaignID), idxAttr(idx))
}

func emitMilestoneApproved(tx *txn, campaignID uint64, idx uint32, via string) {
	tx.emit(EventMilestoneApproved, idAttr("c", campaignID), idxAttr(idx), attr("via", via))
}

func emitMilestoneRejected(tx *txn, campaignID uint64, idx uint32, reason string) {
	tx.emit(EventMilestoneRejected, idAttr("c", campaignID), idxAttr(idx), attr("r", reason))
}

// emitMilestoneRefunded marks each milestone whose funds went back, cascade or not.
func emitMilestoneRefunded(tx *txn, campaignID uint64, idx uint32, amount crowd.Amount, cascade bool) {
	tx.emit(EventMilestoneRefunded,
		idAttr("c", campaignID),
		idxAttr(idx),
		attr("am", amount.String()),
		attr("cascade", strconv.FormatBool(cascade)),
	)
}

func emitFundsReleased(tx *txn, campaignID uint64, idx uint32, to sdk.Address, amount crowd.Amount) {
	tx.emit(EventFundsReleased, idAttr("c", campaignID), idxAttr(idx), attr("to", to.String()), attr("am", amount.String()))
}

func emitReportSubmitted(tx *txn, campaignID uint64, idx uint32) {
	tx.emit(EventReportSubmitted, idAttr("c", campaignID), idxAttr(idx))
}

func emitProposalCreated(tx *txn, p *crowd.Proposal) {
	attrs := []sdk.Attr{
		idAttr("id", p.ID),
		attr("t", p.Type.String()),
		idAttr("c", p.CampaignID),
	}
	if p.Type == crowd.ProposalMilestone {
		attrs = append(attrs, idxAttr(p.MilestoneIndex))
	}
	attrs = append(attrs,
		attr("by", p.Proposer.String()),
		attr("q", p.ApprovalQuota.String()),
		attr("end", strconv.FormatInt(p.EndTime, 10)),
	)
	tx.emit(EventProposalCreated, attrs...)
}

// emitVoteCast includes the weight so quorum math can be replayed from logs only.
func emitVoteCast(tx *txn, proposalID uint64, voter sdk.Address, support bool, power crowd.Amount) {
	tx.emit(EventVoteCast,
		idAttr("id", proposalID),
		attr("by", voter.String()),
		attr("s", strconv.FormatBool(support)),
		attr("w", power.String()),
	)
}

// emitProposalStatusChanged is the swiss army knife log entry for any state flip.
func emitProposalStatusChanged(tx *txn, p *crowd.Proposal) {
	tx.emit(EventProposalStatusChanged, idAttr("id", p.ID), attr("s", p.State()))
}

func emitProposalExecuted(tx *txn, p *crowd.Proposal, by sdk.Address) {
	tx.emit(EventProposalExecuted, idAttr("id", p.ID), attr("t", p.Type.String()), attr("by", by.String()))
}

func emitVotingPeriodChanged(tx *txn, old, updated time.Duration) {
	tx.emit(EventVotingPeriodChanged, attr("old", old.String()), attr("new", updated.String()))
}
