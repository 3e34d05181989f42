package crowd

import (
	"strconv"

	"github.com/CosmWasm/tinyjson/jwriter"
)

// CampaignView is the read model returned by campaign queries. Amounts are rendered as
// fixed three-decimal strings so clients never see raw scaled integers.
type CampaignView struct {
	Campaign   Campaign
	Milestones []Milestone
}

// MarshalTinyJSON writes the view into a tinyjson writer.
func (v CampaignView) MarshalTinyJSON(w *jwriter.Writer) {
	c := v.Campaign
	w.RawString(`{"id":`)
	w.Uint64(c.ID)
	w.RawString(`,"address":`)
	w.String(c.Address.String())
	w.RawString(`,"title":`)
	w.String(c.Title)
	w.RawString(`,"description":`)
	w.String(c.Description)
	w.RawString(`,"asset":`)
	w.String(c.Asset.String())
	w.RawString(`,"creator":`)
	w.String(c.Creator.String())
	w.RawString(`,"beneficiary":`)
	w.String(c.Beneficiary.String())
	w.RawString(`,"goal":`)
	w.String(c.GoalAmount.String())
	w.RawString(`,"raised":`)
	w.String(c.RaisedAmount.String())
	w.RawString(`,"refunded":`)
	w.String(c.RefundedAmount.String())
	w.RawString(`,"active":`)
	w.Bool(c.Active)
	w.RawString(`,"finalized":`)
	w.Bool(c.Finalized)
	w.RawString(`,"closed":`)
	w.Bool(c.Closed)
	w.RawString(`,"created_at":`)
	w.Int64(c.CreatedAt)
	w.RawString(`,"donors":`)
	w.Uint64(c.DonorsCount)
	w.RawString(`,"donations":`)
	w.Uint64(c.DonationCount)
	w.RawString(`,"milestones":[`)
	for i := range v.Milestones {
		if i > 0 {
			w.RawByte(',')
		}
		MilestoneView(v.Milestones[i]).MarshalTinyJSON(w)
	}
	w.RawString(`]}`)
}

// MarshalJSON implements json.Marshaler on top of the tinyjson writer.
func (v CampaignView) MarshalJSON() ([]byte, error) {
	w := jwriter.Writer{}
	v.MarshalTinyJSON(&w)
	return w.BuildBytes()
}

// MilestoneView renders one milestone including its derived phase.
type MilestoneView Milestone

func (v MilestoneView) MarshalTinyJSON(w *jwriter.Writer) {
	m := Milestone(v)
	w.RawString(`{"index":`)
	w.Uint32(m.Index)
	w.RawString(`,"title":`)
	w.String(m.Title)
	w.RawString(`,"description":`)
	w.String(m.Description)
	w.RawString(`,"target":`)
	w.String(m.TargetAmount.String())
	w.RawString(`,"raised":`)
	w.String(m.RaisedAmount.String())
	w.RawString(`,"phase":`)
	w.String(m.Phase().String())
	w.RawString(`,"approved":`)
	w.Bool(m.Approved)
	w.RawString(`,"released":`)
	w.Bool(m.FundsReleased)
	w.RawString(`,"rejected":`)
	w.Bool(m.Rejected)
	w.RawString(`,"refunded":`)
	w.Bool(m.Refunded)
	if m.RejectionReason != "" {
		w.RawString(`,"rejection_reason":`)
		w.String(m.RejectionReason)
	}
	if m.Report != "" {
		w.RawString(`,"report":`)
		w.String(m.Report)
	}
	if m.Refunded {
		w.RawString(`,"refunded_amount":`)
		w.String(m.RefundedAmount.String())
	}
	w.RawByte('}')
}

func (v MilestoneView) MarshalJSON() ([]byte, error) {
	w := jwriter.Writer{}
	v.MarshalTinyJSON(&w)
	return w.BuildBytes()
}

// ProposalView renders a proposal with its folded state label.
type ProposalView Proposal

func (v ProposalView) MarshalTinyJSON(w *jwriter.Writer) {
	p := Proposal(v)
	w.RawString(`{"id":`)
	w.Uint64(p.ID)
	w.RawString(`,"type":`)
	w.String(p.Type.String())
	w.RawString(`,"campaign":`)
	w.Uint64(p.CampaignID)
	if p.Type == ProposalMilestone {
		w.RawString(`,"milestone":`)
		w.Uint32(p.MilestoneIndex)
	}
	w.RawString(`,"proposer":`)
	w.String(p.Proposer.String())
	w.RawString(`,"target":`)
	w.String(p.TargetAmount.String())
	w.RawString(`,"quota":`)
	w.String(p.ApprovalQuota.String())
	w.RawString(`,"yes":`)
	w.String(p.PositiveVotes.String())
	w.RawString(`,"no":`)
	w.String(p.NegativeVotes.String())
	w.RawString(`,"voters":`)
	w.Uint64(p.VoterCount)
	w.RawString(`,"start":`)
	w.Int64(p.StartTime)
	w.RawString(`,"end":`)
	w.Int64(p.EndTime)
	w.RawString(`,"status":`)
	w.String(p.State())
	w.RawString(`,"executed":`)
	w.Bool(p.Executed)
	w.RawByte('}')
}

func (v ProposalView) MarshalJSON() ([]byte, error) {
	w := jwriter.Writer{}
	v.MarshalTinyJSON(&w)
	return w.BuildBytes()
}

// MarshalProposals renders a list without going through reflection.
func MarshalProposals(ps []Proposal) ([]byte, error) {
	w := jwriter.Writer{}
	w.RawByte('[')
	for i := range ps {
		if i > 0 {
			w.RawByte(',')
		}
		ProposalView(ps[i]).MarshalTinyJSON(&w)
	}
	w.RawByte(']')
	return w.BuildBytes()
}

// DonationReceiptJSON renders the donate result, including allocation split.
func DonationReceiptJSON(r DonationReceipt) ([]byte, error) {
	w := jwriter.Writer{}
	w.RawString(`{"donation":`)
	w.String(r.DonationID)
	w.RawString(`,"campaign":`)
	w.Uint64(r.CampaignID)
	w.RawString(`,"amount":`)
	w.String(r.Amount.String())
	w.RawString(`,"allocations":{`)
	for i, a := range r.Allocations {
		if i > 0 {
			w.RawByte(',')
		}
		w.String(strconv.FormatUint(uint64(a.MilestoneIndex), 10))
		w.RawByte(':')
		w.String(a.Amount.String())
	}
	w.RawString(`},"newly_eligible":[`)
	for i, idx := range r.NewlyEligible {
		if i > 0 {
			w.RawByte(',')
		}
		w.Uint32(idx)
	}
	w.RawString(`]}`)
	return w.BuildBytes()
}
