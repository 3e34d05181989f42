package crowd

import "github.com/DavideSigurta/Donatio-sub000/sdk"

// ProposalType tells whether a vote is about a whole campaign or one milestone.
type ProposalType uint8

const (
	ProposalCampaign  ProposalType = 0
	ProposalMilestone ProposalType = 1
)

// String prints the proposal type as lower-case text for events and logs.
func (pt ProposalType) String() string {
	switch pt {
	case ProposalCampaign:
		return "campaign"
	case ProposalMilestone:
		return "milestone"
	default:
		return "unknown"
	}
}

// ProposalStatus captures a proposal's lifecycle. The numeric values are part of the
// stored encoding and match the reference contract.
type ProposalStatus uint8

const (
	StatusActive            ProposalStatus = 0
	StatusApproved          ProposalStatus = 1 // reserved, never assigned
	StatusRejected          ProposalStatus = 2
	StatusExpired           ProposalStatus = 3
	StatusReadyForExecution ProposalStatus = 4
)

// String prints the proposal status as lower-case text for events and logs.
// Example payload: crowd.StatusReadyForExecution.String()
func (ps ProposalStatus) String() string {
	switch ps {
	case StatusActive:
		return "active"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	case StatusExpired:
		return "expired"
	case StatusReadyForExecution:
		return "ready_for_execution"
	default:
		return "unspecified"
	}
}

// MilestonePhase is the derived lifecycle position of a milestone.
type MilestonePhase uint8

const (
	PhaseUnfunded MilestonePhase = iota
	PhasePartiallyFunded
	PhaseFullyFunded
	PhaseApproved
	PhaseReleased
	PhaseReported
	PhaseRejected
	PhaseRefunded
)

func (p MilestonePhase) String() string {
	switch p {
	case PhaseUnfunded:
		return "unfunded"
	case PhasePartiallyFunded:
		return "partially_funded"
	case PhaseFullyFunded:
		return "fully_funded"
	case PhaseApproved:
		return "approved"
	case PhaseReleased:
		return "released"
	case PhaseReported:
		return "reported"
	case PhaseRejected:
		return "rejected"
	case PhaseRefunded:
		return "refunded"
	default:
		return "unknown"
	}
}

type Campaign struct {
	ID             uint64
	Address        sdk.Address // escrow account holding donated funds
	Title          string
	Description    string
	Asset          sdk.Asset
	Creator        sdk.Address
	Beneficiary    sdk.Address
	GoalAmount     Amount
	RaisedAmount   Amount
	RefundedAmount Amount
	Active         bool
	Finalized      bool
	Closed         bool
	CreatedAt      int64
	DonorsCount    uint64
	DonationCount  uint64
	MilestoneCount uint32
	ProposalCount  uint64
}

// AcceptsDonations is true once the campaign is live and nothing was rejected yet.
func (c *Campaign) AcceptsDonations() bool {
	return c.Active && !c.Closed
}

type Milestone struct {
	Index           uint32
	Title           string
	Description     string
	TargetAmount    Amount
	RaisedAmount    Amount
	Approved        bool
	FundsReleased   bool
	Rejected        bool
	Refunded        bool
	RejectionReason string
	Report          string
	RefundedAmount  Amount
	ApprovedAt      int64
	ReleasedAt      int64
}

// Remaining is the capacity left before the milestone hits its target.
func (m *Milestone) Remaining() Amount {
	if m.RaisedAmount >= m.TargetAmount {
		return 0
	}
	return m.TargetAmount - m.RaisedAmount
}

// FullyFunded reports raised >= target.
func (m *Milestone) FullyFunded() bool {
	return m.RaisedAmount >= m.TargetAmount
}

// Resolved means nothing can happen to the milestone's approval anymore:
// approved and paid out, rejected, or refunded because an earlier one was rejected.
func (m *Milestone) Resolved() bool {
	return (m.Approved && m.FundsReleased) || m.Rejected || m.Refunded
}

// Phase derives the lifecycle position from the stored flags.
func (m *Milestone) Phase() MilestonePhase {
	switch {
	case m.Rejected:
		return PhaseRejected
	case m.Refunded:
		return PhaseRefunded
	case m.Report != "":
		return PhaseReported
	case m.FundsReleased:
		return PhaseReleased
	case m.Approved && m.FullyFunded():
		return PhaseApproved
	case m.FullyFunded():
		return PhaseFullyFunded
	case m.RaisedAmount > 0:
		return PhasePartiallyFunded
	default:
		return PhaseUnfunded
	}
}

type Proposal struct {
	ID             uint64
	Type           ProposalType
	CampaignID     uint64
	MilestoneIndex uint32
	Proposer       sdk.Address
	TargetAmount   Amount
	ApprovalQuota  Amount
	PositiveVotes  Amount
	NegativeVotes  Amount
	VoterCount     uint64
	StartTime      int64
	EndTime        int64
	Status         ProposalStatus
	Executed       bool
	ExecutedAt     int64
}

// Pending is true while the proposal can still change the campaign.
func (p *Proposal) Pending() bool {
	return !p.Executed && (p.Status == StatusActive || p.Status == StatusReadyForExecution)
}

// State folds status and the executed flag into the single label used by views.
func (p *Proposal) State() string {
	if p.Executed && p.Status == StatusReadyForExecution {
		return "executed"
	}
	return p.Status.String()
}

type Donation struct {
	ID        string
	Donor     sdk.Address
	Amount    Amount
	Message   string
	Timestamp int64
}

// VoteReceipt is what we keep per (proposal, voter).
type VoteReceipt struct {
	Support bool
	Power   Amount
	VotedAt int64
}

// Allocation is the share of one donation that landed in one milestone.
type Allocation struct {
	MilestoneIndex uint32
	Amount         Amount
}

// DonationReceipt is returned by a successful donation. NewlyEligible lists milestones
// that just became fully funded and can now be put to a milestone vote.
type DonationReceipt struct {
	DonationID    string
	CampaignID    uint64
	Amount        Amount
	Allocations   []Allocation
	NewlyEligible []uint32
}

type CampaignArgs struct {
	Title       string
	Description string
	GoalAmount  Amount
	Beneficiary sdk.Address
	Asset       sdk.Asset
}

type MilestoneArgs struct {
	Title        string
	Description  string
	TargetAmount Amount
}
