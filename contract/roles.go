package contract

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/DavideSigurta/Donatio-sub000/contract/crowd"
	"github.com/DavideSigurta/Donatio-sub000/sdk"
)

// Role is a capability a caller can hold for one call.
type Role uint8

const (
	RoleAdmin Role = iota + 1
	RoleBeneficiary
	RoleCreator
	RoleFactory
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleBeneficiary:
		return "beneficiary"
	case RoleCreator:
		return "creator"
	case RoleFactory:
		return "factory"
	default:
		return "none"
	}
}

// Operation names, also used as span names and in CallError.Op.
const (
	OpCreateCampaign          = "campaign_create"
	OpAddMilestone            = "milestone_add"
	OpFinalizeMilestones      = "milestones_finalize"
	OpDonate                  = "campaign_donate"
	OpApproveMilestone        = "milestone_approve"
	OpRejectMilestone         = "milestone_reject"
	OpReleaseFunds            = "milestone_release"
	OpSubmitReport            = "milestone_report"
	OpCreateCampaignProposal  = "proposal_create_campaign"
	OpCreateMilestoneProposal = "proposal_create_milestone"
	OpVote                    = "proposals_vote"
	OpFinalizeExpired         = "proposal_finalize_expired"
	OpExecuteProposal         = "proposal_execute"
	OpSetVotingPeriod         = "config_voting_period"
)

// Capabilities maps an operation to the roles allowed to run it. Operations missing
// from the table are open to any caller (donate, vote).
type Capabilities map[string][]Role

// DefaultCapabilities is the permission table the engine uses unless configured otherwise.
func DefaultCapabilities() Capabilities {
	return Capabilities{
		OpCreateCampaign:          {RoleCreator, RoleAdmin},
		OpAddMilestone:            {RoleCreator, RoleAdmin},
		OpFinalizeMilestones:      {RoleCreator, RoleAdmin},
		OpCreateCampaignProposal:  {RoleAdmin, RoleFactory},
		OpCreateMilestoneProposal: {RoleBeneficiary},
		OpExecuteProposal:         {RoleBeneficiary, RoleCreator, RoleAdmin},
		OpFinalizeExpired:         {RoleAdmin},
		OpApproveMilestone:        {RoleAdmin},
		OpRejectMilestone:         {RoleAdmin},
		OpSetVotingPeriod:         {RoleAdmin},
		OpReleaseFunds:            {RoleBeneficiary, RoleAdmin},
		OpSubmitReport:            {RoleBeneficiary},
	}
}

// rolesOf collects every role the caller holds. With no campaign in scope the creator
// role comes from the authorization oracle, otherwise it means "created this campaign".
func (e *Engine) rolesOf(caller sdk.Address, c *crowd.Campaign) []Role {
	var roles []Role
	if e.host.Auth != nil && e.host.Auth.IsAdmin(caller) {
		roles = append(roles, RoleAdmin)
	}
	if e.opts.Factory != "" && caller == e.opts.Factory {
		roles = append(roles, RoleFactory)
	}
	if c == nil {
		if e.host.Auth != nil && e.host.Auth.IsAuthorizedCreator(caller) {
			roles = append(roles, RoleCreator)
		}
		return roles
	}
	if caller == c.Creator {
		roles = append(roles, RoleCreator)
	}
	if caller == c.Beneficiary {
		roles = append(roles, RoleBeneficiary)
	}
	return roles
}

// authorize checks the caller against the capability table for op.
func (e *Engine) authorize(op string, caller sdk.Address, c *crowd.Campaign) error {
	allowed, ok := e.opts.Capabilities[op]
	if !ok {
		return nil
	}
	held := e.rolesOf(caller, c)
	if len(lo.Intersect(allowed, held)) > 0 {
		return nil
	}
	names := lo.Map(allowed, func(r Role, _ int) string { return r.String() })
	return fmt.Errorf("%w: %s needs %s", ErrAuthorization, caller, strings.Join(names, "|"))
}
