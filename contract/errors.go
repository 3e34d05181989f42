package contract

import (
	"errors"
	"fmt"

	"github.com/DavideSigurta/Donatio-sub000/sdk"
)

// Error taxonomy. Entry points wrap these with context; match with errors.Is.
var (
	ErrConfiguration       = errors.New("configuration error")
	ErrSequence            = errors.New("sequence error")
	ErrAllocation          = errors.New("allocation error")
	ErrDuplicateProposal   = errors.New("duplicate proposal")
	ErrDuplicateReport     = errors.New("duplicate report")
	ErrAlreadyVoted        = errors.New("already voted")
	ErrAlreadyReleased     = errors.New("funds already released")
	ErrExpiredProposal     = errors.New("proposal expired")
	ErrNoVotingPower       = errors.New("no voting power")
	ErrInactiveCampaign    = errors.New("campaign not accepting donations")
	ErrInsufficientBalance = sdk.ErrInsufficientBalance
	ErrAuthorization       = errors.New("not authorized")
	ErrNotFound            = errors.New("not found")
	ErrProposalClosed      = errors.New("proposal closed")
	ErrVotingOpen          = errors.New("voting still open")
	ErrInvalidInput        = errors.New("invalid input")
)

// ErrGoalExceeded is an allocation failure at campaign level, so callers matching on
// ErrAllocation see it too.
var ErrGoalExceeded = fmt.Errorf("%w: goal exceeded", ErrAllocation)

// CallError tags a failure with the entry point that produced it.
type CallError struct {
	Op  string
	Err error
}

func (e *CallError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *CallError) Unwrap() error { return e.Err }

// errorKinds is checked in order; the more specific kinds come first.
var errorKinds = []struct {
	kind string
	err  error
}{
	{"goal_exceeded", ErrGoalExceeded},
	{"allocation", ErrAllocation},
	{"configuration", ErrConfiguration},
	{"sequence", ErrSequence},
	{"duplicate_proposal", ErrDuplicateProposal},
	{"duplicate_report", ErrDuplicateReport},
	{"already_voted", ErrAlreadyVoted},
	{"already_released", ErrAlreadyReleased},
	{"expired_proposal", ErrExpiredProposal},
	{"no_voting_power", ErrNoVotingPower},
	{"inactive_campaign", ErrInactiveCampaign},
	{"insufficient_balance", ErrInsufficientBalance},
	{"authorization", ErrAuthorization},
	{"not_found", ErrNotFound},
	{"proposal_closed", ErrProposalClosed},
	{"voting_open", ErrVotingOpen},
	{"invalid_input", ErrInvalidInput},
}

// ErrorKind maps an error to its short taxonomy name, "" for nil and "internal" for
// anything outside the taxonomy.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "internal"
}

// IsKind reports whether err belongs to the named kind. "allocation" also matches a
// goal overflow, mirroring errors.Is.
func IsKind(err error, kind string) bool {
	for _, k := range errorKinds {
		if k.kind == kind {
			return errors.Is(err, k.err)
		}
	}
	return false
}
