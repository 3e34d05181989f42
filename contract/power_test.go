package contract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DavideSigurta/Donatio-sub000/contract"
	"github.com/DavideSigurta/Donatio-sub000/contract/crowd"
)

func TestVotingPower(t *testing.T) {
	tests := []struct {
		name    string
		kind    crowd.ProposalType
		balance string
		donor   bool
		quota   string
		want    string
	}{
		{"campaign capped", crowd.ProposalCampaign, "1000", false, "10", "2"},
		{"campaign below cap", crowd.ProposalCampaign, "1", false, "10", "1"},
		{"campaign ignores donor flag", crowd.ProposalCampaign, "1", true, "10", "1"},
		{"milestone donor", crowd.ProposalMilestone, "10", true, "100", "2"},
		{"milestone non-donor", crowd.ProposalMilestone, "10", false, "100", "1.5"},
		{"milestone capped", crowd.ProposalMilestone, "1000", true, "7", "1.4"},
		{"empty wallet", crowd.ProposalMilestone, "0", true, "7", "0"},
		{"zero quota", crowd.ProposalCampaign, "10", false, "0", "0"},
		{"dust floors to zero", crowd.ProposalMilestone, "0.006", false, "100", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := contract.VotingPower(tt.kind, amt(tt.balance), tt.donor, amt(tt.quota))
			assert.Equal(t, amt(tt.want), got)
		})
	}
}

// TestPreviewMatchesCastPower checks the preview query agrees with what Vote records.
func TestPreviewMatchesCastPower(t *testing.T) {
	f := newFixture(t)
	id := f.createDefaultCampaign("100", "30", "70")
	pid, err := f.eng.CreateCampaignProposal(f.ctx, admin, id)
	assert.NoError(t, err)

	f.setBalance("hive:small", "0.5")
	preview, err := f.eng.PreviewVotingPower(f.ctx, pid, "hive:small")
	assert.NoError(t, err)
	assert.Equal(t, amt("0.5"), preview)

	cast, err := f.eng.Vote(f.ctx, "hive:small", pid, false)
	assert.NoError(t, err)
	assert.Equal(t, preview, cast)

	r, err := f.eng.VoteReceipt(f.ctx, pid, "hive:small")
	assert.NoError(t, err)
	if assert.NotNil(t, r) {
		assert.False(t, r.Support)
		assert.Equal(t, cast, r.Power)
	}
}
