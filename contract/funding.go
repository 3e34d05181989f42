package contract

import (
	"context"
	"fmt"

	"github.com/DavideSigurta/Donatio-sub000/contract/crowd"
	"github.com/DavideSigurta/Donatio-sub000/sdk"
)

const MaxDonationMessageLength = 500

// Donate moves amount from the donor into the campaign escrow and routes it over the
// milestones. An allowance the donor granted the escrow is drawn first when it covers
// the amount. The receipt lists the split and the milestones that just became
// eligible for a milestone vote; opening that vote is left to the beneficiary.
// Example payload: Donate(ctx, "hive:alice", 1, crowd.MustAmount("30"), "good luck")
func (e *Engine) Donate(ctx context.Context, donor sdk.Address, campaignID uint64, amount crowd.Amount, message string) (*crowd.DonationReceipt, error) {
	var receipt *crowd.DonationReceipt
	err := e.exec(ctx, OpDonate, donor, func(tx *txn) error {
		st := tx.state()
		c, err := loadCampaign(st, campaignID)
		if err != nil {
			return err
		}
		if !c.AcceptsDonations() {
			return fmt.Errorf("%w: campaign %d", ErrInactiveCampaign, c.ID)
		}
		if amount <= 0 {
			return fmt.Errorf("%w: donation must be positive", ErrInvalidInput)
		}
		if len(message) > MaxDonationMessageLength {
			return fmt.Errorf("%w: message longer than %d", ErrInvalidInput, MaxDonationMessageLength)
		}
		if c.RaisedAmount+amount > c.GoalAmount {
			return fmt.Errorf("%w: campaign %d has %s of %s, cannot take %s", ErrGoalExceeded, c.ID, c.RaisedAmount, c.GoalAmount, amount)
		}

		dist, err := distributeFunds(st, c, amount)
		if err != nil {
			return err
		}
		if err := tx.pull(donor, c.Address, crowd.AmountToInt64(amount), c.Asset); err != nil {
			return err
		}

		d := &crowd.Donation{
			ID:        e.opts.NewID(),
			Donor:     donor,
			Amount:    amount,
			Message:   message,
			Timestamp: tx.now,
		}
		appendDonation(st, c, d)
		addDonorTotal(st, c, donor, amount)
		c.RaisedAmount += amount
		saveCampaign(st, c)

		emitDonationReceived(tx, c.ID, d)
		receipt = &crowd.DonationReceipt{
			DonationID:  d.ID,
			CampaignID:  c.ID,
			Amount:      amount,
			Allocations: dist.allocations,
		}
		for _, idx := range dist.filled {
			emitMilestoneFunded(tx, c.ID, idx)
			m, err := loadMilestone(st, c, idx)
			if err != nil {
				return err
			}
			if eligibleForVote(st, c, m) {
				receipt.NewlyEligible = append(receipt.NewlyEligible, idx)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}
