package contract

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/DavideSigurta/Donatio-sub000/contract/crowd"
	"github.com/DavideSigurta/Donatio-sub000/sdk"
)

// DonorShare is one donor's aggregated contribution to a campaign.
type DonorShare struct {
	Address sdk.Address
	Donated crowd.Amount
}

// RefundPlan describes the money to hand back after a rejection.
type RefundPlan struct {
	CampaignID uint64
	Escrow     sdk.Address
	Asset      sdk.Asset
	Amount     crowd.Amount
	// Donors in first-donation order.
	Donors []DonorShare
}

// RefundTransfer is one payout from the escrow.
type RefundTransfer struct {
	To     sdk.Address
	Amount crowd.Amount
}

// RefundPolicy decides who gets the refunded amount. The transfers must add up to
// plan.Amount exactly.
type RefundPolicy interface {
	Refund(plan RefundPlan) ([]RefundTransfer, error)
}

// ProRataRefunds splits the amount by each donor's share of all donations. Shares are
// floored; the rounding remainder goes to the last donor in order.
type ProRataRefunds struct{}

func (ProRataRefunds) Refund(plan RefundPlan) ([]RefundTransfer, error) {
	total := lo.SumBy(plan.Donors, func(d DonorShare) crowd.Amount { return d.Donated })
	if total <= 0 {
		return nil, fmt.Errorf("%w: nothing donated to campaign %d", ErrAllocation, plan.CampaignID)
	}
	out := make([]RefundTransfer, 0, len(plan.Donors))
	var paid crowd.Amount
	for i, d := range plan.Donors {
		share := crowd.MulDiv(plan.Amount, d.Donated, total)
		if i == len(plan.Donors)-1 {
			share = plan.Amount - paid
		}
		paid += share
		if share > 0 {
			out = append(out, RefundTransfer{To: d.Address, Amount: share})
		}
	}
	return out, nil
}

// PooledRefunds sends everything to one pool account which settles with donors off-core.
type PooledRefunds struct {
	Pool sdk.Address
}

func (p PooledRefunds) Refund(plan RefundPlan) ([]RefundTransfer, error) {
	if !p.Pool.IsValid() {
		return nil, fmt.Errorf("%w: refund pool address %q", ErrConfiguration, p.Pool)
	}
	return []RefundTransfer{{To: p.Pool, Amount: plan.Amount}}, nil
}

// refund asks the policy for a split and pays it out of the campaign escrow.
func (e *Engine) refund(tx *txn, c *crowd.Campaign, amount crowd.Amount) error {
	donors, err := loadDonors(tx.state(), c)
	if err != nil {
		return err
	}
	plan := RefundPlan{CampaignID: c.ID, Escrow: c.Address, Asset: c.Asset, Amount: amount, Donors: donors}
	transfers, err := e.opts.Refunds.Refund(plan)
	if err != nil {
		return err
	}
	sum := lo.SumBy(transfers, func(t RefundTransfer) crowd.Amount { return t.Amount })
	if sum != amount {
		return fmt.Errorf("%w: refund policy paid %s of %s", ErrAllocation, sum, amount)
	}
	for _, t := range transfers {
		if t.Amount <= 0 {
			continue
		}
		if err := tx.transfer(c.Address, t.To, crowd.AmountToInt64(t.Amount), c.Asset); err != nil {
			return fmt.Errorf("refund %s to %s: %w", t.Amount, t.To, err)
		}
	}
	return nil
}
