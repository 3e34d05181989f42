package contract

import (
	"fmt"

	"github.com/DavideSigurta/Donatio-sub000/contract/crowd"
	"github.com/DavideSigurta/Donatio-sub000/sdk"
)

func saveCampaign(st State, c *crowd.Campaign) {
	st.Set(campaignKey(c.ID), string(crowd.EncodeCampaign(c)))
}

// loadCampaign returns ErrNotFound for unknown ids and a plain error for corrupt blobs.
func loadCampaign(st State, id uint64) (*crowd.Campaign, error) {
	ptr := st.Get(campaignKey(id))
	if ptr == nil || *ptr == "" {
		return nil, notFound("campaign", id)
	}
	c, err := crowd.DecodeCampaign([]byte(*ptr))
	if err != nil {
		return nil, fmt.Errorf("campaign %d: %w", id, err)
	}
	return c, nil
}

// saveMilestone stores each milestone separately so a donation only rewrites what it touched.
func saveMilestone(st State, campaignID uint64, m *crowd.Milestone) {
	st.Set(milestoneKey(campaignID, m.Index), string(crowd.EncodeMilestone(m)))
}

func loadMilestone(st State, c *crowd.Campaign, idx uint32) (*crowd.Milestone, error) {
	if idx >= c.MilestoneCount {
		return nil, notFound(fmt.Sprintf("campaign %d milestone", c.ID), idx)
	}
	ptr := st.Get(milestoneKey(c.ID, idx))
	if ptr == nil || *ptr == "" {
		return nil, fmt.Errorf("campaign %d: milestone %d missing from state", c.ID, idx)
	}
	m, err := crowd.DecodeMilestone([]byte(*ptr))
	if err != nil {
		return nil, fmt.Errorf("campaign %d milestone %d: %w", c.ID, idx, err)
	}
	return m, nil
}

// loadMilestones iterates indexes and returns them in order.
func loadMilestones(st State, c *crowd.Campaign) ([]crowd.Milestone, error) {
	out := make([]crowd.Milestone, 0, c.MilestoneCount)
	for i := uint32(0); i < c.MilestoneCount; i++ {
		m, err := loadMilestone(st, c, i)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, nil
}

// appendDonation writes the record under the campaign's next donation sequence.
func appendDonation(st State, c *crowd.Campaign, d *crowd.Donation) {
	st.Set(donationKey(c.ID, c.DonationCount), string(crowd.EncodeDonation(d)))
	c.DonationCount++
}

func loadDonations(st State, c *crowd.Campaign) ([]crowd.Donation, error) {
	out := make([]crowd.Donation, 0, c.DonationCount)
	for i := uint64(0); i < c.DonationCount; i++ {
		ptr := st.Get(donationKey(c.ID, i))
		if ptr == nil {
			return nil, fmt.Errorf("campaign %d: donation %d missing from state", c.ID, i)
		}
		d, err := crowd.DecodeDonation([]byte(*ptr))
		if err != nil {
			return nil, fmt.Errorf("campaign %d donation %d: %w", c.ID, i, err)
		}
		out = append(out, *d)
	}
	return out, nil
}

// donorTotal is the aggregated amount addr gave to the campaign; zero means not a donor.
func donorTotal(st State, campaignID uint64, addr sdk.Address) crowd.Amount {
	return getAmount(st, donorKey(campaignID, addr))
}

// addDonorTotal bumps the running total and registers first-time donors in order.
func addDonorTotal(st State, c *crowd.Campaign, addr sdk.Address, amount crowd.Amount) {
	prev := donorTotal(st, c.ID, addr)
	if prev == 0 {
		st.Set(donorOrderKey(c.ID, c.DonorsCount), addr.String())
		c.DonorsCount++
	}
	setAmount(st, donorKey(c.ID, addr), prev+amount)
}

// loadDonors returns donors in first-donation order with their totals.
func loadDonors(st State, c *crowd.Campaign) ([]DonorShare, error) {
	out := make([]DonorShare, 0, c.DonorsCount)
	for i := uint64(0); i < c.DonorsCount; i++ {
		ptr := st.Get(donorOrderKey(c.ID, i))
		if ptr == nil {
			return nil, fmt.Errorf("campaign %d: donor %d missing from state", c.ID, i)
		}
		addr := sdk.Address(*ptr)
		out = append(out, DonorShare{Address: addr, Donated: donorTotal(st, c.ID, addr)})
	}
	return out, nil
}
