package contract

import (
	"context"
	"fmt"
	"strings"

	"github.com/DavideSigurta/Donatio-sub000/contract/crowd"
	"github.com/DavideSigurta/Donatio-sub000/sdk"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxReportLength      = 4000
	MaxMilestones        = 64
)

// CreateCampaign registers a draft campaign. It takes no donations until its milestones
// are finalized and it is activated.
// Example payload: CreateCampaign(ctx, "hive:creator", crowd.CampaignArgs{Title: "well", GoalAmount: crowd.MustAmount("100"), Beneficiary: "hive:village"})
func (e *Engine) CreateCampaign(ctx context.Context, caller sdk.Address, args crowd.CampaignArgs) (uint64, error) {
	var id uint64
	err := e.exec(ctx, OpCreateCampaign, caller, func(tx *txn) error {
		c, err := e.createCampaign(tx, args)
		if err != nil {
			return err
		}
		id = c.ID
		return nil
	})
	return id, err
}

// CreateCampaignWithMilestones creates, fills and finalizes a campaign in one call.
// The three slices are parallel; differing lengths are a configuration error.
func (e *Engine) CreateCampaignWithMilestones(ctx context.Context, caller sdk.Address, args crowd.CampaignArgs, titles, descriptions []string, targets []crowd.Amount) (uint64, error) {
	var id uint64
	err := e.exec(ctx, OpCreateCampaign, caller, func(tx *txn) error {
		if len(titles) != len(descriptions) || len(titles) != len(targets) {
			return fmt.Errorf("%w: %d titles, %d descriptions, %d targets", ErrConfiguration, len(titles), len(descriptions), len(targets))
		}
		c, err := e.createCampaign(tx, args)
		if err != nil {
			return err
		}
		for i := range titles {
			if _, err := e.addMilestone(tx, c, crowd.MilestoneArgs{Title: titles[i], Description: descriptions[i], TargetAmount: targets[i]}); err != nil {
				return err
			}
		}
		if err := e.finalizeMilestones(tx, c); err != nil {
			return err
		}
		id = c.ID
		return nil
	})
	return id, err
}

func (e *Engine) createCampaign(tx *txn, args crowd.CampaignArgs) (*crowd.Campaign, error) {
	if err := e.authorize(OpCreateCampaign, tx.caller, nil); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(args.Title)
	if title == "" || len(title) > MaxTitleLength {
		return nil, fmt.Errorf("%w: title must be 1-%d characters", ErrInvalidInput, MaxTitleLength)
	}
	if len(args.Description) > MaxDescriptionLength {
		return nil, fmt.Errorf("%w: description longer than %d", ErrInvalidInput, MaxDescriptionLength)
	}
	if args.GoalAmount <= 0 {
		return nil, fmt.Errorf("%w: goal must be positive", ErrConfiguration)
	}
	// a goal below 10 raw units would give a zero approval quota
	if args.GoalAmount/10 == 0 {
		return nil, fmt.Errorf("%w: goal %s too small for an approval quota", ErrConfiguration, args.GoalAmount)
	}
	beneficiary := args.Beneficiary.Normalize()
	if beneficiary == "" {
		beneficiary = tx.caller
	}
	if !beneficiary.IsValid() {
		return nil, fmt.Errorf("%w: beneficiary %q", ErrInvalidInput, args.Beneficiary)
	}
	asset := args.Asset
	if asset == "" {
		asset = e.opts.Asset
	}

	st := tx.state()
	id := nextID(st, CampaignsCount)
	c := &crowd.Campaign{
		ID:          id,
		Address:     sdk.ContractAddress(fmt.Sprintf("campaign-%d", id)),
		Title:       title,
		Description: args.Description,
		Asset:       asset,
		Creator:     tx.caller,
		Beneficiary: beneficiary,
		GoalAmount:  args.GoalAmount,
		CreatedAt:   tx.now,
	}
	saveCampaign(st, c)
	emitCampaignCreated(tx, c)
	return c, nil
}

// activateCampaign flips the campaign live; via says who did it (governance, config).
func activateCampaign(tx *txn, c *crowd.Campaign, via string) {
	c.Active = true
	saveCampaign(tx.state(), c)
	emitCampaignActivated(tx, c.ID, via)
}
