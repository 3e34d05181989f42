package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/CosmWasm/tinyjson/jwriter"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/DavideSigurta/Donatio-sub000/contract/crowd"
	"github.com/DavideSigurta/Donatio-sub000/scenario"
)

// Color styles for table format
var (
	okStyle       = color.New(color.FgGreen)
	expectedStyle = color.New(color.FgYellow)
	failStyle     = color.New(color.FgRed, color.Bold)
	headerStyle   = color.New(color.Bold, color.FgHiWhite)
	faintStyle    = color.New(color.Faint)
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	return t
}

// ------------------------------------------------------------------
// Steps
// ------------------------------------------------------------------

func stepOutcome(r scenario.Result) string {
	switch {
	case !r.OK() && r.Err == nil:
		return failStyle.Sprintf("succeeded, wanted %s", r.Expected)
	case !r.OK():
		return failStyle.Sprint(r.Err.Error())
	case r.Err != nil:
		return expectedStyle.Sprint(r.Kind)
	default:
		return okStyle.Sprint("ok")
	}
}

func renderSteps(out io.Writer, results []scenario.Result) {
	t := newTable(out)
	t.AppendHeader(table.Row{"#", "action", "as", "result", "detail"})
	for _, r := range results {
		t.AppendRow(table.Row{r.Step, r.Action, faintStyle.Sprint(r.As.String()), stepOutcome(r), r.Detail})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, Align: text.AlignRight}})
	t.Render()
}

// stepsJSON renders step results, embedding donation receipts.
func stepsJSON(results []scenario.Result) ([]byte, error) {
	w := jwriter.Writer{}
	w.RawByte('[')
	for i, r := range results {
		if i > 0 {
			w.RawByte(',')
		}
		w.RawString(`{"step":`)
		w.Int(r.Step)
		w.RawString(`,"action":`)
		w.String(r.Action)
		w.RawString(`,"as":`)
		w.String(r.As.String())
		w.RawString(`,"ok":`)
		w.Bool(r.OK())
		if r.Detail != "" {
			w.RawString(`,"detail":`)
			w.String(r.Detail)
		}
		if r.Err != nil {
			w.RawString(`,"error":`)
			w.String(r.Err.Error())
			w.RawString(`,"kind":`)
			w.String(r.Kind)
		}
		if r.Receipt != nil {
			w.RawString(`,"receipt":`)
			w.Raw(crowd.DonationReceiptJSON(*r.Receipt))
		}
		w.RawByte('}')
	}
	w.RawByte(']')
	return w.BuildBytes()
}

// ------------------------------------------------------------------
// Snapshot
// ------------------------------------------------------------------

// snapshot is the state after a replay, gathered through the engine queries.
type snapshot struct {
	campaigns []crowd.CampaignView
	proposals []crowd.Proposal
}

func takeSnapshot(ctx context.Context, r *scenario.Runner) (*snapshot, error) {
	s := &snapshot{}
	n := r.Engine.CampaignCount(ctx)
	for id := uint64(1); id <= n; id++ {
		v, err := r.Engine.GetCampaign(ctx, id)
		if err != nil {
			return nil, err
		}
		s.campaigns = append(s.campaigns, *v)
		ps, err := r.Engine.ListCampaignProposals(ctx, id)
		if err != nil {
			return nil, err
		}
		s.proposals = append(s.proposals, ps...)
	}
	return s, nil
}

func (s *snapshot) JSON() ([]byte, error) {
	w := jwriter.Writer{}
	w.RawString(`{"campaigns":[`)
	for i := range s.campaigns {
		if i > 0 {
			w.RawByte(',')
		}
		s.campaigns[i].MarshalTinyJSON(&w)
	}
	w.RawString(`],"proposals":`)
	w.Raw(crowd.MarshalProposals(s.proposals))
	w.RawByte('}')
	return w.BuildBytes()
}

func (s *snapshot) Render(out io.Writer) {
	if len(s.campaigns) == 0 {
		fmt.Fprintln(out, "No campaigns found")
		return
	}
	for _, v := range s.campaigns {
		c := v.Campaign
		state := "draft"
		switch {
		case c.Closed:
			state = "closed"
		case c.Active:
			state = "active"
		case c.Finalized:
			state = "awaiting vote"
		}
		fmt.Fprintf(out, "%s %s\n", headerStyle.Sprintf("#%d %s", c.ID, c.Title), faintStyle.Sprintf("(%s)", state))
		fmt.Fprintf(out, "  raised %s / %s %s, refunded %s, %d donors, beneficiary %s\n",
			c.RaisedAmount, c.GoalAmount, c.Asset, c.RefundedAmount, c.DonorsCount, c.Beneficiary)

		t := newTable(out)
		t.AppendHeader(table.Row{"#", "milestone", "target", "raised", "phase", "note"})
		for _, m := range v.Milestones {
			note := m.RejectionReason
			if note == "" {
				note = m.Report
			}
			t.AppendRow(table.Row{m.Index, m.Title, m.TargetAmount.String(), m.RaisedAmount.String(), phaseStyle(m.Phase()), note})
		}
		t.Render()
	}

	if len(s.proposals) == 0 {
		return
	}
	fmt.Fprintln(out, headerStyle.Sprint("Proposals"))
	t := newTable(out)
	t.AppendHeader(table.Row{"id", "type", "campaign", "milestone", "yes", "no", "quota", "voters", "status"})
	for _, p := range s.proposals {
		ms := "-"
		if p.Type == crowd.ProposalMilestone {
			ms = fmt.Sprint(p.MilestoneIndex)
		}
		t.AppendRow(table.Row{p.ID, p.Type.String(), p.CampaignID, ms,
			p.PositiveVotes.String(), p.NegativeVotes.String(), p.ApprovalQuota.String(), p.VoterCount, p.State()})
	}
	t.Render()
}

func phaseStyle(p crowd.MilestonePhase) string {
	switch p {
	case crowd.PhaseReleased, crowd.PhaseReported:
		return okStyle.Sprint(p.String())
	case crowd.PhaseRejected, crowd.PhaseRefunded:
		return failStyle.Sprint(p.String())
	default:
		return p.String()
	}
}
