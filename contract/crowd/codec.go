package crowd

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/DavideSigurta/Donatio-sub000/sdk"
)

var errUnexpectedEOF = errors.New("unexpected EOF")

type binWriter struct {
	buf bytes.Buffer
}

func newWriter() *binWriter { return &binWriter{} }

func (w *binWriter) bytes() []byte { return w.buf.Bytes() }

func (w *binWriter) writeBool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

func (w *binWriter) writeUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *binWriter) writeInt64(v int64) {
	w.writeUint64(uint64(v))
}

func (w *binWriter) writeVarUint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.buf.Write(tmp[:n])
}

func (w *binWriter) writeAmount(v Amount) {
	w.writeInt64(int64(v))
}

func (w *binWriter) writeString(s string) {
	w.writeVarUint(uint64(len(s)))
	w.buf.WriteString(s)
}

func (w *binWriter) writeAddress(a sdk.Address) {
	w.writeString(a.String())
}

// ------------------------------------------------------------------
// Encoders
// ------------------------------------------------------------------

// EncodeCampaign serializes a campaign to a compact binary form.
func EncodeCampaign(c *Campaign) []byte {
	w := newWriter()
	w.writeUint64(c.ID)
	w.writeAddress(c.Address)
	w.writeString(c.Title)
	w.writeString(c.Description)
	w.writeString(c.Asset.String())
	w.writeAddress(c.Creator)
	w.writeAddress(c.Beneficiary)
	w.writeAmount(c.GoalAmount)
	w.writeAmount(c.RaisedAmount)
	w.writeAmount(c.RefundedAmount)
	w.writeBool(c.Active)
	w.writeBool(c.Finalized)
	w.writeBool(c.Closed)
	w.writeInt64(c.CreatedAt)
	w.writeVarUint(c.DonorsCount)
	w.writeVarUint(c.DonationCount)
	w.writeVarUint(uint64(c.MilestoneCount))
	w.writeVarUint(c.ProposalCount)
	return w.bytes()
}

// EncodeMilestone serializes one milestone; they live under their own keys so a
// donation only rewrites the milestones it touched.
func EncodeMilestone(m *Milestone) []byte {
	w := newWriter()
	w.writeVarUint(uint64(m.Index))
	w.writeString(m.Title)
	w.writeString(m.Description)
	w.writeAmount(m.TargetAmount)
	w.writeAmount(m.RaisedAmount)
	w.writeBool(m.Approved)
	w.writeBool(m.FundsReleased)
	w.writeBool(m.Rejected)
	w.writeBool(m.Refunded)
	w.writeString(m.RejectionReason)
	w.writeString(m.Report)
	w.writeAmount(m.RefundedAmount)
	w.writeInt64(m.ApprovedAt)
	w.writeInt64(m.ReleasedAt)
	return w.bytes()
}

// EncodeProposal serializes a proposal.
func EncodeProposal(p *Proposal) []byte {
	w := newWriter()
	w.writeUint64(p.ID)
	w.buf.WriteByte(byte(p.Type))
	w.writeUint64(p.CampaignID)
	w.writeVarUint(uint64(p.MilestoneIndex))
	w.writeAddress(p.Proposer)
	w.writeAmount(p.TargetAmount)
	w.writeAmount(p.ApprovalQuota)
	w.writeAmount(p.PositiveVotes)
	w.writeAmount(p.NegativeVotes)
	w.writeVarUint(p.VoterCount)
	w.writeInt64(p.StartTime)
	w.writeInt64(p.EndTime)
	w.buf.WriteByte(byte(p.Status))
	w.writeBool(p.Executed)
	w.writeInt64(p.ExecutedAt)
	return w.bytes()
}

func EncodeDonation(d *Donation) []byte {
	w := newWriter()
	w.writeString(d.ID)
	w.writeAddress(d.Donor)
	w.writeAmount(d.Amount)
	w.writeString(d.Message)
	w.writeInt64(d.Timestamp)
	return w.bytes()
}

func EncodeVoteReceipt(v *VoteReceipt) []byte {
	w := newWriter()
	w.writeBool(v.Support)
	w.writeAmount(v.Power)
	w.writeInt64(v.VotedAt)
	return w.bytes()
}

// ------------------------------------------------------------------
// Decoder helpers
// ------------------------------------------------------------------

type binReader struct {
	data []byte
	pos  int
	err  error
}

func newReader(data []byte) *binReader {
	return &binReader{data: data}
}

// the reader is sticky: after the first failure every read returns zero values
// and err keeps the first cause, so decoders check once at the end.
func (r *binReader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *binReader) readByte() byte {
	if r.err != nil {
		return 0
	}
	if r.pos >= len(r.data) {
		r.fail(errUnexpectedEOF)
		return 0
	}
	b := r.data[r.pos]
	r.pos++
	return b
}

func (r *binReader) readBool() bool {
	return r.readByte() == 1
}

func (r *binReader) readUint64() uint64 {
	if r.err != nil {
		return 0
	}
	if r.pos+8 > len(r.data) {
		r.fail(errUnexpectedEOF)
		return 0
	}
	val := binary.BigEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return val
}

func (r *binReader) readInt64() int64 {
	return int64(r.readUint64())
}

func (r *binReader) readVarUint() uint64 {
	if r.err != nil {
		return 0
	}
	val, n := binary.Uvarint(r.data[r.pos:])
	if n <= 0 {
		r.fail(errors.New("invalid varuint"))
		return 0
	}
	r.pos += n
	return val
}

func (r *binReader) readAmount() Amount {
	return Amount(r.readInt64())
}

func (r *binReader) readString() string {
	l := r.readVarUint()
	if r.err != nil {
		return ""
	}
	if uint64(len(r.data)-r.pos) < l {
		r.fail(errUnexpectedEOF)
		return ""
	}
	s := string(r.data[r.pos : r.pos+int(l)])
	r.pos += int(l)
	return s
}

func (r *binReader) readAddress() sdk.Address {
	return sdk.Address(r.readString())
}

func (r *binReader) done(what string) error {
	if r.err != nil {
		return fmt.Errorf("decode %s: %w", what, r.err)
	}
	if r.pos != len(r.data) {
		return fmt.Errorf("decode %s: %d trailing bytes", what, len(r.data)-r.pos)
	}
	return nil
}

// ------------------------------------------------------------------
// Decoders
// ------------------------------------------------------------------

func DecodeCampaign(data []byte) (*Campaign, error) {
	r := newReader(data)
	c := &Campaign{}
	c.ID = r.readUint64()
	c.Address = r.readAddress()
	c.Title = r.readString()
	c.Description = r.readString()
	c.Asset = sdk.Asset(r.readString())
	c.Creator = r.readAddress()
	c.Beneficiary = r.readAddress()
	c.GoalAmount = r.readAmount()
	c.RaisedAmount = r.readAmount()
	c.RefundedAmount = r.readAmount()
	c.Active = r.readBool()
	c.Finalized = r.readBool()
	c.Closed = r.readBool()
	c.CreatedAt = r.readInt64()
	c.DonorsCount = r.readVarUint()
	c.DonationCount = r.readVarUint()
	c.MilestoneCount = uint32(r.readVarUint())
	c.ProposalCount = r.readVarUint()
	if err := r.done("campaign"); err != nil {
		return nil, err
	}
	return c, nil
}

func DecodeMilestone(data []byte) (*Milestone, error) {
	r := newReader(data)
	m := &Milestone{}
	m.Index = uint32(r.readVarUint())
	m.Title = r.readString()
	m.Description = r.readString()
	m.TargetAmount = r.readAmount()
	m.RaisedAmount = r.readAmount()
	m.Approved = r.readBool()
	m.FundsReleased = r.readBool()
	m.Rejected = r.readBool()
	m.Refunded = r.readBool()
	m.RejectionReason = r.readString()
	m.Report = r.readString()
	m.RefundedAmount = r.readAmount()
	m.ApprovedAt = r.readInt64()
	m.ReleasedAt = r.readInt64()
	if err := r.done("milestone"); err != nil {
		return nil, err
	}
	return m, nil
}

func DecodeProposal(data []byte) (*Proposal, error) {
	r := newReader(data)
	p := &Proposal{}
	p.ID = r.readUint64()
	p.Type = ProposalType(r.readByte())
	p.CampaignID = r.readUint64()
	p.MilestoneIndex = uint32(r.readVarUint())
	p.Proposer = r.readAddress()
	p.TargetAmount = r.readAmount()
	p.ApprovalQuota = r.readAmount()
	p.PositiveVotes = r.readAmount()
	p.NegativeVotes = r.readAmount()
	p.VoterCount = r.readVarUint()
	p.StartTime = r.readInt64()
	p.EndTime = r.readInt64()
	p.Status = ProposalStatus(r.readByte())
	p.Executed = r.readBool()
	p.ExecutedAt = r.readInt64()
	if err := r.done("proposal"); err != nil {
		return nil, err
	}
	return p, nil
}

func DecodeDonation(data []byte) (*Donation, error) {
	r := newReader(data)
	d := &Donation{}
	d.ID = r.readString()
	d.Donor = r.readAddress()
	d.Amount = r.readAmount()
	d.Message = r.readString()
	d.Timestamp = r.readInt64()
	if err := r.done("donation"); err != nil {
		return nil, err
	}
	return d, nil
}

func DecodeVoteReceipt(data []byte) (*VoteReceipt, error) {
	r := newReader(data)
	v := &VoteReceipt{}
	v.Support = r.readBool()
	v.Power = r.readAmount()
	v.VotedAt = r.readInt64()
	if err := r.done("vote receipt"); err != nil {
		return nil, err
	}
	return v, nil
}
