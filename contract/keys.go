package contract

import (
	"github.com/DavideSigurta/Donatio-sub000/contract/crowd"
	"github.com/DavideSigurta/Donatio-sub000/sdk"
)

const (
	// kConfig holds engine settings changed at runtime (voting period).
	kConfig byte = 0x00
	// kCampaignMeta stores encoded Campaign records.
	kCampaignMeta byte = 0x01
	// kMilestone stores one encoded Milestone per campaign+index.
	kMilestone byte = 0x02
	// kDonation stores donation records per campaign+sequence.
	kDonation byte = 0x03
	// kDonor maps campaign+address to the donor's running total.
	kDonor byte = 0x04
	// kDonorOrder keeps first-donation order so refunds walk donors deterministically.
	kDonorOrder byte = 0x05
	// kProposalMeta contains encoded Proposal records.
	kProposalMeta byte = 0x10
	// kPendingProposal points a (campaign, type, milestone) slot at its pending proposal id.
	kPendingProposal byte = 0x11
	// kCampaignProposals lists proposal ids per campaign in creation order.
	kCampaignProposals byte = 0x12
	// kVoteReceipt stores one receipt per proposal+voter.
	kVoteReceipt byte = 0x20
)

// packU64LEInline sprinkles a uint64 into dst in little-endian order so our keys stay compact.
func packU64LEInline(x uint64, dst []byte) {
	dst[0] = byte(x)
	dst[1] = byte(x >> 8)
	dst[2] = byte(x >> 16)
	dst[3] = byte(x >> 24)
	dst[4] = byte(x >> 32)
	dst[5] = byte(x >> 40)
	dst[6] = byte(x >> 48)
	dst[7] = byte(x >> 56)
}

// packU32LEInline mirrors the 64-bit helper for milestone indexes.
func packU32LEInline(x uint32, dst []byte) {
	dst[0] = byte(x)
	dst[1] = byte(x >> 8)
	dst[2] = byte(x >> 16)
	dst[3] = byte(x >> 24)
}

// packU64LE appends the encoded number to dst and returns the new slice.
func packU64LE(x uint64, dst []byte) []byte {
	return append(dst,
		byte(x),
		byte(x>>8),
		byte(x>>16),
		byte(x>>24),
		byte(x>>32),
		byte(x>>40),
		byte(x>>48),
		byte(x>>56),
	)
}

func configKey(name string) string {
	return string(append([]byte{kConfig}, name...))
}

func campaignKey(id uint64) string {
	var buf [9]byte
	buf[0] = kCampaignMeta
	packU64LEInline(id, buf[1:])
	return string(buf[:])
}

// milestoneKey keeps all milestones of a campaign contiguous, ordered by index.
func milestoneKey(campaignID uint64, idx uint32) string {
	var buf [13]byte
	buf[0] = kMilestone
	packU64LEInline(campaignID, buf[1:])
	packU32LEInline(idx, buf[9:])
	return string(buf[:])
}

func donationKey(campaignID uint64, seq uint64) string {
	var buf [17]byte
	buf[0] = kDonation
	packU64LEInline(campaignID, buf[1:])
	packU64LEInline(seq, buf[9:])
	return string(buf[:])
}

// donorKey mixes campaign id plus address bytes to avoid nested maps in host storage.
func donorKey(campaignID uint64, addr sdk.Address) string {
	addrStr := addr.String()
	buf := make([]byte, 0, 1+8+len(addrStr))
	buf = append(buf, kDonor)
	buf = packU64LE(campaignID, buf)
	buf = append(buf, addrStr...)
	return string(buf)
}

func donorOrderKey(campaignID uint64, seq uint64) string {
	var buf [17]byte
	buf[0] = kDonorOrder
	packU64LEInline(campaignID, buf[1:])
	packU64LEInline(seq, buf[9:])
	return string(buf[:])
}

func proposalKey(id uint64) string {
	var buf [9]byte
	buf[0] = kProposalMeta
	packU64LEInline(id, buf[1:])
	return string(buf[:])
}

// pendingProposalKey ignores the milestone index for campaign proposals so there is a
// single slot per campaign.
func pendingProposalKey(campaignID uint64, kind crowd.ProposalType, idx uint32) string {
	if kind == crowd.ProposalCampaign {
		idx = 0
	}
	var buf [14]byte
	buf[0] = kPendingProposal
	packU64LEInline(campaignID, buf[1:])
	buf[9] = byte(kind)
	packU32LEInline(idx, buf[10:])
	return string(buf[:])
}

func campaignProposalKey(campaignID uint64, seq uint64) string {
	var buf [17]byte
	buf[0] = kCampaignProposals
	packU64LEInline(campaignID, buf[1:])
	packU64LEInline(seq, buf[9:])
	return string(buf[:])
}

// voteReceiptKey encodes proposal id plus voter address under 0x20.
func voteReceiptKey(proposalID uint64, voter sdk.Address) string {
	addrStr := voter.String()
	buf := make([]byte, 0, 1+8+len(addrStr))
	buf = append(buf, kVoteReceipt)
	buf = packU64LE(proposalID, buf)
	buf = append(buf, addrStr...)
	return string(buf)
}
