package contract

import (
	"strconv"

	"github.com/DavideSigurta/Donatio-sub000/contract/crowd"
)

// Index key prefixes for counting entities.
const (
	// CampaignsCount holds an integer counter for campaigns (used for generating IDs).
	CampaignsCount = "count:camp"
	// ProposalsCount holds an integer counter for proposals (used for generating IDs).
	ProposalsCount = "count:props"
)

// getCount reads the string counter under the key and defaults to zero, nothing magical here.
func getCount(st State, key string) uint64 {
	ptr := st.Get(key)
	if ptr == nil || *ptr == "" {
		return 0
	}
	n, _ := strconv.ParseUint(*ptr, 10, 64)
	return n
}

// setCount stores uint64 counters back as decimal strings for the host kv.
func setCount(st State, key string, n uint64) {
	st.Set(key, strconv.FormatUint(n, 10))
}

// nextID bumps the counter and returns the fresh id; ids start at 1 so zero never
// points at a real record.
func nextID(st State, key string) uint64 {
	n := getCount(st, key) + 1
	setCount(st, key, n)
	return n
}

// getAmount reads a decimal raw amount, zero when missing.
func getAmount(st State, key string) crowd.Amount {
	ptr := st.Get(key)
	if ptr == nil || *ptr == "" {
		return 0
	}
	n, _ := strconv.ParseInt(*ptr, 10, 64)
	return crowd.Amount(n)
}

func setAmount(st State, key string, a crowd.Amount) {
	st.Set(key, strconv.FormatInt(int64(a), 10))
}
