package sdk

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

type AddressDomain string

const (
	AddressDomainUser     AddressDomain = "user"
	AddressDomainContract AddressDomain = "contract"
	AddressDomainSystem   AddressDomain = "system"
)

type AddressType string

const (
	AddressTypeEVM      AddressType = "evm"
	AddressTypeHive     AddressType = "hive"
	AddressTypeContract AddressType = "contract"
	AddressTypeSystem   AddressType = "system"
	AddressTypeUnknown  AddressType = "unknown"
)

// Address identifies an account on the ledger: a wallet (0x... or hive:name),
// a campaign escrow (contract:...) or a system account.
type Address string

// String returns the literal representation (like 0xAbC... or hive:alice) of the address.
func (a Address) String() string {
	return string(a)
}

// Domain quickly checks the prefix to guess if we deal with user/contract/system domain.
// Example payload: sdk.Address("contract:campaign-1").Domain()
func (a Address) Domain() AddressDomain {
	if strings.HasPrefix(a.String(), "system:") {
		return AddressDomainSystem
	}
	if strings.HasPrefix(a.String(), "contract:") {
		return AddressDomainContract
	}
	return AddressDomainUser
}

// Type inspects the prefix to categorize the address.
func (a Address) Type() AddressType {
	s := a.String()
	switch {
	case common.IsHexAddress(s) && strings.HasPrefix(strings.ToLower(s), "0x"):
		return AddressTypeEVM
	case strings.HasPrefix(s, "hive:") && len(s) > len("hive:"):
		return AddressTypeHive
	case strings.HasPrefix(s, "contract:") && len(s) > len("contract:"):
		return AddressTypeContract
	case strings.HasPrefix(s, "system:") && len(s) > len("system:"):
		return AddressTypeSystem
	default:
		return AddressTypeUnknown
	}
}

// IsValid returns false if the address type detection failed, used as a light sanity check.
func (a Address) IsValid() bool {
	return a.Type() != AddressTypeUnknown
}

// Normalize trims the input and rewrites EVM addresses into their EIP-55 checksum form,
// so "0xabc..." and "0xABC..." resolve to the same ledger account.
// Example payload: sdk.Address(" 0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed ").Normalize()
func (a Address) Normalize() Address {
	s := strings.TrimSpace(a.String())
	if common.IsHexAddress(s) && strings.HasPrefix(strings.ToLower(s), "0x") {
		return Address(common.HexToAddress(s).Hex())
	}
	return Address(s)
}

// ContractAddress builds the escrow address for a named on-ledger account.
// Example payload: sdk.ContractAddress("campaign-7")
func ContractAddress(name string) Address {
	return Address("contract:" + name)
}
