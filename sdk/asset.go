package sdk

type Asset string

const (
	// AssetDonatio is the platform token campaigns are denominated in by default.
	AssetDonatio Asset = "dnt"
	AssetHive    Asset = "hive"
	AssetHbd     Asset = "hbd"
)

// String returns the raw ticker string for logging or ledger calls.
// Example payload: sdk.AssetDonatio.String()
func (a Asset) String() string {
	return string(a)
}
