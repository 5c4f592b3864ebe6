package domain

import derrors "heirloom/pkg/domain-errors"

// AssetType is the settlement asset a plan is funded in. USDC is the only
// supported asset; the allowlist exists so adding assets later is a data
// change, not a signature change.
type AssetType string

const AssetUSDC AssetType = "USDC"

var validAssetTypes = map[AssetType]bool{
	AssetUSDC: true,
}

// ParseAssetType constructs an AssetType from external input.
func ParseAssetType(s string) (AssetType, error) {
	if s == "" {
		return "", derrors.New(derrors.CodeInvalidInput, "asset type cannot be empty")
	}
	a := AssetType(s)
	if !validAssetTypes[a] {
		return "", derrors.Newf(derrors.CodeInvalidInput, "unsupported asset type %q", s)
	}
	return a, nil
}

func (a AssetType) String() string { return string(a) }
