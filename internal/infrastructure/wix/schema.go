package wix

import (
	"context"
)

// CatalogVersion is the platform-reported generation of an account's store
// catalog wire schema. V1 and V3 accounts take structurally different
// product and category payloads.
type CatalogVersion string

const (
	CatalogV1      CatalogVersion = "V1_CATALOG"
	CatalogV3      CatalogVersion = "V3_CATALOG"
	CatalogUnknown CatalogVersion = ""
)

// IsV3 reports whether the account uses the V3 catalog generation
func (v CatalogVersion) IsV3() bool {
	return v == CatalogV3
}

type catalogVersionResponse struct {
	CatalogVersion string `json:"catalogVersion"`
}

// ProbeCatalogVersion asks an account which catalog generation it runs.
// Accounts predating the version endpoint are treated as V1.
func ProbeCatalogVersion(ctx context.Context, c *Client) (CatalogVersion, error) {
	var resp catalogVersionResponse
	err := c.Get(ctx, "/stores/v1/catalog/version", &resp)
	if err != nil {
		if IsNotFound(err) {
			return CatalogV1, nil
		}
		return CatalogUnknown, err
	}

	switch resp.CatalogVersion {
	case string(CatalogV3):
		return CatalogV3, nil
	default:
		return CatalogV1, nil
	}
}
