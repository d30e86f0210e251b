package wix

import (
	"context"
)

// NamedEntity is the minimal shape shared by brands, ribbons and info
// sections: an ID and a display name. The resolver only needs these two
// fields to match by name and auto-create missing entries.
type NamedEntity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RefsAPI wraps the small lookup entities referenced from products: brands,
// ribbons and info sections.
type RefsAPI struct {
	client *Client
}

// NewRefsAPI creates the reference entity endpoint wrapper
func NewRefsAPI(c *Client) *RefsAPI {
	return &RefsAPI{client: c}
}

type brandListResponse struct {
	Brands []NamedEntity `json:"brands"`
}

// ListBrands fetches all brands on the account
func (a *RefsAPI) ListBrands(ctx context.Context) ([]NamedEntity, error) {
	var resp brandListResponse
	body := map[string]any{"query": map[string]any{}}
	if err := a.client.Post(ctx, "/stores/v3/brands/query", body, &resp); err != nil {
		return nil, err
	}
	return resp.Brands, nil
}

// CreateBrand creates a brand and returns its ID
func (a *RefsAPI) CreateBrand(ctx context.Context, name string) (string, error) {
	var resp struct {
		Brand NamedEntity `json:"brand"`
	}
	body := map[string]any{"brand": map[string]any{"name": name}}
	if err := a.client.Post(ctx, "/stores/v3/brands", body, &resp); err != nil {
		return "", err
	}
	return resp.Brand.ID, nil
}

type ribbonListResponse struct {
	Ribbons []NamedEntity `json:"ribbons"`
}

// ListRibbons fetches all ribbons on the account
func (a *RefsAPI) ListRibbons(ctx context.Context) ([]NamedEntity, error) {
	var resp ribbonListResponse
	body := map[string]any{"query": map[string]any{}}
	if err := a.client.Post(ctx, "/stores/v3/ribbons/query", body, &resp); err != nil {
		return nil, err
	}
	return resp.Ribbons, nil
}

// CreateRibbon creates a ribbon and returns its ID
func (a *RefsAPI) CreateRibbon(ctx context.Context, name string) (string, error) {
	var resp struct {
		Ribbon NamedEntity `json:"ribbon"`
	}
	body := map[string]any{"ribbon": map[string]any{"name": name}}
	if err := a.client.Post(ctx, "/stores/v3/ribbons", body, &resp); err != nil {
		return "", err
	}
	return resp.Ribbon.ID, nil
}

type infoSectionListResponse struct {
	InfoSections []NamedEntity `json:"infoSections"`
}

// ListInfoSections fetches all product info sections on the account
func (a *RefsAPI) ListInfoSections(ctx context.Context) ([]NamedEntity, error) {
	var resp infoSectionListResponse
	body := map[string]any{"query": map[string]any{}}
	if err := a.client.Post(ctx, "/stores/v3/info-sections/query", body, &resp); err != nil {
		return nil, err
	}
	return resp.InfoSections, nil
}
