package wix

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collection is a V1 catalog product collection (category)
type Collection struct {
	ID          string        `json:"id,omitempty"`
	Name        string        `json:"name"`
	Slug        string        `json:"slug,omitempty"`
	Description string        `json:"description,omitempty"`
	Visible     bool          `json:"visible"`
	Media       *ProductMedia `json:"media,omitempty"`
	NumericID   string        `json:"numericId,omitempty"`
}

// CategoryV3 is the V3 catalog category shape
type CategoryV3 struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	Visible     bool   `json:"visible"`
	ParentID    string `json:"parentCategoryId,omitempty"`
	TreeRef     string `json:"treeReference,omitempty"`
}

// CollectionsAPI wraps collection and category endpoints for one account
type CollectionsAPI struct {
	client *Client
}

// NewCollectionsAPI creates the collections endpoint wrapper
func NewCollectionsAPI(c *Client) *CollectionsAPI {
	return &CollectionsAPI{client: c}
}

type collectionQueryResponse struct {
	Collections  []json.RawMessage `json:"collections"`
	TotalResults int               `json:"totalResults"`
}

// ListPage fetches one offset page of V1 collections
func (a *CollectionsAPI) ListPage(ctx context.Context, req PageRequest) (Page, error) {
	var body productQueryRequest
	body.Query.Paging.Limit = req.Limit
	body.Query.Paging.Offset = req.Offset

	var resp collectionQueryResponse
	if err := a.client.Post(ctx, "/stores/v1/collections/query", body, &resp); err != nil {
		return Page{}, err
	}
	total := resp.TotalResults
	return Page{Items: resp.Collections, Total: &total}, nil
}

type categoryV3QueryResponse struct {
	Categories []json.RawMessage `json:"categories"`
	PagingMetadata struct {
		Cursors struct {
			Next string `json:"next"`
		} `json:"cursors"`
	} `json:"pagingMetadata"`
}

// ListPageV3 fetches one cursor page of V3 categories
func (a *CollectionsAPI) ListPageV3(ctx context.Context, req PageRequest) (Page, error) {
	var body productV3QueryRequest
	body.Query.CursorPaging.Limit = req.Limit
	body.Query.CursorPaging.Cursor = req.Cursor

	var resp categoryV3QueryResponse
	if err := a.client.Post(ctx, "/categories/v3/categories/query", body, &resp); err != nil {
		return Page{}, err
	}
	return Page{Items: resp.Categories, NextCursor: resp.PagingMetadata.Cursors.Next}, nil
}

// Create creates a V1 collection and returns its ID
func (a *CollectionsAPI) Create(ctx context.Context, col *Collection) (string, error) {
	var resp struct {
		Collection struct {
			ID string `json:"id"`
		} `json:"collection"`
	}
	if err := a.client.Post(ctx, "/stores/v1/collections", map[string]any{"collection": col}, &resp); err != nil {
		return "", err
	}
	return resp.Collection.ID, nil
}

// CreateV3 creates a V3 category and returns its ID
func (a *CollectionsAPI) CreateV3(ctx context.Context, cat *CategoryV3) (string, error) {
	var resp struct {
		Category struct {
			ID string `json:"id"`
		} `json:"category"`
	}
	if err := a.client.Post(ctx, "/categories/v3/categories", map[string]any{"category": cat}, &resp); err != nil {
		return "", err
	}
	return resp.Category.ID, nil
}

// AddProducts assigns products to a V1 collection
func (a *CollectionsAPI) AddProducts(ctx context.Context, collectionID string, productIDs []string) error {
	path := fmt.Sprintf("/stores/v1/collections/%s/productIds", collectionID)
	return a.client.Post(ctx, path, map[string]any{"productIds": productIDs}, nil)
}

// DecodeCollection parses one raw list item into a V1 collection
func DecodeCollection(raw json.RawMessage) (*Collection, error) {
	var c Collection
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("wix: failed to decode collection: %w", err)
	}
	return &c, nil
}
