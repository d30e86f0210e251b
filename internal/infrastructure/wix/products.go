package wix

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Product wire types
// ---------------------------------------------------------------------------

// PriceData holds a product or variant price
type PriceData struct {
	Currency string          `json:"currency,omitempty"`
	Price    decimal.Decimal `json:"price"`
}

// ProductOptionChoice is one selectable value of a product option
type ProductOptionChoice struct {
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	InStock     bool   `json:"inStock,omitempty"`
}

// ProductOption is a customer-facing product axis such as Color or Size
type ProductOption struct {
	Name    string                `json:"name"`
	Choices []ProductOptionChoice `json:"choices,omitempty"`
}

// ProductVariant is one concrete option combination
type ProductVariant struct {
	ID       string            `json:"id,omitempty"`
	SKU      string            `json:"sku,omitempty"`
	Choices  map[string]string `json:"choices,omitempty"`
	Price    *PriceData        `json:"priceData,omitempty"`
	Visible  bool              `json:"visible,omitempty"`
	InStock  bool              `json:"inStock,omitempty"`
	Quantity int               `json:"quantity,omitempty"`
}

// StockInfo carries product-level inventory data
type StockInfo struct {
	TrackInventory bool `json:"trackInventory,omitempty"`
	Quantity       int  `json:"quantity,omitempty"`
	InStock        bool `json:"inStock,omitempty"`
}

// MediaItem is one product image or video reference
type MediaItem struct {
	ID    string `json:"id,omitempty"`
	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`
}

// ProductMedia groups a product's media items
type ProductMedia struct {
	MainMedia *MediaItem  `json:"mainMedia,omitempty"`
	Items     []MediaItem `json:"items,omitempty"`
}

// Product is the V1 catalog product shape, also used as the normalized
// internal representation fetched from the source account.
type Product struct {
	ID             string           `json:"id,omitempty"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug,omitempty"`
	Description    string           `json:"description,omitempty"`
	SKU            string           `json:"sku,omitempty"`
	Ribbon         string           `json:"ribbon,omitempty"`
	Brand          string           `json:"brand,omitempty"`
	ProductType    string           `json:"productType,omitempty"`
	Visible        bool             `json:"visible"`
	PriceData      *PriceData       `json:"priceData,omitempty"`
	Stock          *StockInfo       `json:"stock,omitempty"`
	Media          *ProductMedia    `json:"media,omitempty"`
	ProductOptions []ProductOption  `json:"productOptions,omitempty"`
	Variants       []ProductVariant `json:"variants,omitempty"`
	CollectionIDs  []string         `json:"collectionIds,omitempty"`
	CreatedDate    string           `json:"createdDate,omitempty"`
	LastUpdated    string           `json:"lastUpdated,omitempty"`
	NumericID      string           `json:"numericId,omitempty"`
}

// ProductV3 is the V3 catalog product creation payload. The V3 generation
// restructures options, variant pricing and references; it is not a sibling
// of the V1 shape.
type ProductV3 struct {
	ID               string            `json:"id,omitempty"`
	Name             string            `json:"name"`
	Slug             string            `json:"slug,omitempty"`
	PlainDescription string            `json:"plainDescription,omitempty"`
	ProductType      string            `json:"productType,omitempty"`
	Visible          bool              `json:"visible"`
	BrandID          string            `json:"brandId,omitempty"`
	RibbonID         string            `json:"ribbonId,omitempty"`
	CategoryIDs      []string          `json:"categoryIds,omitempty"`
	Options          []ProductOptionV3 `json:"options,omitempty"`
	VariantsInfo     *VariantsInfoV3   `json:"variantsInfo,omitempty"`
	CreatedDate      string            `json:"createdDate,omitempty"`
}

// ProductOptionV3 is the V3 option shape with keyed choices
type ProductOptionV3 struct {
	Name            string            `json:"name"`
	ChoicesSettings ChoicesSettingsV3 `json:"choicesSettings"`
}

// ChoicesSettingsV3 wraps V3 option choices
type ChoicesSettingsV3 struct {
	Choices []ProductOptionChoiceV3 `json:"choices"`
}

// ProductOptionChoiceV3 is one V3 option choice
type ProductOptionChoiceV3 struct {
	Name string `json:"name"`
}

// VariantsInfoV3 wraps V3 variants
type VariantsInfoV3 struct {
	Variants []ProductVariantV3 `json:"variants"`
}

// ProductVariantV3 is the V3 variant shape with explicit price object
type ProductVariantV3 struct {
	SKU          string            `json:"sku,omitempty"`
	ChoicesNames map[string]string `json:"choices,omitempty"`
	Price        *PriceV3          `json:"price,omitempty"`
	Visible      bool              `json:"visible,omitempty"`
}

// PriceV3 is the V3 money shape
type PriceV3 struct {
	ActualPrice MoneyV3 `json:"actualPrice"`
}

// MoneyV3 is an amount with currency
type MoneyV3 struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency,omitempty"`
}

// ---------------------------------------------------------------------------
// Products endpoints
// ---------------------------------------------------------------------------

// ProductsAPI wraps the platform's product endpoints for one account
type ProductsAPI struct {
	client *Client
}

// NewProductsAPI creates the products endpoint wrapper
func NewProductsAPI(c *Client) *ProductsAPI {
	return &ProductsAPI{client: c}
}

type productQueryRequest struct {
	Query struct {
		Paging struct {
			Limit  int `json:"limit"`
			Offset int `json:"offset"`
		} `json:"paging"`
	} `json:"query"`
}

type productQueryResponse struct {
	Products     []json.RawMessage `json:"products"`
	TotalResults int               `json:"totalResults"`
}

// ListPage fetches one offset page of V1 products
func (a *ProductsAPI) ListPage(ctx context.Context, req PageRequest) (Page, error) {
	var body productQueryRequest
	body.Query.Paging.Limit = req.Limit
	body.Query.Paging.Offset = req.Offset

	var resp productQueryResponse
	if err := a.client.Post(ctx, "/stores/v1/products/query", body, &resp); err != nil {
		return Page{}, err
	}
	total := resp.TotalResults
	return Page{Items: resp.Products, Total: &total}, nil
}

type productV3QueryRequest struct {
	Query struct {
		CursorPaging struct {
			Limit  int    `json:"limit"`
			Cursor string `json:"cursor,omitempty"`
		} `json:"cursorPaging"`
	} `json:"query"`
}

type productV3QueryResponse struct {
	Products []json.RawMessage `json:"products"`
	PagingMetadata struct {
		Cursors struct {
			Next string `json:"next"`
		} `json:"cursors"`
	} `json:"pagingMetadata"`
}

// ListPageV3 fetches one cursor page of V3 products
func (a *ProductsAPI) ListPageV3(ctx context.Context, req PageRequest) (Page, error) {
	var body productV3QueryRequest
	body.Query.CursorPaging.Limit = req.Limit
	body.Query.CursorPaging.Cursor = req.Cursor

	var resp productV3QueryResponse
	if err := a.client.Post(ctx, "/stores/v3/products/query", body, &resp); err != nil {
		return Page{}, err
	}
	return Page{Items: resp.Products, NextCursor: resp.PagingMetadata.Cursors.Next}, nil
}

// GetVariants fetches the variant sub-resource used to enrich a V1 product
func (a *ProductsAPI) GetVariants(ctx context.Context, productID string) ([]ProductVariant, error) {
	var resp struct {
		Variants []ProductVariant `json:"variants"`
	}
	path := fmt.Sprintf("/stores/v1/products/%s/variants/query", productID)
	if err := a.client.Post(ctx, path, map[string]any{}, &resp); err != nil {
		return nil, err
	}
	return resp.Variants, nil
}

// Create creates a V1 catalog product and returns its ID
func (a *ProductsAPI) Create(ctx context.Context, product *Product) (string, error) {
	var resp struct {
		Product struct {
			ID string `json:"id"`
		} `json:"product"`
	}
	if err := a.client.Post(ctx, "/stores/v1/products", map[string]any{"product": product}, &resp); err != nil {
		return "", err
	}
	return resp.Product.ID, nil
}

// CreateV3 creates a V3 catalog product and returns its ID
func (a *ProductsAPI) CreateV3(ctx context.Context, product *ProductV3) (string, error) {
	var resp struct {
		Product struct {
			ID string `json:"id"`
		} `json:"product"`
	}
	if err := a.client.Post(ctx, "/stores/v3/products", map[string]any{"product": product}, &resp); err != nil {
		return "", err
	}
	return resp.Product.ID, nil
}

// DecodeProduct parses one raw list item into a V1 product
func DecodeProduct(raw json.RawMessage) (*Product, error) {
	var p Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("wix: failed to decode product: %w", err)
	}
	return &p, nil
}
