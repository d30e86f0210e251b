package wix

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// CouponScopeGroup narrows a coupon scope to one entity within a namespace
type CouponScopeGroup struct {
	Name     string `json:"name"`
	EntityID string `json:"entityId,omitempty"`
}

// CouponScope restricts which items a coupon applies to
type CouponScope struct {
	Namespace string            `json:"namespace"`
	Group     *CouponScopeGroup `json:"group,omitempty"`
}

// CouponSpecification is the coupon's behavior definition
type CouponSpecification struct {
	Name             string           `json:"name"`
	Code             string           `json:"code"`
	StartTime        string           `json:"startTime,omitempty"`
	ExpirationTime   string           `json:"expirationTime,omitempty"`
	UsageLimit       int              `json:"usageLimit,omitempty"`
	LimitPerCustomer int              `json:"limitPerCustomer,omitempty"`
	LimitedToOneItem bool             `json:"limitedToOneItem,omitempty"`
	Active           bool             `json:"active"`
	Scope            *CouponScope     `json:"scope,omitempty"`
	MinimumSubtotal  *decimal.Decimal `json:"minimumSubtotal,omitempty"`
	MoneyOffAmount   *decimal.Decimal `json:"moneyOffAmount,omitempty"`
	PercentOffRate   *decimal.Decimal `json:"percentOffRate,omitempty"`
	FreeShipping     *bool            `json:"freeShipping,omitempty"`
	FixedPriceAmount *decimal.Decimal `json:"fixedPriceAmount,omitempty"`
	BuyXGetY         *BuyXGetY        `json:"buyXGetY,omitempty"`
}

// BuyXGetY is the buy-x-get-y coupon variant
type BuyXGetY struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Coupon is the full coupon record as returned by the platform
type Coupon struct {
	ID             string               `json:"id,omitempty"`
	Specification  *CouponSpecification `json:"specification"`
	DateCreated    string               `json:"dateCreated,omitempty"`
	NumberOfUsages int                  `json:"numberOfUsages,omitempty"`
}

// CouponsAPI wraps coupon endpoints for one account
type CouponsAPI struct {
	client *Client
}

// NewCouponsAPI creates the coupons endpoint wrapper
func NewCouponsAPI(c *Client) *CouponsAPI {
	return &CouponsAPI{client: c}
}

type couponQueryResponse struct {
	Coupons      []json.RawMessage `json:"coupons"`
	TotalResults int               `json:"totalResults"`
}

// ListPage fetches one offset page of coupons
func (a *CouponsAPI) ListPage(ctx context.Context, req PageRequest) (Page, error) {
	body := map[string]any{
		"query": map[string]any{
			"paging": map[string]any{
				"limit":  req.Limit,
				"offset": req.Offset,
			},
		},
	}
	var resp couponQueryResponse
	if err := a.client.Post(ctx, "/stores/v2/coupons/query", body, &resp); err != nil {
		return Page{}, err
	}
	total := resp.TotalResults
	return Page{Items: resp.Coupons, Total: &total}, nil
}

// Create creates a coupon from its specification and returns the new ID
func (a *CouponsAPI) Create(ctx context.Context, spec *CouponSpecification) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := a.client.Post(ctx, "/stores/v2/coupons", map[string]any{"specification": spec}, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// DecodeCoupon parses one raw list item into a coupon
func DecodeCoupon(raw json.RawMessage) (*Coupon, error) {
	var c Coupon
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("wix: failed to decode coupon: %w", err)
	}
	return &c, nil
}
