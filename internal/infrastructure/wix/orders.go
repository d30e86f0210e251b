package wix

import (
	"context"
	"encoding/json"
	"fmt"
)

// OrderLineItem is one purchased item on an order
type OrderLineItem struct {
	ID string `json:"id,omitempty"`
	ProductName struct {
		Original string `json:"original"`
	} `json:"productName"`
	CatalogReference *struct {
		CatalogItemID string `json:"catalogItemId"`
	} `json:"catalogReference,omitempty"`
	Quantity int     `json:"quantity"`
	Price    MoneyV3 `json:"price"`
	SKU      string  `json:"physicalProperties,omitempty"`
}

// Order is an e-commerce order record
type Order struct {
	ID            string `json:"id,omitempty"`
	Number        string `json:"number,omitempty"`
	Status        string `json:"status,omitempty"`
	PaymentStatus string `json:"paymentStatus,omitempty"`
	BuyerInfo     *struct {
		MemberID string `json:"memberId,omitempty"`
		Email    string `json:"email,omitempty"`
	} `json:"buyerInfo,omitempty"`
	LineItems []OrderLineItem `json:"lineItems,omitempty"`
	PriceSummary *struct {
		Total MoneyV3 `json:"total"`
	} `json:"priceSummary,omitempty"`
	BillingInfo  json.RawMessage `json:"billingInfo,omitempty"`
	ShippingInfo json.RawMessage `json:"shippingInfo,omitempty"`
	CreatedDate  string          `json:"createdDate,omitempty"`
}

// OrdersAPI wraps e-commerce order endpoints for one account
type OrdersAPI struct {
	client *Client
}

// NewOrdersAPI creates the orders endpoint wrapper
func NewOrdersAPI(c *Client) *OrdersAPI {
	return &OrdersAPI{client: c}
}

type orderSearchResponse struct {
	Orders []json.RawMessage `json:"orders"`
	Metadata struct {
		Cursors struct {
			Next string `json:"next"`
		} `json:"cursors"`
	} `json:"metadata"`
}

// ListPage fetches one cursor page of orders
func (a *OrdersAPI) ListPage(ctx context.Context, req PageRequest) (Page, error) {
	body := map[string]any{
		"search": map[string]any{
			"cursorPaging": map[string]any{
				"limit":  req.Limit,
				"cursor": req.Cursor,
			},
		},
	}
	var resp orderSearchResponse
	if err := a.client.Post(ctx, "/ecom/v1/orders/search", body, &resp); err != nil {
		return Page{}, err
	}
	return Page{Items: resp.Orders, NextCursor: resp.Metadata.Cursors.Next}, nil
}

// Create imports an order into the destination site and returns the new ID
func (a *OrdersAPI) Create(ctx context.Context, order *Order) (string, error) {
	var resp struct {
		Order struct {
			ID string `json:"id"`
		} `json:"order"`
	}
	if err := a.client.Post(ctx, "/ecom/v1/orders", map[string]any{"order": order}, &resp); err != nil {
		return "", err
	}
	return resp.Order.ID, nil
}

// DecodeOrder parses one raw list item into an order
func DecodeOrder(raw json.RawMessage) (*Order, error) {
	var o Order
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("wix: failed to decode order: %w", err)
	}
	return &o, nil
}
