package wix

import (
	"context"
	"encoding/json"
	"fmt"
)

// GiftCard is a stored-value gift card record
type GiftCard struct {
	ID             string  `json:"id,omitempty"`
	Code           string  `json:"code,omitempty"`
	InitialValue   MoneyV3 `json:"initialValue"`
	Balance        MoneyV3 `json:"balance"`
	ExpirationDate string  `json:"expirationDate,omitempty"`
	RecipientEmail string  `json:"recipientEmail,omitempty"`
	Disabled       bool    `json:"disabled,omitempty"`
	CreatedDate    string  `json:"createdDate,omitempty"`
}

// DiscountRule is an automatic (codeless) discount definition
type DiscountRule struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	Active      bool            `json:"active"`
	StartTime   string          `json:"startTime,omitempty"`
	EndTime     string          `json:"endTime,omitempty"`
	Trigger     json.RawMessage `json:"trigger,omitempty"`
	Discounts   json.RawMessage `json:"discounts,omitempty"`
	CreatedDate string          `json:"createdDate,omitempty"`
}

// GiftCardsAPI wraps gift card and discount rule endpoints for one account
type GiftCardsAPI struct {
	client *Client
}

// NewGiftCardsAPI creates the gift cards endpoint wrapper
func NewGiftCardsAPI(c *Client) *GiftCardsAPI {
	return &GiftCardsAPI{client: c}
}

type giftCardQueryResponse struct {
	GiftCards []json.RawMessage `json:"giftCards"`
	PagingMetadata struct {
		Cursors struct {
			Next string `json:"next"`
		} `json:"cursors"`
	} `json:"pagingMetadata"`
}

// ListPage fetches one cursor page of gift cards
func (a *GiftCardsAPI) ListPage(ctx context.Context, req PageRequest) (Page, error) {
	var body productV3QueryRequest
	body.Query.CursorPaging.Limit = req.Limit
	body.Query.CursorPaging.Cursor = req.Cursor

	var resp giftCardQueryResponse
	if err := a.client.Post(ctx, "/gift-cards/v1/gift-cards/query", body, &resp); err != nil {
		return Page{}, err
	}
	return Page{Items: resp.GiftCards, NextCursor: resp.PagingMetadata.Cursors.Next}, nil
}

// Create creates a gift card and returns its ID
func (a *GiftCardsAPI) Create(ctx context.Context, card *GiftCard) (string, error) {
	var resp struct {
		GiftCard struct {
			ID string `json:"id"`
		} `json:"giftCard"`
	}
	if err := a.client.Post(ctx, "/gift-cards/v1/gift-cards", map[string]any{"giftCard": card}, &resp); err != nil {
		return "", err
	}
	return resp.GiftCard.ID, nil
}

type discountRuleQueryResponse struct {
	DiscountRules []json.RawMessage `json:"discountRules"`
	PagingMetadata struct {
		Cursors struct {
			Next string `json:"next"`
		} `json:"cursors"`
	} `json:"pagingMetadata"`
}

// ListDiscountRulesPage fetches one cursor page of discount rules
func (a *GiftCardsAPI) ListDiscountRulesPage(ctx context.Context, req PageRequest) (Page, error) {
	var body productV3QueryRequest
	body.Query.CursorPaging.Limit = req.Limit
	body.Query.CursorPaging.Cursor = req.Cursor

	var resp discountRuleQueryResponse
	if err := a.client.Post(ctx, "/ecom/v1/discount-rules/query", body, &resp); err != nil {
		return Page{}, err
	}
	return Page{Items: resp.DiscountRules, NextCursor: resp.PagingMetadata.Cursors.Next}, nil
}

// CreateDiscountRule creates a discount rule and returns its ID
func (a *GiftCardsAPI) CreateDiscountRule(ctx context.Context, rule *DiscountRule) (string, error) {
	var resp struct {
		DiscountRule struct {
			ID string `json:"id"`
		} `json:"discountRule"`
	}
	if err := a.client.Post(ctx, "/ecom/v1/discount-rules", map[string]any{"discountRule": rule}, &resp); err != nil {
		return "", err
	}
	return resp.DiscountRule.ID, nil
}

// DecodeGiftCard parses one raw list item into a gift card
func DecodeGiftCard(raw json.RawMessage) (*GiftCard, error) {
	var g GiftCard
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("wix: failed to decode gift card: %w", err)
	}
	return &g, nil
}

// DecodeDiscountRule parses one raw list item into a discount rule
func DecodeDiscountRule(raw json.RawMessage) (*DiscountRule, error) {
	var d DiscountRule
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("wix: failed to decode discount rule: %w", err)
	}
	return &d, nil
}
