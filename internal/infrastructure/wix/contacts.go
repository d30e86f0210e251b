package wix

import (
	"context"
	"encoding/json"
	"fmt"
)

// ContactName splits a member's display name
type ContactName struct {
	First string `json:"first,omitempty"`
	Last  string `json:"last,omitempty"`
}

// ContactInfo groups contact details of a site member
type ContactInfo struct {
	Name *ContactName `json:"name,omitempty"`
	Emails []struct {
		Email   string `json:"email"`
		Primary bool   `json:"primary,omitempty"`
	} `json:"emails,omitempty"`
	Phones []struct {
		Phone   string `json:"phone"`
		Primary bool   `json:"primary,omitempty"`
	} `json:"phones,omitempty"`
	Addresses []json.RawMessage `json:"addresses,omitempty"`
}

// Member is a site member (customer) record
type Member struct {
	ID         string       `json:"id,omitempty"`
	LoginEmail string       `json:"loginEmail,omitempty"`
	Status     string       `json:"status,omitempty"`
	Contact    *ContactInfo `json:"contact,omitempty"`
	Profile     *struct {
		Nickname string `json:"nickname,omitempty"`
		Slug     string `json:"slug,omitempty"`
	} `json:"profile,omitempty"`
	CreatedDate string `json:"createdDate,omitempty"`
}

// MembersAPI wraps site member endpoints for one account
type MembersAPI struct {
	client *Client
}

// NewMembersAPI creates the members endpoint wrapper
func NewMembersAPI(c *Client) *MembersAPI {
	return &MembersAPI{client: c}
}

type memberQueryResponse struct {
	Members []json.RawMessage `json:"members"`
	PagingMetadata struct {
		Cursors struct {
			Next string `json:"next"`
		} `json:"cursors"`
	} `json:"pagingMetadata"`
}

// ListPage fetches one cursor page of members
func (a *MembersAPI) ListPage(ctx context.Context, req PageRequest) (Page, error) {
	var body productV3QueryRequest
	body.Query.CursorPaging.Limit = req.Limit
	body.Query.CursorPaging.Cursor = req.Cursor

	var resp memberQueryResponse
	if err := a.client.Post(ctx, "/members/v1/members/query", body, &resp); err != nil {
		return Page{}, err
	}
	return Page{Items: resp.Members, NextCursor: resp.PagingMetadata.Cursors.Next}, nil
}

// Create registers a member on the destination site and returns the new ID
func (a *MembersAPI) Create(ctx context.Context, member *Member) (string, error) {
	var resp struct {
		Member struct {
			ID string `json:"id"`
		} `json:"member"`
	}
	if err := a.client.Post(ctx, "/members/v1/members", map[string]any{"member": member}, &resp); err != nil {
		return "", err
	}
	return resp.Member.ID, nil
}

// DecodeMember parses one raw list item into a member
func DecodeMember(raw json.RawMessage) (*Member, error) {
	var m Member
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("wix: failed to decode member: %w", err)
	}
	return &m, nil
}
