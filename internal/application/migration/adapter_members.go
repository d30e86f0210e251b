package migrationapp

import (
	"context"
	"fmt"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/migration"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/wix"
)

// MemberAdapter migrates site members. Login email is the natural key: a
// destination conflict on it means the member already exists there.
type MemberAdapter struct {
	source      *wix.MembersAPI
	destination *wix.MembersAPI
	paginator   *wix.Paginator
}

// NewMemberAdapter creates the member adapter
func NewMemberAdapter(source, destination *wix.MembersAPI, paginator *wix.Paginator) *MemberAdapter {
	return &MemberAdapter{source: source, destination: destination, paginator: paginator}
}

var _ EntityAdapter = (*MemberAdapter)(nil)

// EntityType identifies this adapter's entity type
func (a *MemberAdapter) EntityType() migration.EntityType {
	return migration.EntityTypeMember
}

// FetchAll exhausts the source account's member listing
func (a *MemberAdapter) FetchAll(ctx context.Context) ([]SourceItem, error) {
	raws, err := a.paginator.FetchAll(ctx, a.source.ListPage)
	if err != nil {
		return nil, err
	}

	items := make([]SourceItem, 0, len(raws))
	for _, raw := range raws {
		member, err := wix.DecodeMember(raw)
		if err != nil {
			return nil, err
		}
		items = append(items, SourceItem{
			ID:        member.ID,
			Keys:      migration.NaturalKeys{Code: member.LoginEmail},
			CreatedAt: ParseCreatedDate(member.CreatedDate),
			Payload:   member,
		})
	}
	return items, nil
}

// Create registers one member on the destination
func (a *MemberAdapter) Create(ctx context.Context, item SourceItem) (string, error) {
	member, ok := item.Payload.(*wix.Member)
	if !ok {
		return "", fmt.Errorf("members: unexpected payload type %T", item.Payload)
	}
	if member.LoginEmail == "" {
		return "", migration.NewValidationError("loginEmail", "member has no login email")
	}

	payload := *member
	payload.ID = ""
	payload.CreatedDate = ""
	return a.destination.Create(ctx, &payload)
}
