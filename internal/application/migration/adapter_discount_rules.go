package migrationapp

import (
	"context"
	"fmt"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/migration"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/wix"
)

// DiscountRuleAdapter migrates automatic discount rules. Trigger and
// discount payloads are carried opaquely; the platform validates them on
// creation.
type DiscountRuleAdapter struct {
	source      *wix.GiftCardsAPI
	destination *wix.GiftCardsAPI
	paginator   *wix.Paginator
}

// NewDiscountRuleAdapter creates the discount rule adapter
func NewDiscountRuleAdapter(source, destination *wix.GiftCardsAPI, paginator *wix.Paginator) *DiscountRuleAdapter {
	return &DiscountRuleAdapter{source: source, destination: destination, paginator: paginator}
}

var _ EntityAdapter = (*DiscountRuleAdapter)(nil)

// EntityType identifies this adapter's entity type
func (a *DiscountRuleAdapter) EntityType() migration.EntityType {
	return migration.EntityTypeDiscountRule
}

// FetchAll exhausts the source account's discount rule listing
func (a *DiscountRuleAdapter) FetchAll(ctx context.Context) ([]SourceItem, error) {
	raws, err := a.paginator.FetchAll(ctx, a.source.ListDiscountRulesPage)
	if err != nil {
		return nil, err
	}

	items := make([]SourceItem, 0, len(raws))
	for _, raw := range raws {
		rule, err := wix.DecodeDiscountRule(raw)
		if err != nil {
			return nil, err
		}
		items = append(items, SourceItem{
			ID:        rule.ID,
			Keys:      migration.NaturalKeys{Name: rule.Name},
			CreatedAt: ParseCreatedDate(rule.CreatedDate),
			Payload:   rule,
		})
	}
	return items, nil
}

// Create creates one discount rule on the destination
func (a *DiscountRuleAdapter) Create(ctx context.Context, item SourceItem) (string, error) {
	rule, ok := item.Payload.(*wix.DiscountRule)
	if !ok {
		return "", fmt.Errorf("discount rules: unexpected payload type %T", item.Payload)
	}
	if rule.Name == "" {
		return "", migration.NewValidationError("name", "discount rule name is required")
	}

	payload := *rule
	payload.ID = ""
	payload.CreatedDate = ""
	return a.destination.CreateDiscountRule(ctx, &payload)
}
