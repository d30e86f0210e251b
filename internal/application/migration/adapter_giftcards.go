package migrationapp

import (
	"context"
	"fmt"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/migration"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/wix"
)

// GiftCardAdapter migrates gift cards. The remaining balance, not the
// original purchase value, is what the destination card must honor.
type GiftCardAdapter struct {
	source      *wix.GiftCardsAPI
	destination *wix.GiftCardsAPI
	paginator   *wix.Paginator
}

// NewGiftCardAdapter creates the gift card adapter
func NewGiftCardAdapter(source, destination *wix.GiftCardsAPI, paginator *wix.Paginator) *GiftCardAdapter {
	return &GiftCardAdapter{source: source, destination: destination, paginator: paginator}
}

var _ EntityAdapter = (*GiftCardAdapter)(nil)

// EntityType identifies this adapter's entity type
func (a *GiftCardAdapter) EntityType() migration.EntityType {
	return migration.EntityTypeGiftCard
}

// FetchAll exhausts the source account's gift card listing
func (a *GiftCardAdapter) FetchAll(ctx context.Context) ([]SourceItem, error) {
	raws, err := a.paginator.FetchAll(ctx, a.source.ListPage)
	if err != nil {
		return nil, err
	}

	items := make([]SourceItem, 0, len(raws))
	for _, raw := range raws {
		card, err := wix.DecodeGiftCard(raw)
		if err != nil {
			return nil, err
		}
		item := SourceItem{
			ID:        card.ID,
			Keys:      migration.NaturalKeys{Code: card.Code},
			CreatedAt: ParseCreatedDate(card.CreatedDate),
			Payload:   card,
		}
		if card.Disabled {
			item.Protected = true
			item.ProtectedReason = "gift card is disabled"
		}
		items = append(items, item)
	}
	return items, nil
}

// Create creates one gift card on the destination, seeded with the
// remaining balance.
func (a *GiftCardAdapter) Create(ctx context.Context, item SourceItem) (string, error) {
	card, ok := item.Payload.(*wix.GiftCard)
	if !ok {
		return "", fmt.Errorf("gift cards: unexpected payload type %T", item.Payload)
	}
	if card.Balance.Amount == "" || card.Balance.Amount == "0" {
		return "", migration.NewValidationError("balance", "gift card has no remaining balance")
	}

	payload := &wix.GiftCard{
		Code:           card.Code,
		InitialValue:   card.Balance,
		Balance:        card.Balance,
		ExpirationDate: card.ExpirationDate,
		RecipientEmail: card.RecipientEmail,
	}
	return a.destination.Create(ctx, payload)
}
