package migrationapp

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/migration"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/wix"
)

// OrderAdapter migrates historical orders. Orders are records, not live
// references: line items pointing at products that did not survive the
// migration keep their display data and simply lose the catalog link, so
// order history always resolves leniently regardless of the run mode.
type OrderAdapter struct {
	source      *wix.OrdersAPI
	destination *wix.OrdersAPI
	resolver    *Resolver
	paginator   *wix.Paginator
	logger      *zap.Logger
}

// NewOrderAdapter creates the order adapter
func NewOrderAdapter(source, destination *wix.OrdersAPI, resolver *Resolver, paginator *wix.Paginator, logger *zap.Logger) *OrderAdapter {
	return &OrderAdapter{
		source:      source,
		destination: destination,
		resolver:    resolver,
		paginator:   paginator,
		logger:      logger.Named("orders"),
	}
}

var _ EntityAdapter = (*OrderAdapter)(nil)

// EntityType identifies this adapter's entity type
func (a *OrderAdapter) EntityType() migration.EntityType {
	return migration.EntityTypeOrder
}

// FetchAll exhausts the source account's order listing
func (a *OrderAdapter) FetchAll(ctx context.Context) ([]SourceItem, error) {
	raws, err := a.paginator.FetchAll(ctx, a.source.ListPage)
	if err != nil {
		return nil, err
	}

	items := make([]SourceItem, 0, len(raws))
	for _, raw := range raws {
		order, err := wix.DecodeOrder(raw)
		if err != nil {
			return nil, err
		}
		items = append(items, SourceItem{
			ID:        order.ID,
			Keys:      migration.NaturalKeys{Code: order.Number},
			CreatedAt: ParseCreatedDate(order.CreatedDate),
			Payload:   order,
		})
	}
	return items, nil
}

// Create imports one order into the destination with its catalog links
// remapped where possible.
func (a *OrderAdapter) Create(ctx context.Context, item SourceItem) (string, error) {
	order, ok := item.Payload.(*wix.Order)
	if !ok {
		return "", fmt.Errorf("orders: unexpected payload type %T", item.Payload)
	}

	payload := *order
	payload.ID = ""
	payload.LineItems = make([]wix.OrderLineItem, len(order.LineItems))
	for i, line := range order.LineItems {
		remapped := line
		remapped.ID = ""
		if line.CatalogReference != nil && line.CatalogReference.CatalogItemID != "" {
			destID := a.resolveProduct(ctx, line.CatalogReference.CatalogItemID)
			if destID == "" {
				// Keep the line as an off-catalog item
				remapped.CatalogReference = nil
			} else {
				ref := *line.CatalogReference
				ref.CatalogItemID = destID
				remapped.CatalogReference = &ref
			}
		}
		payload.LineItems[i] = remapped
	}
	return a.destination.Create(ctx, &payload)
}

func (a *OrderAdapter) resolveProduct(ctx context.Context, sourceProductID string) string {
	destID, err := a.resolver.Resolve(ctx, migration.RefDescriptor{
		Type:     migration.RefTypeProduct,
		SourceID: sourceProductID,
	})
	if err != nil {
		// Strict-mode resolution failures do not fail order history
		a.logger.Debug("order line product unresolved",
			zap.String("source_product_id", sourceProductID),
		)
		return ""
	}
	return destID
}
