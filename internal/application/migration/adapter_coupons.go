package migrationapp

import (
	"context"
	"fmt"
	"time"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/migration"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/wix"
)

// CouponAdapter migrates coupons. Coupons scoped to a specific product or
// collection carry a source-side entity ID that must resolve on the
// destination; in strict mode an unresolvable scope fails the coupon before
// any creation call is made.
type CouponAdapter struct {
	source      *wix.CouponsAPI
	destination *wix.CouponsAPI
	resolver    *Resolver
	paginator   *wix.Paginator
}

// NewCouponAdapter creates the coupon adapter
func NewCouponAdapter(source, destination *wix.CouponsAPI, resolver *Resolver, paginator *wix.Paginator) *CouponAdapter {
	return &CouponAdapter{
		source:      source,
		destination: destination,
		resolver:    resolver,
		paginator:   paginator,
	}
}

var _ EntityAdapter = (*CouponAdapter)(nil)

// EntityType identifies this adapter's entity type
func (a *CouponAdapter) EntityType() migration.EntityType {
	return migration.EntityTypeCoupon
}

// FetchAll exhausts the source account's coupon listing
func (a *CouponAdapter) FetchAll(ctx context.Context) ([]SourceItem, error) {
	raws, err := a.paginator.FetchAll(ctx, a.source.ListPage)
	if err != nil {
		return nil, err
	}

	items := make([]SourceItem, 0, len(raws))
	for _, raw := range raws {
		coupon, err := wix.DecodeCoupon(raw)
		if err != nil {
			return nil, err
		}
		if coupon.Specification == nil {
			continue
		}
		items = append(items, SourceItem{
			ID:        coupon.ID,
			Keys:      migration.NaturalKeys{Code: coupon.Specification.Code, Name: coupon.Specification.Name},
			CreatedAt: ParseCreatedDate(coupon.DateCreated),
			Payload:   coupon,
		})
	}
	return items, nil
}

// Create rewrites the coupon's scope references and creates it on the
// destination.
func (a *CouponAdapter) Create(ctx context.Context, item SourceItem) (string, error) {
	coupon, ok := item.Payload.(*wix.Coupon)
	if !ok {
		return "", fmt.Errorf("coupons: unexpected payload type %T", item.Payload)
	}

	spec, err := a.remapScope(ctx, coupon.Specification)
	if err != nil {
		return "", err
	}
	return a.destination.Create(ctx, spec)
}

// remapScope clones the specification with its scoped entity ID translated
// to the destination account. A scope whose reference drops in lenient mode
// widens to the whole namespace.
func (a *CouponAdapter) remapScope(ctx context.Context, spec *wix.CouponSpecification) (*wix.CouponSpecification, error) {
	if spec.Code == "" {
		return nil, migration.NewValidationError("code", "coupon code is required")
	}
	out := *spec
	if out.StartTime == "" {
		// The coupons endpoint rejects specifications without a start
		// time; source records predating the field activate immediately.
		out.StartTime = time.Now().UTC().Format(time.RFC3339)
	}
	if spec.Scope == nil || spec.Scope.Group == nil || spec.Scope.Group.EntityID == "" {
		return &out, nil
	}

	refType, ok := scopeRefType(spec.Scope.Group.Name)
	if !ok {
		return &out, nil
	}

	destID, err := a.resolver.Resolve(ctx, migration.RefDescriptor{
		Type:     refType,
		SourceID: spec.Scope.Group.EntityID,
	})
	if err != nil {
		return nil, err
	}

	scope := *spec.Scope
	group := *spec.Scope.Group
	if destID == "" {
		// Lenient resolution dropped the reference: widen to the group
		group.EntityID = ""
	} else {
		group.EntityID = destID
	}
	scope.Group = &group
	out.Scope = &scope
	return &out, nil
}

func scopeRefType(groupName string) (migration.RefType, bool) {
	switch groupName {
	case "product", "products":
		return migration.RefTypeProduct, true
	case "collection", "collections", "category":
		return migration.RefTypeCategory, true
	}
	return "", false
}
