package migration

// EntityType identifies one category of migrated store object.
type EntityType string

const (
	EntityTypeProduct      EntityType = "product"
	EntityTypeCategory     EntityType = "category"
	EntityTypeCoupon       EntityType = "coupon"
	EntityTypeDiscountRule EntityType = "discount_rule"
	EntityTypeGiftCard     EntityType = "gift_card"
	EntityTypeMedia        EntityType = "media"
	EntityTypeMember       EntityType = "member"
	EntityTypeOrder        EntityType = "order"
)

// IsValid checks if the entity type is a known migratable type
func (t EntityType) IsValid() bool {
	switch t {
	case EntityTypeProduct, EntityTypeCategory, EntityTypeCoupon, EntityTypeDiscountRule,
		EntityTypeGiftCard, EntityTypeMedia, EntityTypeMember, EntityTypeOrder:
		return true
	}
	return false
}

// AllEntityTypes lists every migratable entity type in dependency order:
// reference targets (categories, media) come before their dependents.
func AllEntityTypes() []EntityType {
	return []EntityType{
		EntityTypeMedia,
		EntityTypeCategory,
		EntityTypeProduct,
		EntityTypeCoupon,
		EntityTypeDiscountRule,
		EntityTypeGiftCard,
		EntityTypeMember,
		EntityTypeOrder,
	}
}

// ResolutionMode controls how an unresolved cross-entity reference is handled
// during transformation.
type ResolutionMode string

const (
	// ResolutionModeStrict aborts the dependent entity when a reference
	// cannot be mapped to the destination account.
	ResolutionModeStrict ResolutionMode = "strict"
	// ResolutionModeLenient drops or widens the unresolved reference and
	// continues migrating the dependent entity.
	ResolutionModeLenient ResolutionMode = "lenient"
)

// IsValid checks if the resolution mode is valid
func (m ResolutionMode) IsValid() bool {
	return m == ResolutionModeStrict || m == ResolutionModeLenient
}
