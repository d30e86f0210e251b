package migrationapp

import (
	"context"
	"fmt"
	"strings"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/migration"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/shared"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/wix"
)

// CategoryCreator creates a category on the destination in whatever shape
// its catalog generation expects. Satisfied by the run's schema strategy.
type CategoryCreator interface {
	CreateCategory(ctx context.Context, src *wix.Collection) (string, error)
}

// WixDestinationLookup is the resolver's live lookup against a destination
// account. Listings for small entity sets (brands, ribbons, info sections)
// are fetched once per run and matched by name in memory.
type WixDestinationLookup struct {
	refs       *wix.RefsAPI
	folders    *MediaFolderLookup
	categories CategoryCreator

	brands       map[string]string
	ribbons      map[string]string
	infoSections map[string]string
}

// NewWixDestinationLookup creates a destination lookup
func NewWixDestinationLookup(refs *wix.RefsAPI, folders *MediaFolderLookup) *WixDestinationLookup {
	return &WixDestinationLookup{refs: refs, folders: folders}
}

// SetCategoryCreator binds category creation to the run's schema strategy.
// The strategy is selected after the lookup is built, so the binding is a
// separate step.
func (l *WixDestinationLookup) SetCategoryCreator(categories CategoryCreator) {
	l.categories = categories
}

var _ DestinationLookup = (*WixDestinationLookup)(nil)

// FindByName returns the destination ID of an entity matching the name
func (l *WixDestinationLookup) FindByName(ctx context.Context, refType migration.RefType, name string) (string, error) {
	switch refType {
	case migration.RefTypeBrand:
		return l.findNamed(ctx, &l.brands, name, l.refs.ListBrands)
	case migration.RefTypeRibbon:
		return l.findNamed(ctx, &l.ribbons, name, l.refs.ListRibbons)
	case migration.RefTypeInfoSection:
		return l.findNamed(ctx, &l.infoSections, name, l.refs.ListInfoSections)
	case migration.RefTypeMediaFolder:
		if l.folders == nil {
			return "", shared.ErrNotFound
		}
		return l.folders.FindByName(ctx, name)
	}
	return "", shared.ErrNotFound
}

// Create creates the reference entity on the destination
func (l *WixDestinationLookup) Create(ctx context.Context, refType migration.RefType, ref migration.RefDescriptor) (string, error) {
	switch refType {
	case migration.RefTypeBrand:
		id, err := l.refs.CreateBrand(ctx, ref.Name)
		if err == nil && l.brands != nil {
			l.brands[nameKey(ref.Name)] = id
		}
		return id, err
	case migration.RefTypeRibbon:
		id, err := l.refs.CreateRibbon(ctx, ref.Name)
		if err == nil && l.ribbons != nil {
			l.ribbons[nameKey(ref.Name)] = id
		}
		return id, err
	case migration.RefTypeCategory:
		if l.categories == nil {
			return "", fmt.Errorf("lookup: no category destination configured")
		}
		return l.categories.CreateCategory(ctx, &wix.Collection{Name: ref.Name, Visible: true})
	case migration.RefTypeMediaFolder:
		if l.folders == nil {
			return "", fmt.Errorf("lookup: no media folder destination configured")
		}
		return l.folders.Create(ctx, ref.Name)
	}
	return "", fmt.Errorf("lookup: %s does not support creation", refType)
}

func (l *WixDestinationLookup) findNamed(ctx context.Context, cache *map[string]string, name string, list func(context.Context) ([]wix.NamedEntity, error)) (string, error) {
	if *cache == nil {
		entities, err := list(ctx)
		if err != nil {
			return "", err
		}
		m := make(map[string]string, len(entities))
		for _, e := range entities {
			m[nameKey(e.Name)] = e.ID
		}
		*cache = m
	}
	if id, ok := (*cache)[nameKey(name)]; ok {
		return id, nil
	}
	return "", shared.ErrNotFound
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
