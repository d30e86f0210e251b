package migrationapp

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/migration"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/shared"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/wix"
)

// MediaAdapter migrates media files by public URL. Folders are re-created
// through the resolver as needed so the destination keeps the source's
// folder structure.
type MediaAdapter struct {
	source      *wix.MediaAPI
	destination *wix.MediaAPI
	resolver    *Resolver
	paginator   *wix.Paginator
	logger      *zap.Logger

	// sourceFolders caches the source folder listing so file migration can
	// resolve parent folders by name
	sourceFolders map[string]wix.MediaFolder
}

// NewMediaAdapter creates the media adapter
func NewMediaAdapter(source, destination *wix.MediaAPI, resolver *Resolver, paginator *wix.Paginator, logger *zap.Logger) *MediaAdapter {
	return &MediaAdapter{
		source:      source,
		destination: destination,
		resolver:    resolver,
		paginator:   paginator,
		logger:      logger.Named("media"),
	}
}

var _ EntityAdapter = (*MediaAdapter)(nil)

// EntityType identifies this adapter's entity type
func (a *MediaAdapter) EntityType() migration.EntityType {
	return migration.EntityTypeMedia
}

// FetchAll lists the source folders, then exhausts the file listing
func (a *MediaAdapter) FetchAll(ctx context.Context) ([]SourceItem, error) {
	folders, err := a.source.ListFolders(ctx)
	if err != nil {
		return nil, err
	}
	a.sourceFolders = make(map[string]wix.MediaFolder, len(folders))
	for _, folder := range folders {
		a.sourceFolders[folder.ID] = folder
	}

	raws, err := a.paginator.FetchAll(ctx, a.source.ListFilesPage)
	if err != nil {
		return nil, err
	}

	items := make([]SourceItem, 0, len(raws))
	for _, raw := range raws {
		file, err := wix.DecodeMediaFile(raw)
		if err != nil {
			return nil, err
		}
		item := SourceItem{
			ID:        file.ID,
			Keys:      migration.NaturalKeys{Name: file.DisplayName},
			CreatedAt: ParseCreatedDate(file.CreatedDate),
			Payload:   file,
		}
		if file.URL == "" {
			item.Protected = true
			item.ProtectedReason = "file has no importable URL"
		}
		items = append(items, item)
	}
	return items, nil
}

// Create imports one file into the destination, resolving its parent folder
func (a *MediaAdapter) Create(ctx context.Context, item SourceItem) (string, error) {
	file, ok := item.Payload.(*wix.MediaFile)
	if !ok {
		return "", fmt.Errorf("media: unexpected payload type %T", item.Payload)
	}

	payload := &wix.MediaFile{
		DisplayName: file.DisplayName,
		URL:         file.URL,
	}
	if file.ParentFolderID != "" {
		destFolderID, err := a.resolveFolder(ctx, file.ParentFolderID)
		if err != nil {
			return "", err
		}
		payload.ParentFolderID = destFolderID
	}
	return a.destination.ImportFile(ctx, payload)
}

// resolveFolder maps a source folder ID to the destination, creating the
// folder on first use. The media-folder type auto-creates, so even strict
// runs never fail a file on a missing folder.
func (a *MediaAdapter) resolveFolder(ctx context.Context, sourceFolderID string) (string, error) {
	ref := migration.RefDescriptor{
		Type:     migration.RefTypeMediaFolder,
		SourceID: sourceFolderID,
	}
	if folder, known := a.sourceFolders[sourceFolderID]; known {
		ref.Name = folder.DisplayName
	}
	destID, err := a.resolver.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	if destID == "" {
		a.logger.Warn("file lands in the destination root, folder unresolved",
			zap.String("source_folder_id", sourceFolderID),
		)
	}
	return destID, nil
}

// MediaFolderLookup implements the resolver's destination lookup for media
// folders, searching by display name and creating on miss.
type MediaFolderLookup struct {
	destination *wix.MediaAPI

	byName map[string]string
}

// NewMediaFolderLookup creates a folder lookup against the destination
func NewMediaFolderLookup(destination *wix.MediaAPI) *MediaFolderLookup {
	return &MediaFolderLookup{destination: destination}
}

// FindByName returns the destination folder with the given display name
func (l *MediaFolderLookup) FindByName(ctx context.Context, name string) (string, error) {
	if l.byName == nil {
		folders, err := l.destination.ListFolders(ctx)
		if err != nil {
			return "", err
		}
		l.byName = make(map[string]string, len(folders))
		for _, folder := range folders {
			l.byName[folder.DisplayName] = folder.ID
		}
	}
	if id, ok := l.byName[name]; ok {
		return id, nil
	}
	return "", shared.ErrNotFound
}

// Create creates a destination folder with the given display name
func (l *MediaFolderLookup) Create(ctx context.Context, name string) (string, error) {
	id, err := l.destination.CreateFolder(ctx, &wix.MediaFolder{DisplayName: name})
	if err != nil {
		return "", err
	}
	if l.byName != nil {
		l.byName[name] = id
	}
	return id, nil
}
