package wix

import (
	"context"
	"encoding/json"
	"fmt"
)

// MediaFolder is a site media folder
type MediaFolder struct {
	ID             string `json:"id,omitempty"`
	DisplayName    string `json:"displayName"`
	ParentFolderID string `json:"parentFolderId,omitempty"`
	CreatedDate    string `json:"createdDate,omitempty"`
}

// MediaFile is one file in the site media manager
type MediaFile struct {
	ID             string `json:"id,omitempty"`
	DisplayName    string `json:"displayName"`
	URL            string `json:"url,omitempty"`
	ParentFolderID string `json:"parentFolderId,omitempty"`
	MediaType      string `json:"mediaType,omitempty"`
	SizeInBytes    string `json:"sizeInBytes,omitempty"`
	CreatedDate    string `json:"createdDate,omitempty"`
}

// MediaAPI wraps site media manager endpoints for one account
type MediaAPI struct {
	client *Client
}

// NewMediaAPI creates the media endpoint wrapper
func NewMediaAPI(c *Client) *MediaAPI {
	return &MediaAPI{client: c}
}

type mediaFileListResponse struct {
	Files []json.RawMessage `json:"files"`
	NextCursor    struct {
		Cursor string `json:"cursor"`
	} `json:"nextCursor"`
}

// ListFilesPage fetches one cursor page of media files
func (a *MediaAPI) ListFilesPage(ctx context.Context, req PageRequest) (Page, error) {
	path := fmt.Sprintf("/site-media/v1/files?paging.limit=%d", req.Limit)
	if req.Cursor != "" {
		path += "&paging.cursor=" + req.Cursor
	}
	var resp mediaFileListResponse
	if err := a.client.Get(ctx, path, &resp); err != nil {
		return Page{}, err
	}
	return Page{Items: resp.Files, NextCursor: resp.NextCursor.Cursor}, nil
}

type mediaFolderListResponse struct {
	Folders []MediaFolder `json:"folders"`
	NextCursor struct {
		Cursor string `json:"cursor"`
	} `json:"nextCursor"`
}

// ListFolders fetches all media folders, following cursors internally since
// folder counts are small.
func (a *MediaAPI) ListFolders(ctx context.Context) ([]MediaFolder, error) {
	var out []MediaFolder
	cursor := ""
	for {
		path := "/site-media/v1/folders?paging.limit=100"
		if cursor != "" {
			path += "&paging.cursor=" + cursor
		}
		var resp mediaFolderListResponse
		if err := a.client.Get(ctx, path, &resp); err != nil {
			return nil, err
		}
		out = append(out, resp.Folders...)
		if resp.NextCursor.Cursor == "" || len(resp.Folders) == 0 {
			break
		}
		cursor = resp.NextCursor.Cursor
	}
	return out, nil
}

// CreateFolder creates a media folder and returns its ID
func (a *MediaAPI) CreateFolder(ctx context.Context, folder *MediaFolder) (string, error) {
	var resp struct {
		Folder struct {
			ID string `json:"id"`
		} `json:"folder"`
	}
	body := map[string]any{
		"displayName":    folder.DisplayName,
		"parentFolderId": folder.ParentFolderID,
	}
	if err := a.client.Post(ctx, "/site-media/v1/folders", body, &resp); err != nil {
		return "", err
	}
	return resp.Folder.ID, nil
}

// ImportFile imports a file by public URL into a destination folder and
// returns the new file ID.
func (a *MediaAPI) ImportFile(ctx context.Context, file *MediaFile) (string, error) {
	var resp struct {
		File struct {
			ID string `json:"id"`
		} `json:"file"`
	}
	body := map[string]any{
		"url":            file.URL,
		"displayName":    file.DisplayName,
		"parentFolderId": file.ParentFolderID,
	}
	if err := a.client.Post(ctx, "/site-media/v1/files/import", body, &resp); err != nil {
		return "", err
	}
	return resp.File.ID, nil
}

// DecodeMediaFile parses one raw list item into a media file
func DecodeMediaFile(raw json.RawMessage) (*MediaFile, error) {
	var f MediaFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("wix: failed to decode media file: %w", err)
	}
	return &f, nil
}
