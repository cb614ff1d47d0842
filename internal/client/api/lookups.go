package api

import (
	"context"
	"net/http"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/google/uuid"
)

type classificationBody struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Rank int       `json:"rank"`
}

// ListClassifications returns the classification levels a new folder can use
func (c *Client) ListClassifications(ctx context.Context) ([]domain.ClassificationLevel, error) {
	var resp []classificationBody
	if err := c.do(ctx, http.MethodGet, "/classifications", nil, &resp); err != nil {
		return nil, err
	}
	levels := make([]domain.ClassificationLevel, len(resp))
	for i, l := range resp {
		levels[i] = domain.ClassificationLevel{ID: l.ID, Name: l.Name, Rank: l.Rank}
	}
	return levels, nil
}

// ListFolders returns the caller's folders
func (c *Client) ListFolders(ctx context.Context) ([]domain.Folder, error) {
	var resp []folderBody
	if err := c.do(ctx, http.MethodGet, "/folders", nil, &resp); err != nil {
		return nil, err
	}
	folders := make([]domain.Folder, len(resp))
	for i, f := range resp {
		folders[i] = domain.Folder{
			ID:               f.ID,
			Name:             f.Name,
			Description:      f.Description,
			ClassificationID: f.ClassificationID,
			TagIDs:           f.TagIDs,
		}
	}
	return folders, nil
}
