package attachments

import (
	"context"

	"github.com/dmitrijs2005/gophupload/internal/client/models"
)

// Repository stores RemoteAttachment records grouped by parent resource.
type Repository interface {
	// Merge inserts the records, replacing those with the same id.
	Merge(ctx context.Context, kind models.ResourceKind, parentID string, items []models.RemoteAttachment) error

	// ListByParent returns the records of one parent, oldest first.
	ListByParent(ctx context.Context, kind models.ResourceKind, parentID string) ([]models.RemoteAttachment, error)

	// DeleteByID removes one record. It returns common.ErrorNotFound when no
	// record has that id.
	DeleteByID(ctx context.Context, id string) error
}
