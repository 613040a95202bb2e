// Package domain contains the archived-document model and store contract.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

var (
	ErrEmptyDocument   = errors.New("empty_document")
	ErrMissingFilename = errors.New("missing_display_name")
)

// ArchivedDocument is a rendered artifact kept for audit. StorageKey is the
// handle returned to callers; Content holds the raw bytes.
type ArchivedDocument struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	StorageKey  string            `gorm:"type:text;not null;uniqueIndex" json:"storage_key"`
	CustomerID  snowflake.ID      `gorm:"not null;index" json:"customer_id"`
	DisplayName string            `gorm:"type:text;not null" json:"display_name"`
	ContentType string            `gorm:"type:text;not null" json:"content_type"`
	SizeBytes   int64             `gorm:"not null" json:"size_bytes"`
	Content     []byte            `gorm:"type:bytea" json:"-"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (ArchivedDocument) TableName() string { return "archived_documents" }

// StoreRequest carries one byte buffer plus its display metadata.
type StoreRequest struct {
	CustomerID  snowflake.ID
	DisplayName string
	ContentType string
	Content     []byte
	Metadata    map[string]any
}

// Store persists rendered documents and returns their storage keys.
type Store interface {
	Put(ctx context.Context, req StoreRequest) (string, error)
	Get(ctx context.Context, storageKey string) (ArchivedDocument, error)
}
