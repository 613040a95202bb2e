package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/arledger/internal/archive/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) domain.Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.ArchivedDocument{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{DB: db, Log: zap.NewNop(), GenID: node})
}

func TestPutAndGetRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	key, err := store.Put(ctx, domain.StoreRequest{
		CustomerID:  42,
		DisplayName: "Smith 2026-0042-01.pdf",
		ContentType: "application/pdf",
		Content:     []byte("%PDF-1.7 test"),
		Metadata:    map[string]any{"invoice_number": "2026-0042-01"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, key)

	doc, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "Smith 2026-0042-01.pdf", doc.DisplayName)
	assert.Equal(t, int64(13), doc.SizeBytes)
	assert.Equal(t, []byte("%PDF-1.7 test"), doc.Content)
}

func TestPutRejectsBadRequests(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, domain.StoreRequest{DisplayName: "x.pdf"})
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)

	_, err = store.Put(ctx, domain.StoreRequest{Content: []byte("data")})
	assert.ErrorIs(t, err, domain.ErrMissingFilename)
}

func TestPutGeneratesDistinctKeys(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	req := domain.StoreRequest{
		CustomerID:  7,
		DisplayName: "doc.pdf",
		Content:     []byte("data"),
	}
	first, err := store.Put(ctx, req)
	require.NoError(t, err)
	second, err := store.Put(ctx, req)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
