package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/arledger/internal/archive/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func New(p Params) domain.Store {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("archive.service"),
		genID: p.GenID,
	}
}

func (s *Service) Put(ctx context.Context, req domain.StoreRequest) (string, error) {
	if len(req.Content) == 0 {
		return "", domain.ErrEmptyDocument
	}
	if req.DisplayName == "" {
		return "", domain.ErrMissingFilename
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	metadata := datatypes.JSONMap{}
	for key, value := range req.Metadata {
		if key == "" {
			continue
		}
		metadata[key] = value
	}

	doc := domain.ArchivedDocument{
		ID:          s.genID.Generate(),
		StorageKey:  uuid.NewString(),
		CustomerID:  req.CustomerID,
		DisplayName: req.DisplayName,
		ContentType: contentType,
		SizeBytes:   int64(len(req.Content)),
		Content:     req.Content,
		Metadata:    metadata,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return "", err
	}

	s.log.Info("archived document",
		zap.String("storage_key", doc.StorageKey),
		zap.String("display_name", doc.DisplayName),
		zap.Int64("size_bytes", doc.SizeBytes),
	)
	return doc.StorageKey, nil
}

func (s *Service) Get(ctx context.Context, storageKey string) (domain.ArchivedDocument, error) {
	var doc domain.ArchivedDocument
	err := s.db.WithContext(ctx).
		Where("storage_key = ?", storageKey).
		First(&doc).Error
	if err != nil {
		return domain.ArchivedDocument{}, err
	}
	return doc, nil
}
