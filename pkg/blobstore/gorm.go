package blobstore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlobRecord is one persisted blob row.
type BlobRecord struct {
	Key       string         `gorm:"type:varchar(100);primaryKey" json:"key"`
	Value     datatypes.JSON `gorm:"type:jsonb;not null" json:"value"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BlobRecord) TableName() string {
	return "tracker_blobs"
}

// GormStore persists blobs in postgres through gorm.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&BlobRecord{}); err != nil {
		return nil, fmt.Errorf("migrate tracker_blobs: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	var records []BlobRecord
	if err := s.db.WithContext(ctx).Where("key IN ?", keys).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("find blobs: %w", err)
	}
	for _, r := range records {
		out[r.Key] = []byte(r.Value)
	}
	return out, nil
}

func (s *GormStore) Set(ctx context.Context, items map[string][]byte) error {
	if len(items) == 0 {
		return nil
	}
	records := make([]BlobRecord, 0, len(items))
	for k, v := range items {
		records = append(records, BlobRecord{Key: k, Value: datatypes.JSON(v)})
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&records).Error
	if err != nil {
		return fmt.Errorf("upsert blobs: %w", err)
	}
	return nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
