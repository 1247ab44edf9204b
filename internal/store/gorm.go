package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// blobEntry is one persisted key.
type blobEntry struct {
	Key       string `gorm:"column:blob_key;primaryKey;size:191"`
	Value     []byte
	UpdatedAt time.Time
}

func (blobEntry) TableName() string {
	return "response_blobs"
}

// GormBackend stores blobs in a single table through GORM, so it runs on
// any dialect GORM supports (postgres and sqlite are wired in Open).
type GormBackend struct {
	db *gorm.DB
}

// NewGormBackend migrates the blob table and returns a backend over db.
func NewGormBackend(db *gorm.DB) (*GormBackend, error) {
	if err := db.AutoMigrate(&blobEntry{}); err != nil {
		return nil, err
	}
	return &GormBackend{db: db}, nil
}

func (g *GormBackend) Load(ctx context.Context, key string) ([]byte, error) {
	var entry blobEntry
	err := g.db.WithContext(ctx).Where("blob_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

func (g *GormBackend) Save(ctx context.Context, key string, data []byte) error {
	entry := blobEntry{Key: key, Value: data, UpdatedAt: time.Now().UTC()}
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "blob_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (g *GormBackend) Delete(ctx context.Context, key string) error {
	return g.db.WithContext(ctx).Where("blob_key = ?", key).Delete(&blobEntry{}).Error
}

func (g *GormBackend) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
