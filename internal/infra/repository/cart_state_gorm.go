package repository

import (
	"context"
	"errors"

	"battwheels/internal/domain/model"
	repo "battwheels/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Key-value persistence for cart state: one row per session key, full payload
// replaced on every save. The server-side stand-in for browser local storage.
type CartStateGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartStateGormRepository(db *gorm.DB) *CartStateGormRepository {
	return &CartStateGormRepository{db: db}
}

func (r *CartStateGormRepository) Load(ctx context.Context, key string) (string, error) {
	var rec model.CartRecord
	err := r.db.WithContext(ctx).First(&rec, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", repo.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return rec.Payload, nil
}

// Save upserts the single record for key (last write wins).
func (r *CartStateGormRepository) Save(ctx context.Context, key string, payload string) error {
	rec := model.CartRecord{Key: key, Payload: payload}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&rec).Error
}

func (r *CartStateGormRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&model.CartRecord{}, "key = ?", key).Error
}
