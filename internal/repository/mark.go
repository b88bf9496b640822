package repository

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MarkRepository defines interface for mark (rating) operations
type MarkRepository interface {
	Upsert(ctx context.Context, mark *models.Mark) error
	GetByPostAndSender(ctx context.Context, postID, userID uint) (*models.Mark, error)
}

type markRepository struct {
	db *gorm.DB
}

// NewMarkRepository creates a new MarkRepository
func NewMarkRepository(db *gorm.DB) MarkRepository {
	return &markRepository{db: db}
}

// Upsert creates the sender's mark on a post or replaces its value.
// The unique (post_id, user_id) index makes this atomic; re-marking never
// produces a second row.
func (r *markRepository) Upsert(ctx context.Context, mark *models.Mark) error {
	defer observability.TrackQuery("upsert", "marks")()

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(mark).Error
	if err != nil {
		observability.MarkUpserts.WithLabelValues("error").Inc()
		return err
	}
	observability.MarkUpserts.WithLabelValues("ok").Inc()
	cache.Invalidate(ctx, cache.PostKey(mark.PostID))
	return nil
}

func (r *markRepository) GetByPostAndSender(ctx context.Context, postID, userID uint) (*models.Mark, error) {
	defer observability.TrackQuery("get", "marks")()

	var mark models.Mark
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&mark).Error
	if err != nil {
		return nil, err
	}
	return &mark, nil
}
