// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser persists a user with a bcrypt-hashed password.
func (f *Factory) CreateUser(password string) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: gofakeit.Username(),
		Email:    gofakeit.Email(),
		Password: string(hashed),
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateCategory persists a category, reusing an existing row when the
// title already exists.
func (f *Factory) CreateCategory(title string) (*models.Category, error) {
	category := &models.Category{Title: title}
	err := f.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "title"}},
		DoNothing: true,
	}).Create(category).Error
	if err != nil {
		return nil, err
	}
	if category.ID == 0 {
		if err := f.db.Where("title = ?", title).First(category).Error; err != nil {
			return nil, err
		}
	}
	return category, nil
}

// BuildPost constructs a post without persisting it. Useful for batching.
func (f *Factory) BuildPost(user *models.User, category *models.Category) *models.Post {
	post := &models.Post{
		Title:      gofakeit.Sentence(5),
		Summary:    gofakeit.Sentence(12),
		Content:    gofakeit.Paragraph(2, 4, 8, "\n"),
		UserID:     user.ID,
		CategoryID: category.ID,
	}

	// realistic created_at spread over the last 90 days
	daysBack := f.rng.Intn(90)
	hoursBack := f.rng.Intn(24)
	post.CreatedAt = time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	return post
}

// CreatePostsBatch persists multiple posts in a single DB call.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.CreateInBatches(posts, 100).Error
}

// CreateComment persists a comment from sender on post.
func (f *Factory) CreateComment(post *models.Post, sender *models.User) (*models.Comment, error) {
	comment := &models.Comment{
		Body:   gofakeit.Sentence(10),
		PostID: post.ID,
		UserID: sender.ID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateMark upserts a mark from sender on post.
func (f *Factory) CreateMark(post *models.Post, sender *models.User) (*models.Mark, error) {
	mark := &models.Mark{
		Value:  models.MarkValueMin + f.rng.Intn(models.MarkValueMax-models.MarkValueMin+1),
		PostID: post.ID,
		UserID: sender.ID,
	}
	err := f.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(mark).Error
	if err != nil {
		return nil, fmt.Errorf("create mark: %w", err)
	}
	return mark, nil
}
