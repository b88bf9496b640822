// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// ErrInvalidSort is returned when a sort key is not in the allow-list.
var ErrInvalidSort = errors.New("invalid sort key")

// searchVector is the weighted document vector for post search: title
// carries weight A, content weight B. Kept in sync with the GIN expression
// index created by database.EnsureSearchIndex.
const searchVector = "(setweight(to_tsvector('english', coalesce(posts.title, '')), 'A') || " +
	"setweight(to_tsvector('english', coalesce(posts.content, '')), 'B'))"

// sortColumns maps accepted sort keys to safe ORDER BY clauses. User input
// never reaches ORDER BY directly.
var sortColumns = map[string]string{
	"title":    "posts.title ASC",
	"-title":   "posts.title DESC",
	"created":  "posts.created_at ASC",
	"-created": "posts.created_at DESC",
}

// SortClause resolves a sort key against the allow-list.
func SortClause(key string) (string, bool) {
	clause, ok := sortColumns[key]
	return clause, ok
}

// ListOptions carries the browse parameters of the post listing: an
// optional full-text query, an optional sort key, and limit/offset.
type ListOptions struct {
	Query  string
	Sort   string
	Limit  int
	Offset int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	List(ctx context.Context, opts ListOptions) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error)
	ListByCategory(ctx context.Context, title string, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()
	return r.db.WithContext(ctx).Create(post).Error
}

// GetByID fetches one post with its author, category and comments
// preloaded. Marks are scoped to the requesting user so other readers'
// ratings are never exposed in the detail view. Anonymous reads (no marks
// to scope) go through the cache.
func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	defer observability.TrackQuery("get", "posts")()

	var post models.Post
	detail := func(db *gorm.DB) *gorm.DB {
		q := db.Preload("User").
			Preload("Category").
			Preload("Comments", func(db *gorm.DB) *gorm.DB {
				return db.Order("comments.created_at DESC")
			}).
			Preload("Comments.User")
		if currentUserID != 0 {
			q = q.Preload("Marks", "user_id = ?", currentUserID)
		}
		return q
	}

	var err error
	if currentUserID == 0 {
		err = cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
			return detail(r.db.WithContext(ctx)).First(&post, id).Error
		})
	} else {
		err = detail(r.db.WithContext(ctx)).First(&post, id).Error
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns all posts with author and category preloaded. A non-empty
// Query filters by weighted full-text match and orders by relevance rank
// descending; a non-empty Sort overrides the ordering (applied after the
// search filter when both are present).
func (r *postRepository) List(ctx context.Context, opts ListOptions) ([]*models.Post, error) {
	defer observability.TrackQuery("list", "posts")()

	db := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Preload("User").
		Preload("Category")

	if opts.Query != "" {
		observability.SearchQueries.Inc()
		db = db.
			Select("posts.*, ts_rank("+searchVector+", plainto_tsquery('english', ?)) AS rank", opts.Query).
			Where(searchVector+" @@ plainto_tsquery('english', ?)", opts.Query)
	}

	switch {
	case opts.Sort != "":
		clause, ok := SortClause(opts.Sort)
		if !ok {
			return nil, ErrInvalidSort
		}
		db = db.Order(clause)
	case opts.Query != "":
		db = db.Order("rank DESC")
	default:
		db = db.Order("posts.created_at DESC")
	}

	var posts []*models.Post
	err := db.Limit(opts.Limit).Offset(opts.Offset).Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error) {
	defer observability.TrackQuery("list_by_author", "posts")()

	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", authorID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

// ListByCategory filters posts by exact category title. An unknown title
// yields an empty list, not an error.
func (r *postRepository) ListByCategory(ctx context.Context, title string, limit, offset int) ([]*models.Post, error) {
	defer observability.TrackQuery("list_by_category", "posts")()

	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Category").
		Joins("JOIN categories ON categories.id = posts.category_id").
		Where("categories.title = ?", title).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

// Update persists the writable columns only. The post usually arrives with
// User, Comments and Marks preloaded; a full Save would re-upsert those
// association rows.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("update", "posts")()

	err := r.db.WithContext(ctx).
		Model(post).
		Select("title", "summary", "content", "updated_at").
		Updates(post).Error
	if err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.PostKey(post.ID))
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "posts")()

	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.PostKey(id))
	return nil
}
