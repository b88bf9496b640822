package seed

import (
	"fmt"
	"log"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// Options controls the volume of seeded data.
type Options struct {
	Users           int
	PostsPerUser    int
	CommentsPerPost int
}

// DefaultOptions is a small but representative demo set.
var DefaultOptions = Options{
	Users:           8,
	PostsPerUser:    4,
	CommentsPerPost: 3,
}

var defaultCategories = []string{
	"Programming", "Travel", "Cooking", "Music", "Science",
}

// Clear removes all seeded rows. Order matters because of foreign keys.
func Clear(db *gorm.DB) error {
	tables := []string{"marks", "comments", "posts", "categories", "users"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Run populates the database with demo users, categories, posts, comments
// and marks. Comments and marks are always created by a user other than
// the post's author, matching the API's forbidden rule.
func Run(db *gorm.DB, opts Options) error {
	f := NewFactory(db)

	categories := make([]*models.Category, 0, len(defaultCategories))
	for _, title := range defaultCategories {
		category, err := f.CreateCategory(title)
		if err != nil {
			return fmt.Errorf("seed category %q: %w", title, err)
		}
		categories = append(categories, category)
	}

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user, err := f.CreateUser("password123")
		if err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		users = append(users, user)
	}

	var posts []*models.Post
	for _, user := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			category := categories[f.rng.Intn(len(categories))]
			posts = append(posts, f.BuildPost(user, category))
		}
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return fmt.Errorf("seed posts: %w", err)
	}

	for _, post := range posts {
		for i := 0; i < opts.CommentsPerPost; i++ {
			sender := users[f.rng.Intn(len(users))]
			if sender.ID == post.UserID {
				continue
			}
			if _, err := f.CreateComment(post, sender); err != nil {
				return fmt.Errorf("seed comment: %w", err)
			}
			if _, err := f.CreateMark(post, sender); err != nil {
				return fmt.Errorf("seed mark: %w", err)
			}
		}
	}

	log.Printf("Seeded %d users, %d categories, %d posts", len(users), len(categories), len(posts))
	return nil
}
