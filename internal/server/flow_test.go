package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestApp wires the full route table against an in-memory database.
// Redis is absent, so caching and rate limiting fail open.
func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// a second pooled connection would see an empty :memory: database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret: "test-secret-key-12345678901234567890123456789012",
		Port:      "8460",
		Env:       "test",
	}
	middleware.InitMiddleware(cfg)

	s := &Server{
		config:       cfg,
		db:           db,
		userRepo:     repository.NewUserRepository(db),
		postRepo:     repository.NewPostRepository(db),
		categoryRepo: repository.NewCategoryRepository(db),
		commentRepo:  repository.NewCommentRepository(db),
		markRepo:     repository.NewMarkRepository(db),
	}

	app := fiber.New()
	s.SetupRoutes(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func signupUser(t *testing.T, app *fiber.App, username, email string) string {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "password123",
	})
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.NotEmpty(t, result.Token)
	return result.Token
}

func TestPostLifecycle(t *testing.T) {
	app := setupTestApp(t)

	authorToken := signupUser(t, app, "author", "author@example.com")
	readerToken := signupUser(t, app, "reader", "reader@example.com")

	// create
	resp := doJSON(t, app, http.MethodPost, "/api/posts", authorToken, map[string]any{
		"title":   "First Post",
		"summary": "A short summary",
		"content": "Some longer content here",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Post
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	_ = resp.Body.Close()
	require.NotZero(t, created.ID)
	assert.Equal(t, "author", created.User.Username)

	postURL := fmt.Sprintf("/api/posts/%d", created.ID)

	// anonymous detail view
	resp = doJSON(t, app, http.MethodGet, postURL, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	// author cannot comment on their own post
	resp = doJSON(t, app, http.MethodPost, postURL+"/comments", authorToken, map[string]string{
		"body": "Replying to myself",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	// a reader can
	resp = doJSON(t, app, http.MethodPost, postURL+"/comments", readerToken, map[string]string{
		"body": "Great write-up",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var comment models.Comment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&comment))
	_ = resp.Body.Close()
	assert.Equal(t, "reader", comment.User.Username)

	// author cannot mark their own post
	resp = doJSON(t, app, http.MethodPut, postURL+"/mark", authorToken, map[string]int{"value": 5})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	// reader marks it, then changes their mind: the value is replaced
	resp = doJSON(t, app, http.MethodPut, postURL+"/mark", readerToken, map[string]int{"value": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var mark models.Mark
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&mark))
	_ = resp.Body.Close()
	assert.Equal(t, 3, mark.Value)

	resp = doJSON(t, app, http.MethodPut, postURL+"/mark", readerToken, map[string]int{"value": 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var remark models.Mark
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&remark))
	_ = resp.Body.Close()
	assert.Equal(t, 5, remark.Value)
	assert.Equal(t, mark.ID, remark.ID, "re-marking must replace, not add")

	// the reader sees only their own mark in the detail view
	resp = doJSON(t, app, http.MethodGet, postURL, readerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail models.Post
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&detail))
	_ = resp.Body.Close()
	require.Len(t, detail.Marks, 1)
	assert.Equal(t, 5, detail.Marks[0].Value)
	require.NotEmpty(t, detail.Comments)
	assert.Equal(t, "Great write-up", detail.Comments[0].Body)

	// update and delete are owner-only and 404 for anyone else
	resp = doJSON(t, app, http.MethodPut, postURL, readerToken, map[string]string{"title": "Hijacked"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, postURL, readerToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, app, http.MethodPut, postURL, authorToken, map[string]string{"title": "Renamed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var renamed models.Post
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&renamed))
	_ = resp.Body.Close()
	assert.Equal(t, "Renamed", renamed.Title)

	resp = doJSON(t, app, http.MethodDelete, postURL, authorToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, postURL, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestAnonymousWritesRejected(t *testing.T) {
	app := setupTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/posts", "", map[string]string{
		"title":   "Nope",
		"content": "Nope",
	})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var errResp models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, "/api/auth/login", errResp.Login)
}

func TestListingEnvelopes(t *testing.T) {
	app := setupTestApp(t)

	token := signupUser(t, app, "writer", "writer@example.com")

	for _, title := range []string{"Alpha", "Beta"} {
		resp := doJSON(t, app, http.MethodPost, "/api/posts", token, map[string]any{
			"title":   title,
			"content": "Content for " + title,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		_ = resp.Body.Close()
	}

	t.Run("All Posts", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/posts", "", nil)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var list models.PostList
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
		assert.Equal(t, "All posts", list.Title)
		assert.Len(t, list.Posts, 2)
	})

	t.Run("Sorted By Title", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/posts?sort=title", "", nil)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var list models.PostList
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
		require.Len(t, list.Posts, 2)
		assert.Equal(t, "Alpha", list.Posts[0].Title)
		assert.Equal(t, "Beta", list.Posts[1].Title)
	})

	t.Run("Unknown Sort Key", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/posts?sort=bogus", "", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("My Posts", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/posts/mine", token, nil)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var list models.PostList
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
		assert.Equal(t, "My posts", list.Title)
		assert.Len(t, list.Posts, 2)
	})

	t.Run("Empty Category", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/categories/Nonexistent/posts", "", nil)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var list models.PostList
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
		assert.Equal(t, "Posts in category Nonexistent", list.Title)
		assert.NotNil(t, list.Posts)
		assert.Empty(t, list.Posts)
	})
}
