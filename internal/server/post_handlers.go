package server

import (
	"errors"
	"fmt"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// currentUserID returns the authenticated user ID set by the auth
// middleware, or (0, false) for anonymous requests.
func currentUserID(c *fiber.Ctx) (uint, bool) {
	uid, ok := c.Locals("userID").(uint)
	return uid, ok
}

func listResponse(title string, posts []*models.Post) *models.PostList {
	if posts == nil {
		posts = []*models.Post{}
	}
	return &models.PostList{Title: title, Posts: posts}
}

// GetPosts handles GET /api/posts
//
// `q` filters by weighted full-text search and orders by relevance rank
// descending. `sort` overrides the ordering with an allow-listed key,
// applied after the search filter when both are present. Neither yields
// newest-first.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()

	opts := repository.ListOptions{
		Query:  c.Query("q"),
		Sort:   c.Query("sort"),
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}

	if opts.Sort != "" {
		if _, ok := repository.SortClause(opts.Sort); !ok {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(fmt.Sprintf("Unknown sort key %q", opts.Sort)))
		}
	}

	posts, err := s.postRepo.List(ctx, opts)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(listResponse("All posts", posts))
}

// GetMyPosts handles GET /api/posts/mine (authenticated)
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	posts, err := s.postRepo.ListByAuthor(ctx, userID, limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(listResponse("My posts", posts))
}

// GetPostsByAuthor handles GET /api/users/:id/posts
//
// An author id with zero matches yields an empty list, not an error.
func (s *Server) GetPostsByAuthor(c *fiber.Ctx) error {
	ctx := c.UserContext()

	authorID, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid author ID"))
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	posts, err := s.postRepo.ListByAuthor(ctx, uint(authorID), limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(listResponse(fmt.Sprintf("Posts by author %d", authorID), posts))
}

// GetPostsByCategory handles GET /api/categories/:title/posts
//
// Filters by exact category title; an unknown title yields an empty list.
func (s *Server) GetPostsByCategory(c *fiber.Ctx) error {
	ctx := c.UserContext()
	title := c.Params("title")

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	posts, err := s.postRepo.ListByCategory(ctx, title, limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(listResponse(fmt.Sprintf("Posts in category %s", title), posts))
}

// GetPost handles GET /api/posts/:id
//
// Comments are preloaded; marks are scoped to the requesting user.
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
	}

	userID, _ := currentUserID(c)

	post, err := s.postRepo.GetByID(ctx, uint(id), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Post", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(post)
}

// CreatePost handles POST /api/posts
//
// The author is always the authenticated user; it is never taken from the
// request body.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	var req struct {
		Title      string `json:"title"`
		Summary    string `json:"summary"`
		Content    string `json:"content"`
		CategoryID uint   `json:"category_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if fields := validation.PostForm(req.Title, req.Summary, req.Content); len(fields) > 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldValidationError(fields))
	}

	post := &models.Post{
		Title:      req.Title,
		Summary:    req.Summary,
		Content:    req.Content,
		CategoryID: req.CategoryID,
		UserID:     userID,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// Load author and category for the response
	created, err := s.postRepo.GetByID(ctx, post.ID, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	c.Set("Location", "/api/posts/mine")
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdatePost handles PUT /api/posts/:id
//
// Owner-only: a requester who is not the author gets 404, indistinguishable
// from a missing post. Exactly title/summary/content are writable.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	postID, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
	}

	var req struct {
		Title   string `json:"title"`
		Summary string `json:"summary"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postRepo.GetByID(ctx, uint(postID), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Post", postID))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// Ownership is decided by the author's identity key, not by comparing
	// request-scoped objects.
	if post.UserID != userID {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post", postID))
	}

	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Summary != "" {
		post.Summary = req.Summary
	}
	if req.Content != "" {
		post.Content = req.Content
	}

	if fields := validation.PostForm(post.Title, post.Summary, post.Content); len(fields) > 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldValidationError(fields))
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	c.Set("Location", fmt.Sprintf("/api/posts/%d", post.ID))
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
//
// Owner-only, same 404 contract as update.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	postID, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
	}

	post, err := s.postRepo.GetByID(ctx, uint(postID), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Post", postID))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if post.UserID != userID {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post", postID))
	}

	if err := s.postRepo.Delete(ctx, uint(postID)); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	c.Set("Location", "/api/posts/mine")
	return c.SendStatus(fiber.StatusNoContent)
}
