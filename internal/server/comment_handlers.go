package server

import (
	"errors"
	"fmt"

	"inkwell/internal/models"
	"inkwell/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateComment handles POST /api/posts/:id/comments
//
// The post's author may not comment on their own post; the sender is
// always the authenticated user.
func (s *Server) CreateComment(c *fiber.Ctx) error {
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

	if post.UserID == userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Authors may not comment on their own posts"))
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if fields := validation.CommentForm(req.Body); len(fields) > 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldValidationError(fields))
	}

	comment := &models.Comment{
		Body:   req.Body,
		PostID: post.ID,
		UserID: userID,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// Load created comment with its sender
	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	c.Set("Location", fmt.Sprintf("/api/posts/%d", post.ID))
	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetComments handles GET /api/posts/:id/comments (public)
func (s *Server) GetComments(c *fiber.Ctx) error {
	ctx := c.UserContext()

	postID, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
	}

	if _, err := s.postRepo.GetByID(ctx, uint(postID), 0); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Post", postID))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	comments, err := s.commentRepo.ListByPost(ctx, uint(postID))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if comments == nil {
		comments = []*models.Comment{}
	}
	return c.JSON(comments)
}
