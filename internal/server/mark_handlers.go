package server

import (
	"errors"
	"fmt"

	"inkwell/internal/models"
	"inkwell/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SubmitMark handles PUT /api/posts/:id/mark
//
// Upserts the sender's mark on a post: one mark per (post, sender),
// re-submitting replaces the value. The post's author may not mark their
// own post.
func (s *Server) SubmitMark(c *fiber.Ctx) error {
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
			models.NewForbiddenError("Authors may not mark their own posts"))
	}

	var req struct {
		Value int `json:"value"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if fields := validation.MarkForm(req.Value); len(fields) > 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldValidationError(fields))
	}

	mark := &models.Mark{
		Value:  req.Value,
		PostID: post.ID,
		UserID: userID,
	}

	if err := s.markRepo.Upsert(ctx, mark); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// Re-read so an updated mark reports its real row, not the insert shell
	saved, err := s.markRepo.GetByPostAndSender(ctx, post.ID, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	c.Set("Location", fmt.Sprintf("/api/posts/%d", post.ID))
	return c.JSON(saved)
}
