package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetCategories handles GET /api/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	ctx := c.UserContext()

	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if categories == nil {
		categories = []*models.Category{}
	}
	return c.JSON(&models.CategoryList{Categories: categories})
}
