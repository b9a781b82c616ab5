package controller

import (
	"edu-assistant-be/internal/dto"
	"edu-assistant-be/internal/pkg/serverutils"
	"edu-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISearchController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Search(ctx *fiber.Ctx) error
}

type searchController struct {
	searchService service.ISearchService
}

func NewSearchController(searchService service.ISearchService) ISearchController {
	return &searchController{
		searchService: searchService,
	}
}

func (c *searchController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/search/v1")
	h.Use(auth)
	h.Get("", c.Search)
}

func (c *searchController) Search(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromContext(ctx)
	if err != nil {
		return err
	}

	var req dto.SearchRequest
	if err := ctx.QueryParser(&req); err != nil {
		return serverutils.ErrorResponse(fiber.StatusBadRequest, "Invalid query")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.searchService.Search(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search content", res))
}
