package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/econova/econova-api/internal/catalog"
	"github.com/econova/econova-api/internal/utils"
)

const defaultRandomCount = 3

// CatalogHandler serves the static task catalog.
type CatalogHandler struct {
	catalog *catalog.Catalog
	logger  zerolog.Logger
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(cat *catalog.Catalog, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: cat,
		logger:  logger.With().Str("component", "catalog_handler").Logger(),
	}
}

// Register attaches catalog endpoints to the router group.
func (h *CatalogHandler) Register(router fiber.Router) {
	router.Get("/tasks", h.tasks)
	router.Get("/tasks/random", h.random)
	router.Get("/tasks/:id", h.task)
	router.Get("/categories", h.categories)
	router.Get("/difficulties", h.difficulties)
}

func (h *CatalogHandler) tasks(c *fiber.Ctx) error {
	if category := c.Query("category"); category != "" {
		return utils.SendSuccess(c, "tasks retrieved", h.catalog.TasksByCategory(category))
	}
	if difficulty := c.Query("difficulty"); difficulty != "" {
		return utils.SendSuccess(c, "tasks retrieved", h.catalog.TasksByDifficulty(difficulty))
	}

	tasks := make([]catalog.Task, 0)
	for _, category := range h.catalog.Categories() {
		tasks = append(tasks, h.catalog.TasksByCategory(category.ID)...)
	}

	return utils.SendSuccess(c, "tasks retrieved", tasks)
}

func (h *CatalogHandler) task(c *fiber.Ctx) error {
	task, ok := h.catalog.TaskByID(c.Params("id"))
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "task not found")
	}

	return utils.SendSuccess(c, "task retrieved", task)
}

func (h *CatalogHandler) random(c *fiber.Ctx) error {
	count, err := parseQueryInt(c, "count")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid count")
	}
	if count <= 0 {
		count = defaultRandomCount
	}

	return utils.SendSuccess(c, "tasks sampled", h.catalog.RandomTasks(count))
}

func (h *CatalogHandler) categories(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "categories retrieved", h.catalog.Categories())
}

func (h *CatalogHandler) difficulties(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "difficulty levels retrieved", h.catalog.DifficultyLevels())
}
