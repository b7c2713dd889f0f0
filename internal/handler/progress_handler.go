package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/econova/econova-api/internal/dto"
	"github.com/econova/econova-api/internal/service"
	"github.com/econova/econova-api/internal/utils"
)

// ProgressHandler wires the progression and dashboard routes.
type ProgressHandler struct {
	progression service.ProgressionService
	dashboard   service.DashboardService
	logger      zerolog.Logger
}

// NewProgressHandler constructs the handler.
func NewProgressHandler(progression service.ProgressionService, dashboard service.DashboardService, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		progression: progression,
		dashboard:   dashboard,
		logger:      logger.With().Str("component", "progress_handler").Logger(),
	}
}

// Register attaches progression endpoints to the router group.
func (h *ProgressHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.getDashboard)
	router.Get("/achievements", h.achievements)
	router.Post("/levels/:id/complete", h.completeLevel)
}

func (h *ProgressHandler) getDashboard(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	dashboard, err := h.dashboard.GetDashboard(c.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}

func (h *ProgressHandler) achievements(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	progress, err := h.progression.Progress(c.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "progress retrieved", progress)
}

func (h *ProgressHandler) completeLevel(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	levelID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid level id")
	}

	payload := dto.LevelCompleteRequest{LevelID: int(levelID)}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}
		payload.LevelID = int(levelID)
	}

	result, err := h.progression.CompleteLevel(c.Context(), userID, payload)
	if err != nil {
		var validationErrors validator.ValidationErrors
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		case errors.Is(err, service.ErrValidation):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.As(err, &validationErrors):
			return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
		default:
			return h.internalError(c, err)
		}
	}

	h.dashboard.Invalidate(c.Context(), userID)

	return utils.SendSuccess(c, "level completed", result)
}

func (h *ProgressHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
