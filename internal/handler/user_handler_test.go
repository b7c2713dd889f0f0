package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/econova/econova-api/internal/config"
	"github.com/econova/econova-api/internal/dto"
	"github.com/econova/econova-api/internal/handler"
	"github.com/econova/econova-api/internal/models"
	"github.com/econova/econova-api/internal/repository"
	"github.com/econova/econova-api/internal/router"
	"github.com/econova/econova-api/internal/service"
)

func setupUserApp(t *testing.T, name, role string) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	userRepo := repository.NewUserRepository(db)
	userService := service.NewUserService(userRepo, validate, logger)

	app := fiber.New()

	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		UserHandler: handler.NewUserHandler(userService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(1))
			c.Locals("user_role", role)
			return c.Next()
		},
	})

	return app
}

func registerUser(t *testing.T, app *fiber.App, payload dto.UserRegisterRequest) dto.UserResponse {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/users/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var decoded struct {
		Success bool             `json:"success"`
		Data    dto.UserResponse `json:"data"`
	}
	decodeResponse(t, resp, &decoded)
	require.True(t, decoded.Success)

	return decoded.Data
}

func TestUserHandlerRegisterAndGet(t *testing.T) {
	app := setupUserApp(t, "user_register_get", models.RoleStudent)

	created := registerUser(t, app, dto.UserRegisterRequest{
		Name:  "Dewi Lestari",
		Email: "dewi@example.com",
		Role:  models.RoleStudent,
	})
	require.NotZero(t, created.ID)
	require.Equal(t, models.RoleStudent, created.Role)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/users/1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var fetched struct {
		Data dto.UserResponse `json:"data"`
	}
	decodeResponse(t, resp, &fetched)
	require.Equal(t, "dewi@example.com", fetched.Data.Email)

	missing, err := app.Test(httptest.NewRequest("GET", "/api/v1/users/999", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, missing.StatusCode)
	require.NoError(t, missing.Body.Close())
}

func TestUserHandlerRejectsDuplicateEmail(t *testing.T) {
	app := setupUserApp(t, "user_duplicate", models.RoleStudent)

	registerUser(t, app, dto.UserRegisterRequest{
		Name:  "Dewi Lestari",
		Email: "dewi@example.com",
		Role:  models.RoleStudent,
	})

	body, err := json.Marshal(dto.UserRegisterRequest{
		Name:  "Another Dewi",
		Email: "DEWI@example.com",
		Role:  models.RoleStudent,
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/users/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func TestUserHandlerStudentsRequiresTeacherRole(t *testing.T) {
	app := setupUserApp(t, "user_rbac", models.RoleStudent)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/users/students", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func TestUserHandlerStudentsListsOnlyStudents(t *testing.T) {
	app := setupUserApp(t, "user_students", models.RoleTeacher)

	registerUser(t, app, dto.UserRegisterRequest{
		Name:  "Dewi Lestari",
		Email: "dewi@example.com",
		Role:  models.RoleStudent,
	})
	registerUser(t, app, dto.UserRegisterRequest{
		Name:  "Pak Budi",
		Email: "budi@example.com",
		Role:  models.RoleTeacher,
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/users/students", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listed struct {
		Data []dto.UserResponse `json:"data"`
	}
	decodeResponse(t, resp, &listed)
	require.Len(t, listed.Data, 1)
	require.Equal(t, "dewi@example.com", listed.Data[0].Email)
}
