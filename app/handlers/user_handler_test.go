package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/amirphl/masuk10/app/dto"
	businessflow "github.com/amirphl/masuk10/business_flow"
	"github.com/amirphl/masuk10/models"
	"github.com/amirphl/masuk10/repository"
	testingutil "github.com/amirphl/masuk10/testing"
	"github.com/amirphl/masuk10/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newUserApp(t *testing.T, actor *models.User, db *testingutil.TestDB) *fiber.App {
	t.Helper()
	flow := businessflow.NewUserFlow(repository.NewUserRepository(db.DB), bcrypt.MinCost, utils.MinPasswordLength, zap.NewNop())
	h := NewUserHandler(flow, zap.NewNop())

	app := fiber.New()
	g := app.Group("/admin/users", withActor(actor.ID, actor.Role))
	g.Get("/", h.List)
	g.Post("/", h.Create)
	g.Get("/:id", h.Get)
	g.Patch("/:id", h.Update)
	g.Delete("/:id", h.Delete)
	g.Patch("/:id/password", h.ChangePassword)
	return app
}

func TestUserHandler_CRUD(t *testing.T) {
	db := testingutil.MustSetupTestDB(t)
	fixtures := testingutil.NewTestFixtures(db)
	admin, err := fixtures.CreateTestUser(utils.RoleAdmin)
	require.NoError(t, err)
	app := newUserApp(t, admin, db)

	resp := doRequest(t, app, http.MethodPost, "/admin/users", map[string]any{
		"email":    "Editor@Example.com",
		"password": "longenough",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decodeData[dto.UserDTO](t, decodeEnvelope(t, resp))
	assert.Equal(t, "editor@example.com", created.Email)
	assert.Equal(t, utils.RoleEditor, created.Role)

	resp = doRequest(t, app, http.MethodPost, "/admin/users", map[string]any{
		"email":    "editor@example.com",
		"password": "longenough",
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "EMAIL_ALREADY_EXISTS", decodeEnvelope(t, resp).Error.Code)

	resp = doRequest(t, app, http.MethodPost, "/admin/users", map[string]any{
		"email":    "short@example.com",
		"password": "short",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/admin/users", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(2), decodeData[dto.ListUsersResponse](t, decodeEnvelope(t, resp)).Total)

	resp = doRequest(t, app, http.MethodPatch, fmt.Sprintf("/admin/users/%d", created.ID), map[string]any{"role": "ADMIN"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, utils.RoleAdmin, decodeData[dto.UserDTO](t, decodeEnvelope(t, resp)).Role)

	resp = doRequest(t, app, http.MethodPatch, fmt.Sprintf("/admin/users/%d", created.ID), map[string]any{"role": "OWNER"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/admin/users/%d", admin.ID), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "CANNOT_DELETE_SELF", decodeEnvelope(t, resp).Error.Code)

	resp = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/admin/users/%d", created.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/admin/users/%d", created.ID), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestUserHandler_ChangePasswordAsEditor(t *testing.T) {
	db := testingutil.MustSetupTestDB(t)
	fixtures := testingutil.NewTestFixtures(db)
	admin, err := fixtures.CreateTestUser(utils.RoleAdmin)
	require.NoError(t, err)
	editor, err := fixtures.CreateTestUser(utils.RoleEditor)
	require.NoError(t, err)
	app := newUserApp(t, editor, db)

	resp := doRequest(t, app, http.MethodPatch, fmt.Sprintf("/admin/users/%d/password", admin.ID), map[string]any{"new_password": "AnotherPass1"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decodeEnvelope(t, resp).Error.Code)

	resp = doRequest(t, app, http.MethodPatch, fmt.Sprintf("/admin/users/%d/password", editor.ID), map[string]any{"new_password": "AnotherPass1"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
