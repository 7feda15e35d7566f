package locations

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	locsvc "estate-backend/internal/application/locations"
	"estate-backend/internal/domain"
	"estate-backend/internal/infrastructure/database"
	"estate-backend/internal/middleware"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupLocationsTest(t *testing.T) (*Handlers, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return &Handlers{Service: &locsvc.Service{DB: db}}, db
}

// asUser injects a session user the way the session middleware would.
func asUser(id uint, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"id":        float64(id),
			"user_name": "tester",
			"email":     "tester@test.com",
			"role":      role,
		})
		return c.Next()
	}
}

// Creation and deletion need a session but no particular role.
func TestCreateAllowedForAnyAuthenticatedUser(t *testing.T) {
	h, db := setupLocationsTest(t)
	app := fiber.New()
	app.Post("/locations", asUser(1, "user"), middleware.RequireAuth(), h.Create)

	body, _ := json.Marshal(fiber.Map{"city": "Tashkent", "district": "Yunusabad"})
	req := httptest.NewRequest("POST", "/locations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	var n int64
	db.Model(&domain.Location{}).Count(&n)
	assert.EqualValues(t, 1, n)
}

func TestCreateWithoutSessionIs401(t *testing.T) {
	h, _ := setupLocationsTest(t)
	app := fiber.New()
	app.Post("/locations", middleware.RequireAuth(), h.Create)

	body, _ := json.Marshal(fiber.Map{"city": "Tashkent", "district": "Yunusabad"})
	req := httptest.NewRequest("POST", "/locations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestDeleteAllowedForAnyAuthenticatedUser(t *testing.T) {
	h, db := setupLocationsTest(t)
	loc := &domain.Location{City: "Tashkent", District: "Chilanzar"}
	require.NoError(t, db.Create(loc).Error)

	app := fiber.New()
	app.Delete("/locations/:id", asUser(1, "user"), middleware.RequireAuth(), h.Delete)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/locations/1", nil))
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)

	var n int64
	db.Model(&domain.Location{}).Count(&n)
	assert.EqualValues(t, 0, n)
}
