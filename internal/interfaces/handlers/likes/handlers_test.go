package likes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	likesvc "estate-backend/internal/application/likes"
	"estate-backend/internal/domain"
	"estate-backend/internal/infrastructure/database"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupLikesTest(t *testing.T) (*Handlers, *gorm.DB, *domain.Listing) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	owner := &domain.User{UserName: "realtor1", Email: "r@test.com", PasswordHash: "x", Role: "realtor"}
	require.NoError(t, db.Create(owner).Error)
	l := &domain.Listing{OwnerID: owner.ID, Title: "Flat", DealType: domain.DealTypeSale, IsActive: true}
	require.NoError(t, db.Create(l).Error)

	return &Handlers{Service: &likesvc.Service{DB: db}}, db, l
}

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

func TestToggleEndpointFlipsState(t *testing.T) {
	h, _, l := setupLikesTest(t)
	app := fiber.New()
	app.Post("/listings/:id/like", h.Toggle)

	url := fmt.Sprintf("/listings/%d/like", l.ID)
	resp, err := app.Test(httptest.NewRequest("POST", url, nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	data := body["data"].(map[string]interface{})
	assert.Equal(t, true, data["liked"])
	assert.EqualValues(t, 1, data["likes_count"])

	// same client toggles it back off
	resp, err = app.Test(httptest.NewRequest("POST", url, nil))
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	data = body["data"].(map[string]interface{})
	assert.Equal(t, false, data["liked"])
	assert.EqualValues(t, 0, data["likes_count"])
}

func TestToggleUnknownListing(t *testing.T) {
	h, _, _ := setupLikesTest(t)
	app := fiber.New()
	app.Post("/listings/:id/like", h.Toggle)

	resp, err := app.Test(httptest.NewRequest("POST", "/listings/999/like", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestFavoritesFlow(t *testing.T) {
	h, db, l := setupLikesTest(t)
	user := &domain.User{UserName: "buyer", Email: "b@test.com", PasswordHash: "x", Role: "user"}
	require.NoError(t, db.Create(user).Error)

	app := fiber.New()
	app.Use(asUser(user.ID, "user"))
	app.Get("/favorites", h.ListFavorites)
	app.Post("/favorites", h.AddFavorite)
	app.Delete("/favorites/:listing_id", h.RemoveFavorite)

	payload, _ := json.Marshal(map[string]uint{"listing_id": l.ID})
	req := httptest.NewRequest("POST", "/favorites", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	// adding again is still a success, not a conflict
	req = httptest.NewRequest("POST", "/favorites", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/favorites", nil))
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	favs := body["data"].([]interface{})
	assert.Len(t, favs, 1)

	resp, err = app.Test(httptest.NewRequest("DELETE", fmt.Sprintf("/favorites/%d", l.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("DELETE", fmt.Sprintf("/favorites/%d", l.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestFavoritesRequireAuth(t *testing.T) {
	h, _, l := setupLikesTest(t)
	app := fiber.New()
	app.Post("/favorites", h.AddFavorite)

	payload, _ := json.Marshal(map[string]uint{"listing_id": l.ID})
	req := httptest.NewRequest("POST", "/favorites", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}
