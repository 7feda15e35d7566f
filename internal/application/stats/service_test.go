package stats

import (
	"context"
	"testing"
	"time"

	"estate-backend/internal/domain"
	"estate-backend/internal/infrastructure/database"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupStatsTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return &Service{DB: db}, db
}

func TestCollectCounts(t *testing.T) {
	svc, db := setupStatsTest(t)

	users := []domain.User{
		{UserName: "a", Email: "a@test.com", PasswordHash: "x", Role: "admin"},
		{UserName: "b", Email: "b@test.com", PasswordHash: "x", Role: "realtor"},
		{UserName: "c", Email: "c@test.com", PasswordHash: "x", Role: "realtor"},
		{UserName: "d", Email: "d@test.com", PasswordHash: "x", Role: "user"},
	}
	for i := range users {
		require.NoError(t, db.Create(&users[i]).Error)
	}
	realtor := users[1]
	require.NoError(t, db.Create(&domain.Listing{OwnerID: realtor.ID, Title: "A", DealType: "sale", IsActive: true}).Error)
	require.NoError(t, db.Create(&domain.Listing{OwnerID: realtor.ID, Title: "B", DealType: "sale", IsActive: false}).Error)

	recent := domain.Application{ContactPhone: "+998901234567"}
	require.NoError(t, db.Create(&recent).Error)
	old := domain.Application{ContactPhone: "+998907654321"}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Model(&old).Update("created_at", time.Now().AddDate(0, 0, -10)).Error)

	s, err := svc.Collect(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 4, s.Users.Total)
	assert.EqualValues(t, 2, s.Users.Realtors)
	assert.EqualValues(t, 1, s.Users.Admins)
	assert.EqualValues(t, 2, s.Listings.Total)
	assert.EqualValues(t, 1, s.Listings.Active)
	assert.EqualValues(t, 1, s.Listings.Inactive)
	assert.EqualValues(t, 1, s.ApplicationsLast7Days)
}
