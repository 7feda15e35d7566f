package leads

import (
	"context"
	"testing"

	"estate-backend/internal/application/images"
	"estate-backend/internal/domain"
	"estate-backend/internal/infrastructure/database"
	"estate-backend/internal/pkg/apperror"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupLeadsTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return &Service{DB: db, Images: &images.Service{DB: db, MediaDir: t.TempDir()}}, db
}

func newUser(t *testing.T, db *gorm.DB, name, role string) *domain.User {
	u := &domain.User{UserName: name, Email: name + "@test.com", PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func newListing(t *testing.T, db *gorm.DB, ownerID uint) *domain.Listing {
	l := &domain.Listing{OwnerID: ownerID, Title: "Flat", DealType: domain.DealTypeSale, IsActive: true}
	require.NoError(t, db.Create(l).Error)
	return l
}

func TestSubmitRequiresValidPhone(t *testing.T) {
	svc, _ := setupLeadsTest(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, SubmitInput{Name: "Bob"}, nil)
	require.Error(t, err)
	assert.Contains(t, apperror.From(err).Fields, "contact_phone")

	_, err = svc.Submit(ctx, SubmitInput{Name: "Bob", ContactPhone: "abc"}, nil)
	require.Error(t, err)
	assert.Contains(t, apperror.From(err).Fields, "contact_phone")
}

func TestSubmitAnonymousAndLinked(t *testing.T) {
	svc, db := setupLeadsTest(t)
	ctx := context.Background()
	realtor := newUser(t, db, "realtor1", "realtor")
	l := newListing(t, db, realtor.ID)

	anon, err := svc.Submit(ctx, SubmitInput{ListingID: &l.ID, Name: "Bob", ContactPhone: "+998901234567"}, nil)
	require.NoError(t, err)
	assert.Nil(t, anon.UserID)

	buyer := newUser(t, db, "buyer", "user")
	linked, err := svc.Submit(ctx, SubmitInput{ListingID: &l.ID, Name: "Alice", ContactPhone: "+998901234568"},
		&Viewer{ID: buyer.ID})
	require.NoError(t, err)
	require.NotNil(t, linked.UserID)
	assert.Equal(t, buyer.ID, *linked.UserID)
}

func TestSubmitRejectsMissingListing(t *testing.T) {
	svc, _ := setupLeadsTest(t)
	missing := uint(999)
	_, err := svc.Submit(context.Background(), SubmitInput{ListingID: &missing, ContactPhone: "+998901234567"}, nil)
	require.Error(t, err)
	assert.Contains(t, apperror.From(err).Fields, "listing_id")
}

func TestListScopesByViewer(t *testing.T) {
	svc, db := setupLeadsTest(t)
	ctx := context.Background()
	realtor := newUser(t, db, "realtor1", "realtor")
	otherRealtor := newUser(t, db, "realtor2", "realtor")
	buyer := newUser(t, db, "buyer", "user")
	admin := newUser(t, db, "admin1", "admin")

	mine := newListing(t, db, realtor.ID)
	foreign := newListing(t, db, otherRealtor.ID)

	_, err := svc.Submit(ctx, SubmitInput{ListingID: &mine.ID, ContactPhone: "+998901111111"}, &Viewer{ID: buyer.ID})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, SubmitInput{ListingID: &foreign.ID, ContactPhone: "+998902222222"}, nil)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, SubmitInput{ListingID: &foreign.ID, ContactPhone: "+998903333333"},
		&Viewer{ID: realtor.ID, Realtor: true})
	require.NoError(t, err)

	// anonymous viewer is rejected
	_, err = svc.List(ctx, nil)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeUnauthorized, apperror.From(err).Code)

	// admin sees all three
	apps, err := svc.List(ctx, &Viewer{ID: admin.ID, Admin: true})
	require.NoError(t, err)
	assert.Len(t, apps, 3)

	// realtor sees leads on own listing plus own submissions
	apps, err = svc.List(ctx, &Viewer{ID: realtor.ID, Realtor: true})
	require.NoError(t, err)
	assert.Len(t, apps, 2)

	// regular user sees only own submissions
	apps, err = svc.List(ctx, &Viewer{ID: buyer.ID})
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}

func TestUpdateOnlyBySubmitterOrAdmin(t *testing.T) {
	svc, db := setupLeadsTest(t)
	ctx := context.Background()
	realtor := newUser(t, db, "realtor1", "realtor")
	buyer := newUser(t, db, "buyer", "user")
	l := newListing(t, db, realtor.ID)

	app, err := svc.Submit(ctx, SubmitInput{ListingID: &l.ID, ContactPhone: "+998901234567"}, &Viewer{ID: buyer.ID})
	require.NoError(t, err)

	msg := "still interested?"
	// listing owner may see but not modify
	_, err = svc.Update(ctx, app.ID, UpdateInput{Message: &msg}, &Viewer{ID: realtor.ID, Realtor: true})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeForbidden, apperror.From(err).Code)

	got, err := svc.Update(ctx, app.ID, UpdateInput{Message: &msg}, &Viewer{ID: buyer.ID})
	require.NoError(t, err)
	assert.Equal(t, msg, got.Message)
}

func TestDeleteIsHard(t *testing.T) {
	svc, db := setupLeadsTest(t)
	ctx := context.Background()
	buyer := newUser(t, db, "buyer", "user")

	app, err := svc.Submit(ctx, SubmitInput{ContactPhone: "+998901234567"}, &Viewer{ID: buyer.ID})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, app.ID, &Viewer{ID: buyer.ID}))

	var n int64
	db.Model(&domain.Application{}).Count(&n)
	assert.EqualValues(t, 0, n)
}
