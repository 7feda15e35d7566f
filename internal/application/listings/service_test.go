package listings

import (
	"bytes"
	"context"
	"image"
	"image/png"
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

func setupService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	svc := &Service{DB: db, Images: &images.Service{DB: db, MediaDir: t.TempDir()}}
	return svc, db
}

func seedUser(t *testing.T, db *gorm.DB, role string) *domain.User {
	u := &domain.User{UserName: role + "-user", Email: role + "@test.com", PasswordHash: "x", Role: role}
	// unique columns; suffix with the row count to allow several per role
	var n int64
	db.Model(&domain.User{}).Count(&n)
	u.UserName = u.UserName + "-" + string(rune('a'+n))
	u.Email = u.UserName + "@test.com"
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedListing(t *testing.T, db *gorm.DB, ownerID uint, mutate func(*domain.Listing)) *domain.Listing {
	l := &domain.Listing{
		OwnerID:  ownerID,
		Title:    "Two room flat",
		Price:    100000,
		Rooms:    2,
		Area:     55,
		DealType: domain.DealTypeSale,
		IsActive: true,
	}
	if mutate != nil {
		mutate(l)
	}
	require.NoError(t, db.Create(l).Error)
	return l
}

func TestListHidesInactiveFromNonAdmins(t *testing.T) {
	svc, db := setupService(t)
	owner := seedUser(t, db, "realtor")
	seedListing(t, db, owner.ID, nil)
	seedListing(t, db, owner.ID, func(l *domain.Listing) {
		l.Title = "Withdrawn flat"
		l.IsActive = false
	})

	// anonymous
	items, total, err := svc.List(context.Background(), Filters{}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Two room flat", items[0].Title)

	// regular authenticated viewer
	viewer := &Viewer{ID: 42}
	_, total, err = svc.List(context.Background(), Filters{}, viewer)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	// admin sees both
	admin := &Viewer{ID: 1, Admin: true}
	_, total, err = svc.List(context.Background(), Filters{}, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestGetReturnsInactiveListing(t *testing.T) {
	svc, db := setupService(t)
	owner := seedUser(t, db, "realtor")
	l := seedListing(t, db, owner.ID, func(l *domain.Listing) { l.IsActive = false })

	got, err := svc.Get(context.Background(), l.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestListPriceUpperBoundIsInclusive(t *testing.T) {
	svc, db := setupService(t)
	owner := seedUser(t, db, "realtor")
	seedListing(t, db, owner.ID, func(l *domain.Listing) { l.Price = 100000 })
	seedListing(t, db, owner.ID, func(l *domain.Listing) { l.Price = 100001 })

	lte := 100000.0
	items, total, err := svc.List(context.Background(), Filters{PriceLte: &lte}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, 100000.0, items[0].Price)
}

func TestListSearchIsCaseInsensitive(t *testing.T) {
	svc, db := setupService(t)
	owner := seedUser(t, db, "realtor")
	seedListing(t, db, owner.ID, func(l *domain.Listing) { l.Title = "Sunny PENTHOUSE downtown" })
	seedListing(t, db, owner.ID, func(l *domain.Listing) { l.Title = "Basement studio" })

	_, total, err := svc.List(context.Background(), Filters{Search: "penthouse"}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestListFiltersByLocation(t *testing.T) {
	svc, db := setupService(t)
	owner := seedUser(t, db, "realtor")
	loc := &domain.Location{City: "Tashkent", District: "Chilanzar"}
	require.NoError(t, db.Create(loc).Error)
	seedListing(t, db, owner.ID, func(l *domain.Listing) { l.LocationID = &loc.ID })
	seedListing(t, db, owner.ID, nil)

	_, total, err := svc.List(context.Background(), Filters{City: "Tashkent"}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = svc.List(context.Background(), Filters{City: "Samarkand"}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestListOrderingByPrice(t *testing.T) {
	svc, db := setupService(t)
	owner := seedUser(t, db, "realtor")
	seedListing(t, db, owner.ID, func(l *domain.Listing) { l.Price = 300 })
	seedListing(t, db, owner.ID, func(l *domain.Listing) { l.Price = 100 })
	seedListing(t, db, owner.ID, func(l *domain.Listing) { l.Price = 200 })

	items, _, err := svc.List(context.Background(), Filters{Ordering: "-price"}, nil)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, 300.0, items[0].Price)
	assert.Equal(t, 100.0, items[2].Price)
}

func TestListRejectsUnknownOrdering(t *testing.T) {
	svc, _ := setupService(t)
	_, _, err := svc.List(context.Background(), Filters{Ordering: "owner_id"}, nil)
	require.Error(t, err)
	ae := apperror.From(err)
	assert.Equal(t, apperror.CodeValidation, ae.Code)
	assert.Contains(t, ae.Fields, "ordering")
}

func TestListPagination(t *testing.T) {
	svc, db := setupService(t)
	owner := seedUser(t, db, "realtor")
	for i := 0; i < 25; i++ {
		seedListing(t, db, owner.ID, nil)
	}

	items, total, err := svc.List(context.Background(), Filters{Page: 2, PageSize: 10}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	assert.Len(t, items, 10)

	items, _, err = svc.List(context.Background(), Filters{Page: 3, PageSize: 10}, nil)
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestCreateValidation(t *testing.T) {
	svc, db := setupService(t)
	owner := seedUser(t, db, "realtor")

	_, err := svc.Create(context.Background(), CreateInput{Title: "", Price: -1, DealType: "lease"}, owner.ID)
	require.Error(t, err)
	ae := apperror.From(err)
	assert.Equal(t, apperror.CodeValidation, ae.Code)
	assert.Contains(t, ae.Fields, "title")
	assert.Contains(t, ae.Fields, "price")
	assert.Contains(t, ae.Fields, "deal_type")
}

func TestCreateRejectsMissingLocation(t *testing.T) {
	svc, db := setupService(t)
	owner := seedUser(t, db, "realtor")
	missing := uint(999)

	_, err := svc.Create(context.Background(), CreateInput{
		Title: "Flat", DealType: domain.DealTypeRent, LocationID: &missing,
	}, owner.ID)
	require.Error(t, err)
	assert.Contains(t, apperror.From(err).Fields, "location_id")
}

func TestCreateWithBadUploadLeavesNoListing(t *testing.T) {
	svc, db := setupService(t)
	owner := seedUser(t, db, "realtor")

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	corrupt := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0xAB}, 64)...)

	_, err := svc.Create(context.Background(), CreateInput{
		Title: "Flat with photos", Price: 90000, Rooms: 2, Area: 40,
		DealType: domain.DealTypeSale,
		Uploads: []images.Upload{
			{FileName: "ok.png", Content: buf.Bytes()},
			{FileName: "broken.png", Content: corrupt},
		},
	}, owner.ID)
	require.Error(t, err)

	// the whole write rolls back: no listing, no image rows
	var listings, imgs int64
	db.Model(&domain.Listing{}).Count(&listings)
	db.Model(&domain.ListingImage{}).Count(&imgs)
	assert.EqualValues(t, 0, listings)
	assert.EqualValues(t, 0, imgs)
}

func TestUpdateForbiddenForNonOwnerLeavesRowUnchanged(t *testing.T) {
	svc, db := setupService(t)
	owner := seedUser(t, db, "realtor")
	other := seedUser(t, db, "realtor")
	l := seedListing(t, db, owner.ID, nil)

	newTitle := "Hijacked"
	_, err := svc.Update(context.Background(), l.ID, UpdateInput{Title: &newTitle}, Viewer{ID: other.ID})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeForbidden, apperror.From(err).Code)

	var fresh domain.Listing
	require.NoError(t, db.First(&fresh, l.ID).Error)
	assert.Equal(t, "Two room flat", fresh.Title)
}

func TestUpdateByAdmin(t *testing.T) {
	svc, db := setupService(t)
	owner := seedUser(t, db, "realtor")
	l := seedListing(t, db, owner.ID, nil)

	price := 250000.0
	got, err := svc.Update(context.Background(), l.ID, UpdateInput{Price: &price}, Viewer{ID: 77, Admin: true})
	require.NoError(t, err)
	assert.Equal(t, 250000.0, got.Price)
}

func TestSoftDeletePreservesImagesAndApplications(t *testing.T) {
	svc, db := setupService(t)
	owner := seedUser(t, db, "realtor")
	l := seedListing(t, db, owner.ID, nil)
	require.NoError(t, db.Create(&domain.ListingImage{ListingID: l.ID, FileName: "a.webp"}).Error)
	require.NoError(t, db.Create(&domain.Application{ListingID: &l.ID, Name: "Bob", ContactPhone: "+1234567890"}).Error)

	require.NoError(t, svc.SoftDelete(context.Background(), l.ID, Viewer{ID: owner.ID}))

	var fresh domain.Listing
	require.NoError(t, db.First(&fresh, l.ID).Error)
	assert.False(t, fresh.IsActive)

	var imgCount, appCount int64
	db.Model(&domain.ListingImage{}).Where("listing_id = ?", l.ID).Count(&imgCount)
	db.Model(&domain.Application{}).Where("listing_id = ?", l.ID).Count(&appCount)
	assert.EqualValues(t, 1, imgCount)
	assert.EqualValues(t, 1, appCount)

	// owner still retrieves it
	got, err := svc.Get(context.Background(), l.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestBulkSoftDeleteSkipsMissingAndForeign(t *testing.T) {
	svc, db := setupService(t)
	owner := seedUser(t, db, "realtor")
	other := seedUser(t, db, "realtor")
	a := seedListing(t, db, owner.ID, nil)
	b := seedListing(t, db, owner.ID, nil)
	foreign := seedListing(t, db, other.ID, nil)

	deleted := svc.BulkSoftDelete(context.Background(), []uint{a.ID, b.ID, 999}, Viewer{ID: owner.ID})
	assert.Equal(t, 2, deleted)

	deleted = svc.BulkSoftDelete(context.Background(), []uint{foreign.ID}, Viewer{ID: owner.ID})
	assert.Equal(t, 0, deleted)
}

func TestBulkUpdateCountsOnlySuccesses(t *testing.T) {
	svc, db := setupService(t)
	owner := seedUser(t, db, "realtor")
	l := seedListing(t, db, owner.ID, nil)
	price := 1.0

	updated := svc.BulkUpdate(context.Background(), []BulkItem{
		{ID: l.ID, Fields: UpdateInput{Price: &price}},
		{ID: 999, Fields: UpdateInput{Price: &price}},
	}, Viewer{ID: owner.ID})
	assert.Equal(t, 1, updated)
}

func TestLikesCountIsComputedLive(t *testing.T) {
	svc, db := setupService(t)
	owner := seedUser(t, db, "realtor")
	l := seedListing(t, db, owner.ID, nil)
	require.NoError(t, db.Create(&domain.ListingLike{ListingID: l.ID, IPAddress: "10.0.0.1"}).Error)
	require.NoError(t, db.Create(&domain.ListingLike{ListingID: l.ID, IPAddress: "10.0.0.2"}).Error)

	got, err := svc.Get(context.Background(), l.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.LikesCount)

	items, _, err := svc.List(context.Background(), Filters{Ordering: "-likes_count"}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, items)
	assert.EqualValues(t, 2, items[0].LikesCount)
}
