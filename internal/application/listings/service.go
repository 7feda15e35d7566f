package listings

import (
	"context"
	"fmt"
	"strings"

	"estate-backend/internal/application/images"
	"estate-backend/internal/domain"
	"estate-backend/internal/pkg/apperror"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// likesCountSelect computes likes_count live from the ledger; the count is
// never stored on the listing row.
const likesCountSelect = "listings.*, (SELECT COUNT(*) FROM listing_likes WHERE listing_likes.listing_id = listings.id) AS likes_count"

// Viewer identifies the caller for visibility and ownership decisions.
// A nil *Viewer is an anonymous request.
type Viewer struct {
	ID    uint
	Admin bool
}

type Service struct {
	DB     *gorm.DB
	Images *images.Service
}

// Filters are the already-parsed query filters for List. Parsing and 400s on
// malformed values happen in the handler.
type Filters struct {
	City         string
	District     string
	DealType     string
	PropertyType string
	Rooms        *int
	PriceGte     *float64
	PriceLte     *float64
	AreaGte      *float64
	AreaLte      *float64
	Search       string
	Ordering     string // one of price/created_at/area/likes_count, "-" prefix for descending
	Page         int
	PageSize     int
}

var orderable = map[string]bool{
	"price":       true,
	"created_at":  true,
	"area":        true,
	"likes_count": true,
}

// List returns a page of listings plus the total match count. Admins see all
// listings; everyone else only active ones.
func (s *Service) List(ctx context.Context, f Filters, viewer *Viewer) ([]domain.Listing, int64, error) {
	q := s.DB.WithContext(ctx).Model(&domain.Listing{})
	if viewer == nil || !viewer.Admin {
		q = q.Where("listings.is_active = ?", true)
	}
	q = applyFilters(q, f)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal(err)
	}

	order, err := orderClause(f.Ordering)
	if err != nil {
		return nil, 0, err
	}

	page, pageSize := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	var out []domain.Listing
	err = q.Select(likesCountSelect).
		Order(order).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Preload("Location").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Find(&out).Error
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return out, total, nil
}

// ListOwned returns all of one owner's listings, active or not, newest first.
func (s *Service) ListOwned(ctx context.Context, ownerID uint) ([]domain.Listing, error) {
	var out []domain.Listing
	err := s.DB.WithContext(ctx).Model(&domain.Listing{}).
		Where("listings.owner_id = ?", ownerID).
		Select(likesCountSelect).
		Order("created_at DESC").
		Preload("Location").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Find(&out).Error
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return out, nil
}

// Get returns a listing by id regardless of is_active: the detail view does
// not hide withdrawn listings, only the list view does.
func (s *Service) Get(ctx context.Context, id uint) (*domain.Listing, error) {
	var l domain.Listing
	err := s.DB.WithContext(ctx).Model(&domain.Listing{}).
		Where("listings.id = ?", id).
		Select(likesCountSelect).
		Preload("Location").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&l).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("Listing")
		}
		return nil, apperror.Internal(err)
	}
	return &l, nil
}

// CreateInput is the create payload; Uploads are persisted as images in the
// order received.
type CreateInput struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Price        float64         `json:"price"`
	Rooms        int             `json:"rooms"`
	Area         float64         `json:"area"`
	LocationID   *uint           `json:"location_id"`
	Address      string          `json:"address"`
	DealType     string          `json:"deal_type"`
	PropertyType string          `json:"property_type"`
	Attributes   datatypes.JSON  `json:"attributes"`
	Uploads      []images.Upload `json:"-"`
}

// Create inserts a listing owned by ownerID; owner is always the caller,
// never taken from the payload.
func (s *Service) Create(ctx context.Context, in CreateInput, ownerID uint) (*domain.Listing, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}
	if in.LocationID != nil {
		var loc domain.Location
		if err := s.DB.WithContext(ctx).First(&loc, *in.LocationID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, apperror.FieldError("location_id", "Location does not exist")
			}
			return nil, apperror.Internal(err)
		}
	}

	l := &domain.Listing{
		OwnerID:      ownerID,
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Price:        in.Price,
		Rooms:        in.Rooms,
		Area:         in.Area,
		LocationID:   in.LocationID,
		Address:      in.Address,
		DealType:     in.DealType,
		PropertyType: in.PropertyType,
		Attributes:   in.Attributes,
		IsActive:     true,
	}
	var written []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(l).Error; err != nil {
			return apperror.Internal(err)
		}
		var err error
		written, err = s.Images.AttachForCreate(ctx, tx, l, in.Uploads)
		return err
	})
	if err != nil {
		s.Images.RemoveFiles(written)
		return nil, err
	}
	return s.Get(ctx, l.ID)
}

// UpdateInput carries partial updates; nil fields are left untouched.
// A non-empty Uploads list replaces all existing images.
type UpdateInput struct {
	Title        *string         `json:"title"`
	Description  *string         `json:"description"`
	Price        *float64        `json:"price"`
	Rooms        *int            `json:"rooms"`
	Area         *float64        `json:"area"`
	LocationID   *uint           `json:"location_id"`
	Address      *string         `json:"address"`
	DealType     *string         `json:"deal_type"`
	PropertyType *string         `json:"property_type"`
	Attributes   datatypes.JSON  `json:"attributes"`
	IsActive     *bool           `json:"is_active"`
	Uploads      []images.Upload `json:"-"`
}

// Update applies a partial update; allowed for the owner or an admin only.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput, viewer Viewer) (*domain.Listing, error) {
	var l domain.Listing
	if err := s.DB.WithContext(ctx).First(&l, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("Listing")
		}
		return nil, apperror.Internal(err)
	}
	if !viewer.Admin && viewer.ID != l.OwnerID {
		return nil, apperror.Forbidden("Only the owner or an admin may modify a listing")
	}

	updates, err := buildUpdates(in)
	if err != nil {
		return nil, err
	}
	if in.LocationID != nil {
		var loc domain.Location
		if err := s.DB.WithContext(ctx).First(&loc, *in.LocationID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, apperror.FieldError("location_id", "Location does not exist")
			}
			return nil, apperror.Internal(err)
		}
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(&l).Updates(updates).Error; err != nil {
			return nil, apperror.Internal(err)
		}
	}
	if len(in.Uploads) > 0 {
		if err := s.Images.ReplaceListingImages(ctx, &l, in.Uploads); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

// SoftDelete withdraws a listing by setting is_active=false. The row, its
// images and its applications are preserved.
func (s *Service) SoftDelete(ctx context.Context, id uint, viewer Viewer) error {
	var l domain.Listing
	if err := s.DB.WithContext(ctx).First(&l, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperror.NotFound("Listing")
		}
		return apperror.Internal(err)
	}
	if !viewer.Admin && viewer.ID != l.OwnerID {
		return apperror.Forbidden("Only the owner or an admin may delete a listing")
	}
	if err := s.DB.WithContext(ctx).Model(&l).Update("is_active", false).Error; err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// BulkItem is one entry of a bulk update request.
type BulkItem struct {
	ID     uint        `json:"id"`
	Fields UpdateInput `json:"fields"`
}

// BulkUpdate applies each item independently; not-found or not-owned items
// are skipped, never fatal. Returns the count actually changed.
func (s *Service) BulkUpdate(ctx context.Context, items []BulkItem, viewer Viewer) int {
	updated := 0
	for _, item := range items {
		if _, err := s.Update(ctx, item.ID, item.Fields, viewer); err == nil {
			updated++
		}
	}
	return updated
}

// BulkSoftDelete deactivates each id independently, skipping failures.
func (s *Service) BulkSoftDelete(ctx context.Context, ids []uint, viewer Viewer) int {
	deleted := 0
	for _, id := range ids {
		if err := s.SoftDelete(ctx, id, viewer); err == nil {
			deleted++
		}
	}
	return deleted
}

func applyFilters(q *gorm.DB, f Filters) *gorm.DB {
	if f.City != "" || f.District != "" {
		q = q.Joins("LEFT JOIN locations ON locations.id = listings.location_id")
		if f.City != "" {
			q = q.Where("locations.city = ?", f.City)
		}
		if f.District != "" {
			q = q.Where("locations.district = ?", f.District)
		}
	}
	if f.DealType != "" {
		q = q.Where("listings.deal_type = ?", f.DealType)
	}
	if f.PropertyType != "" {
		q = q.Where("listings.property_type = ?", f.PropertyType)
	}
	if f.Rooms != nil {
		q = q.Where("listings.rooms = ?", *f.Rooms)
	}
	if f.PriceGte != nil {
		q = q.Where("listings.price >= ?", *f.PriceGte)
	}
	if f.PriceLte != nil {
		q = q.Where("listings.price <= ?", *f.PriceLte)
	}
	if f.AreaGte != nil {
		q = q.Where("listings.area >= ?", *f.AreaGte)
	}
	if f.AreaLte != nil {
		q = q.Where("listings.area <= ?", *f.AreaLte)
	}
	if f.Search != "" {
		needle := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(listings.title) LIKE ? OR LOWER(listings.description) LIKE ? OR LOWER(listings.address) LIKE ?", needle, needle, needle)
	}
	return q
}

func orderClause(ordering string) (string, error) {
	if ordering == "" {
		return "created_at DESC", nil
	}
	field := ordering
	dir := "ASC"
	if strings.HasPrefix(ordering, "-") {
		field = ordering[1:]
		dir = "DESC"
	}
	if !orderable[field] {
		return "", apperror.FieldError("ordering", fmt.Sprintf("Cannot order by %q", field))
	}
	return field + " " + dir, nil
}

func validateCreate(in CreateInput) error {
	fields := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "Title is required"
	}
	if in.Price < 0 {
		fields["price"] = "Price must be non-negative"
	}
	if in.Rooms < 0 {
		fields["rooms"] = "Rooms must be non-negative"
	}
	if in.Area < 0 {
		fields["area"] = "Area must be non-negative"
	}
	if in.DealType != domain.DealTypeSale && in.DealType != domain.DealTypeRent {
		fields["deal_type"] = `Deal type must be "sale" or "rent"`
	}
	if len(fields) > 0 {
		return apperror.Validation("Invalid listing payload", fields)
	}
	return nil
}

func buildUpdates(in UpdateInput) (map[string]interface{}, error) {
	fields := map[string]string{}
	updates := map[string]interface{}{}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			fields["title"] = "Title cannot be empty"
		} else {
			updates["title"] = strings.TrimSpace(*in.Title)
		}
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Price != nil {
		if *in.Price < 0 {
			fields["price"] = "Price must be non-negative"
		} else {
			updates["price"] = *in.Price
		}
	}
	if in.Rooms != nil {
		if *in.Rooms < 0 {
			fields["rooms"] = "Rooms must be non-negative"
		} else {
			updates["rooms"] = *in.Rooms
		}
	}
	if in.Area != nil {
		if *in.Area < 0 {
			fields["area"] = "Area must be non-negative"
		} else {
			updates["area"] = *in.Area
		}
	}
	if in.LocationID != nil {
		updates["location_id"] = *in.LocationID
	}
	if in.Address != nil {
		updates["address"] = *in.Address
	}
	if in.DealType != nil {
		if *in.DealType != domain.DealTypeSale && *in.DealType != domain.DealTypeRent {
			fields["deal_type"] = `Deal type must be "sale" or "rent"`
		} else {
			updates["deal_type"] = *in.DealType
		}
	}
	if in.PropertyType != nil {
		updates["property_type"] = *in.PropertyType
	}
	if len(in.Attributes) > 0 {
		updates["attributes"] = in.Attributes
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if len(fields) > 0 {
		return nil, apperror.Validation("Invalid listing payload", fields)
	}
	return updates, nil
}
