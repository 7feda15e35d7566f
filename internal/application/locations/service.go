package locations

import (
	"context"
	"errors"
	"strings"

	"estate-backend/internal/domain"
	"estate-backend/internal/pkg/apperror"

	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// List returns all locations ordered by city then district.
func (s *Service) List(ctx context.Context) ([]domain.Location, error) {
	var locs []domain.Location
	if err := s.DB.WithContext(ctx).Order("city, district").Find(&locs).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return locs, nil
}

// Create inserts a (city, district) pair. The pair is unique; a duplicate is
// rejected with a field-level validation error.
func (s *Service) Create(ctx context.Context, city, district string) (*domain.Location, error) {
	city = strings.TrimSpace(city)
	district = strings.TrimSpace(district)
	fields := map[string]string{}
	if city == "" {
		fields["city"] = "City is required"
	}
	if district == "" {
		fields["district"] = "District is required"
	}
	if len(fields) > 0 {
		return nil, apperror.Validation("Invalid location payload", fields)
	}

	loc := &domain.Location{City: city, District: district}
	if err := s.DB.WithContext(ctx).Create(loc).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.FieldError("district", "Location with this city and district already exists")
		}
		return nil, apperror.Internal(err)
	}
	return loc, nil
}

// Delete hard-deletes a location; referencing listings keep a NULL location.
func (s *Service) Delete(ctx context.Context, id uint) error {
	// Detach listings explicitly; the FK SET NULL action is not guaranteed
	// across drivers.
	tx := s.DB.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()
	if err := tx.Model(&domain.Listing{}).Where("location_id = ?", id).Update("location_id", nil).Error; err != nil {
		tx.Rollback()
		return apperror.Internal(err)
	}
	res := tx.Delete(&domain.Location{}, id)
	if res.Error != nil {
		tx.Rollback()
		return apperror.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return apperror.NotFound("Location")
	}
	if err := tx.Commit().Error; err != nil {
		return apperror.Internal(err)
	}
	return nil
}
