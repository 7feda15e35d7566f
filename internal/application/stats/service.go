package stats

import (
	"context"
	"time"

	"estate-backend/internal/domain"
	"estate-backend/internal/pkg/apperror"
	"estate-backend/internal/pkg/constants"

	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// AdminStats is the aggregate counts payload for the admin dashboard.
type AdminStats struct {
	Users struct {
		Total    int64 `json:"total"`
		Realtors int64 `json:"realtors"`
		Admins   int64 `json:"admins"`
	} `json:"users"`
	Listings struct {
		Total    int64 `json:"total"`
		Active   int64 `json:"active"`
		Inactive int64 `json:"inactive"`
	} `json:"listings"`
	ApplicationsLast7Days int64 `json:"applications_last_7_days"`
}

// Collect gathers counts of users by role, listings by active state, and
// leads submitted in the trailing 7 days.
func (s *Service) Collect(ctx context.Context) (*AdminStats, error) {
	out := &AdminStats{}
	db := s.DB.WithContext(ctx)

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&out.Users.Total, db.Model(&domain.User{})},
		{&out.Users.Realtors, db.Model(&domain.User{}).Where("role = ?", constants.RoleRealtor)},
		{&out.Users.Admins, db.Model(&domain.User{}).Where("role = ?", constants.RoleAdmin)},
		{&out.Listings.Total, db.Model(&domain.Listing{})},
		{&out.Listings.Active, db.Model(&domain.Listing{}).Where("is_active = ?", true)},
		{&out.Listings.Inactive, db.Model(&domain.Listing{}).Where("is_active = ?", false)},
		{&out.ApplicationsLast7Days, db.Model(&domain.Application{}).Where("created_at >= ?", time.Now().AddDate(0, 0, -7))},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, apperror.Internal(err)
		}
	}
	return out, nil
}
