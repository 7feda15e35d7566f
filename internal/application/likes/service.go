package likes

import (
	"context"
	"errors"

	"estate-backend/internal/domain"
	"estate-backend/internal/pkg/apperror"

	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// ToggleResult reports the state after a toggle. LikesCount is recomputed
// live from the ledger, never read from a stored counter.
type ToggleResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

// Toggle inserts a (listing, ip) like; if the row already exists the insert
// hits the unique index and the existing like is removed instead. The
// database constraint is the only coordination between concurrent toggles.
func (s *Service) Toggle(ctx context.Context, listingID uint, ip string) (*ToggleResult, error) {
	if ip == "" {
		return nil, apperror.FieldError("ip_address", "Client IP is required")
	}
	var listing domain.Listing
	if err := s.DB.WithContext(ctx).First(&listing, listingID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("Listing")
		}
		return nil, apperror.Internal(err)
	}

	liked := true
	like := domain.ListingLike{ListingID: listingID, IPAddress: ip}
	if err := s.DB.WithContext(ctx).Create(&like).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Internal(err)
		}
		res := s.DB.WithContext(ctx).
			Where("listing_id = ? AND ip_address = ?", listingID, ip).
			Delete(&domain.ListingLike{})
		if res.Error != nil {
			return nil, apperror.Internal(res.Error)
		}
		liked = false
	}

	count, err := s.count(ctx, listingID)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{Liked: liked, LikesCount: count}, nil
}

// AddFavorite stores a (user, listing) favorite. A duplicate is resolved by
// the unique constraint and reported as success with the existing row.
func (s *Service) AddFavorite(ctx context.Context, userID, listingID uint) (*domain.Favorite, error) {
	var listing domain.Listing
	if err := s.DB.WithContext(ctx).First(&listing, listingID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("Listing")
		}
		return nil, apperror.Internal(err)
	}

	fav := domain.Favorite{UserID: userID, ListingID: listingID}
	if err := s.DB.WithContext(ctx).Create(&fav).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Internal(err)
		}
		if err := s.DB.WithContext(ctx).
			Where("user_id = ? AND listing_id = ?", userID, listingID).
			First(&fav).Error; err != nil {
			return nil, apperror.Internal(err)
		}
	}
	return &fav, nil
}

// RemoveFavorite deletes the (user, listing) favorite if present.
func (s *Service) RemoveFavorite(ctx context.Context, userID, listingID uint) error {
	res := s.DB.WithContext(ctx).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Delete(&domain.Favorite{})
	if res.Error != nil {
		return apperror.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("Favorite")
	}
	return nil
}

// ListFavorites returns the user's favorites, newest first, with listings.
func (s *Service) ListFavorites(ctx context.Context, userID uint) ([]domain.Favorite, error) {
	var favs []domain.Favorite
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Preload("Listing").
		Preload("Listing.Location").
		Preload("Listing.Images").
		Find(&favs).Error
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return favs, nil
}

func (s *Service) count(ctx context.Context, listingID uint) (int64, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&domain.ListingLike{}).Where("listing_id = ?", listingID).Count(&n).Error; err != nil {
		return 0, apperror.Internal(err)
	}
	return n, nil
}
