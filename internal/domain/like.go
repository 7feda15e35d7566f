package domain

import (
	"time"
)

// ListingLike is one anonymous like signal. The (listing_id, ip_address)
// unique index is the dedup key; concurrent toggles are serialized by the
// database constraint, not by application locking.
type ListingLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ListingID uint      `gorm:"column:listing_id;not null;uniqueIndex:idx_listing_likes_listing_ip" json:"listing_id"`
	Listing   *Listing  `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"-"`
	IPAddress string    `gorm:"column:ip_address;size:45;not null;uniqueIndex:idx_listing_likes_listing_ip" json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
}

// Favorite is the user-scoped counterpart of a like: one row per
// (user, listing). Creating a duplicate is a no-op success.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;uniqueIndex:idx_favorites_user_listing" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ListingID uint      `gorm:"column:listing_id;not null;uniqueIndex:idx_favorites_user_listing" json:"listing_id"`
	Listing   *Listing  `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"listing,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
