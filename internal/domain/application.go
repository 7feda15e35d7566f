package domain

import (
	"time"
)

// Application is a contact request (lead) from a prospective buyer/renter.
// Anonymous submissions are allowed, so UserID is nullable; deleting the
// submitter keeps the lead with user set to NULL.
type Application struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       *uint     `gorm:"column:user_id" json:"user_id"`
	User         *User     `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	ListingID    *uint     `gorm:"column:listing_id;index" json:"listing_id"`
	Listing      *Listing  `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"-"`
	Name         string    `gorm:"column:name;size:100" json:"name"`
	ContactPhone string    `gorm:"column:contact_phone;size:30;not null" json:"contact_phone"`
	Message      string    `gorm:"column:message;type:text" json:"message"`
	ImageFile    string    `gorm:"column:image_file" json:"image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
