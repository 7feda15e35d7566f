package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Deal types accepted for a listing.
const (
	DealTypeSale = "sale"
	DealTypeRent = "rent"
)

// Listing is a single property advertisement. "Deleting" a listing sets
// IsActive=false; the row, its images and its applications are preserved.
type Listing struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	OwnerID      uint           `gorm:"column:owner_id;not null;index" json:"owner_id"`
	Owner        *User          `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Title        string         `gorm:"column:title;size:200;not null" json:"title"`
	Description  string         `gorm:"column:description;type:text" json:"description"`
	Price        float64        `gorm:"column:price;type:decimal(12,2);not null" json:"price"`
	Rooms        int            `gorm:"column:rooms;not null" json:"rooms"`
	Area         float64        `gorm:"column:area;type:decimal(7,2);not null" json:"area"`
	LocationID   *uint          `gorm:"column:location_id" json:"-"`
	Location     *Location      `gorm:"foreignKey:LocationID;constraint:OnDelete:SET NULL" json:"location"`
	Address      string         `gorm:"column:address;size:255" json:"address"`
	DealType     string         `gorm:"column:deal_type;size:10;not null" json:"deal_type"`
	PropertyType string         `gorm:"column:property_type;size:50" json:"property_type,omitempty"`
	Attributes   datatypes.JSON `gorm:"column:attributes" json:"attributes,omitempty"`
	VideoFile    string         `gorm:"column:video_file" json:"video_file,omitempty"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true" json:"is_active"`
	Images       []ListingImage `gorm:"foreignKey:ListingID" json:"images"`
	LikesCount   int64          `gorm:"->;-:migration" json:"likes_count"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ListingImage is owned exclusively by its listing and cascades with it.
// FileName points at the stored (WebP-encoded) file under the media dir.
type ListingImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ListingID uint      `gorm:"column:listing_id;not null;index" json:"listing_id"`
	Listing   *Listing  `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"-"`
	FileName  string    `gorm:"column:file_name;not null" json:"image"`
	Position  int       `gorm:"column:position;not null;default:0" json:"position"`
	CreatedAt time.Time `json:"created_at"`
}
