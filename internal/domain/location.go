package domain

// Location is a normalized (city, district) pair referenced by listings.
// The pair is unique; rows are never updated in place (recreate instead).
type Location struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	City     string `gorm:"column:city;size:100;not null;uniqueIndex:idx_locations_city_district" json:"city"`
	District string `gorm:"column:district;size:100;not null;uniqueIndex:idx_locations_city_district" json:"district"`
}
