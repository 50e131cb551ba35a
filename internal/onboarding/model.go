package onboarding

import "time"

// Meeting records a kickoff call booked through the external scheduler. One
// active record per profile; a rebooking overwrites it.
type Meeting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProfileID uint      `gorm:"not null;index" json:"profileId"`
	Time      time.Time `gorm:"not null" json:"time"`
	EventRef  string    `json:"eventRef"`
	CreatedAt time.Time `json:"createdAt"`
}
