package training

import "time"

// Module is a training unit unlocked once the strategist reaches its
// required onboarding step.
type Module struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"not null" json:"title"`
	Description     string    `json:"description"`
	VideoURL        string    `json:"videoUrl"`
	ThumbnailURL    string    `json:"thumbnailUrl"`
	OrderIndex      int       `gorm:"default:0;index" json:"orderIndex"`
	RequiredStep    int       `gorm:"default:0" json:"requiredStep"`
	DurationMinutes int       `gorm:"default:0" json:"durationMinutes"`
	IsActive        bool      `gorm:"default:true" json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Progress marks a module as watched. One row per (profile, module);
// completion is never un-set.
type Progress struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ProfileID   uint       `gorm:"not null;uniqueIndex:idx_progress_profile_module" json:"profileId"`
	ModuleID    uint       `gorm:"not null;uniqueIndex:idx_progress_profile_module" json:"moduleId"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
