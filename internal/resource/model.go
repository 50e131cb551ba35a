package resource

import "time"

// Resource categories.
const (
	CategoryScript   = "SCRIPT"
	CategoryPlaybook = "PLAYBOOK"
	CategoryTemplate = "TEMPLATE"
	CategoryGuide    = "GUIDE"
)

// Categories in display order.
var Categories = []string{CategoryScript, CategoryPlaybook, CategoryTemplate, CategoryGuide}

// CategoryNames maps category codes to display labels.
var CategoryNames = map[string]string{
	CategoryScript:   "Sales Scripts",
	CategoryPlaybook: "Tactical Playbooks",
	CategoryTemplate: "Templates",
	CategoryGuide:    "Guides and Manuals",
}

// Resource is a downloadable arsenal item: scripts, playbooks and support
// documents.
type Resource struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"not null" json:"title"`
	Description   string    `json:"description"`
	Category      string    `gorm:"size:20;not null;default:'SCRIPT';index" json:"category"`
	FileURL       string    `gorm:"not null" json:"fileUrl"`
	ThumbnailURL  string    `json:"thumbnailUrl"`
	FileType      string    `gorm:"size:10" json:"fileType"`
	OrderIndex    int       `gorm:"default:0;index" json:"orderIndex"`
	IsActive      bool      `gorm:"default:true" json:"isActive"`
	DownloadCount int       `gorm:"default:0" json:"downloadCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
