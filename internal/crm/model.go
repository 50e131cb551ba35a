package crm

import (
	"time"

	"gorm.io/gorm"
)

// Pipeline stages. These are board columns, not a forward-only machine: a
// lead may be dragged between any two of them. RESCUE is the closed/won
// column and the only one with side effects.
const (
	StatusRadar      = "RADAR"      // cold lead, identified
	StatusCombat     = "COMBAT"     // in meetings / negotiating
	StatusExtraction = "EXTRACTION" // proposal sent
	StatusRescue     = "RESCUE"     // deal closed
)

// Statuses in board order.
var Statuses = []string{StatusRadar, StatusCombat, StatusExtraction, StatusRescue}

func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Lead is a sales opportunity owned by exactly one strategist.
type Lead struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ProfileID      uint    `gorm:"not null;index" json:"profileId"`
	Status         string  `gorm:"size:20;not null;default:'RADAR';index" json:"status"`
	Name           string  `gorm:"not null" json:"name"`
	Phone          string  `json:"phone"`
	Email          string  `json:"email"`
	PotentialValue float64 `json:"potentialValue"`
	Notes          string  `json:"notes"`
}
