package commission

import "time"

// Commission statuses. PENDING and APPROVED count toward the strategist's
// outstanding balance; PAID is settled; CANCELLED is out of play.
const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusPaid      = "PAID"
	StatusCancelled = "CANCELLED"
)

// OutstandingStatuses are the statuses summed into the running balance.
var OutstandingStatuses = []string{StatusPending, StatusApproved}

// Commission is a strategist's entitlement, created once when a lead is
// rescued. Amount is fixed at creation time and never recomputed, even if
// the lead's value or the strategist's rate changes afterwards. The lead
// reference is cleared, not cascaded, when the lead is deleted.
type Commission struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ProfileID   uint       `gorm:"not null;index" json:"profileId"`
	LeadID      *uint      `gorm:"index" json:"leadId,omitempty"`
	Amount      float64    `gorm:"not null" json:"amount"`
	Status      string     `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	Description string     `json:"description"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
