package profile

import "gorm.io/gorm"

// Onboarding steps, strictly ordered. Step 3 unlocks the CRM, commissions
// and the arsenal.
const (
	StepRegistration = 0 // initial sign-up form
	StepBriefing     = 1 // kickoff call to be scheduled
	StepEngagement   = 2 // contract and training phase
	StepOperational  = 3 // full access
)

// Profile centralizes per-strategist state: onboarding progression, the
// running commission balance and pipeline counters.
type Profile struct {
	gorm.Model
	AuthKey              string         `json:"-" gorm:"type:uuid;uniqueIndex"`
	Email                string         `json:"email" gorm:"index"`
	FullName             string         `json:"fullName"`
	Phone                string         `json:"phone"`
	PixKey               string         `json:"pixKey"`
	DreamDescription     string         `json:"dreamDescription"`
	FinancialGoal        float64        `json:"financialGoal"`
	CurrentCommission    float64        `json:"currentCommission"`
	FamiliesSavedCount   int            `json:"familiesSavedCount"`
	CommissionPercentage float64        `json:"commissionPercentage" gorm:"default:5"`
	OnboardingStep       int            `json:"onboardingStep" gorm:"default:0"`
	QuizScores           map[string]int `json:"quizScores" gorm:"type:jsonb;serializer:json"`
}

// IsOperational reports whether the strategist has unlocked full access.
func (p *Profile) IsOperational() bool {
	return p.OnboardingStep >= StepOperational
}

// ProgressPercentage is the progress toward the financial goal, clamped to
// [0, 100]. A zero goal reads as zero progress.
func (p *Profile) ProgressPercentage() float64 {
	if p.FinancialGoal <= 0 {
		return 0
	}
	pct := p.CurrentCommission / p.FinancialGoal * 100
	if pct > 100 {
		return 100
	}
	return pct
}
