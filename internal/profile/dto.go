package profile

// RegistrationRequest completes step 0: the strategist's basic data, payout
// key, financial goal and quiz scores.
type RegistrationRequest struct {
	FullName         string         `json:"fullName" validate:"required"`
	Phone            string         `json:"phone" validate:"required"`
	PixKey           string         `json:"pixKey" validate:"required"`
	FinancialGoal    float64        `json:"financialGoal" validate:"gt=0"`
	DreamDescription string         `json:"dreamDescription"`
	QuizScores       map[string]int `json:"quizScores" validate:"required"`
}

// UpdateRequest is a partial update: nil fields are left unchanged.
type UpdateRequest struct {
	FullName         *string        `json:"fullName"`
	Phone            *string        `json:"phone"`
	PixKey           *string        `json:"pixKey"`
	FinancialGoal    *float64       `json:"financialGoal"`
	DreamDescription *string        `json:"dreamDescription"`
	QuizScores       map[string]int `json:"quizScores"`
}

// DashboardStats is the strategist's home-screen read model.
type DashboardStats struct {
	Strategist         string         `json:"strategist"`
	FamiliesSaved      int            `json:"familiesSaved"`
	CurrentCommission  float64        `json:"currentCommission"`
	FinancialGoal      float64        `json:"financialGoal"`
	ProgressPercentage float64        `json:"progressPercentage"`
	OnboardingStep     int            `json:"onboardingStep"`
	QuizScores         map[string]int `json:"quizScores"`
}
