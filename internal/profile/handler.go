package profile

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/sealops/api-strategist/internal/auth"
)

// Handler serves the strategist's self-service profile and onboarding
// transitions.
type Handler struct {
	DB         *gorm.DB
	Repository Repository
	validate   *validator.Validate
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		validate:   validator.New(),
	}
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) (*Profile, bool) {
	id, ok := auth.ProfileID(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return nil, false
	}
	p, err := h.Repository.FindByID(h.DB, id)
	if err != nil {
		http.Error(w, "profile not found", http.StatusNotFound)
		return nil, false
	}
	return p, true
}

// Me returns the logged-in strategist's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := h.current(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Update applies a partial update; absent fields stay as they are.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := h.current(w, r)
	if !ok {
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if req.FullName != nil {
		p.FullName = *req.FullName
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
	if req.PixKey != nil {
		p.PixKey = *req.PixKey
	}
	if req.FinancialGoal != nil {
		p.FinancialGoal = *req.FinancialGoal
	}
	if req.DreamDescription != nil {
		p.DreamDescription = *req.DreamDescription
	}
	if req.QuizScores != nil {
		p.QuizScores = req.QuizScores
	}

	if err := h.Repository.Save(h.DB, p); err != nil {
		http.Error(w, "error saving profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CompleteRegistration finishes step 0: records the registration form and
// advances to the briefing step. Rejected unless the profile is exactly at
// step 0.
func (h *Handler) CompleteRegistration(w http.ResponseWriter, r *http.Request) {
	p, ok := h.current(w, r)
	if !ok {
		return
	}

	var req RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "missing required registration fields", http.StatusBadRequest)
		return
	}

	if !h.advance(w, p, StepRegistration, StepBriefing) {
		return
	}

	p.FullName = req.FullName
	p.Phone = req.Phone
	p.PixKey = req.PixKey
	p.FinancialGoal = req.FinancialGoal
	p.DreamDescription = req.DreamDescription
	p.QuizScores = req.QuizScores

	if err := h.Repository.Save(h.DB, p); err != nil {
		http.Error(w, "error saving profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ConfirmBriefing finishes step 1 manually (the webhook path does the same
// on a confirmed meeting).
func (h *Handler) ConfirmBriefing(w http.ResponseWriter, r *http.Request) {
	p, ok := h.current(w, r)
	if !ok {
		return
	}
	if !h.advance(w, p, StepBriefing, StepEngagement) {
		return
	}
	if err := h.Repository.Save(h.DB, p); err != nil {
		http.Error(w, "error saving profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CompleteEngagement finishes step 2 (contract and training done) and grants
// operational access.
func (h *Handler) CompleteEngagement(w http.ResponseWriter, r *http.Request) {
	p, ok := h.current(w, r)
	if !ok {
		return
	}
	if !h.advance(w, p, StepEngagement, StepOperational) {
		return
	}
	if err := h.Repository.Save(h.DB, p); err != nil {
		http.Error(w, "error saving profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DashboardStats returns the home-screen aggregates.
func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	p, ok := h.current(w, r)
	if !ok {
		return
	}
	name := p.FullName
	if name == "" {
		name = "Strategist"
	}
	writeJSON(w, http.StatusOK, DashboardStats{
		Strategist:         name,
		FamiliesSaved:      p.FamiliesSavedCount,
		CurrentCommission:  p.CurrentCommission,
		FinancialGoal:      p.FinancialGoal,
		ProgressPercentage: p.ProgressPercentage(),
		OnboardingStep:     p.OnboardingStep,
		QuizScores:         p.QuizScores,
	})
}

// advance moves the onboarding step from exactly `from` to `to`, writing a
// 400 naming the expected step otherwise. The step change is applied on the
// in-memory profile only; the caller persists it.
func (h *Handler) advance(w http.ResponseWriter, p *Profile, from, to int) bool {
	if p.OnboardingStep != from {
		http.Error(w,
			fmt.Sprintf("step not available: expected step %d, profile is at step %d", from, p.OnboardingStep),
			http.StatusBadRequest)
		return false
	}
	p.OnboardingStep = to
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
