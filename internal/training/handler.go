package training

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/sealops/api-strategist/internal/auth"
	"github.com/sealops/api-strategist/internal/profile"
)

// ModuleWithProgress is a module plus the caller's completion state. Locked
// modules hide the video URL.
type ModuleWithProgress struct {
	ID              uint       `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	VideoURL        string     `json:"videoUrl,omitempty"`
	ThumbnailURL    string     `json:"thumbnailUrl"`
	OrderIndex      int        `json:"orderIndex"`
	RequiredStep    int        `json:"requiredStep"`
	DurationMinutes int        `json:"durationMinutes"`
	IsCompleted     bool       `json:"isCompleted"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	IsLocked        bool       `json:"isLocked"`
}

// Overview is the training screen: every module with per-caller state plus
// aggregate counts.
type Overview struct {
	TotalModules       int                  `json:"totalModules"`
	CompletedModules   int                  `json:"completedModules"`
	AvailableModules   int                  `json:"availableModules"`
	LockedModules      int                  `json:"lockedModules"`
	ProgressPercentage float64              `json:"progressPercentage"`
	Modules            []ModuleWithProgress `json:"modules"`
}

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Profiles   profile.Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Profiles:   profile.NewRepository(),
	}
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) (*profile.Profile, bool) {
	id, ok := auth.ProfileID(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return nil, false
	}
	p, err := h.Profiles.FindByID(h.DB, id)
	if err != nil {
		http.Error(w, "profile not found", http.StatusNotFound)
		return nil, false
	}
	return p, true
}

func withProgress(m Module, prog *Progress, locked bool) ModuleWithProgress {
	out := ModuleWithProgress{
		ID:              m.ID,
		Title:           m.Title,
		Description:     m.Description,
		ThumbnailURL:    m.ThumbnailURL,
		OrderIndex:      m.OrderIndex,
		RequiredStep:    m.RequiredStep,
		DurationMinutes: m.DurationMinutes,
		IsLocked:        locked,
	}
	if !locked {
		out.VideoURL = m.VideoURL
	}
	if prog != nil && prog.Completed {
		out.IsCompleted = true
		out.CompletedAt = prog.CompletedAt
	}
	return out
}

// GetOverview lists every active module with the caller's lock and
// completion state. Visible at any onboarding step; the lock is per module.
func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	p, ok := h.current(w, r)
	if !ok {
		return
	}

	modules, err := h.Repository.ListActive(h.DB)
	if err != nil {
		http.Error(w, "error listing modules", http.StatusInternalServerError)
		return
	}
	progressMap, err := h.Repository.ProgressByProfile(h.DB, p.ID)
	if err != nil {
		http.Error(w, "error reading progress", http.StatusInternalServerError)
		return
	}

	overview := Overview{Modules: []ModuleWithProgress{}}
	for _, m := range modules {
		locked := m.RequiredStep > p.OnboardingStep
		var prog *Progress
		if pr, ok := progressMap[m.ID]; ok {
			prog = &pr
		}
		item := withProgress(m, prog, locked)

		if locked {
			overview.LockedModules++
		} else {
			overview.AvailableModules++
			if item.IsCompleted {
				overview.CompletedModules++
			}
		}
		overview.Modules = append(overview.Modules, item)
	}
	overview.TotalModules = len(overview.Modules)
	if overview.AvailableModules > 0 {
		overview.ProgressPercentage = float64(overview.CompletedModules) / float64(overview.AvailableModules) * 100
	}

	writeJSON(w, http.StatusOK, overview)
}

// GetModule returns one module; locked modules are denied naming the
// required step.
func (h *Handler) GetModule(w http.ResponseWriter, r *http.Request) {
	p, ok := h.current(w, r)
	if !ok {
		return
	}
	m, ok := h.moduleFromPath(w, r)
	if !ok {
		return
	}

	if m.RequiredStep > p.OnboardingStep {
		http.Error(w,
			fmt.Sprintf("access denied: this module requires onboarding step %d", m.RequiredStep),
			http.StatusForbidden)
		return
	}

	prog, err := h.Repository.FindProgress(h.DB, p.ID, m.ID)
	if err != nil {
		prog = nil
	}
	writeJSON(w, http.StatusOK, withProgress(*m, prog, false))
}

// CompleteModule marks a module as watched. Idempotent; completion never
// reverts.
func (h *Handler) CompleteModule(w http.ResponseWriter, r *http.Request) {
	p, ok := h.current(w, r)
	if !ok {
		return
	}
	m, ok := h.moduleFromPath(w, r)
	if !ok {
		return
	}

	if m.RequiredStep > p.OnboardingStep {
		http.Error(w, "access denied: module locked", http.StatusForbidden)
		return
	}

	prog, err := h.Repository.MarkCompleted(h.DB, p.ID, m.ID)
	if err != nil {
		http.Error(w, "error saving progress", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"message":     fmt.Sprintf("module %q completed", m.Title),
		"moduleId":    m.ID,
		"completedAt": prog.CompletedAt,
	})
}

// ListPending returns available, not yet completed modules.
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	p, ok := h.current(w, r)
	if !ok {
		return
	}

	modules, err := h.Repository.ListActiveUpToStep(h.DB, p.OnboardingStep)
	if err != nil {
		http.Error(w, "error listing modules", http.StatusInternalServerError)
		return
	}
	progressMap, err := h.Repository.ProgressByProfile(h.DB, p.ID)
	if err != nil {
		http.Error(w, "error reading progress", http.StatusInternalServerError)
		return
	}

	pending := []ModuleWithProgress{}
	for _, m := range modules {
		if pr, ok := progressMap[m.ID]; ok && pr.Completed {
			continue
		}
		pending = append(pending, withProgress(m, nil, false))
	}

	writeJSON(w, http.StatusOK, pending)
}

func (h *Handler) moduleFromPath(w http.ResponseWriter, r *http.Request) (*Module, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid module ID", http.StatusBadRequest)
		return nil, false
	}
	m, err := h.Repository.FindActiveByID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "module not found", http.StatusNotFound)
		return nil, false
	}
	return m, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
