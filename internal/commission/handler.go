package commission

import (
	"encoding/json"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/sealops/api-strategist/internal/auth"
	"github.com/sealops/api-strategist/internal/profile"
)

// Summary partitions a strategist's ledger into outstanding and paid
// buckets.
type Summary struct {
	TotalEarned  float64      `json:"totalEarned"`
	TotalPending float64      `json:"totalPending"`
	TotalPaid    float64      `json:"totalPaid"`
	PendingCount int64        `json:"pendingCount"`
	PaidCount    int64        `json:"paidCount"`
	Commissions  []Commission `json:"commissions"`
}

type statusStats struct {
	Count int64   `json:"count"`
	Total float64 `json:"total"`
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

// operationalProfile loads the caller's profile and enforces the
// operational-access gate before any ledger read.
func (h *Handler) operationalProfile(w http.ResponseWriter, r *http.Request) (*profile.Profile, bool) {
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
	if !p.IsOperational() {
		http.Error(w, "access denied: complete your training to unlock commissions", http.StatusForbidden)
		return nil, false
	}
	return p, true
}

// GetSummary returns totals, counts and the latest records.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	p, ok := h.operationalProfile(w, r)
	if !ok {
		return
	}

	totalPending, err := h.Repository.TotalByStatuses(h.DB, p.ID, OutstandingStatuses...)
	if err != nil {
		http.Error(w, "error reading commissions", http.StatusInternalServerError)
		return
	}
	totalPaid, err := h.Repository.TotalByStatuses(h.DB, p.ID, StatusPaid)
	if err != nil {
		http.Error(w, "error reading commissions", http.StatusInternalServerError)
		return
	}
	pendingCount, err := h.Repository.CountByStatuses(h.DB, p.ID, OutstandingStatuses...)
	if err != nil {
		http.Error(w, "error reading commissions", http.StatusInternalServerError)
		return
	}
	paidCount, err := h.Repository.CountByStatuses(h.DB, p.ID, StatusPaid)
	if err != nil {
		http.Error(w, "error reading commissions", http.StatusInternalServerError)
		return
	}
	recent, err := h.Repository.RecentByProfile(h.DB, p.ID, 50)
	if err != nil {
		http.Error(w, "error reading commissions", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, Summary{
		TotalEarned:  totalPending + totalPaid,
		TotalPending: totalPending,
		TotalPaid:    totalPaid,
		PendingCount: pendingCount,
		PaidCount:    paidCount,
		Commissions:  recent,
	})
}

// List returns the strategist's commissions, optionally filtered by status.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := h.operationalProfile(w, r)
	if !ok {
		return
	}
	status := strings.ToUpper(r.URL.Query().Get("status"))
	list, err := h.Repository.ListByProfile(h.DB, p.ID, status)
	if err != nil {
		http.Error(w, "error listing commissions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ListPending returns the outstanding (pending + approved) commissions.
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	p, ok := h.operationalProfile(w, r)
	if !ok {
		return
	}
	list, err := h.Repository.ListByProfileAndStatuses(h.DB, p.ID, OutstandingStatuses...)
	if err != nil {
		http.Error(w, "error listing commissions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetRules returns the static commissioning table.
func (h *Handler) GetRules(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.operationalProfile(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, DefaultRules())
}

// GetStats returns per-status breakdowns plus goal progress.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	p, ok := h.operationalProfile(w, r)
	if !ok {
		return
	}

	byStatus := map[string]statusStats{}
	var totalCount int64
	for _, status := range []string{StatusPending, StatusApproved, StatusPaid, StatusCancelled} {
		count, err := h.Repository.CountByStatuses(h.DB, p.ID, status)
		if err != nil {
			http.Error(w, "error reading commissions", http.StatusInternalServerError)
			return
		}
		total, err := h.Repository.TotalByStatuses(h.DB, p.ID, status)
		if err != nil {
			http.Error(w, "error reading commissions", http.StatusInternalServerError)
			return
		}
		byStatus[status] = statusStats{Count: count, Total: total}
		totalCount += count
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"totalCommissions":   totalCount,
		"byStatus":           byStatus,
		"currentCommission":  p.CurrentCommission,
		"financialGoal":      p.FinancialGoal,
		"progressPercentage": p.ProgressPercentage(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
