package crm

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/sealops/api-strategist/internal/auth"
	"github.com/sealops/api-strategist/internal/profile"
)

// Handler serves the tactical board. Every route is gated on operational
// access; the write routes share one transition pipeline.
type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Profiles   profile.Repository
	Pipeline   *Pipeline
	validate   *validator.Validate
}

func NewHandler(db *gorm.DB, pipeline *Pipeline) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Profiles:   profile.NewRepository(),
		Pipeline:   pipeline,
		validate:   validator.New(),
	}
}

// operationalProfile loads the caller's profile and enforces the gate before
// any board operation. Denied requests leave no side effects.
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
		http.Error(w, "access denied: complete your training to unlock the frontline CRM", http.StatusForbidden)
		return nil, false
	}
	return p, true
}

func (h *Handler) leadFromPath(w http.ResponseWriter, r *http.Request, profileID uint) (*Lead, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid lead ID", http.StatusBadRequest)
		return nil, false
	}
	lead, err := h.Repository.FindByIDForProfile(h.DB, uint(id), profileID)
	if err != nil {
		http.Error(w, "lead not found", http.StatusNotFound)
		return nil, false
	}
	return lead, true
}

// GetBoard returns the kanban view with leads grouped per column.
func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	p, ok := h.operationalProfile(w, r)
	if !ok {
		return
	}

	leads, err := h.Repository.ListByProfile(h.DB, p.ID, "")
	if err != nil {
		http.Error(w, "error listing leads", http.StatusInternalServerError)
		return
	}

	board := Board{
		Radar:      []Lead{},
		Combat:     []Lead{},
		Extraction: []Lead{},
		Rescue:     []Lead{},
		TotalCount: len(leads),
	}
	for _, l := range leads {
		switch l.Status {
		case StatusRadar:
			board.Radar = append(board.Radar, l)
		case StatusCombat:
			board.Combat = append(board.Combat, l)
		case StatusExtraction:
			board.Extraction = append(board.Extraction, l)
		case StatusRescue:
			board.Rescue = append(board.Rescue, l)
		}
	}
	board.FamiliesSaved = len(board.Rescue)

	writeJSON(w, http.StatusOK, board)
}

// ListLeads returns the strategist's leads, optionally filtered by status.
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	p, ok := h.operationalProfile(w, r)
	if !ok {
		return
	}
	status := strings.ToUpper(r.URL.Query().Get("status"))
	leads, err := h.Repository.ListByProfile(h.DB, p.ID, status)
	if err != nil {
		http.Error(w, "error listing leads", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

// CreateLead adds a lead; a lead born in RESCUE gets the same side effects
// as one moved there.
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	p, ok := h.operationalProfile(w, r)
	if !ok {
		return
	}

	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "lead name is required", http.StatusBadRequest)
		return
	}
	if req.Status == "" {
		req.Status = StatusRadar
	}
	if !ValidStatus(req.Status) {
		http.Error(w, invalidStatusMessage(), http.StatusBadRequest)
		return
	}

	lead := Lead{
		ProfileID:      p.ID,
		Status:         req.Status,
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		PotentialValue: req.PotentialValue,
		Notes:          req.Notes,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := h.Repository.Create(tx, &lead); err != nil {
			return err
		}
		return h.Pipeline.ApplyTransition(tx, p, &lead, "")
	})
	if err != nil {
		http.Error(w, "error creating lead", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, lead)
}

// GetLead returns one owned lead.
func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	p, ok := h.operationalProfile(w, r)
	if !ok {
		return
	}
	lead, ok := h.leadFromPath(w, r, p.ID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// UpdateLead applies a partial update; a status change runs the transition
// side effects in the same transaction as the save.
func (h *Handler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	p, ok := h.operationalProfile(w, r)
	if !ok {
		return
	}
	lead, ok := h.leadFromPath(w, r, p.ID)
	if !ok {
		return
	}

	var req UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.Status != nil && !ValidStatus(*req.Status) {
		http.Error(w, invalidStatusMessage(), http.StatusBadRequest)
		return
	}

	oldStatus := lead.Status
	if req.Name != nil {
		lead.Name = *req.Name
	}
	if req.Phone != nil {
		lead.Phone = *req.Phone
	}
	if req.Email != nil {
		lead.Email = *req.Email
	}
	if req.PotentialValue != nil {
		lead.PotentialValue = *req.PotentialValue
	}
	if req.Notes != nil {
		lead.Notes = *req.Notes
	}
	if req.Status != nil {
		lead.Status = *req.Status
	}

	if err := h.saveWithTransition(p, lead, oldStatus); err != nil {
		http.Error(w, "error updating lead", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// MoveLead drags a lead to another column.
func (h *Handler) MoveLead(w http.ResponseWriter, r *http.Request) {
	p, ok := h.operationalProfile(w, r)
	if !ok {
		return
	}
	lead, ok := h.leadFromPath(w, r, p.ID)
	if !ok {
		return
	}

	var req MoveLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if !ValidStatus(req.Status) {
		http.Error(w, invalidStatusMessage(), http.StatusBadRequest)
		return
	}

	oldStatus := lead.Status
	lead.Status = req.Status

	if err := h.saveWithTransition(p, lead, oldStatus); err != nil {
		http.Error(w, "error moving lead", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// DeleteLead removes a lead. A closed lead gives back its counter slot; the
// commission, if any, stays.
func (h *Handler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	p, ok := h.operationalProfile(w, r)
	if !ok {
		return
	}
	lead, ok := h.leadFromPath(w, r, p.ID)
	if !ok {
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := h.Pipeline.ApplyDeletion(tx, p, lead); err != nil {
			return err
		}
		return h.Repository.Delete(tx, lead)
	})
	if err != nil {
		http.Error(w, "error deleting lead", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": fmt.Sprintf("lead %q removed", lead.Name),
	})
}

func (h *Handler) saveWithTransition(p *profile.Profile, lead *Lead, oldStatus string) error {
	return h.DB.Transaction(func(tx *gorm.DB) error {
		if err := h.Repository.Save(tx, lead); err != nil {
			return err
		}
		return h.Pipeline.ApplyTransition(tx, p, lead, oldStatus)
	})
}

func invalidStatusMessage() string {
	return "invalid status, use one of: " + strings.Join(Statuses, ", ")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
