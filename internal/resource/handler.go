package resource

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/sealops/api-strategist/internal/auth"
	"github.com/sealops/api-strategist/internal/profile"
)

// Arsenal is the resource library grouped per category.
type Arsenal struct {
	Script     []Resource `json:"SCRIPT"`
	Playbook   []Resource `json:"PLAYBOOK"`
	Template   []Resource `json:"TEMPLATE"`
	Guide      []Resource `json:"GUIDE"`
	TotalCount int        `json:"totalCount"`
}

// CategoryStats summarizes one category.
type CategoryStats struct {
	Category        string `json:"category"`
	CategoryDisplay string `json:"categoryDisplay"`
	Count           int64  `json:"count"`
	TotalDownloads  int64  `json:"totalDownloads"`
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

// operationalProfile enforces the access gate on the arsenal.
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
		http.Error(w, "access denied: complete your training to unlock the arsenal", http.StatusForbidden)
		return nil, false
	}
	return p, true
}

// GetArsenal returns every active resource grouped per category.
func (h *Handler) GetArsenal(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.operationalProfile(w, r); !ok {
		return
	}

	resources, err := h.Repository.ListActive(h.DB, "")
	if err != nil {
		http.Error(w, "error listing resources", http.StatusInternalServerError)
		return
	}

	arsenal := Arsenal{
		Script:     []Resource{},
		Playbook:   []Resource{},
		Template:   []Resource{},
		Guide:      []Resource{},
		TotalCount: len(resources),
	}
	for _, res := range resources {
		switch res.Category {
		case CategoryScript:
			arsenal.Script = append(arsenal.Script, res)
		case CategoryPlaybook:
			arsenal.Playbook = append(arsenal.Playbook, res)
		case CategoryTemplate:
			arsenal.Template = append(arsenal.Template, res)
		case CategoryGuide:
			arsenal.Guide = append(arsenal.Guide, res)
		}
	}

	writeJSON(w, http.StatusOK, arsenal)
}

// List returns active resources, optionally filtered by category.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.operationalProfile(w, r); !ok {
		return
	}
	category := strings.ToUpper(r.URL.Query().Get("category"))
	list, err := h.Repository.ListActive(h.DB, category)
	if err != nil {
		http.Error(w, "error listing resources", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetCategories returns per-category counts and download totals.
func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.operationalProfile(w, r); !ok {
		return
	}

	stats := []CategoryStats{}
	for _, cat := range Categories {
		count, downloads, err := h.Repository.CategoryTotals(h.DB, cat)
		if err != nil {
			http.Error(w, "error reading resources", http.StatusInternalServerError)
			return
		}
		stats = append(stats, CategoryStats{
			Category:        cat,
			CategoryDisplay: CategoryNames[cat],
			Count:           count,
			TotalDownloads:  downloads,
		})
	}

	writeJSON(w, http.StatusOK, stats)
}

// Get returns one resource.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.operationalProfile(w, r); !ok {
		return
	}
	res, ok := h.resourceFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RegisterDownload counts a download and hands back the file URL.
func (h *Handler) RegisterDownload(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.operationalProfile(w, r); !ok {
		return
	}
	res, ok := h.resourceFromPath(w, r)
	if !ok {
		return
	}

	res.DownloadCount++
	if err := h.Repository.Save(h.DB, res); err != nil {
		http.Error(w, "error registering download", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"message":  fmt.Sprintf("download of %q authorized", res.Title),
		"fileUrl":  res.FileURL,
		"fileType": res.FileType,
	})
}

func (h *Handler) resourceFromPath(w http.ResponseWriter, r *http.Request) (*Resource, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid resource ID", http.StatusBadRequest)
		return nil, false
	}
	res, err := h.Repository.FindActiveByID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "resource not found", http.StatusNotFound)
		return nil, false
	}
	return res, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
