package resource

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sealops/api-strategist/internal/auth"
	"github.com/sealops/api-strategist/internal/profile"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&profile.Profile{}, &Resource{}))
	return db
}

func newTestRouter(db *gorm.DB) *mux.Router {
	h := NewHandler(db)
	r := mux.NewRouter()
	r.HandleFunc("/resources/arsenal", h.GetArsenal).Methods("GET")
	r.HandleFunc("/resources/categories", h.GetCategories).Methods("GET")
	r.HandleFunc("/resources", h.List).Methods("GET")
	r.HandleFunc("/resources/{id}", h.Get).Methods("GET")
	r.HandleFunc("/resources/{id}/download", h.RegisterDownload).Methods("POST")
	return r
}

func createProfile(t *testing.T, db *gorm.DB, step int) *profile.Profile {
	t.Helper()
	p := &profile.Profile{
		AuthKey:              "f0a3b6c9-d2e5-4f81-a7b4-c1d8e5f2a901",
		Email:                "operator@example.com",
		OnboardingStep:       step,
		CommissionPercentage: 5,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedResources(t *testing.T, db *gorm.DB) {
	t.Helper()
	resources := []Resource{
		{Title: "Cold Call Script", Category: CategoryScript, FileURL: "https://files.example/script.pdf", FileType: "pdf", IsActive: true},
		{Title: "Objection Playbook", Category: CategoryPlaybook, FileURL: "https://files.example/playbook.pdf", FileType: "pdf", IsActive: true},
		{Title: "Proposal Template", Category: CategoryTemplate, FileURL: "https://files.example/proposal.docx", FileType: "docx", IsActive: true},
		{Title: "Old Guide", Category: CategoryGuide, FileURL: "https://files.example/old.pdf", FileType: "pdf", IsActive: true},
	}
	for i := range resources {
		require.NoError(t, db.Create(&resources[i]).Error)
	}
	// Zero-valued fields with column defaults are skipped on create, so the
	// retired guide is flipped explicitly.
	require.NoError(t, db.Model(&resources[3]).Update("is_active", false).Error)
}

func do(t *testing.T, r *mux.Router, profileID uint, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, &bytes.Buffer{})
	req = req.WithContext(auth.WithProfileID(req.Context(), profileID))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestArsenalDeniedBeforeOperational(t *testing.T) {
	db := newTestDB(t)
	p := createProfile(t, db, profile.StepEngagement)
	seedResources(t, db)
	r := newTestRouter(db)

	for _, path := range []string{"/resources/arsenal", "/resources", "/resources/1"} {
		rec := do(t, r, p.ID, http.MethodGet, path)
		require.Equal(t, http.StatusForbidden, rec.Code)
	}
}

func TestArsenalGroupsByCategory(t *testing.T) {
	db := newTestDB(t)
	p := createProfile(t, db, profile.StepOperational)
	seedResources(t, db)
	r := newTestRouter(db)

	rec := do(t, r, p.ID, http.MethodGet, "/resources/arsenal")
	require.Equal(t, http.StatusOK, rec.Code)

	var arsenal Arsenal
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&arsenal))
	require.Len(t, arsenal.Script, 1)
	require.Len(t, arsenal.Playbook, 1)
	require.Len(t, arsenal.Template, 1)
	require.Empty(t, arsenal.Guide) // the only guide is inactive
	require.Equal(t, 3, arsenal.TotalCount)
}

func TestListFiltersByCategory(t *testing.T) {
	db := newTestDB(t)
	p := createProfile(t, db, profile.StepOperational)
	seedResources(t, db)
	r := newTestRouter(db)

	rec := do(t, r, p.ID, http.MethodGet, "/resources?category=script")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []Resource
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)
	require.Equal(t, CategoryScript, list[0].Category)
}

func TestRegisterDownloadIncrementsCounter(t *testing.T) {
	db := newTestDB(t)
	p := createProfile(t, db, profile.StepOperational)
	seedResources(t, db)
	r := newTestRouter(db)

	rec := do(t, r, p.ID, http.MethodPost, "/resources/1/download")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		FileURL  string `json:"fileUrl"`
		FileType string `json:"fileType"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "https://files.example/script.pdf", resp.FileURL)
	require.Equal(t, "pdf", resp.FileType)

	rec = do(t, r, p.ID, http.MethodPost, "/resources/1/download")
	require.Equal(t, http.StatusOK, rec.Code)

	var fresh Resource
	require.NoError(t, db.First(&fresh, 1).Error)
	require.Equal(t, 2, fresh.DownloadCount)
}

func TestDownloadInactiveResourceIsNotFound(t *testing.T) {
	db := newTestDB(t)
	p := createProfile(t, db, profile.StepOperational)
	seedResources(t, db)
	r := newTestRouter(db)

	rec := do(t, r, p.ID, http.MethodPost, "/resources/4/download")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoriesReportCountsAndDownloads(t *testing.T) {
	db := newTestDB(t)
	p := createProfile(t, db, profile.StepOperational)
	seedResources(t, db)
	r := newTestRouter(db)

	rec := do(t, r, p.ID, http.MethodPost, "/resources/1/download")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, p.ID, http.MethodGet, "/resources/categories")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats []CategoryStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	require.Len(t, stats, len(Categories))

	byCategory := map[string]CategoryStats{}
	for _, s := range stats {
		byCategory[s.Category] = s
	}
	require.EqualValues(t, 1, byCategory[CategoryScript].Count)
	require.EqualValues(t, 1, byCategory[CategoryScript].TotalDownloads)
	require.EqualValues(t, 0, byCategory[CategoryGuide].Count)
}
