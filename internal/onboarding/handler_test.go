package onboarding

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sealops/api-strategist/internal/auth"
	"github.com/sealops/api-strategist/internal/profile"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&profile.Profile{}, &Meeting{}))
	return db
}

func createProfile(t *testing.T, db *gorm.DB, email string, step int) *profile.Profile {
	t.Helper()
	p := &profile.Profile{
		AuthKey:              "e2b9d7a0-52c3-4f7e-9d1b-8a6f4c2e0b13",
		Email:                email,
		OnboardingStep:       step,
		CommissionPercentage: 5,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func postWebhook(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/scheduler", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.SchedulerWebhook(rec, req)
	return rec
}

func createdPayload(email, start string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"event": "invitee.created",
		"payload": map[string]interface{}{
			"invitee": map[string]string{"email": email},
			"event":   map[string]string{"uri": "https://scheduler.example/ev/1", "start_time": start},
		},
	})
	return string(b)
}

func canceledPayload(email string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"event": "invitee.canceled",
		"payload": map[string]interface{}{
			"invitee": map[string]string{"email": email},
		},
	})
	return string(b)
}

func reload(t *testing.T, db *gorm.DB, id uint) *profile.Profile {
	t.Helper()
	var p profile.Profile
	require.NoError(t, db.First(&p, id).Error)
	return &p
}

func TestWebhookCreatedAdvancesBriefingProfile(t *testing.T) {
	db := newTestDB(t)
	p := createProfile(t, db, "recruit@example.com", profile.StepBriefing)
	h := NewHandler(db)

	start := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	rec := postWebhook(t, h, createdPayload("Recruit@Example.com", start))
	require.Equal(t, http.StatusOK, rec.Code)

	require.Equal(t, profile.StepEngagement, reload(t, db, p.ID).OnboardingStep)

	m, err := h.Repository.FindByProfile(db, p.ID)
	require.NoError(t, err)
	require.Equal(t, "https://scheduler.example/ev/1", m.EventRef)
}

func TestWebhookCreatedLeavesOtherStepsAlone(t *testing.T) {
	db := newTestDB(t)
	p := createProfile(t, db, "recruit@example.com", profile.StepRegistration)
	h := NewHandler(db)

	start := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	rec := postWebhook(t, h, createdPayload("recruit@example.com", start))
	require.Equal(t, http.StatusOK, rec.Code)

	// The meeting is recorded but the step does not jump ahead.
	require.Equal(t, profile.StepRegistration, reload(t, db, p.ID).OnboardingStep)
	_, err := h.Repository.FindByProfile(db, p.ID)
	require.NoError(t, err)
}

func TestWebhookCanceledRollsBackEngagement(t *testing.T) {
	db := newTestDB(t)
	p := createProfile(t, db, "recruit@example.com", profile.StepBriefing)
	h := NewHandler(db)

	start := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	postWebhook(t, h, createdPayload("recruit@example.com", start))
	require.Equal(t, profile.StepEngagement, reload(t, db, p.ID).OnboardingStep)

	rec := postWebhook(t, h, canceledPayload("recruit@example.com"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, profile.StepBriefing, reload(t, db, p.ID).OnboardingStep)

	_, err := h.Repository.FindByProfile(db, p.ID)
	require.Error(t, err)
}

func TestWebhookCanceledNeverRollsBackOperational(t *testing.T) {
	db := newTestDB(t)
	p := createProfile(t, db, "recruit@example.com", profile.StepOperational)
	h := NewHandler(db)

	rec := postWebhook(t, h, canceledPayload("recruit@example.com"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, profile.StepOperational, reload(t, db, p.ID).OnboardingStep)
}

func TestWebhookAcksUnknownEmail(t *testing.T) {
	db := newTestDB(t)
	h := NewHandler(db)

	start := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	rec := postWebhook(t, h, createdPayload("stranger@example.com", start))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "warning", resp.Status)
}

func TestWebhookAcksMalformedPayload(t *testing.T) {
	db := newTestDB(t)
	h := NewHandler(db)

	rec := postWebhook(t, h, "{not json")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "error", resp.Status)
}

func TestWebhookAcksBadStartTime(t *testing.T) {
	db := newTestDB(t)
	createProfile(t, db, "recruit@example.com", profile.StepBriefing)
	h := NewHandler(db)

	rec := postWebhook(t, h, createdPayload("recruit@example.com", "tomorrow at noon"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "warning", resp.Status)
}

func TestConfirmScheduleIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	p := createProfile(t, db, "recruit@example.com", profile.StepBriefing)
	h := NewHandler(db)

	_, err := h.Repository.Upsert(db, p.ID, time.Now().Add(24*time.Hour), "ev-1")
	require.NoError(t, err)

	confirm := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/onboarding/confirm-schedule", nil)
		req = req.WithContext(auth.WithProfileID(req.Context(), p.ID))
		rec := httptest.NewRecorder()
		h.ConfirmSchedule(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, confirm().Code)
	require.Equal(t, profile.StepEngagement, reload(t, db, p.ID).OnboardingStep)

	require.Equal(t, http.StatusOK, confirm().Code)
	require.Equal(t, profile.StepEngagement, reload(t, db, p.ID).OnboardingStep)
}

func TestConfirmScheduleWithoutMeetingReportsPending(t *testing.T) {
	db := newTestDB(t)
	p := createProfile(t, db, "recruit@example.com", profile.StepBriefing)
	h := NewHandler(db)

	req := httptest.NewRequest(http.MethodPost, "/onboarding/confirm-schedule", nil)
	req = req.WithContext(auth.WithProfileID(req.Context(), p.ID))
	rec := httptest.NewRecorder()
	h.ConfirmSchedule(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "pending", resp.Status)
	require.Equal(t, profile.StepBriefing, reload(t, db, p.ID).OnboardingStep)
}
