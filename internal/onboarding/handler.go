package onboarding

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sealops/api-strategist/internal/auth"
	"github.com/sealops/api-strategist/internal/profile"
)

// Scheduler webhook event types.
const (
	eventInviteeCreated  = "invitee.created"
	eventInviteeCanceled = "invitee.canceled"
)

type webhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Invitee struct {
			Email string `json:"email"`
		} `json:"invitee"`
		Event struct {
			URI       string `json:"uri"`
			StartTime string `json:"start_time"`
		} `json:"event"`
	} `json:"payload"`
}

type scheduleStatus struct {
	HasSchedule  bool       `json:"hasSchedule"`
	ScheduleTime *time.Time `json:"scheduleTime,omitempty"`
}

type message struct {
	Status  string `json:"status"`
	Message string `json:"message"`
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

// CheckSchedule reports whether the strategist has a kickoff booked.
func (h *Handler) CheckSchedule(w http.ResponseWriter, r *http.Request) {
	p, ok := h.current(w, r)
	if !ok {
		return
	}

	m, err := h.Repository.FindByProfile(h.DB, p.ID)
	if err != nil {
		writeJSON(w, http.StatusOK, scheduleStatus{HasSchedule: false})
		return
	}
	writeJSON(w, http.StatusOK, scheduleStatus{HasSchedule: true, ScheduleTime: &m.Time})
}

// ConfirmSchedule is the polling path for the briefing step: if a meeting
// exists and the profile is still at step 1, advance to step 2. Calling it
// again is a no-op.
func (h *Handler) ConfirmSchedule(w http.ResponseWriter, r *http.Request) {
	p, ok := h.current(w, r)
	if !ok {
		return
	}

	m, err := h.Repository.FindByProfile(h.DB, p.ID)
	if err != nil {
		writeJSON(w, http.StatusOK, message{Status: "pending", Message: "waiting for the meeting to be booked"})
		return
	}

	if p.OnboardingStep == profile.StepBriefing {
		p.OnboardingStep = profile.StepEngagement
		if err := h.Profiles.Save(h.DB, p); err != nil {
			http.Error(w, "error saving profile", http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusOK, message{
		Status:  "ok",
		Message: fmt.Sprintf("meeting confirmed for %s", m.Time.Format(time.RFC3339)),
	})
}

// SchedulerWebhook receives booking events from the external scheduler.
// Business-logic mismatches (unknown email, malformed payload) are logged
// and acknowledged with 200 so the sender does not retry-storm.
func (h *Handler) SchedulerWebhook(w http.ResponseWriter, r *http.Request) {
	var body webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.Printf("scheduler webhook: malformed payload: %v", err)
		writeJSON(w, http.StatusOK, message{Status: "error", Message: "malformed payload"})
		return
	}

	switch body.Event {
	case eventInviteeCreated:
		h.handleMeetingCreated(w, body)
	case eventInviteeCanceled:
		h.handleMeetingCanceled(w, body)
	default:
		writeJSON(w, http.StatusOK, message{Status: "ok", Message: "event processed"})
	}
}

func (h *Handler) handleMeetingCreated(w http.ResponseWriter, body webhookPayload) {
	email := strings.ToLower(strings.TrimSpace(body.Payload.Invitee.Email))
	startStr := body.Payload.Event.StartTime
	if email == "" || startStr == "" {
		log.Printf("scheduler webhook: created event missing email or start time")
		writeJSON(w, http.StatusOK, message{Status: "warning", Message: "missing email or start time"})
		return
	}

	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		log.Printf("scheduler webhook: bad start time %q: %v", startStr, err)
		writeJSON(w, http.StatusOK, message{Status: "warning", Message: "unparseable start time"})
		return
	}

	p, err := h.Profiles.FindByEmail(h.DB, email)
	if err != nil {
		log.Printf("scheduler webhook: no profile for email %s", email)
		writeJSON(w, http.StatusOK, message{Status: "warning", Message: fmt.Sprintf("profile not found: %s", email)})
		return
	}

	if _, err := h.Repository.Upsert(h.DB, p.ID, start, body.Payload.Event.URI); err != nil {
		log.Printf("scheduler webhook: saving meeting for %s: %v", email, err)
		writeJSON(w, http.StatusOK, message{Status: "warning", Message: "could not record meeting"})
		return
	}

	// A confirmed booking only moves a profile that is exactly at the
	// briefing step.
	if p.OnboardingStep == profile.StepBriefing {
		p.OnboardingStep = profile.StepEngagement
		if err := h.Profiles.Save(h.DB, p); err != nil {
			log.Printf("scheduler webhook: advancing profile %d: %v", p.ID, err)
		}
	}

	writeJSON(w, http.StatusOK, message{Status: "ok", Message: fmt.Sprintf("meeting recorded for %s", email)})
}

func (h *Handler) handleMeetingCanceled(w http.ResponseWriter, body webhookPayload) {
	email := strings.ToLower(strings.TrimSpace(body.Payload.Invitee.Email))
	if email == "" {
		writeJSON(w, http.StatusOK, message{Status: "ok", Message: "event processed"})
		return
	}

	p, err := h.Profiles.FindByEmail(h.DB, email)
	if err != nil {
		log.Printf("scheduler webhook: no profile for email %s", email)
		writeJSON(w, http.StatusOK, message{Status: "ok", Message: "event processed"})
		return
	}

	if err := h.Repository.DeleteByProfile(h.DB, p.ID); err != nil {
		log.Printf("scheduler webhook: deleting meetings for %s: %v", email, err)
	}

	// The one sanctioned rollback: a cancelled kickoff sends an engagement
	// profile back to the briefing step.
	if p.OnboardingStep == profile.StepEngagement {
		p.OnboardingStep = profile.StepBriefing
		if err := h.Profiles.Save(h.DB, p); err != nil {
			log.Printf("scheduler webhook: rolling back profile %d: %v", p.ID, err)
		}
	}

	writeJSON(w, http.StatusOK, message{Status: "ok", Message: fmt.Sprintf("meeting cancelled for %s", email)})
}

// SimulateSchedule fakes a booking for local development. Disabled unless
// APP_DEBUG=true.
func (h *Handler) SimulateSchedule(w http.ResponseWriter, r *http.Request) {
	if os.Getenv("APP_DEBUG") != "true" {
		http.Error(w, "endpoint available in development only", http.StatusForbidden)
		return
	}

	p, ok := h.current(w, r)
	if !ok {
		return
	}

	fakeTime := time.Now().Add(7 * 24 * time.Hour)
	if _, err := h.Repository.Upsert(h.DB, p.ID, fakeTime, "dev-test-event"); err != nil {
		http.Error(w, "error recording meeting", http.StatusInternalServerError)
		return
	}

	if p.OnboardingStep == profile.StepBriefing {
		p.OnboardingStep = profile.StepEngagement
		if err := h.Profiles.Save(h.DB, p); err != nil {
			http.Error(w, "error saving profile", http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusOK, message{
		Status:  "ok",
		Message: fmt.Sprintf("meeting simulated for %s", fakeTime.Format(time.RFC3339)),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
