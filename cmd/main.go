package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/sealops/api-strategist/internal/auth"
	"github.com/sealops/api-strategist/internal/commission"
	"github.com/sealops/api-strategist/internal/crm"
	"github.com/sealops/api-strategist/internal/onboarding"
	"github.com/sealops/api-strategist/internal/profile"
	"github.com/sealops/api-strategist/internal/resource"
	"github.com/sealops/api-strategist/internal/training"
	"github.com/sealops/api-strategist/internal/utils/db"
)

func main() {
	_ = godotenv.Load()

	database, err := db.Connect()
	if err != nil {
		log.Fatal("error connecting to the database: ", err)
	}

	if err := database.AutoMigrate(
		&profile.Profile{},
		&crm.Lead{},
		&commission.Commission{},
		&onboarding.Meeting{},
		&training.Module{},
		&training.Progress{},
		&resource.Resource{},
	); err != nil {
		log.Fatal("error running AutoMigrate: ", err)
	}

	pipeline := crm.NewPipeline(os.Getenv("CRM_REVERSE_COMMISSION_ON_EXIT") == "true")

	profileHandler := profile.NewHandler(database)
	onboardingHandler := onboarding.NewHandler(database)
	crmHandler := crm.NewHandler(database, pipeline)
	commissionHandler := commission.NewHandler(database)
	trainingHandler := training.NewHandler(database)
	resourceHandler := resource.NewHandler(database)

	r := mux.NewRouter()

	// The scheduler posts here without credentials; everything else sits
	// behind the identity gate.
	r.HandleFunc("/onboarding/calendly-webhook", onboardingHandler.SchedulerWebhook).Methods("POST")

	resolver := func(authKey, email string) (uint, error) {
		p, err := profileHandler.Repository.GetOrCreateByAuthKey(database, authKey, email)
		if err != nil {
			return 0, err
		}
		return p.ID, nil
	}

	api := r.NewRoute().Subrouter()
	api.Use(auth.Middleware(resolver))

	// Profile and onboarding transitions
	api.HandleFunc("/profiles/me", profileHandler.Me).Methods("GET")
	api.HandleFunc("/profiles/me", profileHandler.Update).Methods("PUT")
	api.HandleFunc("/profiles/onboarding/complete-step-0", profileHandler.CompleteRegistration).Methods("POST")
	api.HandleFunc("/profiles/onboarding/complete-step-1", profileHandler.ConfirmBriefing).Methods("POST")
	api.HandleFunc("/profiles/onboarding/complete-step-2", profileHandler.CompleteEngagement).Methods("POST")
	api.HandleFunc("/profiles/dashboard-stats", profileHandler.DashboardStats).Methods("GET")

	// Kickoff scheduling
	api.HandleFunc("/onboarding/check-schedule", onboardingHandler.CheckSchedule).Methods("GET")
	api.HandleFunc("/onboarding/confirm-schedule", onboardingHandler.ConfirmSchedule).Methods("POST")
	api.HandleFunc("/onboarding/dev-simulate-schedule", onboardingHandler.SimulateSchedule).Methods("POST")

	// Frontline CRM
	api.HandleFunc("/crm/board", crmHandler.GetBoard).Methods("GET")
	api.HandleFunc("/crm/leads", crmHandler.ListLeads).Methods("GET")
	api.HandleFunc("/crm/leads", crmHandler.CreateLead).Methods("POST")
	api.HandleFunc("/crm/leads/{id}", crmHandler.GetLead).Methods("GET")
	api.HandleFunc("/crm/leads/{id}", crmHandler.UpdateLead).Methods("PUT")
	api.HandleFunc("/crm/leads/{id}/move", crmHandler.MoveLead).Methods("PATCH")
	api.HandleFunc("/crm/leads/{id}", crmHandler.DeleteLead).Methods("DELETE")

	// Commissions
	api.HandleFunc("/commissions/summary", commissionHandler.GetSummary).Methods("GET")
	api.HandleFunc("/commissions/list", commissionHandler.List).Methods("GET")
	api.HandleFunc("/commissions/pending", commissionHandler.ListPending).Methods("GET")
	api.HandleFunc("/commissions/rules", commissionHandler.GetRules).Methods("GET")
	api.HandleFunc("/commissions/stats", commissionHandler.GetStats).Methods("GET")

	// Training
	api.HandleFunc("/training/modules", trainingHandler.GetOverview).Methods("GET")
	api.HandleFunc("/training/pending", trainingHandler.ListPending).Methods("GET")
	api.HandleFunc("/training/modules/{id}", trainingHandler.GetModule).Methods("GET")
	api.HandleFunc("/training/modules/{id}/complete", trainingHandler.CompleteModule).Methods("POST")

	// Arsenal
	api.HandleFunc("/resources/arsenal", resourceHandler.GetArsenal).Methods("GET")
	api.HandleFunc("/resources/list", resourceHandler.List).Methods("GET")
	api.HandleFunc("/resources/categories", resourceHandler.GetCategories).Methods("GET")
	api.HandleFunc("/resources/{id}", resourceHandler.Get).Methods("GET")
	api.HandleFunc("/resources/{id}/download", resourceHandler.RegisterDownload).Methods("POST")

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}).Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("server listening on http://localhost:%s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
