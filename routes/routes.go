package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/eccleston-labs/lfg-hackathon/config"
	"github.com/eccleston-labs/lfg-hackathon/handlers"
	"github.com/eccleston-labs/lfg-hackathon/middleware"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(api *handlers.API) http.Handler {
	r := mux.NewRouter()

	identity := middleware.IdentityMiddleware(config.ServiceUserID())

	// =====================================================
	// Partner webhook (API-key gated, no user auth)
	// =====================================================
	webhook := r.PathPrefix("/webhook").Subrouter()
	webhook.Use(middleware.WebhookKeyMiddleware)
	webhook.Use(identity)
	webhook.HandleFunc("/crimestoppers", api.CrimestoppersWebhook).Methods("POST")
	webhook.HandleFunc("/crimestoppers", api.CrimestoppersWebhookInfo).Methods("GET")

	// =====================================================
	// API Routes
	// =====================================================
	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.Use(identity)

	// Report submission and reads
	v1.HandleFunc("/reports", api.CreateReport).Methods("POST")
	v1.HandleFunc("/reports", api.GetReports).Methods("GET")
	v1.HandleFunc("/reports/stream", api.StreamReports).Methods("GET")
	v1.HandleFunc("/reports/live", api.LiveReports).Methods("GET")
	v1.HandleFunc("/reports/nearby", api.NearbyReports).Methods("GET")
	v1.HandleFunc("/reports/export", api.ExportReports).Methods("GET")
	v1.HandleFunc("/reports/{id}", api.GetReport).Methods("GET")
	v1.HandleFunc("/reports/{id}/photos", api.UploadPhotos).Methods("POST")

	// Audio pipeline
	v1.HandleFunc("/transcribe", api.TranscribeAudio).Methods("POST")
	v1.HandleFunc("/parse", api.ParseTranscript).Methods("POST")

	// Supporting lookups
	v1.HandleFunc("/places", api.SearchPlaces).Methods("GET")
	v1.HandleFunc("/dashboard", api.GetDashboard).Methods("GET")

	// Health check
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	return r
}
