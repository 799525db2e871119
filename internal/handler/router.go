package handler

import (
	"net/http"

	"pdf-extract-service/internal/config"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(container *config.Container) http.Handler {
	router := mux.NewRouter()

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"pdf-extract-service"}`))
	}).Methods("GET")

	// API prefix
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(RequestLogger(container.Logger))

	extractHandler := NewExtractHandler(container.Extractor, container.Logger)

	api.HandleFunc("/extract", extractHandler.ExtractDocument).Methods("POST")
	api.HandleFunc("/extract/page", extractHandler.ExtractPage).Methods("POST")
	api.HandleFunc("/extract/range", extractHandler.ExtractRange).Methods("POST")
	api.HandleFunc("/info", extractHandler.Info).Methods("POST")

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: container.Config.GetAllowedOrigins(),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
		},
		MaxAge: 300,
	})

	return c.Handler(router)
}
