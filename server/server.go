package server

import (
	"crypto/tls"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/serisow/ancrage/handlers"
	"github.com/urfave/negroni"
	"golang.org/x/crypto/acme/autocert"
)

type Handlers struct {
	Query       *handlers.QueryHandler
	Ingest      *handlers.IngestHandler
	Upload      *handlers.UploadHandler
	Stats       *handlers.StatsHandler
	Maintenance *handlers.MaintenanceHandler
}

func SetupRoutes(h Handlers) *mux.Router {
	r := mux.NewRouter()

	r.Handle("/query", h.Query).Methods("POST")
	r.Handle("/ingest", h.Ingest).Methods("POST")
	r.Handle("/documents/upload", h.Upload).Methods("POST")
	r.Handle("/stats", h.Stats).Methods("GET")

	// Maintenance routes, outside the pipelines
	r.HandleFunc("/documents", h.Maintenance.ClearDocuments).Methods("DELETE")
	r.HandleFunc("/documents/reindex", h.Maintenance.ReindexDocuments).Methods("POST")

	return r
}

// ServeProduction builds the server when we operate in a production environment.
func ServeProduction(n *negroni.Negroni, domains []string, certCacheDir string) {
	// Configure autocert settings
	autocertManager := autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(certCacheDir),
	}

	// Listen for HTTP requests on port 80 in a new goroutine. Use
	// autocertManager.HTTPHandler(nil) as the handler. This will send ACME
	// "http-01" challenge responses as necessary, and 302 redirect all other
	// requests to HTTPS.
	go func() {
		srv := &http.Server{
			Addr:         ":80",
			Handler:      autocertManager.HTTPHandler(nil),
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		err := srv.ListenAndServe()
		log.Fatal(err)
	}()

	// Configure the TLS config to use the autocertManager.GetCertificate function.
	tlsConfig := &tls.Config{
		GetCertificate:           autocertManager.GetCertificate,
		PreferServerCipherSuites: true,
		CurvePreferences:         []tls.CurveID{tls.X25519, tls.CurveP256},
	}

	srv := &http.Server{
		Addr:      ":443",
		Handler:   n,
		TLSConfig: tlsConfig,
		IdleTimeout: time.Minute,
		ReadTimeout: 30 * time.Second,
		// Query responses wait on provider calls that can take up to
		// two minutes.
		WriteTimeout: 3 * time.Minute,
	}

	err := srv.ListenAndServeTLS("", "") // Key and cert provided automatically by autocert.
	log.Fatal(err)
}

// ServeDevelopment starts the server when we operate in a dev environment.
func ServeDevelopment(s *http.Server) {
	log.Fatal(s.ListenAndServe())
}
