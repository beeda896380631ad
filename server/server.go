package server

import (
	"crypto/tls"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/negroni"
	"golang.org/x/crypto/acme/autocert"

	"github.com/serisow/storystudio/handlers"
)

type Config struct {
	Domains      []string
	CertCacheDir string
	HTTPPort     string
	HTTPSPort    string
	IdleTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func SetupRoutes(storyHandler *handlers.StoryHandler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/stories", storyHandler.SubmitStory).Methods("POST")
	r.HandleFunc("/stories/upload", storyHandler.UploadStory).Methods("POST")
	r.HandleFunc("/stories/segment", storyHandler.SegmentStory).Methods("POST")
	r.HandleFunc("/stories/media", storyHandler.SubmitMedia).Methods("POST")

	r.HandleFunc("/executions", storyHandler.ListExecutions).Methods("GET")
	r.HandleFunc("/executions/{execution_id}/status", storyHandler.GetExecutionStatus).Methods("GET")
	r.HandleFunc("/executions/{execution_id}/results", storyHandler.GetExecutionResults).Methods("GET")

	return r
}

// SetupNegroni wraps the router with recovery and request logging.
func SetupNegroni(r *mux.Router) *negroni.Negroni {
	n := negroni.New()
	n.Use(negroni.NewRecovery())
	n.Use(negroni.NewLogger())
	n.UseHandler(r)
	return n
}

// ServeProduction serves HTTPS with certificates from Let's Encrypt.
func ServeProduction(cfg Config, n *negroni.Negroni) {
	autocertManager := autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(cfg.Domains...),
		Cache:      autocert.DirCache(cfg.CertCacheDir),
	}

	// Port 80 answers ACME "http-01" challenges and redirects everything
	// else to HTTPS.
	go func() {
		srv := &http.Server{
			Addr:         ":80",
			Handler:      autocertManager.HTTPHandler(nil),
			IdleTimeout:  cfg.IdleTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		}

		err := srv.ListenAndServe()
		log.Fatal(err)
	}()

	tlsConfig := &tls.Config{
		GetCertificate:   autocertManager.GetCertificate,
		CurvePreferences: []tls.CurveID{tls.X25519, tls.CurveP256},
		MinVersion:       tls.VersionTLS12,
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPSPort,
		Handler:      n,
		TLSConfig:    tlsConfig,
		IdleTimeout:  cfg.IdleTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	err := srv.ListenAndServeTLS("", "")
	log.Fatal(err)
}

// ServeDevelopment serves plain HTTP.
func ServeDevelopment(s *http.Server) {
	log.Fatal(s.ListenAndServe())
}
