package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with sane defaults for this project. CSV imports
// can be slow to upload, hence the generous read timeout.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
