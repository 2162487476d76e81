// Package httpserver builds the http.Server the gateway listens on.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server with timeouts sized for the gateway's workload.
// The router applies its own per-request timeout; WriteTimeout sits above
// it so slow batch ingests fail through the handler path, not the socket.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
