// Command sitescan starts the compliance-scanner API server.
// Usage: sitescan [-addr :8080] [-doh https://dns.google/resolve]
package main

import (
	"flag"
	"log"

	"github.com/conformeo/sitescan/internal/logging"
	"github.com/conformeo/sitescan/internal/server"
)

func main() {
	cfg := server.DefaultConfig()

	addr := flag.String("addr", cfg.ListenAddr, "HTTP listen address")
	doh := flag.String("doh", cfg.DoHEndpoint, "DNS-over-HTTPS resolver endpoint")
	flag.Parse()

	cfg.ListenAddr = *addr
	cfg.DoHEndpoint = *doh
	cfg.Logger = logging.NewStdoutLogger("sitescan")

	s, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("creating server: %v", err)
	}
	defer s.Close()

	cfg.Logger.Info("listening", logging.Field{Key: "addr", Value: cfg.ListenAddr})
	if err := s.HTTPServer().ListenAndServe(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
