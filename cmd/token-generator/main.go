// Command token-generator prints a bearer token accepted by the task routes
// when auth.jwt_secret is configured.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/phrazzld/taskapi/internal/config"
	"github.com/phrazzld/taskapi/internal/service/auth"
)

func main() {
	subject := flag.String("subject", "taskapi-client", "token subject identifying the caller")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if !cfg.Auth.Enabled() {
		fmt.Fprintln(os.Stderr, "auth.jwt_secret is not set; task routes are unauthenticated")
		os.Exit(1)
	}

	svc, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating JWT service: %v\n", err)
		os.Exit(1)
	}

	token, err := svc.GenerateToken(context.Background(), *subject)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
