package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/qcc-workforce/attendance-backend-go/internal/config"
	"github.com/qcc-workforce/attendance-backend-go/internal/pkg/jwt"
)

// tokengen signs an access token for operators and local testing. It
// reads the same .env as the API server, so tokens it prints are
// accepted by a server running against that configuration.
func main() {
	userID := flag.String("user", "", "user id to embed in the token")
	isAdmin := flag.Bool("admin", false, "grant admin claims")
	siteID := flag.String("site", "", "assigned site id, omitted when empty")
	flag.Parse()

	if *userID == "" {
		fmt.Println("tokengen: -user is required")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	svc := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	var assignedSite *string
	if *siteID != "" {
		assignedSite = siteID
	}

	token, expiresAt, err := svc.GenerateAccessToken(*userID, *isAdmin, assignedSite)
	if err != nil {
		fmt.Println("Error signing token:", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Println("expires:", time.Unix(expiresAt, 0).Format(time.RFC3339))
}
