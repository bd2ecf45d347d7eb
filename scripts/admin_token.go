//go:build ignore

// Issues a bearer token for the admin API.
// Usage: go run scripts/admin_token.go -operator alice [-guild 123] [-ttl 720h]
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"invite-tracker/internal/auth"
)

func main() {
	operator := flag.String("operator", "", "name recorded in the token and in audit messages")
	guild := flag.String("guild", "", "restrict the token to one guild")
	ttl := flag.Duration("ttl", 30*24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	if *operator == "" {
		log.Fatal("-operator is required")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	auth.InitJWT(secret)
	token, err := auth.GenerateToken(*operator, *guild, *ttl)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}
	fmt.Println(token)
}
