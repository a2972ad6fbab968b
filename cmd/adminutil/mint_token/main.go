package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Mints a signed token for local testing against the API. The real platform
// gets tokens from the identity provider; this tool only has to agree on
// JWT_SECRET and the id/role claims.
func main() {
	id := flag.String("id", "", "User id (uuid) to embed in the token")
	role := flag.String("role", "client", "Role claim: client, technician, driver or admin")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	if *id == "" {
		log.Fatalf("usage: go run cmd/adminutil/mint_token/main.go -id <uuid> [-role admin] [-ttl 24h]")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "supersecret"
	}

	claims := jwt.MapClaims{
		"id":   *id,
		"role": *role,
		"exp":  time.Now().Add(*ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}
	fmt.Println(signed)
}
