package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/printforge/server/internal/middleware"
)

// tokengen signs a bearer token for local and staging use, so the
// storefront can be exercised without a full identity provider.
func main() {
	var (
		subFlag    string
		localeFlag string
		ttlFlag    time.Duration
		secretFlag string
	)

	flag.StringVar(&subFlag, "sub", "", "subject (user ID) to embed in the token")
	flag.StringVar(&localeFlag, "locale", "", "locale hint to embed in the token")
	flag.DurationVar(&ttlFlag, "ttl", 24*time.Hour, "token lifetime")
	flag.StringVar(&secretFlag, "secret", "", "signing secret (defaults to JWT_SECRET)")
	flag.Parse()

	_ = godotenv.Load()

	sub := strings.TrimSpace(subFlag)
	if sub == "" {
		exitWithError(errors.New("-sub is required"))
	}

	secret := secretFlag
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	if secret == "" {
		exitWithError(errors.New("signing secret missing: pass -secret or set JWT_SECRET"))
	}

	token, err := middleware.SignJWT(secret, middleware.TokenClaims{
		Sub:    sub,
		Locale: strings.TrimSpace(localeFlag),
		Exp:    time.Now().Add(ttlFlag).Unix(),
	})
	if err != nil {
		exitWithError(fmt.Errorf("sign token: %w", err))
	}

	fmt.Println(token)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
