package main

// Utility to expire the stored dashboard session for testing the sign-in redirect
// Usage: go run ./cmd/expire-session <origin> [seconds]
// Example: go run ./cmd/expire-session http://localhost:10086 30

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wgdashboard/wgdash/pkg/db"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <origin> [seconds-until-expiry]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Example: %s http://localhost:10086 30\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nExpires the session cookies stored for <origin> in <seconds-until-expiry> (default: 0, now)\n")
		os.Exit(1)
	}

	origin := strings.TrimRight(os.Args[1], "/")

	expirySeconds := 0
	if len(os.Args) >= 3 {
		if seconds, err := strconv.Atoi(os.Args[2]); err == nil && seconds >= 0 {
			expirySeconds = seconds
		} else {
			fmt.Fprintf(os.Stderr, "Error: Invalid seconds value: %s\n", os.Args[2])
			os.Exit(1)
		}
	}

	var opts []db.Option
	if dbFile := os.Getenv("WGDASH_DB"); dbFile != "" {
		opts = append(opts, db.WithDatabaseFile(dbFile))
	}
	dao, err := db.New(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer dao.Close()

	ctx := context.Background()
	cookies, err := dao.ListCookies(ctx, origin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to read session cookies: %v\n", err)
		os.Exit(1)
	}
	if len(cookies) == 0 {
		fmt.Fprintf(os.Stderr, "Error: No session stored for %s\n", origin)
		fmt.Fprintf(os.Stderr, "Please sign in first: wgdash --origin %s signin\n", origin)
		os.Exit(1)
	}

	// Cookies expire strictly before now, so "0 seconds" must land in the past.
	expiryTime := time.Now().Add(time.Duration(expirySeconds)*time.Second - time.Second).UTC()
	for i := range cookies {
		if cookies[i].Expires != nil {
			fmt.Fprintf(os.Stderr, "- %s currently expires at %s\n", cookies[i].Name, cookies[i].Expires.Format(time.RFC3339))
		}
		cookies[i].Expires = &expiryTime
	}

	if err := dao.ReplaceCookies(ctx, origin, cookies); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to store session cookies: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Session for %s (%d cookie(s)) expires at %s\n", origin, len(cookies), expiryTime.Format(time.RFC3339))
	fmt.Fprintf(os.Stderr, "\nTo test the sign-in redirect:\n")
	fmt.Fprintf(os.Stderr, "  1. Wait %d seconds\n", expirySeconds)
	fmt.Fprintf(os.Stderr, "  2. Open a protected page: wgdash open /settings\n")
	fmt.Fprintf(os.Stderr, "  3. Sign in again: wgdash signin, which returns to /settings\n\n")
}
