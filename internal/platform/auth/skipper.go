package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// publicPrefixes lists path prefixes that bypass the authorization gate.
//
// SECURITY REVIEW: the whole /patients collection is public by current
// product policy. Removing it from this list is the only change needed to
// put patient routes behind bearer auth.
var publicPrefixes = []string{
	"/auth/signup",
	"/auth/signin",
	"/docs",
	"/openapi.json",
	"/favicon.ico",
	"/health",
	"/metrics",
	"/patients",
}

// AuthSkipper returns true for requests whose path should skip authentication.
func AuthSkipper(c echo.Context) bool {
	return IsPublicPath(c.Request().URL.Path)
}

// IsPublicPath reports whether path equals an allow-listed prefix or lies
// beneath it. Matching is segment-aware: "/patients/1" is public,
// "/patientsx" is not.
func IsPublicPath(path string) bool {
	for _, p := range publicPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
