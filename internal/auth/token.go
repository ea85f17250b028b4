package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the exp claim when the bearer token happens to be a JWT.
// The signature is not checked; the value is for display only and never
// affects whether the session counts as logged in.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// ExpiryLabel renders the time left on a token, e.g. "expires in 3h" or
// "expired". Returns "" for opaque tokens.
func ExpiryLabel(token string, now time.Time) string {
	exp, ok := TokenExpiry(token)
	if !ok {
		return ""
	}
	d := exp.Sub(now)
	switch {
	case d <= 0:
		return "expired"
	case d < time.Minute:
		return "expires in <1m"
	case d < time.Hour:
		return "expires in " + strconv.Itoa(int(d.Minutes())) + "m"
	case d < 48*time.Hour:
		return "expires in " + strconv.Itoa(int(d.Hours())) + "h"
	default:
		return "expires in " + strconv.Itoa(int(d.Hours()/24)) + "d"
	}
}
