package session

import (
	jwt "github.com/golang-jwt/jwt/v5"
)

// userNameFromToken extracts the display name from the access token's claims
// without verifying the signature; the server already vouched for the token
// by issuing it over the authenticated channel. Returns "" when no name
// claim is present.
func userNameFromToken(token string) string {
	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return ""
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}

	// ASP.NET identity tokens carry the username under unique_name; fall
	// back to the generic claims.
	for _, key := range []string{"unique_name", "name", "sub"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
