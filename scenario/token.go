package scenario

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// describeToken summarizes a bearer token for the report. The signature is
// not verified: the token is opaque to the contract and only its shape is
// of interest.
func describeToken(token string) map[string]any {
	claims := jwt.MapClaims{}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return map[string]any{"format": "opaque"}
	}

	info := map[string]any{
		"format": "jwt",
		"alg":    parsed.Method.Alg(),
	}
	if userID, ok := claims["userId"]; ok {
		info["user_id"] = userID
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info["expires_at"] = exp.Time.UTC().Format(time.RFC3339)
	}
	return info
}
