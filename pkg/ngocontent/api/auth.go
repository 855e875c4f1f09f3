package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/jwtauth"
)

// RoleAdministrator may list every member without paging
const RoleAdministrator = "Administrator"

// NewAuth returns an HS256 token authority for secret
func NewAuth(secret string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secret), nil)
}

// IssueToken signs a token for subject carrying role
func IssueToken(auth *jwtauth.JWTAuth, subject, role string, ttl time.Duration) (string, error) {
	claims := map[string]interface{}{
		"sub":  subject,
		"role": role,
	}
	jwtauth.SetIssuedNow(claims)
	if ttl > 0 {
		jwtauth.SetExpiryIn(claims, ttl)
	}
	_, token, err := auth.Encode(claims)
	return token, err
}

// isAdministrator reports whether the verified token carries the
// Administrator role. Requests without a verified token are not.
func isAdministrator(r *http.Request) bool {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil || claims == nil {
		return false
	}
	role, _ := claims["role"].(string)
	return strings.EqualFold(role, RoleAdministrator)
}
