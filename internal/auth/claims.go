package auth

import (
	"sort"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded token payload. Produced by the Validator, consumed
// once to build a tenant context, not retained.
type Claims struct {
	jwt.RegisteredClaims
	TenantID int64    `json:"tenant_id"`
	Roles    []string `json:"roles"`
}

// normalizeRoles uppercases and de-duplicates role names, returning them
// sorted so downstream comparisons are stable.
func normalizeRoles(roles []string) []string {
	seen := make(map[string]bool, len(roles))
	normalized := make([]string, 0, len(roles))
	for _, role := range roles {
		upper := strings.ToUpper(strings.TrimSpace(role))
		if upper == "" || seen[upper] {
			continue
		}
		seen[upper] = true
		normalized = append(normalized, upper)
	}
	sort.Strings(normalized)
	return normalized
}
