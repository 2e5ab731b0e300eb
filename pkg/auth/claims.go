package auth

import (
	"github.com/angelmondragon/spa-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// StaffTokenPayload captures the data signed into a staff token.
type StaffTokenPayload struct {
	StaffID string
	Name    string
	Role    enums.StaffRole
	JTI     string
}

// StaffTokenClaims represents the typed JWT presented on staff and admin routes.
// The subject is the staff id.
type StaffTokenClaims struct {
	Name string          `json:"name,omitempty"`
	Role enums.StaffRole `json:"role"`
	jwt.RegisteredClaims
}

// StaffID returns the subject claim.
func (c *StaffTokenClaims) StaffID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}
