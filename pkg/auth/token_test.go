package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/spa-backend/pkg/config"
	"github.com/angelmondragon/spa-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

func testConfig() config.AdminConfig {
	return config.AdminConfig{JWTSecret: "secret", JWTIssuer: "spa-admin"}
}

func TestMintAndParseStaffToken(t *testing.T) {
	cfg := testConfig()
	now := time.Now().UTC()

	token, err := MintStaffToken(cfg, now, 30*time.Minute, StaffTokenPayload{
		StaffID: "staff-1",
		Name:    "Front Desk",
		Role:    enums.StaffRoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint staff token: %v", err)
	}

	claims, err := ParseStaffToken(cfg, token)
	if err != nil {
		t.Fatalf("parse staff token: %v", err)
	}
	if claims.StaffID() != "staff-1" {
		t.Fatalf("expected subject staff-1, got %s", claims.StaffID())
	}
	if claims.Role != enums.StaffRoleAdmin {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.Issuer != cfg.JWTIssuer {
		t.Fatalf("expected issuer %s, got %s", cfg.JWTIssuer, claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatalf("expected generated jti")
	}
}

func TestParseStaffTokenInvalidSignature(t *testing.T) {
	cfg := testConfig()
	token, err := MintStaffToken(cfg, time.Now(), time.Minute, StaffTokenPayload{StaffID: "s", Role: enums.StaffRoleStaff})
	if err != nil {
		t.Fatalf("mint staff token: %v", err)
	}

	other := cfg
	other.JWTSecret = "different"
	if _, err := ParseStaffToken(other, token); err == nil {
		t.Fatal("expected invalid signature error")
	}
}

func TestParseStaffTokenExpired(t *testing.T) {
	cfg := testConfig()
	token, err := MintStaffToken(cfg, time.Now().Add(-time.Hour), 15*time.Minute, StaffTokenPayload{StaffID: "s", Role: enums.StaffRoleStaff})
	if err != nil {
		t.Fatalf("mint staff token: %v", err)
	}

	_, err = ParseStaffToken(cfg, token)
	if err == nil {
		t.Fatal("expected expiration error")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseStaffTokenWrongIssuer(t *testing.T) {
	cfg := testConfig()
	token, err := MintStaffToken(cfg, time.Now(), time.Minute, StaffTokenPayload{StaffID: "s", Role: enums.StaffRoleAdmin})
	if err != nil {
		t.Fatalf("mint staff token: %v", err)
	}
	other := cfg
	other.JWTIssuer = "someone-else"
	if _, err := ParseStaffToken(other, token); err == nil {
		t.Fatal("expected issuer mismatch error")
	}
}

func TestParseStaffTokenRejectsUnknownRole(t *testing.T) {
	cfg := testConfig()
	claims := StaffTokenClaims{
		Role: "owner",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "s",
			Issuer:    cfg.JWTIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseStaffToken(cfg, signed); err == nil {
		t.Fatal("expected invalid role error")
	}
}

func TestMintStaffTokenValidation(t *testing.T) {
	cfg := testConfig()
	if _, err := MintStaffToken(cfg, time.Now(), time.Minute, StaffTokenPayload{StaffID: "s", Role: ""}); err == nil {
		t.Fatal("expected invalid role error")
	}
	if _, err := MintStaffToken(cfg, time.Now(), time.Minute, StaffTokenPayload{Role: enums.StaffRoleAdmin}); err == nil {
		t.Fatal("expected missing staff id error")
	}
	if _, err := MintStaffToken(cfg, time.Now(), 0, StaffTokenPayload{StaffID: "s", Role: enums.StaffRoleAdmin}); err == nil {
		t.Fatal("expected ttl error")
	}
}
