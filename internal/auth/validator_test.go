package auth

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"docuvault/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "unit-test-secret"

func testValidator(t *testing.T) *Validator {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v, err := NewValidator(Options{Secret: testSecret}, logger)
	if err != nil {
		t.Fatalf("NewValidator() error = %v", err)
	}
	return v
}

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims Claims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func baseClaims() Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "101",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		TenantID: 42,
		Roles:    []string{"EDITOR"},
	}
}

func TestValidateAcceptsWellFormedToken(t *testing.T) {
	v := testValidator(t)
	raw := signToken(t, jwt.SigningMethodHS256, testSecret, baseClaims())

	claims, err := v.Validate(raw)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.TenantID != 42 {
		t.Errorf("TenantID = %d, want 42", claims.TenantID)
	}
	userID, err := claims.UserID()
	if err != nil || userID != 101 {
		t.Errorf("UserID() = %d, %v, want 101, nil", userID, err)
	}
}

func TestValidateNormalizesRoles(t *testing.T) {
	c := baseClaims()
	c.Roles = []string{"editor", " Viewer ", "EDITOR", ""}
	v := testValidator(t)

	claims, err := v.Validate(signToken(t, jwt.SigningMethodHS256, testSecret, c))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	want := []string{"EDITOR", "VIEWER"}
	if !reflect.DeepEqual(claims.Roles, want) {
		t.Errorf("Roles = %v, want %v", claims.Roles, want)
	}
}

func TestValidateRejectsBadCredentials(t *testing.T) {
	v := testValidator(t)

	expired := baseClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	noExpiry := baseClaims()
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"garbage", "not.a.token", domain.ErrInvalidToken},
		{"expired", signToken(t, jwt.SigningMethodHS256, testSecret, expired), domain.ErrInvalidToken},
		{"no expiry claim", signToken(t, jwt.SigningMethodHS256, testSecret, noExpiry), domain.ErrInvalidToken},
		{"wrong secret", signToken(t, jwt.SigningMethodHS256, "other-secret", baseClaims()), domain.ErrInvalidToken},
		{"unexpected algorithm", signToken(t, jwt.SigningMethodHS512, testSecret, baseClaims()), domain.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.Validate(tt.raw); !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateRejectsIncompleteClaims(t *testing.T) {
	v := testValidator(t)

	noTenant := baseClaims()
	noTenant.TenantID = 0

	negativeTenant := baseClaims()
	negativeTenant.TenantID = -3

	noSubject := baseClaims()
	noSubject.Subject = ""

	badSubject := baseClaims()
	badSubject.Subject = "alice"

	tests := []struct {
		name   string
		claims Claims
	}{
		{"tenant claim absent", noTenant},
		{"tenant claim negative", negativeTenant},
		{"subject absent", noSubject},
		{"subject not numeric", badSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := signToken(t, jwt.SigningMethodHS256, testSecret, tt.claims)
			if _, err := v.Validate(raw); !errors.Is(err, domain.ErrMissingClaim) {
				t.Errorf("Validate() error = %v, want ErrMissingClaim", err)
			}
		})
	}
}

func TestNewValidatorRequiresAMode(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := NewValidator(Options{}, logger); err == nil {
		t.Error("NewValidator() with no mode should fail")
	}
}
