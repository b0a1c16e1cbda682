package auth

import (
	"testing"

	"filmsoc-backend/internal/config"
	"filmsoc-backend/internal/models"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpirationHours = 1
	cfg.JWT.Issuer = "filmsoc-test"
	return cfg
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := NewJWTManager(testConfig())
	member := &models.Member{ID: "u1", Username: "aditi", IsAdmin: true}

	token, err := m.GenerateToken(member)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "aditi" || !claims.IsAdmin {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	m := NewJWTManager(testConfig())
	token, err := m.GenerateToken(&models.Member{ID: "u1", Username: "aditi"})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	other := testConfig()
	other.JWT.Secret = "different-secret"
	if _, err := NewJWTManager(other).ValidateToken(token); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
}

func TestTempTokenNotAcceptedAsSession(t *testing.T) {
	m := NewJWTManager(testConfig())
	member := &models.Member{ID: "u1", Username: "aditi"}

	temp, err := m.GenerateTempToken(member)
	if err != nil {
		t.Fatalf("GenerateTempToken: %v", err)
	}

	claims, err := m.ValidateTempToken(temp)
	if err != nil {
		t.Fatalf("ValidateTempToken: %v", err)
	}
	if claims.UserID != "u1" || claims.Type != "2fa_pending" {
		t.Fatalf("temp claims = %+v", claims)
	}

	// A full session token must not pass temp validation
	session, err := m.GenerateToken(member)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := m.ValidateTempToken(session); err == nil {
		t.Fatal("session token accepted as 2FA temp token")
	}
}
