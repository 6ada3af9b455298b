package auth

import (
	"testing"

	"github.com/google/uuid"

	"carelink.id/clinicapi/internal/model"
)

func testUser(role string) *model.User {
	profileID := uint(12)
	user := &model.User{
		ID:          uuid.New(),
		Username:    "jdoe",
		Role:        role,
		IsStaff:     role == model.RoleAdmin,
		IsSuperuser: false,
	}
	switch role {
	case model.RolePatient:
		user.PatientProfile = &model.PatientProfile{ID: profileID}
	case model.RoleDoctor:
		user.DoctorProfile = &model.DoctorProfile{ID: profileID}
	}
	return user
}

func TestIssuePairAccessClaims(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	svc := NewTokenService()

	user := testUser(model.RolePatient)
	pair, err := svc.IssuePair(user)
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	claims, err := svc.Validate(pair.Access, TokenTypeAccess)
	if err != nil {
		t.Fatalf("Validate access: %v", err)
	}

	if claims.Role != model.RolePatient {
		t.Errorf("role = %q, want %q", claims.Role, model.RolePatient)
	}
	if claims.Username != "jdoe" {
		t.Errorf("username = %q, want jdoe", claims.Username)
	}
	if claims.IsStaff {
		t.Error("is_staff = true, want false")
	}
	if claims.ProfileID == nil || *claims.ProfileID != 12 {
		t.Errorf("profile_id = %v, want 12", claims.ProfileID)
	}
	if claims.Subject != user.ID.String() {
		t.Errorf("sub = %q, want user id", claims.Subject)
	}
	if claims.IssuedAt == nil {
		t.Error("iat missing")
	}
}

func TestIssuePairAdminHasNoProfileID(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	svc := NewTokenService()

	pair, err := svc.IssuePair(testUser(model.RoleAdmin))
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	claims, err := svc.Validate(pair.Access, TokenTypeAccess)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.ProfileID != nil {
		t.Errorf("profile_id = %v, want null for admin", *claims.ProfileID)
	}
}

func TestRefreshTokenCarriesJTI(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	svc := NewTokenService()

	pair, err := svc.IssuePair(testUser(model.RolePatient))
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	claims, err := svc.Validate(pair.Refresh, TokenTypeRefresh)
	if err != nil {
		t.Fatalf("Validate refresh: %v", err)
	}
	if claims.ID == "" {
		t.Error("refresh token has no jti")
	}
	if claims.Role != "" {
		t.Errorf("refresh token carries role %q, want none", claims.Role)
	}
}

func TestValidateRejectsWrongTokenType(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	svc := NewTokenService()

	pair, err := svc.IssuePair(testUser(model.RolePatient))
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	if _, err := svc.Validate(pair.Refresh, TokenTypeAccess); err == nil {
		t.Error("refresh token accepted as access token")
	}
	if _, err := svc.Validate(pair.Access, TokenTypeRefresh); err == nil {
		t.Error("access token accepted as refresh token")
	}
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-one")
	issuer := NewTokenService()
	pair, err := issuer.IssuePair(testUser(model.RolePatient))
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	t.Setenv("JWT_SECRET", "secret-two")
	verifier := NewTokenService()
	if _, err := verifier.Validate(pair.Access, TokenTypeAccess); err == nil {
		t.Error("token signed with a different secret was accepted")
	}
}
