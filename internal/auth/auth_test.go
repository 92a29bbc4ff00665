package auth

import (
	"testing"

	"github.com/ayu214390/attendance-app/internal/secrets"
)

var testKey = []byte("thisis32byteslongsecretkey123456")

func newTestOwner(t *testing.T) *Owner {
	t.Helper()
	return NewOwner(secrets.NewStore(t.TempDir(), testKey))
}

func TestOwnerPassword(t *testing.T) {
	o := newTestOwner(t)

	if o.HasPassword(DefaultAccount) {
		t.Error("Fresh store should have no owner password")
	}

	if err := o.SetPassword(DefaultAccount, "open sesame"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	if !o.HasPassword(DefaultAccount) {
		t.Error("HasPassword should report the stored password")
	}
	if !o.VerifyPassword(DefaultAccount, "open sesame") {
		t.Error("Correct password rejected")
	}
	if o.VerifyPassword(DefaultAccount, "wrong") {
		t.Error("Wrong password accepted")
	}
	if o.VerifyPassword("other-account", "open sesame") {
		t.Error("Password leaked across accounts")
	}
}

func TestFederatedID(t *testing.T) {
	o := newTestOwner(t)

	if _, ok := o.FederatedID(DefaultAccount); ok {
		t.Error("Fresh store should have no federated ID")
	}

	if err := o.SaveFederatedID(DefaultAccount, "apple-user-001"); err != nil {
		t.Fatalf("SaveFederatedID failed: %v", err)
	}
	id, ok := o.FederatedID(DefaultAccount)
	if !ok || id != "apple-user-001" {
		t.Errorf("Expected apple-user-001, got %q (ok=%v)", id, ok)
	}

	if !o.ClearFederatedID(DefaultAccount) {
		t.Error("ClearFederatedID should report the removed ID")
	}
	if _, ok := o.FederatedID(DefaultAccount); ok {
		t.Error("Federated ID survived sign-out")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	secret := "test-signing-secret"
	token, err := GenerateToken("default", RoleOwner, secret, 30)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ParseToken(token, secret)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.Subject != "default" || claims.Role != RoleOwner {
		t.Errorf("Unexpected claims: %+v", claims)
	}

	if _, err := ParseToken(token, "other-secret"); err == nil {
		t.Error("Token verified with the wrong secret")
	}
	if _, err := ParseToken("not-a-token", secret); err == nil {
		t.Error("Garbage token parsed")
	}
}
