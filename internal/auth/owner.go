// Package auth handles the owner's credentials and API session tokens.
package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/ayu214390/attendance-app/internal/secrets"
)

// Secret-store service names. Accounts under each service are the account
// identifiers used for namespace resolution, or "default" pre-auth.
const (
	ServiceOwnerPassword = "owner-password"
	ServiceFederatedID   = "federated-id"

	// DefaultAccount keys owner credentials created before any sign-in.
	DefaultAccount = "default"
)

// Owner manages the owner password and the federated sign-in identifier.
type Owner struct {
	secrets *secrets.Store
}

// NewOwner returns an Owner backed by the given secret store.
func NewOwner(store *secrets.Store) *Owner {
	return &Owner{secrets: store}
}

// SetPassword hashes and stores the owner password for an account.
func (o *Owner) SetPassword(account, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return o.secrets.Set(ServiceOwnerPassword, account, hash)
}

// HasPassword reports whether an owner password exists for the account.
func (o *Owner) HasPassword(account string) bool {
	_, err := o.secrets.Get(ServiceOwnerPassword, account)
	return err == nil
}

// VerifyPassword checks a password attempt against the stored hash.
func (o *Owner) VerifyPassword(account, password string) bool {
	hash, err := o.secrets.Get(ServiceOwnerPassword, account)
	if err != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// SaveFederatedID stores the federated sign-in identifier for an account.
func (o *Owner) SaveFederatedID(account, id string) error {
	return o.secrets.Set(ServiceFederatedID, account, []byte(id))
}

// FederatedID retrieves the stored federated identifier, if any.
func (o *Owner) FederatedID(account string) (string, bool) {
	id, err := o.secrets.Get(ServiceFederatedID, account)
	if err != nil {
		return "", false
	}
	return string(id), true
}

// ClearFederatedID removes the stored federated identifier on sign-out.
func (o *Owner) ClearFederatedID(account string) bool {
	return o.secrets.Delete(ServiceFederatedID, account)
}
