// Package auth provides account registration, credential verification and
// session token handling for the ledger API.
package auth

import (
	"context"

	"github.com/splitit-app/splitit/internal/models"
)

// Authenticator abstracts the credential scheme so the HTTP layer does not
// care whether accounts use passwords or something else.
type Authenticator interface {
	// Register creates an account. The credential format depends on the
	// implementation.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the credential and returns the matching user.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)
}
