package ports

import (
	"context"

	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/core/domain"
)

// CredentialStore owns the credential pair for one staff session. Reads and
// writes are atomic with respect to a single observer: SetPair never exposes
// a half-written pair, Clear removes both credentials unconditionally.
type CredentialStore interface {
	// Get returns the stored credential of the given kind, or
	// domain.ErrNoCredential when absent.
	Get(ctx context.Context, kind domain.CredentialKind) (string, error)
	Set(ctx context.Context, kind domain.CredentialKind, value string) error
	SetPair(ctx context.Context, pair domain.CredentialPair) error
	Clear(ctx context.Context) error
}
