package ports

import (
	"context"

	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/core/domain"
)

// IntakeAPI is the clinic API as consumed by the dashboard. One operation
// per endpoint, no business logic behind it. The implementation attaches the
// current access credential to every call and renews it transparently at
// most once per call.
type IntakeAPI interface {
	// Authenticate obtains a credential pair for the given staff login and
	// stores it. Returns domain.ErrInvalidCredentials on rejection.
	Authenticate(ctx context.Context, username, password string) error

	ListRequests(ctx context.Context) ([]domain.IntakeRequest, error)
	Approve(ctx context.Context, id int64, comment string) (domain.IntakeRequest, error)
	Reject(ctx context.Context, id int64, comment string) (domain.IntakeRequest, error)

	// Notify asks the clinic API to forward a message to the patient's
	// registration bot.
	Notify(ctx context.Context, id int64, message string) error
}
