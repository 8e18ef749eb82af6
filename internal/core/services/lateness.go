package services

import (
	"time"

	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/core/domain"
)

// ReviewGraceDays is how many whole days a request may sit unresolved
// before it counts as overdue.
const ReviewGraceDays = 3

// LatenessReport classifies one request at one point in time. Days holds
// days-overdue when Overdue is set, days-remaining otherwise.
type LatenessReport struct {
	Overdue bool `json:"overdue"`
	Days    int  `json:"days_over_or_remaining"`
}

// Classify derives the lateness of a request from its submission time and
// current status. Stateless: recomputed on every read so the result can
// never go stale. Terminal requests are never overdue.
func Classify(submittedAt time.Time, status domain.Status, now time.Time) LatenessReport {
	if status.Terminal() {
		return LatenessReport{}
	}
	elapsed := int(now.Sub(submittedAt).Hours() / 24)
	if elapsed > ReviewGraceDays {
		return LatenessReport{Overdue: true, Days: elapsed - ReviewGraceDays}
	}
	return LatenessReport{Days: ReviewGraceDays - elapsed}
}
