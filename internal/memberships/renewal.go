package memberships

import (
	"github.com/gymdeskhq/gymdesk-backend/pkg/db/models"
	pkgerrors "github.com/gymdeskhq/gymdesk-backend/pkg/errors"
	"github.com/gymdeskhq/gymdesk-backend/pkg/types"
)

// CalculationBasis states which date a renewal quote was anchored on.
type CalculationBasis string

const (
	// BasisFromToday applies when the membership has lapsed: the new period
	// starts on the renewal date so the client is not billed for dead days.
	BasisFromToday CalculationBasis = "from today"
	// BasisFromEffectiveEnd applies while the membership is still active:
	// the new period extends the current one with no gap or overlap.
	BasisFromEffectiveEnd CalculationBasis = "from current effective end date"
)

// RenewalQuote describes what a renewal performed as of a given day would do.
type RenewalQuote struct {
	IsExpired           bool             `json:"is_expired"`
	CalculationBasis    CalculationBasis `json:"calculation_basis"`
	DaysAdded           int              `json:"days_added"`
	NewEndDate          types.Date       `json:"new_end_date"`
	DaysUntilExpiration int              `json:"days_until_expiration"`
}

// EffectiveEndDate is the single source of truth for when a membership
// actually expires: the latest renewal's new end date, or the nominal end
// date when the membership has never been renewed. Renewals must be loaded
// in creation order.
func EffectiveEndDate(membership *models.Membership) types.Date {
	if n := len(membership.Renewals); n > 0 {
		return membership.Renewals[n-1].NewEndDate
	}
	return membership.EndDate
}

// IsExpired reports whether the membership has lapsed as of the given day.
// A membership expiring exactly on asOf is still active that day.
func IsExpired(membership *models.Membership, asOf types.Date) bool {
	return EffectiveEndDate(membership).Before(asOf)
}

// RenewalInfo computes the quote for renewing the membership as of asOf.
// Callers must resolve asOf once and hold it fixed for the whole
// computation.
func RenewalInfo(plan *models.Plan, membership *models.Membership, asOf types.Date) (RenewalQuote, error) {
	if plan.RenewalPeriodDays < 1 {
		return RenewalQuote{}, pkgerrors.New(pkgerrors.CodeValidation, "renewal period must be at least one day")
	}

	effective := EffectiveEndDate(membership)
	expired := effective.Before(asOf)

	quote := RenewalQuote{
		IsExpired:           expired,
		DaysAdded:           plan.RenewalPeriodDays,
		DaysUntilExpiration: asOf.DaysUntil(effective),
	}
	if expired {
		quote.CalculationBasis = BasisFromToday
		quote.NewEndDate = asOf.AddDays(plan.RenewalPeriodDays)
	} else {
		quote.CalculationBasis = BasisFromEffectiveEnd
		quote.NewEndDate = effective.AddDays(plan.RenewalPeriodDays)
	}
	return quote, nil
}
