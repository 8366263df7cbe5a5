package documents

import (
	"strconv"
	"strings"

	"github.com/gymdeskhq/gymdesk-backend/internal/memberships"
	"github.com/gymdeskhq/gymdesk-backend/pkg/db/models"
	"github.com/gymdeskhq/gymdesk-backend/pkg/types"
)

// RenderContext is everything a template can reference. Membership and Plan
// are nil for clients who never purchased one; their placeholders render
// empty.
type RenderContext struct {
	Client     *models.Client
	Membership *models.Membership
	Plan       *models.Plan
	Today      types.Date
}

// Render substitutes the named placeholders in the template body. Unknown
// placeholders are left as-is so a typo is visible in the output instead of
// silently disappearing.
func Render(body string, rc RenderContext) string {
	pairs := []string{
		"{{client_name}}", rc.Client.FullName(),
		"{{client_identification}}", rc.Client.Identification,
		"{{client_age}}", ageString(rc.Client, rc.Today),
		"{{today}}", rc.Today.String(),
	}

	if rc.Membership != nil {
		status := "active"
		if memberships.IsExpired(rc.Membership, rc.Today) {
			status = "expired"
		}
		pairs = append(pairs,
			"{{membership_status}}", status,
			"{{membership_end_date}}", memberships.EffectiveEndDate(rc.Membership).String(),
		)
	} else {
		pairs = append(pairs,
			"{{membership_status}}", "none",
			"{{membership_end_date}}", "",
		)
	}

	if rc.Plan != nil {
		price := rc.Plan.Price
		if rc.Membership != nil {
			price = rc.Plan.PriceIn(rc.Membership.Currency)
		}
		pairs = append(pairs,
			"{{plan_name}}", rc.Plan.Name,
			"{{plan_price}}", price.StringFixed(2),
		)
	} else {
		pairs = append(pairs,
			"{{plan_name}}", "",
			"{{plan_price}}", "",
		)
	}

	return strings.NewReplacer(pairs...).Replace(body)
}

func ageString(client *models.Client, asOf types.Date) string {
	age := client.AgeOn(asOf)
	if age < 0 {
		return ""
	}
	return strconv.Itoa(age)
}
