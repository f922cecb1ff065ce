package billing

import "strings"

const (
	PlanStarter = "starter"
	PlanGrowth  = "growth"
	PlanScale   = "scale"
)

// Plan is one sellable tier. PriceID is the payment processor's price
// reference; Amount is the monthly price in cents and mirrors the remote
// price object for display before checkout.
type Plan struct {
	Name        string `json:"name"`
	PriceID     string `json:"price_id"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// Catalog maps the processor's price ids to internal plans.
type Catalog struct {
	plans []Plan
}

func NewCatalog(plans []Plan) *Catalog {
	return &Catalog{plans: plans}
}

// DefaultPlans returns the built-in tier list with the given price ids.
// Price ids come from the environment so staging and production can point
// at different processor accounts.
func DefaultPlans(starterPriceID, growthPriceID, scalePriceID string) []Plan {
	return []Plan{
		{Name: PlanStarter, PriceID: starterPriceID, Amount: 99900, Description: "Landing page and brand kit"},
		{Name: PlanGrowth, PriceID: growthPriceID, Amount: 249900, Description: "Full marketing site with funnel"},
		{Name: PlanScale, PriceID: scalePriceID, Amount: 499900, Description: "Site, funnel, and ongoing campaigns"},
	}
}

func (c *Catalog) Plans() []Plan {
	return c.plans
}

// ByPriceID looks up the plan selling the given price id.
func (c *Catalog) ByPriceID(priceID string) (Plan, bool) {
	for _, p := range c.plans {
		if p.PriceID == priceID {
			return p, true
		}
	}
	return Plan{}, false
}

// PlanNameForPrice resolves a price id to a plan name, falling back to the
// price id itself for prices created outside the catalog.
func (c *Catalog) PlanNameForPrice(priceID string) string {
	if p, ok := c.ByPriceID(priceID); ok {
		return p.Name
	}
	return priceID
}

func IsValidPlan(name string) bool {
	n := strings.ToLower(name)
	return n == PlanStarter || n == PlanGrowth || n == PlanScale
}
