package credits

import (
	"artist-hub/domain"
	"artist-hub/errors"
	"fmt"

	"github.com/samber/lo"
)

// Catalog lists every purchasable plan and its credit cost.
var Catalog = []domain.Plan{
	{ID: "basic", Service: domain.ServiceMarketing, Name: "Basic Plan", Cost: 50},
	{ID: "pro", Service: domain.ServiceMarketing, Name: "Pro Plan", Cost: 100},
	{ID: "basic", Service: domain.ServiceEPK, Name: "Basic EPK", Cost: 75},
	{ID: "premium", Service: domain.ServiceEPK, Name: "Premium EPK", Cost: 150},
	{ID: "single", Service: domain.ServiceArtwork, Name: "Single Cover", Cost: 60},
	{ID: "album", Service: domain.ServiceArtwork, Name: "Album Cover", Cost: 120},
	{ID: "basic", Service: domain.ServiceAdvisor, Name: "Basic Analysis", Cost: 40},
	{ID: "deep", Service: domain.ServiceAdvisor, Name: "Deep Analysis", Cost: 80},
}

// FindPlan looks a plan up by service and plan id.
func FindPlan(service domain.ServiceType, planID string) (domain.Plan, error) {
	plan, ok := lo.Find(Catalog, func(p domain.Plan) bool {
		return p.Service == service && p.ID == planID
	})
	if !ok {
		return domain.Plan{}, fmt.Errorf("%w: %s/%s", errors.ErrUnknownPlan, service, planID)
	}
	return plan, nil
}

// PlansFor returns the plans of one service, cheapest first.
func PlansFor(service domain.ServiceType) []domain.Plan {
	return lo.Filter(Catalog, func(p domain.Plan, _ int) bool {
		return p.Service == service
	})
}
