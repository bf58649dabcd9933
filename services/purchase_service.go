package services

import (
	"artist-hub/credits"
	"artist-hub/domain"
	"context"
	"fmt"
	"log/slog"
)

// PurchaseService turns a plan purchase into credits spent and a pending project.
type PurchaseService struct {
	ledger   credits.ILedger
	projects IProjectStore
	log      *slog.Logger
}

func NewPurchaseService(ledger credits.ILedger, projects IProjectStore, log *slog.Logger) *PurchaseService {
	return &PurchaseService{ledger: ledger, projects: projects, log: log}
}

// Purchase spends the plan cost then creates the project.
// The credits are refunded when the project could not be created.
func (s *PurchaseService) Purchase(ctx context.Context, purchase domain.ServicePurchase) (domain.Project, error) {
	plan, err := credits.FindPlan(purchase.Service, purchase.PlanID)
	if err != nil {
		return domain.Project{}, err
	}

	usage, err := s.ledger.Spend(plan.Cost, fmt.Sprintf("Purchase %s %s plan", plan.Service, plan.Name))
	if err != nil {
		return domain.Project{}, err
	}

	project, err := s.projects.CreateProject(ctx, domain.ProjectFields{
		Name:        fmt.Sprintf("%s - %s", plan.Service, plan.Name),
		Description: fmt.Sprintf("%s plan for %s", plan.Name, plan.Service),
		Status:      domain.StatusPending,
		ServiceType: plan.Service,
	})
	if err != nil {
		if _, refundErr := s.ledger.Refund(usage); refundErr != nil {
			s.log.Error("Refund failed after project creation error", "transaction_id", usage.ID, "error", refundErr)
		}
		return domain.Project{}, err
	}

	s.log.Info("Service purchased", "service", plan.Service, "plan", plan.ID, "project_id", project.ID, "cost", plan.Cost)
	return project, nil
}
