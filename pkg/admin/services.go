package admin

import (
	"context"

	"github.com/sirupsen/logrus"

	"lavapp/pkg/models"
	"lavapp/pkg/repository"
)

// ServicesView manages the catalog. Every successful mutation is followed by a
// full refetch. A failed refetch is logged and leaves the view empty; it does
// not fail the mutation.
type ServicesView struct {
	repo     repository.ServiceRepository
	services []models.Service
}

func NewServicesView(repo repository.ServiceRepository) *ServicesView {
	return &ServicesView{repo: repo, services: []models.Service{}}
}

func (v *ServicesView) Load(ctx context.Context) error {
	services, err := v.repo.ListServices(ctx)
	if err != nil {
		logrus.WithError(err).Error("❌ Failed to load services")
		v.services = []models.Service{}
		return err
	}
	v.services = services
	return nil
}

func (v *ServicesView) Services() []models.Service {
	return v.services
}

// Create adds a service and reloads the catalog.
func (v *ServicesView) Create(ctx context.Context, s models.Service) (*models.Service, error) {
	created, err := v.repo.CreateService(ctx, s)
	if err != nil {
		return nil, err
	}
	_ = v.Load(ctx)
	return created, nil
}

// Update saves a service and reloads the catalog. It returns nil, nil for an unknown id.
func (v *ServicesView) Update(ctx context.Context, s models.Service) (*models.Service, error) {
	updated, err := v.repo.UpdateService(ctx, s)
	if err != nil || updated == nil {
		return updated, err
	}
	_ = v.Load(ctx)
	return updated, nil
}

// Delete removes a service and reloads the catalog.
func (v *ServicesView) Delete(ctx context.Context, id string) error {
	if err := v.repo.DeleteService(ctx, id); err != nil {
		return err
	}
	_ = v.Load(ctx)
	return nil
}

// CategoryGroup is the services of one category.
type CategoryGroup struct {
	Category models.ServiceCategory `json:"category"`
	Services []models.Service       `json:"services"`
}

// GroupByCategory groups services in category display order, skipping empty categories.
func GroupByCategory(services []models.Service) []CategoryGroup {
	groups := make([]CategoryGroup, 0, len(models.ServiceCategories))
	for _, category := range models.ServiceCategories {
		group := CategoryGroup{Category: category}
		for _, s := range services {
			if s.Category == category {
				group.Services = append(group.Services, s)
			}
		}
		if len(group.Services) > 0 {
			groups = append(groups, group)
		}
	}
	return groups
}
