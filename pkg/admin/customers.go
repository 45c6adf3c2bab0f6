package admin

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"lavapp/pkg/models"
	"lavapp/pkg/repository"
)

// CustomersView is the admin customers list.
type CustomersView struct {
	repo      repository.CustomerRepository
	customers []models.Customer
}

func NewCustomersView(repo repository.CustomerRepository) *CustomersView {
	return &CustomersView{repo: repo, customers: []models.Customer{}}
}

func (v *CustomersView) Load(ctx context.Context) error {
	customers, err := v.repo.ListCustomers(ctx)
	if err != nil {
		logrus.WithError(err).Error("❌ Failed to load customers")
		v.customers = []models.Customer{}
		return err
	}
	v.customers = customers
	return nil
}

func (v *CustomersView) Customers() []models.Customer {
	return v.customers
}

// CustomerDetail is one customer with their order history.
type CustomerDetail struct {
	Customer   models.Customer `json:"customer"`
	Orders     []models.Order  `json:"orders"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
}

// LoadCustomerDetail fetches a customer and their orders concurrently. It
// returns nil, nil when the customer does not exist.
func LoadCustomerDetail(ctx context.Context, customers repository.CustomerRepository, orders repository.OrderRepository, id string) (*CustomerDetail, error) {
	var customer *models.Customer
	var history []models.Order

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customer, err = customers.GetCustomer(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = orders.ListOrdersByCustomer(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		logrus.WithError(err).WithField("customer", id).Error("❌ Failed to load customer detail")
		return nil, err
	}
	if customer == nil {
		return nil, nil
	}
	if history == nil {
		history = []models.Order{}
	}

	total := decimal.Zero
	for _, o := range history {
		total = total.Add(o.Total)
	}
	return &CustomerDetail{Customer: *customer, Orders: history, TotalSpent: total}, nil
}
