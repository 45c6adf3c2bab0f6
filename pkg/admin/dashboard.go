package admin

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"lavapp/pkg/models"
	"lavapp/pkg/repository"
)

// RecentOrdersLimit is how many orders the dashboard lists.
const RecentOrdersLimit = 5

// Stats are the dashboard headline numbers.
type Stats struct {
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	TotalOrders    int             `json:"totalOrders"`
	TotalCustomers int             `json:"totalCustomers"`
	PendingOrders  int             `json:"pendingOrders"`
}

// DailySales is the revenue of one day.
type DailySales struct {
	Name  string          `json:"name"`
	Date  string          `json:"date"`
	Sales decimal.Decimal `json:"sales"`
}

type Dashboard struct {
	Stats        Stats          `json:"stats"`
	WeeklySales  []DailySales   `json:"weeklySales"`
	RecentOrders []models.Order `json:"recentOrders"`
}

// LoadDashboard fetches orders and customers and summarizes them as of now.
func LoadDashboard(ctx context.Context, orders repository.OrderRepository, customers repository.CustomerRepository, now time.Time) (*Dashboard, error) {
	var allOrders []models.Order
	var allCustomers []models.Customer

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		allOrders, err = orders.ListOrders(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		allCustomers, err = customers.ListCustomers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		logrus.WithError(err).Error("❌ Failed to load dashboard")
		return nil, err
	}
	return Summarize(allOrders, len(allCustomers), now), nil
}

// Summarize computes the dashboard from fetched data.
func Summarize(orders []models.Order, customerCount int, now time.Time) *Dashboard {
	stats := Stats{TotalRevenue: decimal.Zero, TotalOrders: len(orders), TotalCustomers: customerCount}
	for _, o := range orders {
		stats.TotalRevenue = stats.TotalRevenue.Add(o.Total)
		if o.Status == models.OrderStatusPendingCollection {
			stats.PendingOrders++
		}
	}

	recent := make([]models.Order, len(orders))
	copy(recent, orders)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > RecentOrdersLimit {
		recent = recent[:RecentOrdersLimit]
	}

	return &Dashboard{
		Stats:        stats,
		WeeklySales:  WeeklySales(orders, now),
		RecentOrders: recent,
	}
}

// WeeklySales sums order totals per day over the seven days ending on now's date.
func WeeklySales(orders []models.Order, now time.Time) []DailySales {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	days := make([]DailySales, 7)
	index := make(map[string]int, 7)
	for i := range days {
		day := today.AddDate(0, 0, i-6)
		key := day.Format(models.DateLayout)
		days[i] = DailySales{Name: day.Weekday().String()[:3], Date: key, Sales: decimal.Zero}
		index[key] = i
	}

	for _, o := range orders {
		date := o.Date
		if date == "" && !o.CreatedAt.IsZero() {
			date = o.CreatedAt.UTC().Format(models.DateLayout)
		}
		if i, ok := index[date]; ok {
			days[i].Sales = days[i].Sales.Add(o.Total)
		}
	}
	return days
}
