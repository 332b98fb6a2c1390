// Package dashboard computes the overview shown on the console's landing
// page from the products, orders and users collections.
package dashboard

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/classiccarrry/classic-carrry-admin/internal/models"
	"github.com/classiccarrry/classic-carrry-admin/internal/storefront"
)

const (
	lowStockThreshold = 10
	lowStockLimit     = 5
	recentOrdersLimit = 5
	activityOrders    = 3
	activityUsers     = 2
	activityLimit     = 5
	salesDays         = 7
)

// Source lists storefront collections.
type Source interface {
	List(ctx context.Context, rt models.ResourceType, query url.Values) ([]models.Resource, *storefront.Response, error)
}

// Revenue sums pricing.total over order windows.
type Revenue struct {
	Total decimal.Decimal `json:"total"`
	Today decimal.Decimal `json:"today"`
	Week  decimal.Decimal `json:"week"`
	Month decimal.Decimal `json:"month"`
}

// Activity is one entry of the recent activity feed.
type Activity struct {
	Type    string    `json:"type"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// DaySales is the revenue and order count of one calendar day.
type DaySales struct {
	Date    string          `json:"date"`
	Weekday string          `json:"weekday"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

// Summary is the dashboard overview.
type Summary struct {
	TotalProducts int               `json:"total_products"`
	TotalOrders   int               `json:"total_orders"`
	TotalUsers    int               `json:"total_users"`
	PendingOrders int               `json:"pending_orders"`
	Revenue       Revenue           `json:"revenue"`
	LowStock      []models.Resource `json:"low_stock"`
	RecentOrders  []models.Resource `json:"recent_orders"`
	Activity      []Activity        `json:"activity"`
	Sales         []DaySales        `json:"sales"`
	GeneratedAt   time.Time         `json:"generated_at"`
}

// Service builds summaries from a Source.
type Service struct {
	source Source
	now    func() time.Time
	logger *zap.Logger
}

// New creates a Service.
func New(source Source, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, now: time.Now, logger: logger}
}

// Summary fetches the three collections concurrently and summarizes them.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	var products, orders, users []models.Resource
	g, gctx := errgroup.WithContext(ctx)
	for _, f := range []struct {
		name string
		dst  *[]models.Resource
	}{
		{"products", &products},
		{"orders", &orders},
		{"users", &users},
	} {
		f := f
		g.Go(func() error {
			rt, _ := models.FindResourceType(f.name)
			items, _, err := s.source.List(gctx, rt, nil)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", f.name, err)
			}
			*f.dst = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("dashboard fetch failed", zap.Error(err))
		return nil, err
	}
	return Compute(products, orders, users, s.now()), nil
}

// Compute summarizes the collections as of now. Day boundaries are taken in
// now's location.
func Compute(products, orders, users []models.Resource, now time.Time) *Summary {
	sum := &Summary{
		TotalProducts: len(products),
		TotalOrders:   len(orders),
		TotalUsers:    len(users),
		LowStock:      []models.Resource{},
		RecentOrders:  head(orders, recentOrdersLimit),
		GeneratedAt:   now,
	}

	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := todayStart.AddDate(0, 0, -7)
	monthStart := todayStart.AddDate(0, -1, 0)

	for _, o := range orders {
		if o.String("status") == "pending" {
			sum.PendingOrders++
		}
		total := orderTotal(o)
		sum.Revenue.Total = sum.Revenue.Total.Add(total)
		created, ok := o.Time("createdAt")
		if !ok {
			continue
		}
		if !created.Before(todayStart) {
			sum.Revenue.Today = sum.Revenue.Today.Add(total)
		}
		if !created.Before(weekStart) {
			sum.Revenue.Week = sum.Revenue.Week.Add(total)
		}
		if !created.Before(monthStart) {
			sum.Revenue.Month = sum.Revenue.Month.Add(total)
		}
	}

	for _, p := range products {
		if len(sum.LowStock) == lowStockLimit {
			break
		}
		if _, ok := p["stock"]; ok && p.Float("stock") < lowStockThreshold {
			sum.LowStock = append(sum.LowStock, p)
		}
	}

	sum.Activity = activity(orders, users)
	sum.Sales = sales(orders, todayStart)
	return sum
}

func activity(orders, users []models.Resource) []Activity {
	out := []Activity{}
	for _, o := range head(orders, activityOrders) {
		t, _ := o.Time("createdAt")
		out = append(out, Activity{
			Type:    "order",
			Message: fmt.Sprintf("New order #%s from %s", o.String("orderNumber"), o.String("customer.firstName")),
			Time:    t,
		})
	}
	for _, u := range head(users, activityUsers) {
		t, _ := u.Time("createdAt")
		name := strings.TrimSpace(u.String("firstName") + " " + u.String("lastName"))
		if name == "" {
			name = u.String("name")
		}
		out = append(out, Activity{
			Type:    "user",
			Message: "New user registered: " + name,
			Time:    t,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	if len(out) > activityLimit {
		out = out[:activityLimit]
	}
	return out
}

func sales(orders []models.Resource, todayStart time.Time) []DaySales {
	days := make([]DaySales, salesDays)
	index := make(map[string]int, salesDays)
	for i := range days {
		d := todayStart.AddDate(0, 0, i-(salesDays-1))
		key := d.Format("2006-01-02")
		days[i] = DaySales{Date: key, Weekday: d.Format("Mon")}
		index[key] = i
	}
	for _, o := range orders {
		created, ok := o.Time("createdAt")
		if !ok {
			continue
		}
		i, ok := index[created.In(todayStart.Location()).Format("2006-01-02")]
		if !ok {
			continue
		}
		days[i].Revenue = days[i].Revenue.Add(orderTotal(o))
		days[i].Orders++
	}
	return days
}

// orderTotal reads pricing.total, falling back to the older totalAmount field.
func orderTotal(o models.Resource) decimal.Decimal {
	if v := o.Lookup("pricing.total"); v != nil {
		return decimal.NewFromFloat(o.Float("pricing.total"))
	}
	return decimal.NewFromFloat(o.Float("totalAmount"))
}

func head(items []models.Resource, n int) []models.Resource {
	if len(items) < n {
		n = len(items)
	}
	return append([]models.Resource{}, items[:n]...)
}
