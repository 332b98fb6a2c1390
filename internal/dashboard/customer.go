package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/classiccarrry/classic-carrry-admin/internal/models"
)

// CustomerSummary is the order history of one customer.
type CustomerSummary struct {
	Email      string            `json:"email"`
	Orders     []models.Resource `json:"orders"`
	Total      int               `json:"total_orders"`
	Delivered  int               `json:"delivered_orders"`
	TotalSpent decimal.Decimal   `json:"total_spent"`
}

// Customer summarizes the orders placed with email, matched case-insensitively.
func (s *Service) Customer(ctx context.Context, email string) (*CustomerSummary, error) {
	rt, _ := models.FindResourceType("orders")
	orders, _, err := s.source.List(ctx, rt, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching orders: %w", err)
	}
	return CustomerOrders(orders, email), nil
}

// CustomerOrders summarizes the orders of email.
func CustomerOrders(orders []models.Resource, email string) *CustomerSummary {
	out := &CustomerSummary{Email: email, Orders: []models.Resource{}}
	want := strings.ToLower(strings.TrimSpace(email))
	if want == "" {
		return out
	}
	for _, o := range orders {
		if strings.ToLower(o.String("customer.email")) != want {
			continue
		}
		out.Orders = append(out.Orders, o)
		out.TotalSpent = out.TotalSpent.Add(orderTotal(o))
		if o.String("status") == "delivered" {
			out.Delivered++
		}
	}
	out.Total = len(out.Orders)
	return out
}
