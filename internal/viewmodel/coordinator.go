package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/classiccarrry/classic-carrry-admin/internal/models"
	"github.com/classiccarrry/classic-carrry-admin/internal/storefront"
)

var (
	// ErrNotConfirmed is returned when a destructive operation is declined.
	ErrNotConfirmed = errors.New("operation not confirmed")
	// ErrUnsupported is returned for operations a resource type does not offer.
	ErrUnsupported = errors.New("operation not supported")
)

// Confirmer asks the administrator to confirm a destructive operation.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Confirmed is a Confirmer for callers that obtained confirmation up front,
// such as a request carrying confirm=true.
var Confirmed = ConfirmFunc(func(context.Context, string) bool { return true })

// Coordinator performs writes for one List. Every write is a single request;
// success is announced and followed by exactly one reload of the list, and
// failure is announced with the list left untouched.
type Coordinator struct {
	list *List
	rt   models.ResourceType
	deps Deps
}

// NewCoordinator creates a Coordinator writing through deps for list.
func NewCoordinator(list *List, deps Deps) *Coordinator {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Coordinator{list: list, rt: list.ResourceType(), deps: deps}
}

// List returns the view-model the Coordinator resynchronizes.
func (c *Coordinator) List() *List { return c.list }

// Create validates form and posts it.
func (c *Coordinator) Create(ctx context.Context, form models.Resource) error {
	return c.mutate(ctx, models.OpCreate,
		c.rt.Entity+" created successfully",
		"Failed to save "+lowerLabel(c.rt.Entity),
		func(ctx context.Context) error {
			body, err := Prepare(c.rt, form)
			if err != nil {
				return err
			}
			_, err = c.deps.Remote.Create(ctx, c.rt, body)
			return err
		})
}

// Update validates form and replaces item id with it.
func (c *Coordinator) Update(ctx context.Context, id string, form models.Resource) error {
	return c.mutate(ctx, models.OpUpdate,
		c.rt.Entity+" updated successfully",
		"Failed to save "+lowerLabel(c.rt.Entity),
		func(ctx context.Context) error {
			body, err := Prepare(c.rt, form)
			if err != nil {
				return err
			}
			_, err = c.deps.Remote.Update(ctx, c.rt, id, body)
			return err
		})
}

// Delete removes item id once confirm agrees. A declined confirmation issues
// no request and announces nothing.
func (c *Coordinator) Delete(ctx context.Context, id string, confirm Confirmer) error {
	if !c.rt.Supports(models.OpDelete) {
		return c.unsupported(models.OpDelete)
	}
	prompt := fmt.Sprintf("Are you sure you want to delete this %s?", lowerLabel(c.rt.Entity))
	if confirm == nil || !confirm.Confirm(ctx, prompt) {
		return ErrNotConfirmed
	}
	return c.mutate(ctx, models.OpDelete,
		c.rt.Entity+" deleted successfully",
		"Failed to delete "+lowerLabel(c.rt.Entity),
		func(ctx context.Context) error {
			_, err := c.deps.Remote.Delete(ctx, c.rt, id)
			return err
		})
}

// Toggle flips isActive on item id, through the type's PATCH endpoint or by
// re-sending the current record with only isActive negated.
func (c *Coordinator) Toggle(ctx context.Context, id string) error {
	return c.mutate(ctx, models.OpToggle,
		c.rt.Entity+" status updated successfully",
		"Failed to update "+lowerLabel(c.rt.Entity)+" status",
		func(ctx context.Context) error {
			switch c.rt.Toggle {
			case models.TogglePatch:
				_, err := c.deps.Remote.Patch(ctx, c.rt, id, c.rt.ToggleSuffix)
				return err
			case models.TogglePut:
				item, ok := c.list.Find(id)
				if !ok {
					var err error
					if item, err = c.deps.Remote.Get(ctx, c.rt, id); err != nil {
						return err
					}
				}
				body := item.Writable()
				body["isActive"] = !item.Bool("isActive")
				_, err := c.deps.Remote.Update(ctx, c.rt, id, body)
				return err
			}
			return c.unsupported(models.OpToggle)
		})
}

var (
	orderStatuses   = []string{"pending", "processing", "shipped", "delivered", "cancelled"}
	paymentStatuses = []string{"pending", "paid", "failed"}
	contactStatuses = []string{"new", "read", "replied", "archived"}
)

// SetOrderStatus moves order id to status.
func (c *Coordinator) SetOrderStatus(ctx context.Context, id, status string) error {
	return c.field(ctx, fieldUpdate{
		resource: "orders", field: "status", label: "Order status", value: status, allowed: orderStatuses,
		method: http.MethodPut, path: c.rt.ItemURL(id),
		success: "Order status updated successfully", failure: "Failed to update order status",
	})
}

// SetPaymentStatus records the payment status of order id.
func (c *Coordinator) SetPaymentStatus(ctx context.Context, id, status string) error {
	return c.field(ctx, fieldUpdate{
		resource: "orders", field: "paymentStatus", label: "Payment status", value: status, allowed: paymentStatuses,
		method: http.MethodPut, path: c.rt.ItemURL(id),
		success: "Payment status updated successfully", failure: "Failed to update payment status",
	})
}

// SetContactStatus moves contact message id to status.
func (c *Coordinator) SetContactStatus(ctx context.Context, id, status string) error {
	return c.field(ctx, fieldUpdate{
		resource: "contacts", field: "status", label: "Status", value: status, allowed: contactStatuses,
		method: http.MethodPut, path: c.rt.ItemURL(id) + "/status",
		success: "Contact status updated successfully", failure: "Failed to update contact status",
	})
}

// Reply sends a reply to contact message id.
func (c *Coordinator) Reply(ctx context.Context, id, message string) error {
	return c.field(ctx, fieldUpdate{
		resource: "contacts", field: "replyMessage", label: "Reply message", value: message,
		method: http.MethodPost, path: c.rt.ItemURL(id) + "/reply",
		success: "Reply sent successfully", failure: "Failed to send reply",
	})
}

type fieldUpdate struct {
	resource string
	field    string
	label    string
	value    string
	allowed  []string
	method   string
	path     string
	success  string
	failure  string
}

func (c *Coordinator) field(ctx context.Context, u fieldUpdate) error {
	if c.rt.Name != u.resource {
		return c.unsupported(models.Operation(u.field))
	}
	return c.mutateAs(ctx, models.OpUpdate, u.success, u.failure, func(ctx context.Context) error {
		value := strings.TrimSpace(u.value)
		if value == "" {
			return storefront.Invalid(u.field, "%s is required", u.label)
		}
		if u.allowed != nil && !contains(u.allowed, value) {
			return storefront.Invalid(u.field, "%s must be one of: %s", u.label, strings.Join(u.allowed, " "))
		}
		_, err := c.deps.Remote.Do(ctx, storefront.Request{
			Method: u.method,
			Path:   u.path,
			Body:   map[string]string{u.field: value},
		})
		return err
	})
}

func (c *Coordinator) mutate(ctx context.Context, op models.Operation, success, failure string, fn func(context.Context) error) error {
	if !c.rt.Supports(op) {
		return c.unsupported(op)
	}
	return c.mutateAs(ctx, op, success, failure, fn)
}

// mutateAs runs fn and applies the outcome contract.
func (c *Coordinator) mutateAs(ctx context.Context, op models.Operation, success, failure string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		outcome := "error"
		var valErr *storefront.ValidationError
		if errors.As(err, &valErr) {
			outcome = "invalid"
		}
		c.deps.Metrics.ObserveMutation(c.rt.Name, string(op), outcome)
		c.deps.Logger.Warn("mutation failed",
			zap.String("resource", c.rt.Name), zap.String("op", string(op)), zap.Error(err))
		c.deps.Notifier.Error(storefront.UserMessage(err, failure))
		return err
	}

	c.deps.Metrics.ObserveMutation(c.rt.Name, string(op), "success")
	c.deps.Logger.Info("mutation applied", zap.String("resource", c.rt.Name), zap.String("op", string(op)))
	c.deps.Notifier.Success(success)
	// The write succeeded; a failed reload is announced by the list itself.
	_ = c.list.Reload(ctx)
	return nil
}

func (c *Coordinator) unsupported(op models.Operation) error {
	return fmt.Errorf("%w: %s on %s", ErrUnsupported, op, c.rt.Name)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
