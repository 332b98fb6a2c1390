package storefront

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/classiccarrry/classic-carrry-admin/internal/models"
)

// List fetches the collection of a resource type in server order.
func (c *Client) List(ctx context.Context, rt models.ResourceType, query url.Values) ([]models.Resource, *Response, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: rt.ListPath, Query: query})
	if err != nil {
		return nil, nil, err
	}
	items := []models.Resource{}
	if err := resp.Decode(&items); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", rt.Name, err)
	}
	return items, resp, nil
}

// Get fetches a single item.
func (c *Client) Get(ctx context.Context, rt models.ResourceType, id string) (models.Resource, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: rt.ItemURL(id)})
	if err != nil {
		return nil, err
	}
	var item models.Resource
	if err := resp.Decode(&item); err != nil {
		return nil, fmt.Errorf("parsing %s %s: %w", rt.Entity, id, err)
	}
	return item, nil
}

// Create posts a new item to the collection.
func (c *Client) Create(ctx context.Context, rt models.ResourceType, body models.Resource) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: rt.ItemPath, Body: body})
}

// Update replaces an item.
func (c *Client) Update(ctx context.Context, rt models.ResourceType, id string, body interface{}) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: rt.ItemURL(id), Body: body})
}

// Delete removes an item.
func (c *Client) Delete(ctx context.Context, rt models.ResourceType, id string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: rt.ItemURL(id)})
}

// Patch issues a body-less PATCH to a sub-path of an item, e.g. "toggle-status".
func (c *Client) Patch(ctx context.Context, rt models.ResourceType, id, suffix string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: rt.ItemURL(id) + "/" + suffix})
}

// Profile validates the current token and returns its owner.
func (c *Client) Profile(ctx context.Context) (*models.Profile, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/users/profile"})
	if err != nil {
		return nil, err
	}
	var p models.Profile
	if err := resp.Decode(&p); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}
	return &p, nil
}

// Login exchanges credentials for a profile carrying a token.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Profile, error) {
	resp, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/users/login",
		Body:   map[string]string{"email": email, "password": password},
	})
	if err != nil {
		return nil, err
	}
	var p models.Profile
	if err := resp.Decode(&p); err != nil {
		return nil, fmt.Errorf("parsing login response: %w", err)
	}
	return &p, nil
}

// ResetPassword asks the API to set a new password for email.
func (c *Client) ResetPassword(ctx context.Context, email, password string) error {
	_, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/users/reset-password",
		Body:   map[string]string{"email": email, "newPassword": password},
	})
	return err
}

// Settings fetches one settings section.
func (c *Client) Settings(ctx context.Context, section models.SettingsSection) (models.Resource, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/settings/" + string(section)})
	if err != nil {
		return nil, err
	}
	var out models.Resource
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("parsing %s settings: %w", section, err)
	}
	return out, nil
}

// UpdateSettings replaces one settings section.
func (c *Client) UpdateSettings(ctx context.Context, section models.SettingsSection, body models.Resource) error {
	_, err := c.Do(ctx, Request{Method: http.MethodPut, Path: "/settings/" + string(section), Body: body})
	return err
}

// ContactStats fetches the contact message counters.
func (c *Client) ContactStats(ctx context.Context) (models.ContactStats, error) {
	var stats models.ContactStats
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/contacts/stats"})
	if err != nil {
		return stats, err
	}
	if err := resp.Decode(&stats); err != nil {
		return stats, fmt.Errorf("parsing contact stats: %w", err)
	}
	return stats, nil
}
