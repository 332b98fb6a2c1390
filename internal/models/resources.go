package models

import "net/url"

// Resource represents a generic storefront record (product, order, coupon, etc.).
// The storefront API owns its shape; the console only reads the fields it renders.
type Resource map[string]interface{}

// ToggleStyle describes how a resource type flips its isActive flag.
type ToggleStyle int

const (
	// ToggleNone means the resource type has no status toggle.
	ToggleNone ToggleStyle = iota
	// TogglePatch issues PATCH <item>/<ToggleSuffix> with no body.
	TogglePatch
	// TogglePut re-sends the current record with isActive negated.
	TogglePut
)

// Operation names a mutation a resource type supports.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpToggle Operation = "toggle"
)

// ResourceType describes a browsable resource type on the storefront API.
type ResourceType struct {
	Name     string `json:"name"`      // "products", "hero-images", etc.
	Label    string `json:"label"`     // Human-readable plural: "Hero Images"
	Entity   string `json:"entity"`    // Singular used in notifications: "Hero image"
	ListPath string `json:"list_path"` // "/hero-images/admin"
	ItemPath string `json:"item_path"` // "/hero-images"; items live at ItemPath + "/" + id

	// FilterParam is the query parameter carrying the server-side filter
	// ("status", "category"). Empty means the list is never filtered server-side.
	FilterParam string `json:"filter_param,omitempty"`

	// SearchFields are the groups matched by the client-side query. Fields in
	// one group are joined with a space before matching, so
	// {"customer.firstName", "customer.lastName"} matches a full name.
	SearchFields [][]string `json:"search_fields,omitempty"`

	Operations   []Operation `json:"operations"`
	Toggle       ToggleStyle `json:"-"`
	ToggleSuffix string      `json:"-"`

	// NumericFields are coerced from form strings to numbers before a write.
	NumericFields []string `json:"-"`

	// Upload is the upload kind used by this resource's forms, if any.
	Upload UploadKind `json:"upload,omitempty"`

	// BaseQuery is sent with every list load alongside the server filter.
	BaseQuery url.Values `json:"-"`
}

// Supports reports whether op is allowed on this resource type.
func (rt ResourceType) Supports(op Operation) bool {
	for _, o := range rt.Operations {
		if o == op {
			return true
		}
	}
	return false
}

// ItemURL returns the path of a single item.
func (rt ResourceType) ItemURL(id string) string {
	return rt.ItemPath + "/" + id
}

// UploadKind selects an upload endpoint.
type UploadKind string

const (
	UploadCategory UploadKind = "category"
	UploadHero     UploadKind = "hero"
	UploadProduct  UploadKind = "product"
	UploadProducts UploadKind = "products"
)

const megabyte = 1024 * 1024

// MaxBytes returns the client-side size ceiling for a single file.
func (k UploadKind) MaxBytes() int64 {
	if k == UploadHero {
		return 10 * megabyte
	}
	return 5 * megabyte
}

// FieldName returns the multipart field the endpoint expects.
func (k UploadKind) FieldName() string {
	if k == UploadProducts {
		return "images"
	}
	return "image"
}

// Valid reports whether k names a known upload endpoint.
func (k UploadKind) Valid() bool {
	switch k {
	case UploadCategory, UploadHero, UploadProduct, UploadProducts:
		return true
	}
	return false
}
