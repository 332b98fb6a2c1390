package models

import "net/url"

var crud = []Operation{OpCreate, OpUpdate, OpDelete}

var catalog = []ResourceType{
	{Name: "products", Label: "Products", Entity: "Product",
		ListPath: "/products", ItemPath: "/products", FilterParam: "category",
		SearchFields:  [][]string{{"name"}},
		Operations:    append(crud, OpToggle),
		Toggle:        TogglePut,
		NumericFields: []string{"price", "stock"},
		Upload:        UploadProduct,
		BaseQuery:     url.Values{"showAll": {"true"}}},
	{Name: "categories", Label: "Categories", Entity: "Category",
		ListPath: "/categories", ItemPath: "/categories",
		SearchFields:  [][]string{{"name"}, {"slug"}},
		Operations:    append(crud, OpToggle),
		Toggle:        TogglePut,
		NumericFields: []string{"displayOrder"},
		Upload:        UploadCategory,
		BaseQuery:     url.Values{"showAll": {"true"}}},
	{Name: "orders", Label: "Orders", Entity: "Order",
		ListPath: "/orders", ItemPath: "/orders", FilterParam: "status",
		SearchFields: [][]string{
			{"orderNumber"},
			{"customer.email"},
			{"customer.firstName", "customer.lastName"},
		},
		Operations: []Operation{OpUpdate}},
	{Name: "users", Label: "Users", Entity: "User",
		ListPath: "/users", ItemPath: "/users",
		SearchFields: [][]string{{"name"}, {"email"}, {"phone"}},
		Operations:   []Operation{OpDelete}},
	{Name: "coupons", Label: "Coupons", Entity: "Coupon",
		ListPath: "/coupons", ItemPath: "/coupons",
		SearchFields:  [][]string{{"code"}},
		Operations:    append(crud, OpToggle),
		Toggle:        TogglePatch,
		ToggleSuffix:  "toggle",
		NumericFields: []string{"discountValue", "minPurchase", "maxDiscount", "usageLimit"}},
	{Name: "hero-images", Label: "Hero Images", Entity: "Hero image",
		ListPath: "/hero-images/admin", ItemPath: "/hero-images",
		SearchFields:  [][]string{{"title"}, {"subtitle"}},
		Operations:    append(crud, OpToggle),
		Toggle:        TogglePatch,
		ToggleSuffix:  "toggle-status",
		NumericFields: []string{"displayOrder"},
		Upload:        UploadHero},
	{Name: "contacts", Label: "Contacts", Entity: "Contact",
		ListPath: "/contacts", ItemPath: "/contacts", FilterParam: "status",
		SearchFields: [][]string{{"name"}, {"email"}, {"subject"}},
		Operations:   []Operation{OpDelete}},
	{Name: "faqs", Label: "FAQs", Entity: "FAQ",
		ListPath: "/settings/faqs", ItemPath: "/settings/faqs",
		SearchFields:  [][]string{{"question"}, {"answer"}},
		Operations:    crud,
		NumericFields: []string{"order"}},
}

// ResourceTypes returns every resource type the console manages.
func ResourceTypes() []ResourceType {
	out := make([]ResourceType, len(catalog))
	copy(out, catalog)
	return out
}

// FindResourceType looks up a resource type by name.
func FindResourceType(name string) (ResourceType, bool) {
	for _, rt := range catalog {
		if rt.Name == name {
			return rt, true
		}
	}
	return ResourceType{}, false
}
