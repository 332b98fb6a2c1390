package models

import (
	"encoding/json"
	"testing"
)

func TestResourceID(t *testing.T) {
	tests := []struct {
		name   string
		res    Resource
		expect string
	}{
		{"id", Resource{"id": "p1"}, "p1"},
		{"mongo id", Resource{"_id": "65ab"}, "65ab"},
		{"id wins", Resource{"id": "p1", "_id": "65ab"}, "p1"},
		{"missing", Resource{"name": "x"}, ""},
		{"non-string", Resource{"id": float64(3)}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.res.ID(); got != tc.expect {
				t.Errorf("ID() = %q, want %q", got, tc.expect)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	order := Resource{
		"orderNumber": "CC-1001",
		"customer": map[string]interface{}{
			"email":     "ayesha@example.com",
			"firstName": "Ayesha",
		},
		"pricing": map[string]interface{}{"total": float64(2500)},
	}
	if got := order.String("customer.email"); got != "ayesha@example.com" {
		t.Errorf("String(customer.email) = %q", got)
	}
	if got := order.Float("pricing.total"); got != 2500 {
		t.Errorf("Float(pricing.total) = %v, want 2500", got)
	}
	if got := order.Lookup("customer.address.city"); got != nil {
		t.Errorf("Lookup through missing object = %v, want nil", got)
	}
	if got := order.String("orderNumber.x"); got != "" {
		t.Errorf("Lookup through string = %q, want empty", got)
	}
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		name   string
		input  interface{}
		expect float64
		ok     bool
	}{
		{"float64", float64(42.5), 42.5, true},
		{"int", 7, 7, true},
		{"json.Number", json.Number("99"), 99, true},
		{"nil", nil, 0, false},
		{"string", "12", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := toFloat(tc.input)
			if got != tc.expect || ok != tc.ok {
				t.Errorf("toFloat(%v) = (%v, %v), want (%v, %v)", tc.input, got, ok, tc.expect, tc.ok)
			}
		})
	}
}

func TestCoerceNumbers(t *testing.T) {
	r := Resource{"code": "SAVE10", "discountValue": "10", "minPurchase": " ", "usageLimit": float64(5)}
	if bad, ok := r.CoerceNumbers([]string{"discountValue", "minPurchase", "usageLimit", "maxDiscount"}); !ok {
		t.Fatalf("CoerceNumbers failed on %q", bad)
	}
	if r["discountValue"] != float64(10) {
		t.Errorf("discountValue = %#v, want 10", r["discountValue"])
	}
	if _, present := r["minPurchase"]; present {
		t.Error("blank minPurchase should be dropped")
	}
	if r["usageLimit"] != float64(5) {
		t.Errorf("usageLimit = %#v, want untouched 5", r["usageLimit"])
	}

	bad := Resource{"price": "abc"}
	field, ok := bad.CoerceNumbers([]string{"price"})
	if ok || field != "price" {
		t.Errorf("CoerceNumbers(abc) = (%q, %v), want (price, false)", field, ok)
	}
}

func TestWritable(t *testing.T) {
	r := Resource{"_id": "c1", "__v": 0, "name": "Bags", "createdAt": "2024-01-01T00:00:00Z", "isActive": true}
	w := r.Writable()
	for _, f := range []string{"_id", "__v", "createdAt"} {
		if _, ok := w[f]; ok {
			t.Errorf("Writable kept %q", f)
		}
	}
	if w["name"] != "Bags" || w["isActive"] != true {
		t.Errorf("Writable dropped user fields: %v", w)
	}
	if _, ok := r["_id"]; !ok {
		t.Error("Writable mutated the original")
	}
}

func TestResourceTime(t *testing.T) {
	r := Resource{"createdAt": "2024-03-05T10:00:00.000Z", "bad": "yesterday"}
	if _, ok := r.Time("createdAt"); !ok {
		t.Error("Time(createdAt) failed to parse")
	}
	if _, ok := r.Time("bad"); ok {
		t.Error("Time(bad) should fail")
	}
}
