package viewmodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/classiccarrry/classic-carrry-admin/internal/models"
	"github.com/classiccarrry/classic-carrry-admin/internal/storefront"
)

var validate = validator.New()

// Form structs name the fields a write must carry. A field's label tag is
// used in messages; msg overrides the message entirely.

type couponForm struct {
	Code          string   `json:"code" label:"Coupon code" validate:"required"`
	DiscountType  string   `json:"discountType" label:"Discount type" validate:"required,oneof=percentage fixed"`
	DiscountValue *float64 `json:"discountValue" label:"Discount value" validate:"required,gt=0"`
	MinPurchase   *float64 `json:"minPurchase" label:"Minimum purchase" validate:"omitempty,gte=0"`
	MaxDiscount   *float64 `json:"maxDiscount" label:"Maximum discount" validate:"omitempty,gte=0"`
	UsageLimit    *float64 `json:"usageLimit" label:"Usage limit" validate:"omitempty,gte=0"`
}

func (f *couponForm) check() error {
	if f.DiscountType == "percentage" && *f.DiscountValue > 100 {
		return storefront.Invalid("discountValue", "Percentage discount cannot exceed 100")
	}
	return nil
}

type productForm struct {
	ID       string   `json:"id" label:"Product ID" validate:"required"`
	Name     string   `json:"name" label:"Product name" validate:"required"`
	Category string   `json:"category" label:"Category" validate:"required"`
	Price    *float64 `json:"price" label:"Price" validate:"required,gte=0"`
	Stock    *float64 `json:"stock" label:"Stock" validate:"required,gte=0"`
}

type categoryForm struct {
	Name         string   `json:"name" label:"Category name" validate:"required"`
	DisplayOrder *float64 `json:"displayOrder" label:"Display order" validate:"required"`
}

type heroForm struct {
	Image string `json:"image" msg:"Please upload an image" validate:"required"`
}

type faqForm struct {
	Question string `json:"question" label:"Question" validate:"required"`
	Answer   string `json:"answer" label:"Answer" validate:"required"`
}

var forms = map[string]func() interface{}{
	"coupons":     func() interface{} { return &couponForm{} },
	"products":    func() interface{} { return &productForm{} },
	"categories":  func() interface{} { return &categoryForm{} },
	"hero-images": func() interface{} { return &heroForm{} },
	"faqs":        func() interface{} { return &faqForm{} },
}

// Prepare validates a create or update form for rt and returns the body to
// send: numeric fields coerced from strings and server-maintained fields
// removed. Failures are *storefront.ValidationError.
func Prepare(rt models.ResourceType, form models.Resource) (models.Resource, error) {
	body := form.Writable()
	if field, ok := body.CoerceNumbers(rt.NumericFields); !ok {
		return nil, storefront.Invalid(field, "%s must be a number", field)
	}

	newForm, ok := forms[rt.Name]
	if !ok {
		return body, nil
	}
	typed := newForm()
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding %s form: %w", rt.Name, err)
	}
	if err := json.Unmarshal(raw, typed); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, storefront.Invalid(typeErr.Field, "%s has the wrong type", typeErr.Field)
		}
		return nil, fmt.Errorf("decoding %s form: %w", rt.Name, err)
	}
	if err := validate.Struct(typed); err != nil {
		return nil, translate(typed, err)
	}
	if c, ok := typed.(interface{ check() error }); ok {
		if err := c.check(); err != nil {
			return nil, err
		}
	}
	return body, nil
}

// translate turns the first validator failure into a ValidationError.
func translate(form interface{}, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	sf, _ := reflect.TypeOf(form).Elem().FieldByName(fe.StructField())
	name := sf.Tag.Get("json")
	if msg := sf.Tag.Get("msg"); msg != "" {
		return storefront.Invalid(name, "%s", msg)
	}
	label := sf.Tag.Get("label")
	if label == "" {
		label = name
	}

	switch fe.Tag() {
	case "required":
		return storefront.Invalid(name, "%s is required", label)
	case "oneof":
		return storefront.Invalid(name, "%s must be one of: %s", label, fe.Param())
	case "gt":
		return storefront.Invalid(name, "%s must be greater than %s", label, fe.Param())
	case "gte":
		return storefront.Invalid(name, "%s cannot be negative", label)
	default:
		return storefront.Invalid(name, "%s is invalid", label)
	}
}
