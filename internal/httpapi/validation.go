package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/LavishGent/productcache/internal/types"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// createRequest uses pointers so that an absent field is told apart from a zero value.
type createRequest struct {
	Name       *string `json:"name" validate:"required"`
	PriceCents *int64  `json:"price_cents" validate:"required,min=0"`
}

func (r createRequest) toNewProduct() types.NewProduct {
	return types.NewProduct{Name: *r.Name, PriceCents: *r.PriceCents}
}

type updateRequest struct {
	Name       *string `json:"name" validate:"omitempty"`
	PriceCents *int64  `json:"price_cents" validate:"omitempty,min=0"`
}

func (r updateRequest) toPatch() types.ProductPatch {
	return types.ProductPatch{Name: r.Name, PriceCents: r.PriceCents}
}

// validateStruct validates s and joins every field error into one message.
func validateStruct(s any) error {
	if err := validate.Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			msgs := make([]string, 0, len(validationErrors))
			for _, e := range validationErrors {
				msgs = append(msgs, formatFieldError(e))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

func formatFieldError(e validator.FieldError) string {
	field := e.Field()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
