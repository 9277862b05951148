package validation

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"salesreport/pkg/contracts/domain"
)

// RecordValidator checks parsed sale records against their struct tags
type RecordValidator struct {
	validator *validator.Validate
}

// NewRecordValidator creates a validator that understands decimal.Decimal fields.
// Decimals are compared by sign, so `gte=0` means "not negative".
func NewRecordValidator() *RecordValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return int64(d.Sign())
		}
		return nil
	}, decimal.Decimal{})

	// Report column names rather than Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		switch fld.Name {
		case "Timestamp":
			return domain.ColumnTimestamp
		case "ProductName":
			return domain.ColumnProductName
		case "Quantity":
			return domain.ColumnQuantity
		case "UnitPrice":
			return domain.ColumnPrice
		}
		return fld.Name
	})

	return &RecordValidator{validator: v}
}

// FieldError names the first failing column of a record
type FieldError struct {
	Column string
	Rule   string
}

func (e *FieldError) Error() string {
	switch e.Rule {
	case "required":
		return fmt.Sprintf("%s is required", e.Column)
	case "gte":
		return fmt.Sprintf("%s must not be negative", e.Column)
	}
	return fmt.Sprintf("%s failed %s", e.Column, e.Rule)
}

// Validate returns nil for a valid record, or a *FieldError for the first failing field.
// A product name only has to be non-empty; whitespace is part of the name.
func (v *RecordValidator) Validate(record domain.SaleRecord) error {
	err := v.validator.Struct(record)
	if err == nil {
		return nil
	}

	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		return &FieldError{Column: verrs[0].Field(), Rule: verrs[0].Tag()}
	}
	return err
}
