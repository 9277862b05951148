package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesreport/pkg/contracts/domain"
)

func TestRecordValidator_Validate(t *testing.T) {
	v := NewRecordValidator()

	tests := []struct {
		name       string
		record     domain.SaleRecord
		wantColumn string
	}{
		{
			name: "valid record",
			record: domain.SaleRecord{
				Timestamp: 1700000000, ProductName: "Widget", Quantity: 2,
				UnitPrice: decimal.RequireFromString("9.99"),
			},
		},
		{
			name: "zero quantity and price are allowed",
			record: domain.SaleRecord{
				Timestamp: 0, ProductName: "Freebie", Quantity: 0, UnitPrice: decimal.Zero,
			},
		},
		{
			name: "whitespace product name is a name",
			record: domain.SaleRecord{
				Timestamp: 1, ProductName: "   ", Quantity: 1, UnitPrice: decimal.NewFromInt(1),
			},
		},
		{
			name: "empty product name",
			record: domain.SaleRecord{
				Timestamp: 1, ProductName: "", Quantity: 1, UnitPrice: decimal.NewFromInt(1),
			},
			wantColumn: domain.ColumnProductName,
		},
		{
			name: "negative quantity",
			record: domain.SaleRecord{
				Timestamp: 1, ProductName: "Widget", Quantity: -1, UnitPrice: decimal.NewFromInt(1),
			},
			wantColumn: domain.ColumnQuantity,
		},
		{
			name: "negative price",
			record: domain.SaleRecord{
				Timestamp: 1, ProductName: "Widget", Quantity: 1,
				UnitPrice: decimal.RequireFromString("-0.01"),
			},
			wantColumn: domain.ColumnPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.record)
			if tt.wantColumn == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.wantColumn, fe.Column)
		})
	}
}

func TestFieldError_Error(t *testing.T) {
	assert.Equal(t, "Quantity must not be negative", (&FieldError{Column: "Quantity", Rule: "gte"}).Error())
	assert.Equal(t, "Product Name is required", (&FieldError{Column: "Product Name", Rule: "required"}).Error())
}
