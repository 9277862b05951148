package domain

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// ErrQuantityOverflow is returned when a product's total quantity no longer fits in an int64.
var ErrQuantityOverflow = errors.New("total quantity overflows int64")

// Input column names expected in the sales CSV header
const (
	ColumnTimestamp   = "Timestamp"
	ColumnProductName = "Product Name"
	ColumnQuantity    = "Quantity"
	ColumnPrice       = "Price"
)

// Report column names written in the summary header
const (
	ColumnFirstSale         = "First Sale"
	ColumnLastSale          = "Last Sale"
	ColumnTotalQuantitySold = "Total Quantity Sold"
	ColumnTotalSalesAmount  = "Total Sales Amount"
)

// InputColumns lists the columns every sales CSV must carry.
var InputColumns = []string{ColumnTimestamp, ColumnProductName, ColumnQuantity, ColumnPrice}

// ReportColumns lists the report header in output order.
var ReportColumns = []string{
	ColumnProductName,
	ColumnFirstSale,
	ColumnLastSale,
	ColumnTotalQuantitySold,
	ColumnTotalSalesAmount,
}

// SaleRecord is a single parsed row of the sales input.
// UnitPrice is exact; binary floats are never used for money.
type SaleRecord struct {
	Timestamp   int64           `json:"timestamp"`
	ProductName string          `json:"product_name" validate:"required"`
	Quantity    int64           `json:"quantity" validate:"gte=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"gte=0"`
}

// Amount returns Quantity × UnitPrice.
func (r SaleRecord) Amount() decimal.Decimal {
	return decimal.NewFromInt(r.Quantity).Mul(r.UnitPrice)
}

// ProductSummary holds the running statistics for one product.
type ProductSummary struct {
	ProductName   string          `json:"product_name"`
	FirstSaleTime int64           `json:"first_sale_time"`
	LastSaleTime  int64           `json:"last_sale_time"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// NewProductSummary seeds a summary from the first record seen for a product.
func NewProductSummary(r SaleRecord) *ProductSummary {
	return &ProductSummary{
		ProductName:   r.ProductName,
		FirstSaleTime: r.Timestamp,
		LastSaleTime:  r.Timestamp,
		TotalQuantity: r.Quantity,
		TotalAmount:   r.Amount(),
	}
}

// Add folds another record for the same product into the summary.
// The summary is left unchanged when the quantity total would overflow.
func (s *ProductSummary) Add(r SaleRecord) error {
	if (r.Quantity > 0 && s.TotalQuantity > math.MaxInt64-r.Quantity) ||
		(r.Quantity < 0 && s.TotalQuantity < math.MinInt64-r.Quantity) {
		return ErrQuantityOverflow
	}

	if r.Timestamp < s.FirstSaleTime {
		s.FirstSaleTime = r.Timestamp
	}
	if r.Timestamp > s.LastSaleTime {
		s.LastSaleTime = r.Timestamp
	}
	s.TotalQuantity += r.Quantity
	s.TotalAmount = s.TotalAmount.Add(r.Amount())
	return nil
}

// SalesTable maps product name to its summary.
type SalesTable map[string]*ProductSummary

// ProductNames returns the table keys in no particular order.
func (t SalesTable) ProductNames() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	return names
}
