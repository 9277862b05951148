package dataprocessing

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"salesreport/pkg/contracts/domain"
)

// DefaultTimeLayout renders "YYYY-MM-DD HH:MM:SS"
const DefaultTimeLayout = "2006-01-02 15:04:05"

// TimeRenderer converts epoch seconds into a display string
type TimeRenderer func(epochSeconds int64) string

// LocalTimeRenderer renders epoch seconds in loc using layout.
// A nil loc means time.Local and an empty layout means DefaultTimeLayout.
func LocalTimeRenderer(loc *time.Location, layout string) TimeRenderer {
	if loc == nil {
		loc = time.Local
	}
	if layout == "" {
		layout = DefaultTimeLayout
	}
	return func(epochSeconds int64) string {
		return time.Unix(epochSeconds, 0).In(loc).Format(layout)
	}
}

// Formatter renders a sales table as report rows
type Formatter struct{}

// NewFormatter creates a new formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format returns the header row followed by one row per product, sorted by product name.
func (f *Formatter) Format(table domain.SalesTable, render TimeRenderer) [][]string {
	if render == nil {
		render = LocalTimeRenderer(nil, "")
	}

	names := table.ProductNames()
	sort.Strings(names)

	rows := make([][]string, 0, len(names)+1)
	rows = append(rows, append([]string(nil), domain.ReportColumns...))
	for _, name := range names {
		s := table[name]
		rows = append(rows, []string{
			s.ProductName,
			render(s.FirstSaleTime),
			render(s.LastSaleTime),
			strconv.FormatInt(s.TotalQuantity, 10),
			FormatAmount(s.TotalAmount),
		})
	}
	return rows
}

// FormatAmount prints d in plain notation, keeping as many fraction digits as its scale carries.
func FormatAmount(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}
