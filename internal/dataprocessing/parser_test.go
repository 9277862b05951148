package dataprocessing

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salesreport/internal/errors"
	"salesreport/internal/shared/testutil"
	"salesreport/pkg/contracts/domain"
)

func TestSalesParser_ParseFile(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	parser := NewSalesParser(logger)

	path := testutil.WriteSalesCSV(t, t.TempDir(), testutil.ScenarioRows...)
	records, err := parser.ParseFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, int64(1700000000), records[0].Timestamp)
	assert.Equal(t, "Widget", records[0].ProductName)
	assert.Equal(t, int64(2), records[0].Quantity)
	assert.Equal(t, "9.99", records[0].UnitPrice.String())
	assert.Equal(t, "49.5", records[2].UnitPrice.String())

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "parsed sales input")
	testutil.AssertNoErrors(t, handler)
}

func TestSalesParser_ParseFileMissing(t *testing.T) {
	parser := NewSalesParser(nil)

	_, err := parser.ParseFile(context.Background(), filepath.Join(t.TempDir(), "sales.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInputNotFound))
}

func TestSalesParser_HeaderHandling(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []domain.SaleRecord
	}{
		{
			name:  "reordered columns with extras",
			input: "Price,Note,Quantity,Product Name,Timestamp\n1.50,x,4,Bolt,100\n",
			want:  []domain.SaleRecord{{Timestamp: 100, ProductName: "Bolt", Quantity: 4}},
		},
		{
			name:  "byte order mark and padded fields",
			input: "\ufeffTimestamp, Product Name ,Quantity,Price\n 100 , Bolt , 4 , 1.50 \n",
			want:  []domain.SaleRecord{{Timestamp: 100, ProductName: " Bolt ", Quantity: 4}},
		},
		{
			name:  "padded and whitespace names kept as written",
			input: "Timestamp,Product Name,Quantity,Price\n100,Bolt,4,1.50\n100, Bolt,4,1.50\n100, ,4,1.50\n",
			want: []domain.SaleRecord{
				{Timestamp: 100, ProductName: "Bolt", Quantity: 4},
				{Timestamp: 100, ProductName: " Bolt", Quantity: 4},
				{Timestamp: 100, ProductName: " ", Quantity: 4},
			},
		},
		{
			name:  "blank lines skipped",
			input: "Timestamp,Product Name,Quantity,Price\n\n100,Bolt,4,1.50\n\n",
			want:  []domain.SaleRecord{{Timestamp: 100, ProductName: "Bolt", Quantity: 4}},
		},
		{
			name:  "quoted name with comma",
			input: "Timestamp,Product Name,Quantity,Price\n100,\"Bolt, large\",4,1.50\n",
			want:  []domain.SaleRecord{{Timestamp: 100, ProductName: "Bolt, large", Quantity: 4}},
		},
		{
			name:  "header only",
			input: "Timestamp,Product Name,Quantity,Price\n",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := NewSalesParser(nil).Parse(context.Background(), strings.NewReader(tt.input))
			require.NoError(t, err)
			require.Len(t, records, len(tt.want))
			for i, want := range tt.want {
				assert.Equal(t, want.Timestamp, records[i].Timestamp)
				assert.Equal(t, want.ProductName, records[i].ProductName)
				assert.Equal(t, want.Quantity, records[i].Quantity)
				assert.Equal(t, "1.5", records[i].UnitPrice.String())
			}
		})
	}
}

func TestSalesParser_MalformedRecords(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantRow    int
		wantColumn string
		wantValue  string
	}{
		{
			name:    "empty input",
			input:   "",
			wantRow: 1,
		},
		{
			name:       "missing price column",
			input:      "Timestamp,Product Name,Quantity\n1,A,1\n",
			wantRow:    1,
			wantColumn: domain.ColumnPrice,
		},
		{
			name:       "non-integer quantity",
			input:      testutil.SalesCSV("1700000000,Widget,abc,9.99"),
			wantRow:    2,
			wantColumn: domain.ColumnQuantity,
			wantValue:  "abc",
		},
		{
			name:       "non-integer timestamp",
			input:      testutil.SalesCSV("1700000000,Widget,1,9.99", "2023-11-14,Widget,1,9.99"),
			wantRow:    3,
			wantColumn: domain.ColumnTimestamp,
			wantValue:  "2023-11-14",
		},
		{
			name:       "fractional quantity",
			input:      testutil.SalesCSV("1,Widget,1.5,9.99"),
			wantRow:    2,
			wantColumn: domain.ColumnQuantity,
			wantValue:  "1.5",
		},
		{
			name:       "non-decimal price",
			input:      testutil.SalesCSV("1,Widget,1,$9.99"),
			wantRow:    2,
			wantColumn: domain.ColumnPrice,
			wantValue:  "$9.99",
		},
		{
			name:       "short row",
			input:      testutil.SalesCSV("1,Widget,1"),
			wantRow:    2,
			wantColumn: domain.ColumnPrice,
		},
		{
			name:       "empty product name",
			input:      testutil.SalesCSV("1,,1,9.99"),
			wantRow:    2,
			wantColumn: domain.ColumnProductName,
		},
		{
			name:       "negative quantity",
			input:      testutil.SalesCSV("1,Widget,-2,9.99"),
			wantRow:    2,
			wantColumn: domain.ColumnQuantity,
			wantValue:  "-2",
		},
		{
			name:       "negative price",
			input:      testutil.SalesCSV("1,Widget,2,-9.99"),
			wantRow:    2,
			wantColumn: domain.ColumnPrice,
			wantValue:  "-9.99",
		},
		{
			name:    "bare quote",
			input:   testutil.SalesCSV("1,Wid\"get,2,9.99"),
			wantRow: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, handler := testutil.NewTestLogger(t)
			records, err := NewSalesParser(logger).Parse(context.Background(), strings.NewReader(tt.input))

			require.Error(t, err)
			assert.Nil(t, records)

			var mre *apperrors.MalformedRecordError
			require.ErrorAs(t, err, &mre)
			assert.Equal(t, tt.wantRow, mre.Row)
			assert.Equal(t, tt.wantColumn, mre.Column)
			assert.Equal(t, tt.wantValue, mre.Value)
			assert.Equal(t, apperrors.ExitMalformedRecord, apperrors.ExitCode(err))

			if tt.input != "" && tt.wantRow > 1 {
				assert.NotEmpty(t, handler.GetRecords())
			}
		})
	}
}
