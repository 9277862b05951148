package exporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEcho(t *testing.T) {
	var out bytes.Buffer
	report := []byte("Product Name|First Sale\r\n  Gadget|2023-11-14 22:21:40 \r\n")

	require.NoError(t, Echo(&out, report))
	assert.Equal(t, "Product Name|First Sale\nGadget|2023-11-14 22:21:40\n", out.String())
}

func TestEcho_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Echo(&out, nil))
	assert.Empty(t, out.String())
}
