package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tarachom/accountingstore/internal/metadata"
)

// Table names declared by MetadataSource.
const (
	CurrenciesTable = "tab_a01"
	PricesObject    = "tab_b01"
	PricesRecords   = "tab_b02"
	InvoiceTable    = "tab_c01"
	ReceiptTable    = "tab_c02"
	TransferTable   = "tab_c03"
	CurrencyTable   = "tab_d01"
)

// MetadataSource is the configuration shared by package tests.
const MetadataSource = `
constants: Settings: tableParts: Currencies: {
	table: "tab_a01"
	fields: {
		code:     "text"
		rate:     "number"
		active:   "bool"
		since:    "timestamp"
		account:  "identity"
		currency: "reference"
	}
}

registers: Prices: {
	object:  "tab_b01"
	records: "tab_b02"
	fields: {
		price:    "number"
		currency: "reference"
		note:     "text"
	}
}

documents: {
	Invoice: {table: "tab_c01", fields: {sum: "number"}}
	Receipt: {table: "tab_c02", fields: {sum: "number"}}
	Transfer: {table: "tab_c03", fields: {sum: "number"}}
}

directories: Currency: {
	table:        "tab_d01"
	presentation: "name"
	fields: {
		name: "text"
		code: "text"
	}
}

journals: {
	Full: documents: ["Invoice", "Receipt"]
	Transfers: documents: ["Transfer"]
}
`

// Metadata compiles MetadataSource and fails the test on error.
func Metadata(t testing.TB) *metadata.Configuration {
	t.Helper()
	cfg, err := metadata.CompileString(MetadataSource)
	require.NoError(t, err)
	return cfg
}
