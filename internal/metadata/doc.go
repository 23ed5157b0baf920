// Package metadata compiles the CUE configuration that declares every
// persisted entity: constants table parts, information registers,
// documents, directories and journals.
//
// The configuration is the single source of table names and column kinds.
// Components and the store look tables up by name; nothing else in the
// module hard-codes a schema.
//
// Shape:
//
//	constants: Settings: tableParts: Currencies: {
//		table: "tab_a01"
//		fields: { code: "text", rate: "number" }
//	}
//	registers: Prices: {
//		object:  "tab_b01"
//		records: "tab_b02"
//		fields: { price: "number" }
//	}
//	documents: Invoice: { table: "tab_c01", fields: { sum: "number" } }
//	directories: Currency: { table: "tab_d01", presentation: "name", fields: { name: "text" } }
//	journals: Full: { documents: ["Invoice"] }
package metadata
