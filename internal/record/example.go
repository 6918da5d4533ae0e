// SPDX-License-Identifier: Apache-2.0

package record

// exampleRow is a real plant reading, derived fields included, in canonical
// order. It fills the downloadable example workbook.
var exampleRow = []string{
	"55.2", "16.98", "3019.53", "557.434", "395.713", "10.0664",
	"1.74", "249.214", "253.235", "1.74", "295.096", "306.4",
	"250.225", "250.884", "457.396", "432.962", "424.954",
	"443.558", "502.255", "446.37", "523.344", "63.942", "2.89",
}

// Example returns the example reading as a record.
func Example() RawRecord {
	out := make(RawRecord, len(fields))
	for i, f := range fields {
		out[f.Name] = exampleRow[i]
	}
	return out
}

// ExampleInputs returns the example reading without the derived fields.
func ExampleInputs() RawRecord {
	out := Example()
	for _, f := range fields[InputCount:] {
		delete(out, f.Name)
	}
	return out
}
