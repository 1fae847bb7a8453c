package importer

import (
	"bytes"
	"encoding/csv"
)

// TemplateCSV returns an example CSV exhibiting every recognized column
// header plus one filled-in row, for users to mimic when preparing input.
func TemplateCSV() []byte {
	headers := make([]string, len(templateHeaders))
	example := make([]string, len(templateHeaders))
	for i, th := range templateHeaders {
		headers[i] = th.Header
		example[i] = th.Example
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(headers)
	_ = w.Write(example)
	w.Flush()
	return buf.Bytes()
}
