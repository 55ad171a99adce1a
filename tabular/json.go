package tabular

import (
	"encoding/json"
	"fmt"
	"sort"

	"text2phenotype.com/refnorm/types"
)

// DecodeRecords turns a JSON array of objects into a table. JSON objects
// carry no column order, so the schema is the sorted union of keys.
func DecodeRecords(data []byte) (*types.Table, error) {
	var records []types.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	seen := make(map[string]bool)
	for _, record := range records {
		for field := range record {
			seen[field] = true
		}
	}

	fields := make([]string, 0, len(seen))
	for field := range seen {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	return &types.Table{Fields: fields, Rows: records}, nil
}
