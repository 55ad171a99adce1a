package types

import (
	"reflect"
	"testing"
)

func TestRecordString(t *testing.T) {
	record := Record{
		"exam":  "CT scan",
		"count": 3,
		"empty": nil,
	}

	if got := record.String("exam"); got == nil || *got != "CT scan" {
		t.Errorf("Expected string value, got %v", got)
	}
	if got := record.String("count"); got == nil || *got != "3" {
		t.Errorf("Expected stringified value, got %v", got)
	}
	if got := record.String("empty"); got != nil {
		t.Errorf("Expected nil for nil value, got %q", *got)
	}
	if got := record.String("absent"); got != nil {
		t.Errorf("Expected nil for missing field, got %q", *got)
	}
}

func TestTableFields(t *testing.T) {
	table := NewTable("exam", "organ")

	if !table.HasField("exam") || table.HasField("contrast") {
		t.Error("HasField misreports the schema")
	}

	table.AddField("contrast")
	table.AddField("exam")
	if !reflect.DeepEqual(table.Fields, []string{"exam", "organ", "contrast"}) {
		t.Errorf("Unexpected schema: %v", table.Fields)
	}

	missing := table.MissingFields("organ", "site", "exam", "modality")
	if !reflect.DeepEqual(missing, []string{"site", "modality"}) {
		t.Errorf("Unexpected missing fields: %v", missing)
	}
	if table.MissingFields("exam", "organ") != nil {
		t.Error("Expected no missing fields")
	}
}

func TestTableClone(t *testing.T) {
	table := &Table{
		Fields: []string{"exam"},
		Rows:   []Record{{"exam": "mri"}},
	}

	clone := table.Clone()
	clone.Fields = append(clone.Fields, "organ")
	clone.Rows[0]["exam"] = "ultrasound"

	if len(table.Fields) != 1 {
		t.Errorf("Clone shares the schema: %v", table.Fields)
	}
	if table.Rows[0]["exam"] != "mri" {
		t.Errorf("Clone shares row data: %v", table.Rows[0])
	}
}
