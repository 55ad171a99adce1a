package pipeline

import (
	"strconv"
	"time"

	"text2phenotype.com/refnorm/taxonomy"
	"text2phenotype.com/refnorm/types"
)

// Summary aggregates one pipeline run. Counts are keyed by category name;
// rows whose flags are null are tallied separately. Fields holds the resolved
// field names, including the ones derived from a note field.
type Summary struct {
	Tid            string            `json:"tid"`
	Fields         FieldMap          `json:"fields"`
	Rows           int               `json:"rows"`
	ExamCounts     map[string]int    `json:"exam_counts"`
	OrganCounts    map[string]int    `json:"organ_counts"`
	ContrastCounts map[string]int    `json:"contrast_counts"`
	NullExam       int               `json:"null_exam"`
	NullOrgan      int               `json:"null_organ"`
	NullContrast   int               `json:"null_contrast"`
	Fingerprints   map[string]string `json:"vocabulary_fingerprints"`
	DurationMs     int64             `json:"duration_ms"`
}

func buildSummary(table *types.Table, tid string, fields FieldMap, exam, organs *taxonomy.Vocabulary, started time.Time) Summary {
	summary := Summary{
		Tid:            tid,
		Fields:         fields,
		Rows:           len(table.Rows),
		ExamCounts:     make(map[string]int),
		OrganCounts:    make(map[string]int),
		ContrastCounts: make(map[string]int),
		Fingerprints: map[string]string{
			exam.Name():   strconv.FormatUint(exam.Fingerprint(), 16),
			organs.Name(): strconv.FormatUint(organs.Fingerprint(), 16),
		},
	}

	examFlagsField := fields.Exam + "_flags"
	organFlagsField := fields.Organ + "_flags"
	contrastFlagsField := fields.Contrast + "_flags"

	for _, record := range table.Rows {
		if flags, ok := record[examFlagsField].(types.Flags); ok {
			for _, name := range exam.FlagNames(flags) {
				summary.ExamCounts[name]++
			}
		} else {
			summary.NullExam++
		}

		if flags, ok := record[organFlagsField].(types.Flags); ok {
			for _, name := range organs.FlagNames(flags) {
				summary.OrganCounts[name]++
			}
		} else {
			summary.NullOrgan++
		}

		if code, ok := record[contrastFlagsField].(types.ContrastCode); ok {
			summary.ContrastCounts[code.Name()]++
		} else {
			summary.NullContrast++
		}
	}

	summary.DurationMs = time.Since(started).Milliseconds()
	return summary
}
