package tabular

import (
	"strings"

	"text2phenotype.com/refnorm/pipeline"
)

// FieldCandidates lists the header names recognized for each pipeline
// input, in preference order.
type FieldCandidates struct {
	Note     []string
	Exam     []string
	Organ    []string
	Contrast []string
}

func DefaultFieldCandidates() FieldCandidates {
	return FieldCandidates{
		Note:     []string{"note", "notes", "referral", "recommendation", "text"},
		Exam:     []string{"exam", "exam_name", "examination", "original_exam"},
		Organ:    []string{"organ", "body_part", "organ_name", "original_organ"},
		Contrast: []string{"contrast", "contrast_type", "original_contrast"},
	}
}

// DetectFields matches a schema against the candidates, case-insensitively.
// When all three encoder fields are present they win; otherwise the first
// note candidate is used. A zero FieldMap means nothing matched.
func (fc FieldCandidates) DetectFields(fields []string) pipeline.FieldMap {
	lookup := make(map[string]string, len(fields))
	for _, field := range fields {
		lower := strings.ToLower(field)
		if _, taken := lookup[lower]; !taken {
			lookup[lower] = field
		}
	}

	pick := func(candidates []string) string {
		for _, candidate := range candidates {
			if actual, ok := lookup[candidate]; ok {
				return actual
			}
		}
		return ""
	}

	detected := pipeline.FieldMap{
		Exam:     pick(fc.Exam),
		Organ:    pick(fc.Organ),
		Contrast: pick(fc.Contrast),
	}
	if detected.Exam != "" && detected.Organ != "" && detected.Contrast != "" {
		return detected
	}

	if note := pick(fc.Note); note != "" {
		return pipeline.FieldMap{Note: note}
	}
	return pipeline.FieldMap{}
}
