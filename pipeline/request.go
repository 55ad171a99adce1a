package pipeline

import "text2phenotype.com/refnorm/types"

// FieldMap names the record fields a request works on. When Note is set the
// note field is cleaned and segmented first and the derived segment fields
// replace Exam, Organ and Contrast as encoder inputs.
type FieldMap struct {
	Note     string `json:"note,omitempty"`
	Exam     string `json:"exam"`
	Organ    string `json:"organ"`
	Contrast string `json:"contrast"`
}

func DefaultFieldMap() FieldMap {
	return FieldMap{Exam: "exam", Organ: "organ", Contrast: "contrast"}
}

// resolve fills in the effective encoder fields. Note mode derives them from
// the note field; otherwise empty names fall back to the defaults.
func (fields FieldMap) resolve() FieldMap {
	if fields.Note != "" {
		return FieldMap{
			Note:     fields.Note,
			Exam:     fields.Note + "_exam",
			Organ:    fields.Note + "_body_part",
			Contrast: fields.Note + "_contrast",
		}
	}

	defaults := DefaultFieldMap()
	if fields.Exam == "" {
		fields.Exam = defaults.Exam
	}
	if fields.Organ == "" {
		fields.Organ = defaults.Organ
	}
	if fields.Contrast == "" {
		fields.Contrast = defaults.Contrast
	}
	return fields
}

type Request struct {
	Tid    string       `json:"tid"`
	Table  *types.Table `json:"table"`
	Fields FieldMap     `json:"fields"`
}

type Result struct {
	Table   *types.Table
	Summary Summary
	Err     error
}

type Pipeline func(request Request) <-chan Result
