package pipeline

import (
	"sync"

	"text2phenotype.com/refnorm/referral"
	"text2phenotype.com/refnorm/taxonomy"
	"text2phenotype.com/refnorm/types"
)

// rowItem carries one record through the stages together with its position,
// so the collector can restore the original row order.
type rowItem struct {
	index  int
	record types.Record
}

type Stage func(in <-chan rowItem) <-chan rowItem

// NewCleaner extracts the referral phrase out of the note field and writes
// it to "<note>_clean". Values that are not strings clean to null.
func NewCleaner(noteField string) Stage {
	cleanField := noteField + "_clean"

	return func(in <-chan rowItem) <-chan rowItem {
		out := make(chan rowItem)

		go func() {
			defer close(out)
			var wg sync.WaitGroup
			for item := range in {
				wg.Add(1)
				go func(item rowItem) {
					defer wg.Done()

					if text, ok := item.record[noteField].(string); ok {
						item.record[cleanField] = referral.ExtractRecommendation(text)
					} else {
						item.record[cleanField] = nil
					}

					out <- item
				}(item)
			}

			wg.Wait()
		}()

		return out
	}
}

// NewSegments splits the source field into exam, body part and contrast
// segments, written to "<prefix>_exam", "<prefix>_body_part" and
// "<prefix>_contrast". Null segments are written as nulls.
func NewSegments(seg *referral.Segmenter, sourceField, prefix string) Stage {
	examField := prefix + "_exam"
	bodyPartField := prefix + "_body_part"
	contrastField := prefix + "_contrast"

	return func(in <-chan rowItem) <-chan rowItem {
		out := make(chan rowItem)

		go func() {
			defer close(out)
			var wg sync.WaitGroup
			for item := range in {
				wg.Add(1)
				go func(item rowItem) {
					defer wg.Done()

					ref := seg.SegmentValue(item.record[sourceField])
					item.record[examField] = segmentValue(ref.Exam)
					item.record[bodyPartField] = segmentValue(ref.BodyPart)
					item.record[contrastField] = segmentValue(ref.Contrast)

					out <- item
				}(item)
			}

			wg.Wait()
		}()

		return out
	}
}

// NewEncoder writes the category masks and the contrast code. The contrast
// field itself is rewritten to its canonical phrase when it holds a string.
func NewEncoder(exam, organs *taxonomy.Vocabulary, contrast *taxonomy.ContrastMap, fields FieldMap) Stage {
	examFlagsField := fields.Exam + "_flags"
	organFlagsField := fields.Organ + "_flags"
	contrastFlagsField := fields.Contrast + "_flags"

	return func(in <-chan rowItem) <-chan rowItem {
		out := make(chan rowItem)

		go func() {
			defer close(out)
			var wg sync.WaitGroup
			for item := range in {
				wg.Add(1)
				go func(item rowItem) {
					defer wg.Done()

					item.record[examFlagsField] = flagsValue(exam.Encode(item.record.String(fields.Exam)))
					item.record[organFlagsField] = flagsValue(organs.Encode(item.record.String(fields.Organ)))

					if phrase, ok := item.record[fields.Contrast].(string); ok {
						standardized := contrast.Standardize(&phrase)
						item.record[fields.Contrast] = *standardized
						item.record[contrastFlagsField] = codeValue(taxonomy.EncodeContrast(standardized))
					} else {
						item.record[contrastFlagsField] = nil
					}

					out <- item
				}(item)
			}

			wg.Wait()
		}()

		return out
	}
}

// chain pushes the table rows through the stages and collects them back into
// their original positions. Stages hand rows over in completion order; the
// index on each item puts them back where they came from.
func chain(table *types.Table, stages ...Stage) {
	in := make(chan rowItem)

	out := (<-chan rowItem)(in)
	for _, stage := range stages {
		out = stage(out)
	}

	go func() {
		defer close(in)
		for i, record := range table.Rows {
			in <- rowItem{index: i, record: record}
		}
	}()

	rows := make([]types.Record, len(table.Rows))
	for item := range out {
		rows[item.index] = item.record
	}
	table.Rows = rows
}

func segmentValue(segment *string) interface{} {
	if segment == nil {
		return nil
	}
	return *segment
}

func flagsValue(flags *types.Flags) interface{} {
	if flags == nil {
		return nil
	}
	return *flags
}

func codeValue(code *types.ContrastCode) interface{} {
	if code == nil {
		return nil
	}
	return *code
}
