package referral

import (
	"strings"

	"text2phenotype.com/refnorm/types"
)

// Segmenter splits a referral phrase into exam, body part and contrast
// segments. Token matching is exact and case sensitive.
type Segmenter struct {
	ctTypes  map[string]bool
	keywords map[string]bool
}

func NewSegmenter(ctTypes, contrastKeywords []string) *Segmenter {
	seg := Segmenter{
		ctTypes:  make(map[string]bool, len(ctTypes)),
		keywords: make(map[string]bool, len(contrastKeywords)),
	}
	for _, ctType := range ctTypes {
		seg.ctTypes[ctType] = true
	}
	for _, keyword := range contrastKeywords {
		seg.keywords[keyword] = true
	}
	return &seg
}

// Segment tokenizes the phrase on single spaces, trims each token and drops
// its commas, then closes the exam segment at the first CT-type token and
// opens the contrast segment at the first contrast keyword after it. Without
// a CT-type token the exam segment is the first token alone.
func (seg *Segmenter) Segment(phrase string) types.Referral {
	elements := strings.Split(phrase, " ")
	for i, element := range elements {
		elements[i] = strings.ReplaceAll(strings.TrimSpace(element), ",", "")
	}

	ctIndex := -1
	for i, element := range elements {
		if seg.ctTypes[element] {
			ctIndex = i
			break
		}
	}

	var exam string
	if ctIndex >= 0 {
		exam = strings.Join(elements[:ctIndex+1], " ")
	} else {
		exam = elements[0]
		ctIndex = 0
	}

	other := elements[ctIndex+1:]

	keywordIndex := -1
	for i, element := range other {
		if seg.keywords[element] {
			keywordIndex = i
			break
		}
	}

	var bodyPart, contrast *string
	if keywordIndex >= 0 {
		body := strings.Join(other[:keywordIndex], " ")
		rest := strings.Join(other[keywordIndex:], " ")
		bodyPart, contrast = &body, &rest
	} else {
		body := strings.Join(other, " ")
		bodyPart = &body
	}

	return types.Referral{Exam: &exam, BodyPart: bodyPart, Contrast: contrast}
}

// SegmentValue segments a raw record value. A value that is not a string
// comes back all-null, as does a value whose segmentation panics; one bad
// record never aborts a batch.
func (seg *Segmenter) SegmentValue(value interface{}) (ref types.Referral) {
	defer func() {
		if recover() != nil {
			ref = types.Referral{}
		}
	}()

	phrase, ok := value.(string)
	if !ok {
		return types.Referral{}
	}
	return seg.Segment(phrase)
}
