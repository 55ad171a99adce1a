// Package taxonomy turns referral segments into category bitmasks. A
// vocabulary is an ordered table of categories; the position of a category
// fixes which bit it owns, so the same table always yields the same mask.
package taxonomy

import (
	"fmt"
	"regexp"
	"strings"

	"text2phenotype.com/refnorm/types"
	"text2phenotype.com/refnorm/utils"
)

// Category pairs a stable name with the terms that trigger it.
type Category struct {
	Name  string
	Terms []string
}

type Vocabulary struct {
	name        string
	categories  []Category
	patterns    [][]*regexp.Regexp
	fingerprint uint64
}

var nonWordPattern = regexp.MustCompile(`[^\w\s]`)

// NewVocabulary compiles the category table for whole-word matching. Terms
// are compiled as written; a term the segment cleaning would alter (one with
// punctuation other than a hyphen) can never match.
func NewVocabulary(name string, categories []Category) (*Vocabulary, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("vocabulary %q has no categories", name)
	}
	if len(categories) > types.MaxFlagBits {
		return nil, fmt.Errorf("vocabulary %q defines %d categories, flag width allows %d",
			name, len(categories), types.MaxFlagBits)
	}

	voc := Vocabulary{
		name:       name,
		categories: categories,
		patterns:   make([][]*regexp.Regexp, len(categories)),
	}

	for i, cat := range categories {
		if cat.Name == "" {
			return nil, fmt.Errorf("vocabulary %q: category %d has no name", name, i)
		}

		patterns := make([]*regexp.Regexp, 0, len(cat.Terms))
		for _, term := range cat.Terms {
			pattern, err := regexp.Compile(`\b` + regexp.QuoteMeta(term) + `\b`)
			if err != nil {
				return nil, fmt.Errorf("vocabulary %q, category %q, term %q: %w",
					name, cat.Name, term, err)
			}
			patterns = append(patterns, pattern)
		}
		voc.patterns[i] = patterns
	}

	voc.fingerprint = fingerprint(name, categories)
	return &voc, nil
}

// FromConfig builds a vocabulary from configuration categories.
func FromConfig(name string, categories []types.CategoryConfig) (*Vocabulary, error) {
	cats := make([]Category, len(categories))
	for i, cc := range categories {
		cats[i] = Category{Name: cc.Name, Terms: cc.Terms}
	}
	return NewVocabulary(name, cats)
}

// Encode maps a segment to its category bitmask. Nil encodes to nil; a
// non-nil segment with no term hits encodes to zero. The receiver is
// read-only after construction, so concurrent calls are safe.
func (voc *Vocabulary) Encode(segment *string) *types.Flags {
	if segment == nil {
		return nil
	}

	cleaned := cleanSegment(*segment)

	var flags types.Flags
	for i, patterns := range voc.patterns {
		for _, pattern := range patterns {
			if pattern.MatchString(cleaned) {
				flags.Set(uint8(i))
				break
			}
		}
	}
	return &flags
}

// cleanSegment lowers a segment into matching form: hyphens become spaces,
// then everything outside word characters and whitespace is dropped.
func cleanSegment(segment string) string {
	cleaned := strings.ReplaceAll(segment, "-", " ")
	cleaned = strings.ToLower(cleaned)
	return nonWordPattern.ReplaceAllString(cleaned, "")
}

func (voc *Vocabulary) Name() string {
	return voc.name
}

// CategoryNames returns the category names in bit order.
func (voc *Vocabulary) CategoryNames() []string {
	names := make([]string, len(voc.categories))
	for i, cat := range voc.categories {
		names[i] = cat.Name
	}
	return names
}

// FlagNames resolves the set bits of a mask to category names, in bit order.
func (voc *Vocabulary) FlagNames(flags types.Flags) []string {
	var names []string
	for i, cat := range voc.categories {
		if flags.Has(uint8(i)) {
			names = append(names, cat.Name)
		}
	}
	return names
}

// Fingerprint identifies the vocabulary content. Two vocabularies with the
// same name, category order and terms share a fingerprint.
func (voc *Vocabulary) Fingerprint() uint64 {
	return voc.fingerprint
}

func fingerprint(name string, categories []Category) uint64 {
	parts := make([][]byte, 0, len(categories)*2+1)
	parts = append(parts, []byte(name))
	for _, cat := range categories {
		parts = append(parts, []byte(cat.Name))
		parts = append(parts, []byte(strings.Join(cat.Terms, "|")))
	}
	return utils.HashBytes(parts...)
}
