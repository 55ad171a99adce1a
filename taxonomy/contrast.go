package taxonomy

import "text2phenotype.com/refnorm/types"

// ContrastMap rewrites known variant spellings of a contrast phrase to their
// canonical form. Lookup is by exact string, stray spacing included.
type ContrastMap struct {
	variants map[string]string
}

func NewContrastMap(variants map[string]string) *ContrastMap {
	copied := make(map[string]string, len(variants))
	for variant, canonical := range variants {
		copied[variant] = canonical
	}
	return &ContrastMap{variants: copied}
}

// Standardize maps a known variant to its canonical phrase and passes
// anything else through unchanged. Nil stays nil.
func (cm *ContrastMap) Standardize(phrase *string) *string {
	if phrase == nil {
		return nil
	}
	if canonical, ok := cm.variants[*phrase]; ok {
		return &canonical
	}
	return phrase
}

// EncodeContrast returns the code of a canonical contrast phrase and nil for
// any other value, nil included.
func EncodeContrast(phrase *string) *types.ContrastCode {
	if phrase == nil {
		return nil
	}

	var code types.ContrastCode
	switch *phrase {
	case types.ContrastWith.Name():
		code = types.ContrastWith
	case types.ContrastWithout.Name():
		code = types.ContrastWithout
	case types.ContrastEither.Name():
		code = types.ContrastEither
	default:
		return nil
	}
	return &code
}
