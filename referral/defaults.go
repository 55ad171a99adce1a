package referral

// Default token sets of the segmenter.

func DefaultCTTypes() []string {
	return []string{
		"angiography", "arthrography", "enterography", "fistulogram",
		"urography", "venography", "quantitative", "scan",
	}
}

func DefaultContrastKeywords() []string {
	return []string{"w", "wo", "with", "without", "wo/w"}
}
