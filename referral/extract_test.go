package referral

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractRecommendation(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "labeled recommendation",
			text:     "Patient stable. Recommendation: CT scan abdomen with iv contrast. Follow up in 2 weeks.",
			expected: "CT scan abdomen with iv contrast",
		},
		{
			name:     "labeled exam lowercase",
			text:     "exam: mri brain wo contrast",
			expected: "mri brain wo contrast",
		},
		{
			name:     "label uppercase with padding",
			text:     "EXAM:   chest xray\nfurther notes below",
			expected: "chest xray",
		},
		{
			name:     "first label wins",
			text:     "Exam: bone scan pelvis. Recommendation: pet scan",
			expected: "bone scan pelvis",
		},
		{
			name:     "label followed by newline",
			text:     "Recommendation:\n  ultrasound abdomen",
			expected: "ultrasound abdomen",
		},
		{
			name:     "empty label falls through to next label",
			text:     "Exam:. Recommendation: pet scan",
			expected: "pet scan",
		},
		{
			name:     "no label flattens newlines",
			text:     "ct scan\nchest wo contrast.",
			expected: "ct scan chest wo contrast",
		},
		{
			name:     "no label removes one trailing period",
			text:     "whole body bone scan..",
			expected: "whole body bone scan.",
		},
		{
			name:     "no label trims whitespace",
			text:     "   duplex ultrasound neck   ",
			expected: "duplex ultrasound neck",
		},
		{
			name:     "empty text",
			text:     "",
			expected: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, ExtractRecommendation(tc.text))
		})
	}
}
