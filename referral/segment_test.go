package referral

import (
	"testing"

	"github.com/stretchr/testify/require"

	"text2phenotype.com/refnorm/types"
)

func strp(s string) *string {
	return &s
}

func defaultSegmenter() *Segmenter {
	return NewSegmenter(DefaultCTTypes(), DefaultContrastKeywords())
}

func TestSegment(t *testing.T) {
	seg := defaultSegmenter()

	cases := []struct {
		name     string
		phrase   string
		expected types.Referral
	}{
		{
			name:   "ct type closes exam segment",
			phrase: "CT scan abdomen with iv contrast",
			expected: types.Referral{
				Exam:     strp("CT scan"),
				BodyPart: strp("abdomen"),
				Contrast: strp("with iv contrast"),
			},
		},
		{
			name:   "no ct type takes first token",
			phrase: "MRI brain wo contrast",
			expected: types.Referral{
				Exam:     strp("MRI"),
				BodyPart: strp("brain"),
				Contrast: strp("wo contrast"),
			},
		},
		{
			name:   "commas dropped from tokens",
			phrase: "CT scan, chest, w contrast",
			expected: types.Referral{
				Exam:     strp("CT scan"),
				BodyPart: strp("chest"),
				Contrast: strp("w contrast"),
			},
		},
		{
			name:   "ct type match is case sensitive",
			phrase: "CT Scan abdomen",
			expected: types.Referral{
				Exam:     strp("CT"),
				BodyPart: strp("Scan abdomen"),
			},
		},
		{
			name:   "no contrast keyword",
			phrase: "ultrasound abdomen",
			expected: types.Referral{
				Exam:     strp("ultrasound"),
				BodyPart: strp("abdomen"),
			},
		},
		{
			name:   "keyword right after exam leaves empty body part",
			phrase: "scan with contrast",
			expected: types.Referral{
				Exam:     strp("scan"),
				BodyPart: strp(""),
				Contrast: strp("with contrast"),
			},
		},
		{
			name:   "slash keyword",
			phrase: "venography pelvis wo/w contrast",
			expected: types.Referral{
				Exam:     strp("venography"),
				BodyPart: strp("pelvis"),
				Contrast: strp("wo/w contrast"),
			},
		},
		{
			name:   "double space survives the joins",
			phrase: "CT  scan abdomen",
			expected: types.Referral{
				Exam:     strp("CT  scan"),
				BodyPart: strp("abdomen"),
			},
		},
		{
			name:   "empty phrase",
			phrase: "",
			expected: types.Referral{
				Exam:     strp(""),
				BodyPart: strp(""),
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, seg.Segment(tc.phrase))
		})
	}
}

func TestSegmentValue(t *testing.T) {
	seg := defaultSegmenter()

	t.Run("string value is segmented", func(t *testing.T) {
		ref := seg.SegmentValue("CT scan abdomen w contrast")
		require.Equal(t, types.Referral{
			Exam:     strp("CT scan"),
			BodyPart: strp("abdomen"),
			Contrast: strp("w contrast"),
		}, ref)
	})

	t.Run("nil value is all null", func(t *testing.T) {
		ref := seg.SegmentValue(nil)
		require.True(t, ref.IsNull())
	})

	t.Run("non-string value is all null", func(t *testing.T) {
		ref := seg.SegmentValue(42.5)
		require.True(t, ref.IsNull())
	})
}
