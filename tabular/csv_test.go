package tabular

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"text2phenotype.com/refnorm/pipeline"
	"text2phenotype.com/refnorm/types"
)

func TestDecode(t *testing.T) {
	input := "id,exam,organ,contrast\n" +
		"1,CT scan,abdomen, with iv contrast\n" +
		"2,,neck,\n" +
		"3,mri\n"

	table, err := Decode(strings.NewReader(input), Options{})
	require.NoError(t, err)

	expected := &types.Table{
		Fields: []string{"id", "exam", "organ", "contrast"},
		Rows: []types.Record{
			{"id": "1", "exam": "CT scan", "organ": "abdomen", "contrast": " with iv contrast"},
			{"id": "2", "exam": nil, "organ": "neck", "contrast": nil},
			{"id": "3", "exam": "mri", "organ": nil, "contrast": nil},
		},
	}
	if diff := cmp.Diff(expected, table); diff != "" {
		t.Errorf("Unexpected table (-want +got):\n%s", diff)
	}
}

func TestDecodeTabSeparated(t *testing.T) {
	input := "exam\torgan\nultrasound\tneck\n"

	table, err := Decode(strings.NewReader(input), Options{Comma: '\t'})
	require.NoError(t, err)
	require.Equal(t, []string{"exam", "organ"}, table.Fields)
	require.Equal(t, "ultrasound", table.Rows[0]["exam"])
}

func TestDecodeFilePicksDelimiterFromExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "referrals.tsv")
	content := "exam\torgan\nmammogram\tbreast\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := DecodeFile(path, Options{})
	require.NoError(t, err)
	require.Equal(t, "mammogram", table.Rows[0]["exam"])
}

func TestDecodeEmptyInput(t *testing.T) {
	_, err := Decode(strings.NewReader(""), Options{})
	require.Error(t, err)
}

func TestDecodeNormalize(t *testing.T) {
	input := "exam\n ＣＴ ｓｃａｎ \n"

	table, err := Decode(strings.NewReader(input), Options{Normalize: true})
	require.NoError(t, err)
	require.Equal(t, "CT scan", table.Rows[0]["exam"])
}

func TestEncode(t *testing.T) {
	table := &types.Table{
		Fields: []string{"exam", "exam_flags", "contrast_flags", "note"},
		Rows: []types.Record{
			{
				"exam":           "CT scan",
				"exam_flags":     types.Flags(9),
				"contrast_flags": types.ContrastWithout,
				"note":           nil,
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, table))
	require.Equal(t, "exam,exam_flags,contrast_flags,note\nCT scan,9,1,\n", buf.String())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	table := &types.Table{
		Fields: []string{"exam", "organ_flags"},
		Rows: []types.Record{
			{"exam": "pet scan", "organ_flags": types.Flags(512)},
			{"exam": "phrase, with comma", "organ_flags": nil},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, table))

	decoded, err := Decode(&buf, Options{})
	require.NoError(t, err)

	// numeric cells come back as strings, null cells stay null
	require.Equal(t, "512", decoded.Rows[0]["organ_flags"])
	require.Equal(t, "phrase, with comma", decoded.Rows[1]["exam"])
	require.Nil(t, decoded.Rows[1]["organ_flags"])
}

func TestDetectFields(t *testing.T) {
	candidates := DefaultFieldCandidates()

	t.Run("encoder fields win", func(t *testing.T) {
		detected := candidates.DetectFields([]string{"id", "Exam", "body_part", "contrast", "note"})
		require.Equal(t, pipeline.FieldMap{
			Exam:     "Exam",
			Organ:    "body_part",
			Contrast: "contrast",
		}, detected)
	})

	t.Run("note fallback", func(t *testing.T) {
		detected := candidates.DetectFields([]string{"id", "referral", "exam"})
		require.Equal(t, pipeline.FieldMap{Note: "referral"}, detected)
	})

	t.Run("nothing recognized", func(t *testing.T) {
		detected := candidates.DetectFields([]string{"id", "payload"})
		require.Equal(t, pipeline.FieldMap{}, detected)
	})
}

func TestDecodeRecords(t *testing.T) {
	data := []byte(`[{"exam":"mri","organ":"brain"},{"exam":"ct","contrast":"with iv contrast"}]`)

	table, err := DecodeRecords(data)
	require.NoError(t, err)
	require.Equal(t, []string{"contrast", "exam", "organ"}, table.Fields)
	require.Len(t, table.Rows, 2)
	require.Equal(t, "brain", table.Rows[0]["organ"])

	_, err = DecodeRecords([]byte(`{"not":"an array"}`))
	require.Error(t, err)
}
