package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"text2phenotype.com/refnorm/pipeline"
	"text2phenotype.com/refnorm/taxonomy"
	"text2phenotype.com/refnorm/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "refnorm.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func runPipeline(t *testing.T, tid string, table *types.Table) pipeline.Result {
	t.Helper()

	process, err := pipeline.NewReferral(pipeline.ReferralParams{})
	require.NoError(t, err)

	result := <-process(pipeline.Request{Tid: tid, Table: table})
	require.NoError(t, result.Err)
	return result
}

func TestSaveAndQueryRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	table := types.NewTable("id", "exam", "organ", "contrast")
	table.Rows = []types.Record{
		{"id": "a", "exam": "CT scan", "organ": "chest and abdomen", "contrast": " with iv contrast"},
		{"id": "b", "exam": nil, "organ": "kidneystone", "contrast": "oral contrast"},
	}
	result := runPipeline(t, "run-1", table)

	require.NoError(t, store.SaveRun(ctx, "referrals.csv", result))

	summary, found, err := store.LoadSummary(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 2, summary.Rows)
	require.Equal(t, "exam", summary.Fields.Exam)

	_, found, err = store.LoadSummary(ctx, "no-such-run")
	require.NoError(t, err)
	require.False(t, found)

	runs, err := store.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "run-1", runs[0].Tid)
	require.Equal(t, "referrals.csv", runs[0].Source)
	require.Equal(t, 2, runs[0].Rows)

	examVocabulary, err := taxonomy.NewVocabulary(taxonomy.ExamVocabularyName, taxonomy.DefaultExamCategories())
	require.NoError(t, err)
	examCounts, err := store.CategoryCounts(ctx, ExamFlagsColumn, examVocabulary)
	require.NoError(t, err)
	require.Equal(t, 1, examCounts["CT Scans"])
	require.Equal(t, 0, examCounts["MRI"])

	organVocabulary, err := taxonomy.NewVocabulary(taxonomy.OrganVocabularyName, taxonomy.DefaultOrganClusters())
	require.NoError(t, err)
	organCounts, err := store.CategoryCounts(ctx, OrganFlagsColumn, organVocabulary)
	require.NoError(t, err)
	require.Equal(t, 1, organCounts["thorax"])
	require.Equal(t, 1, organCounts["abdomen_pelvis"])

	contrastCounts, err := store.ContrastCounts(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"with iv contrast": 1}, contrastCounts)
}

func TestSaveRunReplacesEarlierRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := types.NewTable("exam", "organ", "contrast")
	first.Rows = []types.Record{
		{"exam": "CT scan", "organ": "chest", "contrast": nil},
		{"exam": "MRI brain", "organ": "head", "contrast": nil},
	}
	require.NoError(t, store.SaveRun(ctx, "first.csv", runPipeline(t, "run-1", first)))

	second := types.NewTable("exam", "organ", "contrast")
	second.Rows = []types.Record{
		{"exam": "ultrasound", "organ": "liver", "contrast": nil},
	}
	require.NoError(t, store.SaveRun(ctx, "second.csv", runPipeline(t, "run-1", second)))

	runs, err := store.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "second.csv", runs[0].Source)
	require.Equal(t, 1, runs[0].Rows)

	examVocabulary, err := taxonomy.NewVocabulary(taxonomy.ExamVocabularyName, taxonomy.DefaultExamCategories())
	require.NoError(t, err)
	examCounts, err := store.CategoryCounts(ctx, ExamFlagsColumn, examVocabulary)
	require.NoError(t, err)
	require.Equal(t, 0, examCounts["CT Scans"])
	require.Equal(t, 0, examCounts["MRI"])
	require.Equal(t, 1, examCounts["Ultrasound and Doppler Studies"])
}

func TestSaveRunRejectsMissingTable(t *testing.T) {
	store := newTestStore(t)

	err := store.SaveRun(context.Background(), "", pipeline.Result{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no table")
}

func TestCategoryCountsRejectsUnknownColumn(t *testing.T) {
	store := newTestStore(t)

	examVocabulary, err := taxonomy.NewVocabulary(taxonomy.ExamVocabularyName, taxonomy.DefaultExamCategories())
	require.NoError(t, err)

	_, err = store.CategoryCounts(context.Background(), FlagColumn("contrast"), examVocabulary)
	require.Error(t, err)
}
