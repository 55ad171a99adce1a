package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"text2phenotype.com/refnorm/pipeline"
	"text2phenotype.com/refnorm/store"
	"text2phenotype.com/refnorm/tabular"
	"text2phenotype.com/refnorm/types"
)

func newTestPipeline(t *testing.T) pipeline.Pipeline {
	t.Helper()

	process, err := pipeline.NewReferral(pipeline.ReferralParams{})
	require.NoError(t, err)
	return process
}

func TestWatcherProcessesDroppedTable(t *testing.T) {
	stagingDir := t.TempDir()
	dropDir := t.TempDir()

	watcher := New(Params{Dir: dropDir, Pipeline: newTestPipeline(t)})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, watcher.Start(ctx))

	staged := filepath.Join(stagingDir, "referrals.csv")
	body := "exam,organ,contrast\nCT scan,chest, with iv contrast\n"
	require.NoError(t, os.WriteFile(staged, []byte(body), 0644))
	require.NoError(t, os.Rename(staged, filepath.Join(dropDir, "referrals.csv")))

	outPath := filepath.Join(dropDir, "referrals.refnorm.csv")
	var enriched *types.Table
	require.Eventually(t, func() bool {
		table, err := tabular.DecodeFile(outPath, tabular.Options{})
		if err != nil || len(table.Rows) == 0 {
			return false
		}
		enriched = table
		return true
	}, 5*time.Second, 50*time.Millisecond)

	require.Equal(t,
		[]string{"exam", "organ", "contrast", "exam_flags", "organ_flags", "contrast_flags"},
		enriched.Fields)
	require.Equal(t, "1", enriched.Rows[0]["exam_flags"])
	require.Equal(t, "4", enriched.Rows[0]["organ_flags"])
	require.Equal(t, "with iv contrast", enriched.Rows[0]["contrast"])
}

func TestWatcherBackfill(t *testing.T) {
	dropDir := t.TempDir()
	ctx := context.Background()

	body := "exam,organ,contrast\nMRI brain,head,\nultrasound,,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dropDir, "backlog.csv"), []byte(body), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dropDir, "done.refnorm.csv"), []byte(body), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dropDir, "notes.txt"), []byte("not a table"), 0644))

	runStore, err := store.Open(ctx, filepath.Join(t.TempDir(), "refnorm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = runStore.Close() })

	exam, organs, err := pipeline.Vocabularies(pipeline.ReferralParams{})
	require.NoError(t, err)

	watcher := New(Params{
		Dir:      dropDir,
		Pipeline: newTestPipeline(t),
		Store:    runStore,
		Exam:     exam,
		Organs:   organs,
	})
	require.NoError(t, watcher.Backfill(ctx))

	enriched, err := tabular.DecodeFile(filepath.Join(dropDir, "backlog.refnorm.csv"), tabular.Options{})
	require.NoError(t, err)
	require.Len(t, enriched.Rows, 2)
	require.Equal(t, "2", enriched.Rows[0]["exam_flags"])
	require.Equal(t, "4", enriched.Rows[1]["exam_flags"])
	require.Nil(t, enriched.Rows[1]["organ_flags"])

	_, err = os.Stat(filepath.Join(dropDir, "done.refnorm.refnorm.csv"))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dropDir, "notes.refnorm.csv"))
	require.True(t, os.IsNotExist(err))

	runs, err := runStore.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "backlog", runs[0].Tid)
	require.Equal(t, "backlog.csv", runs[0].Source)
	require.Equal(t, 2, runs[0].Rows)

	counts, err := runStore.CategoryCounts(ctx, store.ExamFlagsColumn, exam)
	require.NoError(t, err)
	require.Equal(t, 1, counts["MRI"])
	require.Equal(t, 1, counts["Ultrasound and Doppler Studies"])
	require.Equal(t, 0, counts["CT Scans"])
}
