// Package watch feeds a drop directory through the referral pipeline. Tables
// landing in the directory come back enriched next to the original file.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"text2phenotype.com/refnorm/logger"
	"text2phenotype.com/refnorm/pipeline"
	"text2phenotype.com/refnorm/store"
	"text2phenotype.com/refnorm/tabular"
	"text2phenotype.com/refnorm/taxonomy"
)

// resultSuffix marks tables the watcher wrote itself, so its own output is
// never picked up as new input.
const resultSuffix = ".refnorm.csv"

// Params wires a Watcher. Store is optional; when set every processed table
// is saved as a run and cumulative totals are logged after each save. Exam
// and Organs translate stored bit positions back into category names for
// those totals and may stay nil without a Store.
type Params struct {
	Dir      string
	Pipeline pipeline.Pipeline
	Store    *store.Store
	Exam     *taxonomy.Vocabulary
	Organs   *taxonomy.Vocabulary
}

type Watcher struct {
	params     Params
	wtchLogger *zerolog.Logger
}

func New(params Params) *Watcher {
	wtchLogger := logger.NewLogger("Watcher")
	return &Watcher{params: params, wtchLogger: &wtchLogger}
}

// Start begins watching the drop directory. The event loop runs until ctx is
// cancelled and closes the underlying watcher with it.
func (watcher *Watcher) Start(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start directory watcher: %w", err)
	}

	go func() {
		defer fsWatcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-fsWatcher.Events:
				if evt.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if !watcher.isTable(evt.Name) {
					continue
				}
				if err := watcher.processFile(ctx, evt.Name); err != nil {
					watcher.wtchLogger.Err(err).Str("path", evt.Name).Msg("Failed to process dropped table")
				}
			case watchErr := <-fsWatcher.Errors:
				watcher.wtchLogger.Err(watchErr).Msg("Directory watcher error")
			}
		}
	}()

	watcher.wtchLogger.Info().Str("dir", watcher.params.Dir).Msg("Watching drop directory")
	return fsWatcher.Add(watcher.params.Dir)
}

// Backfill processes tables already sitting in the directory.
func (watcher *Watcher) Backfill(ctx context.Context) error {
	entries, err := filepath.Glob(filepath.Join(watcher.params.Dir, "*"))
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !watcher.isTable(entry) {
			continue
		}
		if err := watcher.processFile(ctx, entry); err != nil {
			watcher.wtchLogger.Err(err).Str("path", entry).Msg("Failed to process existing table")
		}
	}
	return nil
}

func (watcher *Watcher) isTable(path string) bool {
	if strings.HasSuffix(path, resultSuffix) {
		return false
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return true
	default:
		return false
	}
}

func (watcher *Watcher) processFile(ctx context.Context, path string) error {
	tid := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	fileLogger := watcher.wtchLogger.With().Str("tid", tid).Str("path", path).Logger()
	fileLogger.Info().Msg("Processing dropped table")

	table, err := tabular.DecodeFile(path, tabular.Options{})
	if err != nil {
		return fmt.Errorf("failed to parse table %s: %w", path, err)
	}

	request := pipeline.Request{
		Tid:    tid,
		Table:  table,
		Fields: tabular.DefaultFieldCandidates().DetectFields(table.Fields),
	}
	result, ok := <-watcher.params.Pipeline(request)
	if !ok {
		return errors.New("pipeline channel was closed unexpectedly")
	}
	if result.Err != nil {
		return result.Err
	}

	outPath := strings.TrimSuffix(path, filepath.Ext(path)) + resultSuffix
	if err := tabular.EncodeFile(outPath, result.Table); err != nil {
		return err
	}
	fileLogger.Info().
		Int("rows", result.Summary.Rows).
		Str("results_path", outPath).
		Msg("Finished dropped table")

	return watcher.saveRun(ctx, path, result)
}

func (watcher *Watcher) saveRun(ctx context.Context, path string, result pipeline.Result) error {
	if watcher.params.Store == nil {
		return nil
	}
	if err := watcher.params.Store.SaveRun(ctx, filepath.Base(path), result); err != nil {
		return fmt.Errorf("failed to save run %s: %w", result.Summary.Tid, err)
	}
	watcher.logTotals(ctx)
	return nil
}

// logTotals reports cumulative per-category totals across every stored run.
func (watcher *Watcher) logTotals(ctx context.Context) {
	event := watcher.wtchLogger.Info()

	if watcher.params.Exam != nil {
		counts, err := watcher.params.Store.CategoryCounts(ctx, store.ExamFlagsColumn, watcher.params.Exam)
		if err != nil {
			watcher.wtchLogger.Err(err).Msg("Failed to count stored exam categories")
			return
		}
		event = event.Interface("exam_totals", counts)
	}
	if watcher.params.Organs != nil {
		counts, err := watcher.params.Store.CategoryCounts(ctx, store.OrganFlagsColumn, watcher.params.Organs)
		if err != nil {
			watcher.wtchLogger.Err(err).Msg("Failed to count stored organ clusters")
			return
		}
		event = event.Interface("organ_totals", counts)
	}

	counts, err := watcher.params.Store.ContrastCounts(ctx)
	if err != nil {
		watcher.wtchLogger.Err(err).Msg("Failed to count stored contrast codes")
		return
	}
	event.Interface("contrast_totals", counts).Msg("Store totals")
}
