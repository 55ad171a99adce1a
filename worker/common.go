package worker

import (
	"fmt"
	"path"
	"time"
)

func getResultsFileKey(task *Task) string {
	return path.Join(
		"processed",
		"tables",
		task.chunkTask.TableID,
		"chunks",
		task.redisKey,
		fmt.Sprintf("%s.refnorm_results.csv", task.redisKey),
	)
}

func getSummaryFileKey(task *Task) string {
	return path.Join(
		"processed",
		"tables",
		task.chunkTask.TableID,
		"chunks",
		task.redisKey,
		fmt.Sprintf("%s.refnorm_summary.json", task.redisKey),
	)
}

const RFC3339Micro = "2006-01-02T15:04:05.000000-07:00"

func getFormattedNow() *string {
	now := time.Now().UTC().Format(RFC3339Micro)
	return &now
}
