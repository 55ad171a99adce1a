package worker

import (
	"fmt"

	"text2phenotype.com/refnorm/tasks"
)

type redisTransactions interface {
	getChunkTask(redisKey string) (*tasks.ChunkTask, error)
	getJobTask(task *Task) (*tasks.JobTask, error)
	getTableTask(task *Task) (*tasks.TableTaskCached, error)
	onTaskStarted(task *Task) error
	onTaskCancelled(task *Task, errorMessages ...string) error
	onTaskExceededRetries(task *Task, maxRetries int) error
	onTaskFailedWithError(task *Task, err error) error
	onTaskComplete(task *Task) error
	close()
}

type redisClientWrapper struct {
	tasksClient *tasks.Client
}

func (wrapper *redisClientWrapper) close() {
	wrapper.tasksClient.Close()
}

func (wrapper *redisClientWrapper) onTaskStarted(task *Task) error {
	err := wrapper.tasksClient.Chunks.Update(task.redisKey, func(task *tasks.ChunkTask) {
		task.TaskStatuses.Refnorm.Status = tasks.TaskStatusStarted
		task.TaskStatuses.Refnorm.Attempts += 1
		task.TaskStatuses.Refnorm.StartedAt = getFormattedNow()
		task.TaskStatuses.Refnorm.CompletedAt = nil
	})
	return err
}

func (wrapper *redisClientWrapper) onTaskCancelled(task *Task, errorMessages ...string) error {
	err := wrapper.tasksClient.Chunks.Update(task.redisKey, func(chunkTask *tasks.ChunkTask) {
		chunkTask.TaskStatuses.Refnorm.Status = tasks.TaskStatusCanceled
		chunkTask.TaskStatuses.Refnorm.StartedAt = getFormattedNow()
		chunkTask.TaskStatuses.Refnorm.CompletedAt = getFormattedNow()
		chunkTask.TaskStatuses.Refnorm.Attempts += 1
		chunkTask.TaskStatuses.Refnorm.ErrorMessages = append(
			chunkTask.TaskStatuses.Refnorm.ErrorMessages,
			errorMessages...,
		)
	})
	return err
}

func (wrapper *redisClientWrapper) onTaskExceededRetries(task *Task, maxRetries int) error {
	err := wrapper.tasksClient.Tables.Update(task.chunkTask.TableID, func(tableTask *tasks.TableTask) {
		if tableTask.FailedChunks == nil {
			tableTask.FailedChunks = map[string][]string{}
		}
		tableTask.FailedTasks = append(tableTask.FailedTasks, "refnorm")
		tableTask.FailedChunks[task.redisKey] = append(tableTask.FailedChunks[task.redisKey], "refnorm")
	})
	if err != nil {
		return err
	}
	err = wrapper.tasksClient.Chunks.Update(task.redisKey, func(chunkTask *tasks.ChunkTask) {
		chunkTask.TaskStatuses.Refnorm.Status = tasks.TaskStatusCompletedFailure
		chunkTask.TaskStatuses.Refnorm.StartedAt = getFormattedNow()
		chunkTask.TaskStatuses.Refnorm.CompletedAt = getFormattedNow()
		chunkTask.TaskStatuses.Refnorm.Attempts += 1
		chunkTask.TaskStatuses.Refnorm.ErrorMessages = append(
			chunkTask.TaskStatuses.Refnorm.ErrorMessages,
			fmt.Sprintf(
				"Task has exceeded retries. (Attempts: %d, max retries: %d )",
				chunkTask.TaskStatuses.Refnorm.Attempts,
				maxRetries,
			),
		)
	})
	return err
}

func (wrapper *redisClientWrapper) onTaskFailedWithError(task *Task, err error) error {
	return wrapper.tasksClient.Chunks.Update(task.redisKey, func(chunkTask *tasks.ChunkTask) {
		chunkTask.TaskStatuses.Refnorm.Status = tasks.TaskStatusFailed
		chunkTask.TaskStatuses.Refnorm.CompletedAt = getFormattedNow()
		chunkTask.TaskStatuses.Refnorm.ErrorMessages = append(chunkTask.TaskStatuses.Refnorm.ErrorMessages, err.Error())
	})
}

func (wrapper *redisClientWrapper) onTaskComplete(task *Task) error {
	return wrapper.tasksClient.Chunks.Update(task.redisKey, func(chunkTask *tasks.ChunkTask) {
		if !chunkTask.TaskStatuses.Refnorm.Status.Complete() {
			chunkTask.TaskStatuses.Refnorm.Status = tasks.TaskStatusCompletedSuccess
		}
		chunkTask.TaskStatuses.Refnorm.CompletedAt = getFormattedNow()
		chunkTask.TaskStatuses.Refnorm.ResultsFileKey = getResultsFileKey(task)
		chunkTask.TaskStatuses.Refnorm.SummaryFileKey = getSummaryFileKey(task)
	})
}

func (wrapper *redisClientWrapper) getChunkTask(redisKey string) (*tasks.ChunkTask, error) {
	return wrapper.tasksClient.Chunks.Get(redisKey)
}

func (wrapper *redisClientWrapper) getJobTask(task *Task) (*tasks.JobTask, error) {
	return wrapper.tasksClient.Jobs.GetCached(task.chunkTask.JobID)
}

func (wrapper *redisClientWrapper) getTableTask(task *Task) (*tasks.TableTaskCached, error) {
	return wrapper.tasksClient.Tables.GetCached(task.chunkTask.TableID)
}
