package worker

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"text2phenotype.com/refnorm/pipeline"
	"text2phenotype.com/refnorm/tabular"
	"text2phenotype.com/refnorm/tasks"
	"text2phenotype.com/refnorm/utils"
)

type Message struct {
	WorkType string `json:"work_type"`
	RedisKey string `json:"redis_key"`
	Sender   string `json:"sender"`
	Version  string `json:"version"`
}

type Task struct {
	delivery   *amqp.Delivery
	chunkTask  *tasks.ChunkTask
	message    *Message
	redisKey   string
	taskLogger *zerolog.Logger
}

func (worker *Worker) processMessage(delivery *amqp.Delivery) {
	task, err := worker.createTask(delivery)
	rejectLogger := worker.wrkLogger.With().Str("message_id", delivery.MessageId).Logger()
	if err != nil {
		worker.wrkLogger.Err(err).
			Str("message_id", delivery.MessageId).
			Str("tid", string(delivery.Body)).
			Msg("Failed to create task for delivery")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.processTask(task); err != nil {
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.pingSequencer(task, *task.message); err != nil {
		task.taskLogger.Err(err).Msg("Got error while sending message to sequencer queue")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.acknowledgeDelivery(delivery); err != nil {
		task.taskLogger.Err(err).Msg("Failed to acknowledge delivery")
	}
	task.taskLogger.Info().Msg("Finished processing RMQ message")
}

func (worker *Worker) createTask(delivery *amqp.Delivery) (*Task, error) {
	var message Message
	err := json.Unmarshal(delivery.Body, &message)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal message, got error %w", err)
	}
	chunkTask, err := worker.redis.getChunkTask(message.RedisKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk task for message, got error %w", err)
	}
	taskLogger := worker.wrkLogger.With().Str("tid", message.RedisKey).Logger()
	task := Task{
		delivery:   delivery,
		chunkTask:  chunkTask,
		redisKey:   message.RedisKey,
		message:    &message,
		taskLogger: &taskLogger,
	}
	return &task, nil
}

func (worker *Worker) processTask(task *Task) error {
	shouldPerform, err := worker.shouldPerformTask(task)
	if err != nil {
		task.taskLogger.Err(err).
			Msg("Got error while trying to decide whether to run task")
		return err
	}
	if !shouldPerform {
		return nil
	}
	if err = worker.redis.onTaskStarted(task); err != nil {
		task.taskLogger.Err(err).Msg("Failed to update task info")
		return fmt.Errorf("failed to update TaskInfo: %w", err)
	}
	if err = worker.runPipeline(task); err != nil {
		task.taskLogger.Err(err).Msg("Got error while running pipeline")
		if err = worker.redis.onTaskFailedWithError(task, err); err != nil {
			return err
		}
		return nil
	}
	task.taskLogger.Info().Msg("Saved results, marking task as complete")
	if err = worker.redis.onTaskComplete(task); err != nil {
		task.taskLogger.Err(err).Msg("Got error while trying to mark task as complete")
		return err
	}
	return nil
}

func (worker *Worker) runPipeline(task *Task) (err error) {
	defer utils.RecoverWithError(&err)
	task.taskLogger.Info().Msgf("Processing message from RMQ, attempt # %d", task.chunkTask.TaskStatuses.Refnorm.Attempts)
	data, err := worker.s3.getChunkData(task)
	if err != nil {
		task.taskLogger.Err(err).Caller().Msg("Could not fetch chunk data from s3")
		return fmt.Errorf("failed fetch data from s3: %w", err)
	}
	table, err := tabular.Decode(bytes.NewReader(data), tabular.Options{})
	if err != nil {
		task.taskLogger.Err(err).Msg("Could not parse chunk data as CSV")
		return fmt.Errorf("failed to parse chunk data: %w", err)
	}
	request := pipeline.Request{
		Tid:    task.redisKey,
		Table:  table,
		Fields: tabular.DefaultFieldCandidates().DetectFields(table.Fields),
	}
	result, ok := <-worker.ppln(request)
	if !ok {
		task.taskLogger.Error().Msg("Pipeline channel was closed before returning anything")
		return errors.New("pipeline channel was closed before returning anything")
	}
	if result.Err != nil {
		return result.Err
	}
	task.taskLogger.Info().Msg("Finished pipeline, saving results to s3")
	var results bytes.Buffer
	if err = tabular.Encode(&results, result.Table); err != nil {
		task.taskLogger.Err(err).Msg("Got error while encoding results")
		return err
	}
	summary, err := json.Marshal(result.Summary)
	if err != nil {
		task.taskLogger.Err(err).Msg("Got error while encoding summary")
		return err
	}
	if err = worker.s3.saveResultsFiles(task, results.String(), string(summary)); err != nil {
		task.taskLogger.Err(err).Msg("Got error while trying to save results")
		return err
	}
	return nil
}

func (worker *Worker) shouldPerformTask(task *Task) (bool, error) {
	taskInfo := task.chunkTask.TaskStatuses.Refnorm
	taskLogger := task.taskLogger

	if taskInfo.Status.Complete() {
		taskLogger.Info().Msg("Task is already done. (might indicate issue acking message with RMQ). Sending back to Sequencer.")
		return false, nil
	}
	taskJob, err := worker.redis.getJobTask(task)
	if err != nil {
		taskLogger.Err(err).Msg("Failed to query job task for chunk task")
		return false, err
	}
	if taskJob.UserCanceled {
		taskLogger.Info().Msg("Job was canceled, no need to perform this task. Sending back to Sequencer.")
		err := worker.redis.onTaskCancelled(task)
		return false, err
	}
	var tableTask *tasks.TableTaskCached
	if taskJob.StopTablesOnFailure {
		tableTask, err = worker.redis.getTableTask(task)
		if err != nil {
			return false, err
		}
		if tableTask == nil {
			return false, fmt.Errorf("table task not found")
		}
	}
	if taskJob.StopTablesOnFailure && len(tableTask.FailedTasks) > 0 {
		failedTask := tableTask.FailedTasks[0]
		taskLogger.Info().Msgf("Task is not required because the \"%s\" already completed failure "+
			"and table won't be processed successfully. Sending back to Sequencer.", failedTask)
		err := worker.redis.onTaskCancelled(
			task,
			fmt.Sprintf(
				"Task was marked as \"%s\" because of the current table has failed "+
					"in the \"%s\" worker and won't be processed successfully.",
				tasks.TaskStatusCanceled,
				failedTask,
			),
		)
		return false, err
	}
	if taskInfo.Attempts >= worker.config.TaskMaxRetries {
		taskLogger.Info().Msg("Normalization task has exceeded retries. Sending back to Sequencer.")
		err = worker.redis.onTaskExceededRetries(task, worker.config.TaskMaxRetries)
		return false, err
	}
	return true, nil
}
