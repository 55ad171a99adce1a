package tasks

import (
	"text2phenotype.com/refnorm/redis"
)

const JobsDB redis.DB = 1

type JobTask struct {
	UserCanceled        bool `json:"user_canceled"`
	StopTablesOnFailure bool `json:"stop_tables_on_failure"`
}

type JobTasks struct {
	client redis.Client
}

func (tasks JobTasks) GetCached(redisKey string) (*JobTask, error) {
	var task JobTask
	key := cachedPropertiesKey(redisKey)
	err := tasks.client.GetDocument(key, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}
