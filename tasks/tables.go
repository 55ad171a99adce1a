package tasks

import (
	"encoding/json"
	"sync"

	jsonpatch "github.com/evanphx/json-patch"

	"text2phenotype.com/refnorm/redis"
)

const TablesDB redis.DB = 0

// TableTask tracks processing state of one source table across its chunks.
type TableTask struct {
	FailedTasks  []string            `json:"failed_tasks"`
	FailedChunks map[string][]string `json:"failed_chunks"`
}

type TableTaskCached struct {
	TableInfo   map[string]interface{} `json:"table_info"`
	FailedTasks []string               `json:"failed_tasks"`
	JobID       string                 `json:"job_id"`
	WorkType    string                 `json:"work_type"`
}

type TableTasks struct {
	client redis.Client
}

func (tasks TableTasks) Get(redisKey string) (*TableTask, error) {
	var task TableTask
	err := tasks.client.GetDocument(redisKey, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (tasks TableTasks) GetCached(redisKey string) (*TableTaskCached, error) {
	var task TableTaskCached
	err := tasks.client.GetDocument(cachedPropertiesKey(redisKey), &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Update applies updateFunc under the table lock and writes both the task
// document and its cached properties copy.
func (tasks TableTasks) Update(redisKey string, updateFunc func(task *TableTask)) (err error) {
	releaseLock, err := tasks.client.Lock(redisKey)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = releaseLock()
			return
		}
		err = releaseLock()
	}()

	cachedKey := cachedPropertiesKey(redisKey)
	stored, err := tasks.client.Get(redisKey)
	if err != nil {
		return err
	}
	storedCached, err := tasks.client.Get(cachedKey)
	if err != nil {
		return err
	}

	var task TableTask
	if err = json.Unmarshal(stored, &task); err != nil {
		return err
	}
	updateFunc(&task)

	var cached TableTaskCached
	if err = json.Unmarshal(storedCached, &cached); err != nil {
		return err
	}
	cached.FailedTasks = task.FailedTasks

	merged, err := mergeDocument(stored, &task)
	if err != nil {
		return err
	}
	mergedCached, err := mergeDocument(storedCached, &cached)
	if err != nil {
		return err
	}

	errChan := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		errChan <- tasks.client.Set(redisKey, merged)
		wg.Done()
	}()
	go func() {
		errChan <- tasks.client.Set(cachedKey, mergedCached)
		wg.Done()
	}()
	wg.Wait()
	close(errChan)
	for err = range errChan {
		if err != nil {
			return err
		}
	}
	return nil
}

// mergeDocument writes doc over the stored JSON as a merge patch so fields
// outside the doc type survive.
func mergeDocument(stored []byte, doc interface{}) ([]byte, error) {
	patch, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return jsonpatch.MergePatch(stored, patch)
}
