package tasks

import (
	"fmt"

	"text2phenotype.com/refnorm/redis"
)

type Client struct {
	Tables TableTasks
	Chunks ChunkTasks
	Jobs   JobTasks
}

// NewClient is a preferred way for working with TaskInfos
func NewClient() (Client, error) {
	tablesRedisClient, err := redis.NewClient(TablesDB)
	if err != nil {
		return Client{}, err
	}
	jobsRedisClient, err := redis.NewClient(JobsDB)
	if err != nil {
		return Client{}, err
	}
	chunksRedisClient, err := redis.NewClient(ChunksDB)
	if err != nil {
		return Client{}, err
	}
	return Client{
		Tables: TableTasks{client: tablesRedisClient},
		Jobs:   JobTasks{client: jobsRedisClient},
		Chunks: ChunkTasks{client: chunksRedisClient},
	}, nil
}

func (client *Client) Close() {
	_ = client.Chunks.client.Close()
	_ = client.Tables.client.Close()
	_ = client.Jobs.client.Close()
}

func cachedPropertiesKey(redisKey string) string {
	return fmt.Sprintf("%s-cached-properties", redisKey)
}
