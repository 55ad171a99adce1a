package worker

import (
	"text2phenotype.com/refnorm/s3client"
)

type s3Transactions interface {
	saveResultsFiles(task *Task, results string, summary string) error
	getChunkData(task *Task) ([]byte, error)
	close()
}

type s3ClientWrapper struct {
	s3Client *s3client.Client
}

func (wrapper *s3ClientWrapper) close() {
	wrapper.s3Client.Close()
}

func (wrapper *s3ClientWrapper) saveResultsFiles(task *Task, results string, summary string) error {
	if _, err := wrapper.s3Client.Upload(results, getResultsFileKey(task)); err != nil {
		return err
	}
	_, err := wrapper.s3Client.Upload(summary, getSummaryFileKey(task))
	return err
}

func (wrapper *s3ClientWrapper) getChunkData(task *Task) ([]byte, error) {
	return wrapper.s3Client.Download(task.chunkTask.ChunkFileKey)
}
