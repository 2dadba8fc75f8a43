package parallel

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// JobFunc processes one file. Errors are logged with the file attached and
// counted; they do not stop the batch.
type JobFunc func(logger *slog.Logger, file string) error

// Batch submits one job per file to worker, waits for all of them and logs
// the totals. It fails if any job failed.
func Batch(worker WorkerFunc, wait WaitFunc, files []string, job JobFunc) error {
	var processedCount, errCount atomic.Uint64
	for _, file := range files {
		worker(func(filePath string) func() {
			return func() {
				logger := slog.Default().With("file", filePath)
				if err := job(logger, filePath); err != nil {
					errCount.Add(1)
					logger.Error("failed", "error", err)
					return
				}
				processedCount.Add(1)
			}
		}(file))
	}

	wait(true)

	processed := processedCount.Load()
	errors := errCount.Load()
	slog.Info("stats", "processed", processed, "errors", errors,
		"total", processed+errors)

	if errors > 0 {
		return fmt.Errorf("error processing %d files", errors)
	}
	return nil
}
