package ingestion

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThiagoRGoveia/csv-files/internal/models"
	"go.uber.org/zap"
)

// Outcome is what processing one candidate produced: either a result or the
// reason the candidate was skipped.
type Outcome struct {
	FileName string
	Result   *models.FileResult
	Err      *models.AppError
}

type JobFunc func(ctx context.Context, fileName string) Outcome

// Pool runs per-file jobs on a fixed number of goroutines.
type Pool struct {
	workers int
	logger  *zap.Logger
}

func NewPool(workers int, logger *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{workers: workers, logger: logger}
}

// Run applies fn to every file name and returns the outcomes indexed like
// fileNames, whatever order the jobs finished in. A panicking job only loses
// its own slot. Once ctx is done no new jobs are dispatched and the remaining
// slots stay empty.
func (p *Pool) Run(ctx context.Context, fileNames []string, fn JobFunc) []Outcome {
	outcomes := make([]Outcome, len(fileNames))
	if len(fileNames) == 0 {
		return outcomes
	}

	jobs := make(chan models.FileJob)
	var wg sync.WaitGroup

	workers := min(p.workers, len(fileNames))
	for i := 1; i <= workers; i++ {
		wg.Add(1)
		go p.worker(ctx, i, jobs, outcomes, fn, &wg)
	}

	p.dispatch(ctx, fileNames, jobs)
	wg.Wait()

	return outcomes
}

func (p *Pool) dispatch(ctx context.Context, fileNames []string, jobs chan<- models.FileJob) {
	defer close(jobs)
	for i, fileName := range fileNames {
		if !send(ctx, jobs, models.FileJob{Index: i, FileName: fileName}) {
			p.logger.Debug("Dispatch stopped", zap.Int("pending", len(fileNames)-i), zap.Error(ctx.Err()))
			return
		}
	}
}

// send prefers cancellation over handing out another job.
func send(ctx context.Context, jobs chan<- models.FileJob, job models.FileJob) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case jobs <- job:
		return true
	}
}

// worker owns outcomes[job.Index] for every job it receives, so slots are
// never written concurrently.
func (p *Pool) worker(ctx context.Context, workerID int, jobs <-chan models.FileJob, outcomes []Outcome, fn JobFunc, wg *sync.WaitGroup) {
	defer wg.Done()
	for job := range jobs {
		p.logger.Debug("Worker started file", zap.Int("worker", workerID), zap.String("file", job.FileName))
		outcomes[job.Index] = p.runJob(ctx, job, fn)
	}
}

func (p *Pool) runJob(ctx context.Context, job models.FileJob, fn JobFunc) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Recovered from panic while processing file", zap.String("file", job.FileName), zap.Any("panic", r))
			outcome = Outcome{
				FileName: job.FileName,
				Err: &models.AppError{
					FileName: job.FileName,
					Reason:   "panic",
					Message:  "unexpected failure while processing file",
					Err:      fmt.Errorf("panic: %v", r),
				},
			}
		}
	}()

	outcome = fn(ctx, job.FileName)
	outcome.FileName = job.FileName
	return outcome
}
