package ingestion

import (
	"context"
	"time"

	"github.com/ThiagoRGoveia/csv-files/internal/metrics"
	"github.com/ThiagoRGoveia/csv-files/internal/models"
	"github.com/ThiagoRGoveia/csv-files/internal/parser"
	"go.uber.org/zap"
)

// Fetcher is the upstream file API the service reads from.
type Fetcher interface {
	ListFiles(ctx context.Context) ([]string, error)
	FetchContent(ctx context.Context, fileName string) models.Content
}

type FilesService struct {
	fetcher Fetcher
	pool    *Pool
	logger  *zap.Logger
}

func NewFilesService(fetcher Fetcher, pool *Pool, logger *zap.Logger) *FilesService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilesService{
		fetcher: fetcher,
		pool:    pool,
		logger:  logger,
	}
}

// ListFiles returns the upstream listing unchanged.
func (s *FilesService) ListFiles(ctx context.Context) ([]string, error) {
	return s.fetcher.ListFiles(ctx)
}

// Process lists the upstream files, keeps those named fileName (all of them
// when fileName is empty) and returns every file with at least one valid line,
// in listing order. Only a listing failure or cancellation of ctx is returned
// as an error; any problem with a single file just leaves it out.
func (s *FilesService) Process(ctx context.Context, fileName string) ([]models.FileResult, error) {
	startTime := time.Now()

	// Step 1: the listing is the only hard failure point.
	files, err := s.fetcher.ListFiles(ctx)
	if err != nil {
		metrics.ProcessDurationSeconds.WithLabelValues("failure").Observe(time.Since(startTime).Seconds())
		return nil, err
	}

	// Step 2: apply the optional exact-match filter.
	candidates := selectCandidates(files, fileName)
	s.logger.Debug("Processing files",
		zap.Int("listed", len(files)),
		zap.Int("candidates", len(candidates)),
		zap.String("filter", fileName))

	// Step 3: fetch, decode and validate each candidate independently.
	outcomes := s.pool.Run(ctx, candidates, s.processFile)

	if err := ctx.Err(); err != nil {
		metrics.ProcessDurationSeconds.WithLabelValues("failure").Observe(time.Since(startTime).Seconds())
		return nil, err
	}

	// Step 4: merge in candidate order.
	results := make([]models.FileResult, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			metrics.FilesSkippedTotal.WithLabelValues(outcome.Err.Reason).Inc()
			s.logger.Debug("Skipping file", zap.String("file", outcome.FileName), zap.String("reason", outcome.Err.Error()))
			continue
		}
		if outcome.Result != nil {
			results = append(results, *outcome.Result)
		}
	}

	metrics.ProcessDurationSeconds.WithLabelValues("success").Observe(time.Since(startTime).Seconds())
	return results, nil
}

func (s *FilesService) processFile(ctx context.Context, fileName string) Outcome {
	content := s.fetcher.FetchContent(ctx, fileName)
	if !content.Available {
		return skip(fileName, string(content.Status), "content unavailable")
	}

	lines, rejected := validLines(parser.Decode(content.Data))
	metrics.RecordsTotal.WithLabelValues("valid").Add(float64(len(lines)))
	metrics.RecordsTotal.WithLabelValues("rejected").Add(float64(rejected))

	if len(lines) == 0 {
		return skip(fileName, "no_valid_lines", "no valid lines")
	}

	return Outcome{
		FileName: fileName,
		Result:   &models.FileResult{File: fileName, Records: lines},
	}
}

// validLines keeps the records that pass validation, in source order.
func validLines(records []models.RawRecord) ([]models.Line, int) {
	lines := make([]models.Line, 0, len(records))
	rejected := 0
	for _, record := range records {
		line, err := parser.ToLine(record)
		if err != nil {
			rejected++
			continue
		}
		lines = append(lines, line)
	}
	return lines, rejected
}

// selectCandidates keeps listing order and duplicates.
func selectCandidates(files []string, fileName string) []string {
	if fileName == "" {
		return files
	}
	candidates := make([]string, 0, 1)
	for _, file := range files {
		if file == fileName {
			candidates = append(candidates, file)
		}
	}
	return candidates
}

func skip(fileName, reason, message string) Outcome {
	return Outcome{
		FileName: fileName,
		Err:      &models.AppError{FileName: fileName, Reason: reason, Message: message},
	}
}
