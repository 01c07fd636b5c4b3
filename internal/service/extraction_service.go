package service

import (
	"context"
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/docuflow/statement-extraction-service/internal/domain"
	"github.com/docuflow/statement-extraction-service/internal/extract"
	"github.com/docuflow/statement-extraction-service/internal/rasterize"
)

const parsedByVersion = "BankStatementParser v1.0"

// ModelClient is the single network dependency of the pipeline.
type ModelClient interface {
	Invoke(ctx context.Context, req extract.ExtractionRequest) (string, error)
}

// Config holds extraction pipeline settings.
type Config struct {
	AllowedExtensions []string // lower-case, without dot; default ["pdf"]
	MaxWorkers        int
	MaxImageDimension int
	JPEGQuality       int
}

// ExtractionService runs the extraction pipeline for one uploaded statement:
// rasterize, encode, build the prompt, invoke the model, validate the reply.
// Stages are strictly sequential within a request; the worker gate bounds how
// many requests run the pipeline concurrently.
type ExtractionService struct {
	rasterizer  rasterize.Rasterizer
	client      ModelClient
	cfg         Config
	workerQueue chan struct{}
	log         zerolog.Logger
}

// NewExtractionService creates the extraction orchestrator.
func NewExtractionService(r rasterize.Rasterizer, client ModelClient, cfg Config, logger zerolog.Logger) *ExtractionService {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 4
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = []string{"pdf"}
	}
	return &ExtractionService{
		rasterizer:  r,
		client:      client,
		cfg:         cfg,
		workerQueue: make(chan struct{}, cfg.MaxWorkers),
		log:         logger,
	}
}

// Process runs the full pipeline for one upload. The first stage failure is
// terminal; there is no partial recovery and no hidden retry around the model
// call.
func (s *ExtractionService) Process(ctx context.Context, pdf []byte, filename string) (*domain.BankStatementData, error) {
	if err := s.checkExtension(filename); err != nil {
		return nil, err
	}

	// Not a pipeline error: no upstream call happened, the gate was full.
	select {
	case s.workerQueue <- struct{}{}:
		defer func() { <-s.workerQueue }()
	case <-ctx.Done():
		s.log.Warn().Str("filename", filename).Msg("request gave up waiting for a worker")
		return nil, fmt.Errorf("acquire_worker: %w", ctx.Err())
	}

	start := time.Now()
	log := s.log.With().Str("filename", filename).Int("bytes", len(pdf)).Logger()
	log.Info().Msg("starting statement extraction")

	pages, err := s.rasterizer.Rasterize(ctx, pdf)
	if err != nil {
		return nil, s.fail(log, "rasterize", err)
	}
	log.Info().Int("pages", len(pages)).Msg("rasterized statement")

	encoded, err := extract.EncodeImages(pages, extract.EncodeOptions{
		MaxDimension: s.cfg.MaxImageDimension,
		JPEGQuality:  s.cfg.JPEGQuality,
	})
	if err != nil {
		return nil, s.fail(log, "encode_pages", err)
	}

	req := extract.BuildRequest(encoded)

	rawText, err := s.client.Invoke(ctx, req)
	if err != nil {
		return nil, s.fail(log, "invoke_model", err)
	}

	data, err := extract.Extract(rawText)
	if err != nil {
		return nil, s.fail(log, "extract_response", err)
	}

	s.stampMetadata(data, pdf, filename, time.Since(start))

	log.Info().
		Dur("duration", time.Since(start)).
		Int("transactions", len(data.TransactionDetail)).
		Msg("statement extraction complete")
	return data, nil
}

// checkExtension rejects unsupported uploads before any work is done.
func (s *ExtractionService) checkExtension(filename string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	for _, allowed := range s.cfg.AllowedExtensions {
		if ext == strings.ToLower(allowed) {
			return nil
		}
	}
	return extract.NewError(extract.KindUnsupportedFileType, "validate_upload",
		fmt.Errorf("file type %q is not supported (allowed: %s)", ext, strings.Join(s.cfg.AllowedExtensions, ", ")))
}

// stampMetadata fills the fields the model cannot know: file identity and
// parser provenance.
func (s *ExtractionService) stampMetadata(data *domain.BankStatementData, pdf []byte, filename string, elapsed time.Duration) {
	data.FileMetadata = domain.FileMetadata{
		FileName: filename,
		FileSize: humanize.Bytes(uint64(len(pdf))),
		FileHash: fmt.Sprintf("%x", sha256.Sum256(pdf)),
	}
	data.Metadata.ParsedBy = parsedByVersion
	data.Metadata.ParsedOn = time.Now().UTC()
	data.Metadata.ProcessingDuration = elapsed.Round(time.Millisecond).String()
	data.Metadata.Timezone = "UTC"
}

func (s *ExtractionService) fail(log zerolog.Logger, stage string, err error) error {
	kind, _ := extract.KindOf(err)
	log.Error().Err(err).Str("stage", stage).Str("kind", string(kind)).Msg("extraction stage failed")
	return fmt.Errorf("%s: %w", stage, err)
}
