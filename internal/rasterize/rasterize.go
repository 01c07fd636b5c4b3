package rasterize

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog"

	"github.com/docuflow/statement-extraction-service/internal/extract"
)

const stageRasterize = "rasterize"

// Rasterizer converts raw PDF bytes into ordered page images.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdf []byte) ([]extract.PageImage, error)
}

// Config holds rasterization settings.
type Config struct {
	PdftoppmPath string // binary name or absolute path; if empty -> "pdftoppm"
	DPI          int    // render resolution, default 200
}

// Poppler renders PDF pages to JPEG via poppler's pdftoppm. The input is
// structurally validated with pdfcpu first so malformed uploads fail before
// an external process is spawned.
type Poppler struct {
	cfg Config
	log zerolog.Logger
}

// NewPoppler creates a pdftoppm-backed rasterizer.
func NewPoppler(cfg Config, logger zerolog.Logger) *Poppler {
	if cfg.PdftoppmPath == "" {
		cfg.PdftoppmPath = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	return &Poppler{cfg: cfg, log: logger}
}

// Rasterize implements Rasterizer. One JPEG per page, page order preserved.
func (p *Poppler) Rasterize(ctx context.Context, pdf []byte) ([]extract.PageImage, error) {
	pageCount, err := api.PageCount(bytes.NewReader(pdf), model.NewDefaultConfiguration())
	if err != nil {
		return nil, extract.NewError(extract.KindInvalidDocument, stageRasterize,
			fmt.Errorf("pdf validation: %w", err))
	}
	if pageCount == 0 {
		return nil, extract.NewError(extract.KindEmptyDocument, stageRasterize,
			fmt.Errorf("pdf contains no pages"))
	}

	tmpDir, err := os.MkdirTemp("", "statement-raster-*")
	if err != nil {
		return nil, extract.NewError(extract.KindInvalidDocument, stageRasterize, err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			p.log.Warn().Err(err).Str("dir", tmpDir).Msg("failed to remove raster temp dir")
		}
	}()

	inputPath := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(inputPath, pdf, 0o600); err != nil {
		return nil, extract.NewError(extract.KindInvalidDocument, stageRasterize, err)
	}

	// pdftoppm -jpeg -r <dpi> input.pdf <tmp>/page
	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, p.cfg.PdftoppmPath,
		"-jpeg", "-r", strconv.Itoa(p.cfg.DPI), inputPath, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, extract.NewError(extract.KindInvalidDocument, stageRasterize,
			fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(stderr.String())))
	}

	matches, err := filepath.Glob(prefix + "-*.jpg")
	if err != nil {
		return nil, extract.NewError(extract.KindInvalidDocument, stageRasterize, err)
	}
	sortPageFiles(matches)
	if len(matches) == 0 {
		return nil, extract.NewError(extract.KindEmptyDocument, stageRasterize,
			fmt.Errorf("pdftoppm produced no images"))
	}

	pages := make([]extract.PageImage, 0, len(matches))
	for i, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, extract.NewPageError(extract.KindInvalidDocument, stageRasterize, i, err)
		}
		pages = append(pages, extract.PageImage{Index: i, Data: data, Format: "jpeg"})
	}

	p.log.Debug().Int("pages", len(pages)).Int("dpi", p.cfg.DPI).Msg("rasterized pdf")
	return pages, nil
}

// sortPageFiles orders pdftoppm output numerically (page-1.jpg, page-2.jpg,
// ... page-10.jpg) so page order survives beyond nine pages.
func sortPageFiles(paths []string) {
	sort.Slice(paths, func(i, j int) bool {
		return pageNumber(paths[i]) < pageNumber(paths[j])
	})
}

func pageNumber(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	idx := strings.LastIndex(base, "-")
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(base[idx+1:])
	if err != nil {
		return 0
	}
	return n
}
