package bulkupdate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"metaladmin/internal/telemetry"
	"metaladmin/pkg/models"

	"github.com/rs/zerolog/log"
)

// ProductsResource is the cache resource dropped after a bulk update.
const ProductsResource = "products"

// Uploader submits the spreadsheet in one request.
type Uploader interface {
	BulkUpdateProducts(ctx context.Context, filename, contentType string, r io.Reader) (*models.BulkUpdateResult, error)
}

// Invalidator drops cached data of a resource.
type Invalidator interface {
	Invalidate(resource string)
}

// Pipeline runs detect, preflight, submit and reconcile for one upload.
type Pipeline struct {
	uploader    Uploader
	invalidator Invalidator
}

func NewPipeline(uploader Uploader, invalidator Invalidator) *Pipeline {
	return &Pipeline{uploader: uploader, invalidator: invalidator}
}

// Run processes f. Unsupported or empty files fail before anything is sent.
// A file the preflight cannot read is still submitted: the server decides.
// Transport and server errors are returned as-is with no partial report.
func (p *Pipeline) Run(ctx context.Context, f File) (*Report, error) {
	format, err := Detect(f)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	sheet, preflightErr := Preflight(format, f.Data)
	if preflightErr != nil {
		log.Warn().Err(preflightErr).Str("file", f.Name).Msg("bulk update preflight failed, submitting anyway")
	}

	res, err := p.uploader.BulkUpdateProducts(ctx, f.Name, UploadContentType(format), bytes.NewReader(f.Data))
	if err != nil {
		log.Error().Err(err).Str("file", f.Name).Msg("bulk update submission failed")
		return nil, fmt.Errorf("submitting bulk update: %w", err)
	}

	report := Reconcile(*res, sheet)
	if preflightErr != nil {
		report.Warnings = append(report.Warnings, "the file could not be read locally; counts come from the server only")
	}

	if p.invalidator != nil {
		p.invalidator.Invalidate(ProductsResource)
	}

	telemetry.BulkUpdateRows.WithLabelValues("success").Add(float64(report.Success))
	telemetry.BulkUpdateRows.WithLabelValues("failed").Add(float64(report.Failed))
	telemetry.BulkUpdateRows.WithLabelValues("skipped").Add(float64(report.Skipped))

	log.Info().
		Str("file", f.Name).
		Str("format", string(format)).
		Int("total", report.Total).
		Int("success", report.Success).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Bool("consistent", report.Consistent).
		Dur("duration", time.Since(start)).
		Msg("bulk update finished")

	return &report, nil
}
