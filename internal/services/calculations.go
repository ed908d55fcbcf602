package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"metaladmin/internal/cache"
	"metaladmin/internal/calc"
	"metaladmin/internal/forms"
	"metaladmin/internal/upstream"
	"metaladmin/pkg/models"

	"github.com/rs/zerolog/log"
)

// RejectedCellsError is returned by Submit when some cell edits were not
// applicable; nothing is sent in that case.
type RejectedCellsError struct {
	Cells []calc.CellError
}

func (e *RejectedCellsError) Error() string {
	parts := make([]string, len(e.Cells))
	for i, c := range e.Cells {
		parts[i] = fmt.Sprintf("row %d %s: %s", c.Row, c.Column, c.Reason)
	}
	return "rejected cells: " + strings.Join(parts, "; ")
}

// TableResult is one calculation table after a batch of edits.
type TableResult struct {
	Type     models.ServiceKind `json:"type"`
	Table    interface{}        `json:"table"`
	Rejected []calc.CellError   `json:"rejected,omitempty"`
	Dirty    bool               `json:"dirty"`
}

type CalculationService struct {
	client *upstream.Client
	cache  *cache.Cache
	opts   cache.Options
}

// NewCalculationService reads the configuration through the cache with opts,
// which carry the longer staleness window of the calculation screens.
func NewCalculationService(client *upstream.Client, c *cache.Cache, opts cache.Options) *CalculationService {
	return &CalculationService{client: client, cache: c, opts: queryOptions(opts)}
}

func (s *CalculationService) Get(ctx context.Context) (*models.ServiceCalculationConfig, error) {
	return cache.Query(ctx, s.cache, scopedKey(ctx, ResourceCalculations, nil), s.opts, s.client.GetCalculationConfig)
}

// Preview applies changes to the current table of kind without saving them.
// raw is a calc.Changes of the table's labour type.
func (s *CalculationService) Preview(ctx context.Context, kind models.ServiceKind, raw json.RawMessage) (*TableResult, error) {
	edit, err := s.edit(ctx, kind, raw)
	if err != nil {
		return nil, err
	}
	return edit.result(kind), nil
}

// Submit applies changes and replaces the whole table upstream.
func (s *CalculationService) Submit(ctx context.Context, kind models.ServiceKind, raw json.RawMessage) (*TableResult, error) {
	edit, err := s.edit(ctx, kind, raw)
	if err != nil {
		return nil, err
	}
	if len(edit.rejected) > 0 {
		return nil, &RejectedCellsError{Cells: edit.rejected}
	}

	if err := s.client.SubmitCalculation(ctx, edit.payload); err != nil {
		log.Error().Err(err).Str("type", string(kind)).Msg("Calculation table rejected")
		return nil, err
	}
	s.cache.Invalidate(ResourceCalculations)
	log.Info().Str("type", string(kind)).Msg("Calculation table saved")

	res := edit.result(kind)
	res.Dirty = false
	return res, nil
}

type tableEdit struct {
	table    interface{}
	payload  interface{}
	rejected []calc.CellError
	dirty    bool
}

func (e *tableEdit) result(kind models.ServiceKind) *TableResult {
	return &TableResult{Type: kind, Table: e.table, Rejected: e.rejected, Dirty: e.dirty}
}

func (s *CalculationService) edit(ctx context.Context, kind models.ServiceKind, raw json.RawMessage) (*tableEdit, error) {
	cfg, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	switch kind {
	case models.ServiceRebar:
		return editTable(kind, cfg.Rebar, raw)
	case models.ServiceBending:
		return editTable(kind, cfg.Bending, raw)
	case models.ServiceCutting:
		return editTable(kind, cfg.Cutting, raw)
	}
	return nil, fmt.Errorf("unknown calculation type %q", kind)
}

func editTable[R calc.Row[R], L any](kind models.ServiceKind, detail models.ServiceDetail[R, L], raw json.RawMessage) (*tableEdit, error) {
	var changes calc.Changes[L]
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &changes); err != nil {
			return nil, fmt.Errorf("invalid calculation changes: %w", err)
		}
	}
	if errs := forms.Validate(changes); errs != nil {
		return nil, errs
	}

	e := calc.NewEditor(kind, detail)
	rejected, err := calc.Apply(e, changes)
	if err != nil {
		return nil, forms.FieldErrors{"margin": err.Error()}
	}
	return &tableEdit{
		table:    e.Detail(),
		payload:  e.Payload(),
		rejected: rejected,
		dirty:    e.Dirty(),
	}, nil
}
