package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/newthinker/tradando/internal/backtest"
	"github.com/newthinker/tradando/internal/core"
)

const reportsRoot = "reports"

// ReportStore saves backtest reports as JSON documents under
// reports/<strategy>/<symbol>/<id>.json
type ReportStore struct {
	storage Storage
	newID   func() string
}

// NewReportStore wraps a Storage backend
func NewReportStore(s Storage) *ReportStore {
	return &ReportStore{storage: s, newID: uuid.NewString}
}

// ReportPath returns the storage path for a report id
func ReportPath(strategyName, symbol, id string) string {
	return path.Join(reportsRoot, pathSegment(strategyName), pathSegment(symbol), id+".json")
}

// pathSegment keeps symbols like BTC/USDT in a single path element
func pathSegment(s string) string {
	s = strings.NewReplacer("/", "_", "\\", "_").Replace(strings.TrimSpace(s))
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}

// Save writes report under a fresh id and returns its path
func (s *ReportStore) Save(ctx context.Context, report *backtest.Report) (string, error) {
	if report == nil {
		return "", core.WrapError(core.ErrStorageFailed, fmt.Errorf("nil report"))
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", core.WrapError(core.ErrStorageFailed, fmt.Errorf("encoding report: %w", err))
	}

	p := ReportPath(report.Strategy, report.Symbol, s.newID())
	if err := s.storage.Write(ctx, p, data); err != nil {
		return "", err
	}
	return p, nil
}

// Load reads the report stored at p
func (s *ReportStore) Load(ctx context.Context, p string) (*backtest.Report, error) {
	data, err := s.storage.Read(ctx, p)
	if err != nil {
		return nil, err
	}
	var report backtest.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("decoding %s: %w", p, err))
	}
	return &report, nil
}

// List returns stored report paths, optionally narrowed to one strategy
// and symbol. Empty filters match everything.
func (s *ReportStore) List(ctx context.Context, strategyName, symbol string) ([]string, error) {
	prefix := reportsRoot
	if strategyName != "" {
		prefix = path.Join(prefix, pathSegment(strategyName))
		if symbol != "" {
			prefix = path.Join(prefix, pathSegment(symbol))
		}
	}

	all, err := s.storage.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(all))
	for _, p := range all {
		if !strings.HasSuffix(p, ".json") {
			continue
		}
		if symbol != "" && strategyName == "" && path.Base(path.Dir(p)) != pathSegment(symbol) {
			continue
		}
		paths = append(paths, p)
	}
	return paths, nil
}
