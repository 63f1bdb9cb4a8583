// Package report persists pipeline artifacts. Rendering and
// persistence are terminal, optional steps: a sink failure never
// discards already-computed results.
package report

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/ivanoskov/expense_forecast/internal/model"
)

// Sink receives rendered charts and the evaluation table. The pipeline
// runs headless against a no-op sink in tests.
type Sink interface {
	WriteChart(name string, png []byte) error
	WriteEvaluation(eval *model.Evaluation) error
}

// FileSink writes artifacts into a directory. Each write is an
// independent, idempotent step; a failed chart write does not block
// the evaluation write or vice versa.
type FileSink struct {
	dir    string
	logger *slog.Logger
}

// NewFileSink creates a sink rooted at dir, creating it if needed.
func NewFileSink(dir string, logger *slog.Logger) (*FileSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating output directory")
	}
	return &FileSink{dir: dir, logger: logger}, nil
}

// WriteChart writes a rendered chart as <dir>/<name>.png. A nil chart
// (nothing to draw) is skipped silently.
func (s *FileSink) WriteChart(name string, png []byte) error {
	if len(png) == 0 {
		return nil
	}
	path := filepath.Join(s.dir, name+".png")
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return errors.Wrapf(err, "writing chart %s", name)
	}
	s.logger.Info("chart written", "path", path, "bytes", len(png))
	return nil
}

// WriteEvaluation writes the holdout comparison as evaluation.csv with
// one {date, actual, predicted} row per joined month plus the MAE.
func (s *FileSink) WriteEvaluation(eval *model.Evaluation) error {
	path := filepath.Join(s.dir, "evaluation.csv")
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating evaluation report")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"Date", "Actual", "Predicted"}); err != nil {
		return errors.Wrap(err, "writing evaluation header")
	}
	for _, row := range eval.Rows {
		record := []string{
			row.Date.Format("2006-01-02"),
			strconv.FormatFloat(row.Actual, 'f', 2, 64),
			strconv.FormatFloat(row.Predicted, 'f', 2, 64),
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrap(err, "writing evaluation row")
		}
	}
	if err := writer.Write([]string{"MAE", strconv.FormatFloat(eval.MAE, 'f', 2, 64), ""}); err != nil {
		return errors.Wrap(err, "writing evaluation summary")
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, "flushing evaluation report")
	}

	s.logger.Info("evaluation written", "path", path, "rows", len(eval.Rows))
	return nil
}

// NullSink discards everything. Used for headless runs.
type NullSink struct{}

func (NullSink) WriteChart(string, []byte) error         { return nil }
func (NullSink) WriteEvaluation(*model.Evaluation) error { return nil }
