package complaints

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
	logx "github.com/Chative-core-poc-v1/intake/pkg/logger"
)

// Record is what the dialogue hands over on submission.
type Record struct {
	Description    string
	Category       string
	SubCategory    string
	AttachmentPath string
	Details        model.Details
}

// Persister lodges a Record and always yields a reference. A failed save is
// logged and the reference is still returned so the user is never stuck.
type Persister struct {
	repo    Repository
	prefix  string
	now     func() time.Time
	dataset *DatasetWriter
}

type PersisterOption func(*Persister)

func WithPrefix(prefix string) PersisterOption {
	return func(p *Persister) {
		if prefix != "" {
			p.prefix = prefix
		}
	}
}

func WithClock(now func() time.Time) PersisterOption {
	return func(p *Persister) { p.now = now }
}

// WithDataset appends every lodged description to a training CSV.
func WithDataset(w *DatasetWriter) PersisterOption {
	return func(p *Persister) { p.dataset = w }
}

func NewPersister(repo Repository, opts ...PersisterOption) *Persister {
	p := &Persister{repo: repo, prefix: DefaultPrefix, now: time.Now}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Persister) Persist(ctx context.Context, rec Record) string {
	ref := NewReference(p.prefix, p.now())
	c := &Complaint{
		Number:         ref,
		Description:    rec.Description,
		Category:       rec.Category,
		SubCategory:    rec.SubCategory,
		AttachmentPath: rec.AttachmentPath,
		Details:        rec.Details,
	}
	if p.repo == nil {
		logx.Warn().Str("complaint_number", ref).Msg("No complaint repository configured; reference not stored")
		return ref
	}
	if _, err := p.repo.Save(ctx, c); err != nil {
		logx.Error().Err(err).Str("complaint_number", ref).Msg("Failed to save complaint")
		return ref
	}
	logx.Info().Str("complaint_number", ref).Str("category", rec.Category).Msg("Complaint saved")

	if p.dataset != nil && rec.Category != "" && rec.SubCategory != "" {
		if err := p.dataset.Append(rec.Description, rec.Category, rec.SubCategory); err != nil {
			logx.Warn().Err(err).Str("path", p.dataset.Path()).Msg("Failed to append training row")
		}
	}
	return ref
}

var datasetHeader = []string{"complaint_text", "category", "sub_category"}

// DatasetWriter appends labelled complaints to a CSV used for retraining.
type DatasetWriter struct {
	mu   sync.Mutex
	path string
}

func NewDatasetWriter(path string) *DatasetWriter {
	return &DatasetWriter{path: path}
}

func (w *DatasetWriter) Path() string { return w.path }

func (w *DatasetWriter) Append(text, category, subCategory string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if dir := filepath.Dir(w.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("dataset dir: %w", err)
		}
	}
	_, statErr := os.Stat(w.path)
	needHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needHeader {
		if err := cw.Write(datasetHeader); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{text, category, subCategory}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
