// Package complaints persists finalized complaints and exports them.
package complaints

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
)

// DefaultPrefix starts every complaint reference.
const DefaultPrefix = "CMP-"

// Complaint is one lodged grievance.
type Complaint struct {
	ID             int64  `db:"id" json:"id"`
	Number         string `db:"complaint_number" json:"complaint_number"`
	Description    string `db:"description" json:"description"`
	Category       string `db:"category" json:"category"`
	SubCategory    string `db:"sub_category" json:"sub_category"`
	AttachmentPath string `db:"attachment_path" json:"attachment_path,omitempty"`
	model.Details
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ListFilter narrows List. Query matches reference, description, category or name.
type ListFilter struct {
	Query  string
	Limit  int
	Offset int
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func (f ListFilter) normalized() ListFilter {
	f.Query = strings.TrimSpace(f.Query)
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// Repository stores complaints keyed by their reference.
type Repository interface {
	Save(ctx context.Context, c *Complaint) (string, error)
	Get(ctx context.Context, number string) (*Complaint, error)
	List(ctx context.Context, f ListFilter) ([]Complaint, error)
}

// NewReference formats prefix + YYYYMMDD + "-" + 8 upper-case hex characters.
func NewReference(prefix string, now time.Time) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	id := uuid.New()
	hex := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:8]
	return prefix + now.UTC().Format("20060102") + "-" + hex
}
