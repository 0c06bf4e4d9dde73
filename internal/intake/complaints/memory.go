package complaints

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	errx "github.com/Chative-core-poc-v1/intake/internal/core/error"
)

// MemoryRepository keeps complaints in process; used in development and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	rows  []Complaint
	index map[string]int
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{index: map[string]int{}, now: time.Now}
}

var _ Repository = (*MemoryRepository)(nil)

func (m *MemoryRepository) Save(_ context.Context, c *Complaint) (string, error) {
	if c == nil || c.Number == "" {
		return "", fmt.Errorf("complaint without reference")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.index[c.Number]; dup {
		return "", fmt.Errorf("complaint %s already exists", c.Number)
	}
	c.ID = int64(len(m.rows) + 1)
	c.CreatedAt = m.now().UTC()
	m.index[c.Number] = len(m.rows)
	m.rows = append(m.rows, *c)
	return c.Number, nil
}

func (m *MemoryRepository) Get(_ context.Context, number string) (*Complaint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.index[number]
	if !ok {
		return nil, errx.NotFound(errx.DBNotFoundMessage)
	}
	c := m.rows[i]
	return &c, nil
}

// List returns newest first, like the SQL implementation.
func (m *MemoryRepository) List(_ context.Context, f ListFilter) ([]Complaint, error) {
	f = f.normalized()
	q := strings.ToLower(f.Query)

	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Complaint{}
	skipped := 0
	for i := len(m.rows) - 1; i >= 0 && len(out) < f.Limit; i-- {
		c := m.rows[i]
		if q != "" && !matches(c, q) {
			continue
		}
		if skipped < f.Offset {
			skipped++
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func matches(c Complaint, q string) bool {
	for _, s := range []string{c.Number, c.Description, c.Category, c.FullName} {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

// Len reports the number of stored complaints.
func (m *MemoryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}
