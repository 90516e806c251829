package logger

import (
	"sync"
	"time"
)

// Record is one captured log line.
type Record struct {
	Time    time.Time      `json:"time"`
	Level   Level          `json:"level"`
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// Collector keeps the most recent log records in a fixed-size ring so the
// diagnostics endpoint can expose them without touching log files.
type Collector struct {
	mu   sync.Mutex
	buf  []Record
	next int
	full bool
}

func NewCollector(capacity int) *Collector {
	if capacity <= 0 {
		capacity = 256
	}
	return &Collector{buf: make([]Record, capacity)}
}

func (c *Collector) Record(level Level, msg string, fields []Field) {
	rec := Record{
		Time:    time.Now().UTC(),
		Level:   level,
		Message: msg,
	}
	if len(fields) > 0 {
		rec.Fields = make(map[string]any, len(fields))
		for _, f := range fields {
			if err, ok := f.Value.(error); ok {
				rec.Fields[f.Key] = err.Error()
				continue
			}
			rec.Fields[f.Key] = f.Value
		}
	}

	c.mu.Lock()
	c.buf[c.next] = rec
	c.next = (c.next + 1) % len(c.buf)
	if c.next == 0 {
		c.full = true
	}
	c.mu.Unlock()
}

// Recent returns up to limit records, newest first.
func (c *Collector) Recent(limit int) []Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := c.next
	if c.full {
		size = len(c.buf)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]Record, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (c.next - 1 - i + len(c.buf)) % len(c.buf)
		out = append(out, c.buf[idx])
	}
	return out
}

// CountByLevel reports how many captured records exist per level.
func (c *Collector) CountByLevel() map[Level]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := c.next
	if c.full {
		size = len(c.buf)
	}
	counts := make(map[Level]int, 4)
	for i := 0; i < size; i++ {
		counts[c.buf[i].Level]++
	}
	return counts
}
