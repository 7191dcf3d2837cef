package weather

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/koreawook/ClockApp/internal/state"
)

// cacheFile is the on-disk layout: {"timestamp": "...", "data": {...}}.
type cacheFile struct {
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Cache stores the last fetched payload together with its fetch time.
// The payload is kept as raw bytes so a hit returns exactly what was saved.
type Cache struct {
	mu   sync.Mutex
	path string
	ttl  time.Duration
	now  func() time.Time
}

// NewCache creates a cache at path whose entries expire after ttl.
func NewCache(path string, ttl time.Duration) *Cache {
	return &Cache{path: path, ttl: ttl, now: time.Now}
}

// SetClock overrides the time source.
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}

// Path returns the cache file location.
func (c *Cache) Path() string {
	return c.path
}

// Entry is a decoded cache file.
type Entry struct {
	FetchedAt time.Time
	Data      json.RawMessage
}

// Age reports how old the entry is at now.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}

// Read returns the stored entry regardless of age.
func (c *Cache) Read() (Entry, state.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, res := state.ReadFile(c.path)
	if res.Outcome != state.Loaded {
		return Entry{}, res
	}

	var f cacheFile
	if err := json.Unmarshal(data, &f); err != nil {
		return Entry{}, state.CorruptResult(err)
	}
	ts, err := time.Parse(time.RFC3339Nano, f.Timestamp)
	if err != nil {
		return Entry{}, state.CorruptResult(fmt.Errorf("bad cache timestamp %q: %w", f.Timestamp, err))
	}
	if len(f.Data) == 0 || string(f.Data) == "null" {
		return Entry{}, state.CorruptResult(fmt.Errorf("cache has no data"))
	}

	// The file is indented; callers get the compact form they wrote.
	var buf bytes.Buffer
	if err := json.Compact(&buf, f.Data); err != nil {
		return Entry{}, state.CorruptResult(err)
	}
	return Entry{FetchedAt: ts, Data: buf.Bytes()}, res
}

// Fresh returns the cached payload when it is younger than the TTL.
func (c *Cache) Fresh() (Entry, bool) {
	e, res := c.Read()
	if res.Outcome != state.Loaded {
		return Entry{}, false
	}
	age := e.Age(c.now())
	if age < 0 || age >= c.ttl {
		return Entry{}, false
	}
	return e, true
}

// Write replaces the cache with data stamped at the current time.
func (c *Cache) Write(data json.RawMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := cacheFile{
		Timestamp: c.now().Format(time.RFC3339Nano),
		Data:      data,
	}
	return state.WriteJSON(c.path, f, "  ")
}
