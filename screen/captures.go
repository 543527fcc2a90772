package screen

import "sync"

// Captures is the captured-data dictionary, keyed by
// (origin-unit-name, capture-name) and written by the screen-imaging
// pipeline's capture step. It is safe for concurrent reads and writes.
type Captures struct {
	mu   sync.Mutex
	data map[string]map[string]string
}

// NewCaptures returns an empty Captures dictionary.
func NewCaptures() *Captures {
	return &Captures{data: make(map[string]map[string]string)}
}

func (c *Captures) set(origin, name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket, ok := c.data[origin]
	if !ok {
		bucket = make(map[string]string)
		c.data[origin] = bucket
	}
	bucket[name] = value
}

// Get returns the captured value for (origin, name), and whether it
// was present.
func (c *Captures) Get(origin, name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket, ok := c.data[origin]
	if !ok {
		return "", false
	}
	v, ok := bucket[name]
	return v, ok
}

// All returns a copy of every capture recorded for origin.
func (c *Captures) All(origin string) map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket := c.data[origin]
	out := make(map[string]string, len(bucket))
	for k, v := range bucket {
		out[k] = v
	}
	return out
}
