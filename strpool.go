package qplot

import "sync"

// naString is returned for indices which are not in the pool.
const naString = "--NA--"

// StringPool interns strings. String fields store the pool index of
// their values, so all frames derived from one CSV share a pool.
type StringPool struct {
	mu    sync.RWMutex
	strs  []string
	index map[string]int
}

func NewStringPool() *StringPool {
	return &StringPool{index: make(map[string]int)}
}

// Add interns s and returns its index.
func (sp *StringPool) Add(s string) int {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	i, ok := sp.index[s]
	if !ok {
		i = len(sp.strs)
		sp.strs = append(sp.strs, s)
		sp.index[s] = i
	}
	return i
}

// Find returns the index of s or -1.
func (sp *StringPool) Find(s string) int {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	if i, ok := sp.index[s]; ok {
		return i
	}
	return -1
}

func (sp *StringPool) Get(i int) string {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	if i < 0 || i >= len(sp.strs) {
		return naString
	}
	return sp.strs[i]
}
