package internal

import (
	"reflect"
	"sync"

	"github.com/lychee-technology/rowmap"
)

// PlanCache memoizes field plans per struct type. Cached plans are shared
// and must not be modified by callers.
type PlanCache struct {
	mu      sync.RWMutex
	tagName string
	plans   map[reflect.Type]*rowmap.FieldPlan
}

// NewPlanCache creates an empty plan cache for the given struct tag key.
func NewPlanCache(tagName string) *PlanCache {
	return &PlanCache{
		tagName: tagName,
		plans:   make(map[reflect.Type]*rowmap.FieldPlan),
	}
}

// Get returns the cached plan for recordType, building it on first use (thread-safe)
func (c *PlanCache) Get(recordType reflect.Type) (*rowmap.FieldPlan, error) {
	t, err := recordStructType(recordType)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	plan, ok := c.plans[t]
	c.mu.RUnlock()
	if ok {
		return plan, nil
	}

	plan, err = BuildFieldPlan(t, c.tagName)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.plans[t]; ok {
		return existing, nil
	}
	c.plans[t] = plan
	return plan, nil
}

func (c *PlanCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.plans)
}
