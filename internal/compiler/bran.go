package compiler

import (
	"fmt"
	"sync"

	"github.com/rs/xid"
	"golang.org/x/sync/singleflight"

	"parlay/internal/ast"
	"parlay/internal/phase"
	"parlay/internal/relation"
)

// Bran is one memoized kernel specialization for a (kernel,
// relation|subset, backend) triple (spec.md §3, §9): "created on first
// invocation of that triple, retained process-lifetime."
type Bran struct {
	Kernel   *ast.Function
	Universe *relation.Relation
	Domain   *relation.Subset // nil: domain == universe
	Backend  string

	Phase *phase.Result
	Germ  *Germ

	// TaskHandle is a short sortable id distinct from the compile
	// session's uuid, shown in report.BranTable and TraceKey (DOMAIN
	// STACK: rs/xid). The driver does not use it.
	TaskHandle xid.ID
}

// branKey is the (kernel_id, relation_id|subset_id, backend) triple
// spec.md §9's memoization-cache section names for the Bran seedbank.
type branKey struct {
	kernelID  string
	domainID  uint64
	backend   string
}

func keyFor(fn *ast.Function, universe *relation.Relation, domain *relation.Subset, backend string) branKey {
	domainID := universe.ID()
	if domain != nil {
		domainID = domain.ID()
	}
	return branKey{kernelID: fn.Name, domainID: domainID, backend: backend}
}

// BranCache is the process-wide Bran seedbank (spec.md §9's "Bran
// seedbank" memoization cache; eviction discipline = none, build
// artifacts live for the process lifetime). A singleflight.Group
// collapses concurrent first-compiles of the same triple so embedding
// the compiler in a concurrent host (e.g. a language server) never
// double-specializes one kernel (DOMAIN STACK: golang.org/x/sync).
type BranCache struct {
	mu    sync.RWMutex
	brans map[branKey]*Bran
	group singleflight.Group
}

func NewBranCache() *BranCache {
	return &BranCache{brans: map[branKey]*Bran{}}
}

// GetOrCompile returns the cached Bran for the triple, compiling it via
// build on the first call and collapsing concurrent callers of the
// same triple into a single build.
func (c *BranCache) GetOrCompile(fn *ast.Function, universe *relation.Relation, domain *relation.Subset, backend string, build func() (*Bran, error)) (*Bran, error) {
	key := keyFor(fn, universe, domain, backend)

	c.mu.RLock()
	if b, ok := c.brans[key]; ok {
		c.mu.RUnlock()
		return b, nil
	}
	c.mu.RUnlock()

	traceKey := fmt.Sprintf("%s|%d|%s", key.kernelID, key.domainID, key.backend)
	v, err, _ := c.group.Do(traceKey, func() (interface{}, error) {
		c.mu.RLock()
		if b, ok := c.brans[key]; ok {
			c.mu.RUnlock()
			return b, nil
		}
		c.mu.RUnlock()

		b, err := build()
		if err != nil {
			return nil, err
		}
		b.TaskHandle = xid.New()

		c.mu.Lock()
		c.brans[key] = b
		c.mu.Unlock()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Bran), nil
}

// TraceKey renders the Bran's cache triple plus its task handle as one
// string. The CLI's -v output prints report.BranTable, not TraceKey.
func (b *Bran) TraceKey() string {
	domainID := b.Universe.ID()
	if b.Domain != nil {
		domainID = b.Domain.ID()
	}
	return fmt.Sprintf("%s|%d|%s|task=%s", b.Kernel.Name, domainID, b.Backend, b.TaskHandle.String())
}
