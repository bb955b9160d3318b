package food

import (
	"slices"
	"strings"

	"github.com/hpungsan/yada/internal/errors"
)

// BatchFailure reports a definition that could not be added.
type BatchFailure struct {
	ID  string
	Err error
}

// BatchResult summarizes an AddBatch call.
type BatchResult struct {
	Added  []string
	Failed []BatchFailure
}

// cycleError is passed up the DFS while unwinding a detected cycle.
type cycleError struct {
	path []string // first and last element are the same id
}

func (e *cycleError) Error() string { return "cycle: " + strings.Join(e.path, " -> ") }

func (e *cycleError) contains(id string) bool {
	return slices.Contains(e.path, id)
}

// AddBatch adds definitions that may reference each other in any order.
// Components inside the batch are added before the foods that use them.
// Definitions that form a cycle fail with CYCLIC_REFERENCE; definitions that
// depend on a failed or missing food fail with UNKNOWN_COMPONENT. Everything
// else is added.
func (c *Catalog) AddBatch(defs []Definition) BatchResult {
	const (
		unvisited = iota
		visiting
		done
		failed
	)

	var result BatchResult
	pending := make(map[string]Definition, len(defs))
	order := make([]string, 0, len(defs))
	failures := make(map[string]error)

	for _, def := range defs {
		id := strings.TrimSpace(def.ID)
		if _, dup := pending[id]; dup || c.Has(id) {
			result.Failed = append(result.Failed, BatchFailure{ID: id, Err: errors.NewDuplicateID(id)})
			continue
		}
		def.ID = id
		pending[id] = def
		order = append(order, id)
	}

	state := make(map[string]int, len(pending))

	fail := func(id string, err error) {
		state[id] = failed
		failures[id] = err
	}

	var visit func(id string, stack []string) error
	visit = func(id string, stack []string) error {
		switch state[id] {
		case done:
			return nil
		case failed:
			return failures[id]
		case visiting:
			start := slices.Index(stack, id)
			cycle := append(slices.Clone(stack[start:]), id)
			return &cycleError{path: cycle}
		}
		state[id] = visiting
		stack = append(stack, id)

		def := pending[id]
		for _, comp := range def.Components {
			cid := strings.TrimSpace(comp.FoodID)
			if _, inBatch := pending[cid]; !inBatch || cid == id {
				continue
			}
			err := visit(cid, stack)
			if err == nil {
				continue
			}
			if ce, ok := err.(*cycleError); ok && ce.contains(id) {
				fail(id, errors.NewCyclicReference(id, ce.path))
				return ce
			}
			yErr := errors.NewUnknownComponent(id, cid)
			fail(id, yErr)
			return yErr
		}

		if _, err := c.Add(def); err != nil {
			fail(id, err)
			return err
		}
		state[id] = done
		result.Added = append(result.Added, id)
		return nil
	}

	for _, id := range order {
		if state[id] == unvisited {
			_ = visit(id, nil)
		}
	}

	for _, id := range order {
		if err, ok := failures[id]; ok {
			result.Failed = append(result.Failed, BatchFailure{ID: id, Err: err})
		}
	}
	return result
}
