// Package assembly integrates over whole meshes in parallel. Each worker owns
// its own FEValues per reference domain and walks a disjoint set of elements;
// workers share only the mesh and the quadrature rules, both read-only.
package assembly

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/notargets/gofe/fevalues"
	"github.com/notargets/gofe/mesh"
	"github.com/notargets/gofe/quadrature"
	"github.com/notargets/gofe/utils"
)

type Assembler struct {
	Mesh         *mesh.Mesh
	Order        int // quadrature degree
	Workers      int
	Flags        fevalues.UpdateFlags
	UsePartition bool // take the worker element sets from Mesh.EToP

	rules map[quadrature.Family]*quadrature.Rule
	stats Stats
}

type Option func(a *Assembler)

// Workers sets the number of worker goroutines, defaults to GOMAXPROCS
func Workers(n int) Option {
	return func(a *Assembler) { a.Workers = n }
}

// WithPartition makes workers follow the partition stored in the mesh
func WithPartition() Option {
	return func(a *Assembler) { a.UsePartition = true }
}

// WithFlags overrides the quantities computed per element
func WithFlags(f fevalues.UpdateFlags) Option {
	return func(a *Assembler) { a.Flags = f }
}

func New(m *mesh.Mesh, order int, opts ...Option) (a *Assembler) {
	a = &Assembler{
		Mesh:    m,
		Order:   order,
		Workers: runtime.GOMAXPROCS(0),
		Flags:   fevalues.UpdateDefault,
		rules:   make(map[quadrature.Family]*quadrature.Rule),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.Workers < 1 {
		a.Workers = 1
	}
	// one rule per reference domain, built up front so workers only read them
	for _, et := range m.ElementTypes {
		f := quadrature.FamilyOf(et)
		if _, ok := a.rules[f]; !ok {
			a.rules[f] = quadrature.For(et, order)
		}
	}
	return
}

// Rule returns the quadrature rule used for elements of type et
func (a *Assembler) Rule(et utils.ElementType) *quadrature.Rule {
	return a.rules[quadrature.FamilyOf(et)]
}

// elementSets returns the elements visited by each worker
func (a *Assembler) elementSets() (sets [][]int) {
	if a.UsePartition && len(a.Mesh.EToP) == a.Mesh.NumElements {
		return a.Mesh.PartitionElements()
	}
	nw := a.Workers
	if nw > a.Mesh.NumElements {
		nw = a.Mesh.NumElements
	}
	pm := utils.NewPartitionMap(nw, a.Mesh.NumElements)
	sets = make([][]int, pm.ParallelDegree)
	for n := range sets {
		sets[n] = pm.Indices(n)
	}
	return
}

// worker holds the per goroutine evaluation state
type worker struct {
	id       int
	elements []int
	fes      map[quadrature.Family]*fevalues.FEValues
	stats    WorkerStats

	// accumulators, merged after the join
	sum     float64
	vec     []float64
	dok     utils.DOK
	closure ClosureSummary

	err error // set by a kernel to stop the worker
}

func (w *worker) feValues(a *Assembler, et utils.ElementType) *fevalues.FEValues {
	f := quadrature.FamilyOf(et)
	fe, ok := w.fes[f]
	if !ok {
		fe = fevalues.New(et.GetDimension(), a.rules[f], a.Flags)
		w.fes[f] = fe
	}
	return fe
}

// kernel is called once per element after Reinit
type kernel func(w *worker, c mesh.Cell, fe *fevalues.FEValues)

// run visits every element once, in parallel. The first error in worker
// order is returned.
func (a *Assembler) run(init func(w *worker), kern kernel) (workers []*worker, err error) {
	var (
		sets  = a.elementSets()
		errs  = make([]error, len(sets))
		wg    sync.WaitGroup
		start = time.Now()
	)
	workers = make([]*worker, len(sets))
	for n := range sets {
		workers[n] = &worker{
			id:       n,
			elements: sets[n],
			fes:      make(map[quadrature.Family]*fevalues.FEValues),
			stats:    WorkerStats{ID: n, ElementTypes: make(map[utils.ElementType]int)},
		}
		if init != nil {
			init(workers[n])
		}
	}
	wg.Add(len(workers))
	for n := range workers {
		go func(w *worker) {
			defer wg.Done()
			for _, k := range w.elements {
				c := a.Mesh.Cell(k)
				fe := w.feValues(a, c.Type())
				if rerr := fe.Reinit(c); rerr != nil {
					errs[w.id] = fmt.Errorf("element %d: %w", k, rerr)
					return
				}
				w.stats.Reinits++
				w.stats.ElementTypes[c.Type()]++
				kern(w, c, fe)
				if w.err != nil {
					errs[w.id] = fmt.Errorf("element %d: %w", k, w.err)
					return
				}
			}
		}(workers[n])
	}
	wg.Wait()

	a.stats = Stats{Elapsed: time.Since(start)}
	for _, w := range workers {
		for _, fe := range w.fes {
			w.stats.ReferenceValues += fe.NumReferenceValues()
			w.stats.Mappings += fe.NumMappings()
		}
		a.stats.Workers = append(a.stats.Workers, w.stats)
	}
	for _, e := range errs {
		if e != nil {
			return nil, e
		}
	}
	return
}

// WorkerStats records what one worker did during the last pass
type WorkerStats struct {
	ID              int
	Reinits         int
	ElementTypes    map[utils.ElementType]int
	ReferenceValues int // cached reference tables over all of the worker's FEValues
	Mappings        int
}

type Stats struct {
	Workers []WorkerStats
	Elapsed time.Duration
}

// Stats describes the last assembly pass
func (a *Assembler) Stats() Stats { return a.stats }

func (s Stats) Print() {
	fmt.Printf("Assembly: %d workers, %v\n", len(s.Workers), s.Elapsed)
	for _, w := range s.Workers {
		types := make([]utils.ElementType, 0, len(w.ElementTypes))
		for et := range w.ElementTypes {
			types = append(types, et)
		}
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
		fmt.Printf("  Worker %d: %d elements,", w.ID, w.Reinits)
		for _, et := range types {
			fmt.Printf(" %s:%d", et, w.ElementTypes[et])
		}
		fmt.Printf(", cached reference tables %d, mappings %d\n", w.ReferenceValues, w.Mappings)
	}
}
