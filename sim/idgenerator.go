package sim

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator hands out the IDs that name tasks and progress bars.
type IDGenerator interface {
	Generate() string
}

var (
	idGenMutex sync.Mutex
	idGen      atomic.Value
)

func selectIDGenerator(g IDGenerator) {
	idGenMutex.Lock()
	defer idGenMutex.Unlock()

	if idGen.Load() != nil {
		log.Panic("cannot change the id generator after it is in use")
	}

	idGen.Store(g)
}

// UseSequentialIDGenerator hands out small decimal IDs in order, keeping
// the records of repeated runs identical. This is the default.
func UseSequentialIDGenerator() {
	selectIDGenerator(&sequentialIDGenerator{})
}

// UseParallelIDGenerator hands out globally unique IDs, so that records
// from runs sharing a database never collide. IDs are no longer
// reproducible across runs.
func UseParallelIDGenerator() {
	selectIDGenerator(parallelIDGenerator{})
}

// GetIDGenerator returns the generator in use, falling back to the
// sequential one if none has been selected.
func GetIDGenerator() IDGenerator {
	if g := idGen.Load(); g != nil {
		return g.(IDGenerator)
	}

	idGenMutex.Lock()
	defer idGenMutex.Unlock()

	if g := idGen.Load(); g != nil {
		return g.(IDGenerator)
	}

	g := &sequentialIDGenerator{}
	idGen.Store(g)

	return g
}

type sequentialIDGenerator struct {
	nextID atomic.Uint64
}

func (g *sequentialIDGenerator) Generate() string {
	return strconv.FormatUint(g.nextID.Add(1), 10)
}

type parallelIDGenerator struct{}

func (parallelIDGenerator) Generate() string {
	return xid.New().String()
}
