package index

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"
)

const generationPrefix = "gen-"

func generationName(id uint64) string {
	return fmt.Sprintf("%s%06d", generationPrefix, id)
}

func parseGenerationName(name string) (uint64, bool) {
	rest, ok := strings.CutPrefix(name, generationPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// generation is one on-disk bleve index. It is reference counted: the
// writer and the pool each hold a reference while it is current, and every
// acquired snapshot holds one more. The last release closes the index and,
// once the generation has been superseded, deletes its directory.
type generation struct {
	id   uint64
	path string
	idx  bleve.Index
	log  *zap.Logger

	refs    atomic.Int64
	retired atomic.Bool
}

func newGeneration(id uint64, path string, idx bleve.Index, log *zap.Logger) *generation {
	g := &generation{id: id, path: path, idx: idx, log: log}
	g.refs.Store(1)
	return g
}

// tryRetain takes a reference unless the generation is already closed.
func (g *generation) tryRetain() bool {
	for {
		n := g.refs.Load()
		if n <= 0 {
			return false
		}
		if g.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (g *generation) release() {
	if g.refs.Add(-1) != 0 {
		return
	}
	if err := g.idx.Close(); err != nil {
		g.log.Warn("closing index generation",
			zap.Uint64("generation", g.id), zap.Error(err))
	}
	if !g.retired.Load() {
		return
	}
	if err := os.RemoveAll(g.path); err != nil {
		g.log.Warn("removing retired index generation",
			zap.Uint64("generation", g.id), zap.Error(err))
		return
	}
	g.log.Debug("removed retired index generation", zap.Uint64("generation", g.id))
}

// retire marks the generation for deletion and drops one reference.
func (g *generation) retire() {
	g.retired.Store(true)
	g.release()
}
