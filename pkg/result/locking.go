package result

import (
	"fmt"
	"sync"

	"github.com/azybler/mapmatch/pkg/mm"
	"github.com/azybler/mapmatch/pkg/mmerrors"
	"github.com/azybler/mapmatch/pkg/progress"
)

// rowRenderer is implemented by Writers that can render a result row to
// a line without touching their underlying io.Writer, letting
// WithLocking do the rendering outside its critical section.
type rowRenderer interface {
	renderRow(r *mm.MatchResult) string
}

// lineWriter is implemented by Writers that can write an
// already-rendered line directly, so WithLocking's critical section
// covers only the write itself.
type lineWriter interface {
	writeLine(s string) error
}

// lockingWriter wraps a Writer with a single mutex and panic recovery,
// so a Writer built for single-threaded use can be shared safely across
// a worker pool without baking locking or recovery into every
// implementation.
type lockingWriter struct {
	inner Writer
	mu    sync.Mutex
	log   progress.Logger
}

// WithLocking returns a Writer that serializes all calls to inner
// behind a mutex and converts any panic during WriteResult into an
// ErrIO-wrapped error instead of crashing the worker pool draining
// results into it.
func WithLocking(inner Writer, log progress.Logger) Writer {
	if log == nil {
		log = progress.Nop{}
	}
	return &lockingWriter{inner: inner, log: log}
}

func (l *lockingWriter) WriteHeader() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.WriteHeader()
}

// WriteResult serializes inner's writes behind l.mu. When inner also
// implements rowRenderer/lineWriter (CSVWriter does), the row is
// rendered unlocked and the mutex is held only around the write;
// otherwise the whole call is locked, since there's no way to split
// rendering from writing for an arbitrary Writer.
func (l *lockingWriter) WriteResult(r *mm.MatchResult) (err error) {
	rend, rok := l.inner.(rowRenderer)
	lw, lok := l.inner.(lineWriter)
	if !rok || !lok {
		l.mu.Lock()
		defer l.mu.Unlock()
		defer l.recoverPanic(r, &err)
		return l.inner.WriteResult(r)
	}

	var line string
	func() {
		defer l.recoverPanic(r, &err)
		line = rend.renderRow(r)
	}()
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	defer l.recoverPanic(r, &err)
	return lw.writeLine(line)
}

func (l *lockingWriter) recoverPanic(r *mm.MatchResult, err *error) {
	if rec := recover(); rec != nil {
		l.log.Warnf("result writer panic for trajectory %d: %v", r.TrajectoryID, rec)
		*err = fmt.Errorf("%w: writer panic: %v", mmerrors.ErrIO, rec)
	}
}
