package lifetime

import (
	"context"
	"io"
	"reflect"
	"sync"

	"go.uber.org/multierr"

	spoolreflect "github.com/danpasecinic/spool/internal/reflect"
	"github.com/danpasecinic/spool/internal/resolution"
)

// AutoDisposing tracks every io.Closer it sees come out of the chain and
// closes them all when the lifetime is closed.
type AutoDisposing struct {
	name    string
	mu      sync.Mutex
	tracked []io.Closer
	closed  bool
}

func NewAutoDisposing() *AutoDisposing {
	return &AutoDisposing{name: "auto-disposing"}
}

// NewControlled is AutoDisposing under the name used for container-controlled
// registrations.
func NewControlled() *AutoDisposing {
	return &AutoDisposing{name: "controlled"}
}

func (l *AutoDisposing) Create(ctx context.Context, lc *Context, cc resolution.CreationContext, next Chain) (any, error) {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return nil, ErrDisposed
	}

	instance, err := next.Next(ctx, lc, cc)
	if err != nil {
		return nil, err
	}

	closer, ok := instance.(io.Closer)
	if !ok || spoolreflect.IsNil(closer) {
		return instance, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, multierr.Append(ErrDisposed, closer.Close())
	}
	if !l.isTracked(closer) {
		l.tracked = append(l.tracked, closer)
	}
	return instance, nil
}

func (l *AutoDisposing) isTracked(c io.Closer) bool {
	if !spoolreflect.IsComparable(c) {
		return false
	}
	for _, t := range l.tracked {
		if reflect.TypeOf(t) == reflect.TypeOf(c) && t == c {
			return true
		}
	}
	return false
}

// Release closes instance now if it is tracked and stops tracking it.
func (l *AutoDisposing) Release(instance any) error {
	closer, ok := instance.(io.Closer)
	if !ok || !spoolreflect.IsComparable(closer) {
		return nil
	}

	l.mu.Lock()
	idx := -1
	for i, t := range l.tracked {
		if reflect.TypeOf(t) == reflect.TypeOf(closer) && t == closer {
			idx = i
			break
		}
	}
	if idx >= 0 {
		l.tracked = append(l.tracked[:idx], l.tracked[idx+1:]...)
	}
	l.mu.Unlock()

	if idx < 0 {
		return nil
	}
	return closer.Close()
}

// Tracked reports how many instances are waiting to be closed.
func (l *AutoDisposing) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tracked)
}

// Close closes every tracked instance, newest first. All instances are
// closed even when some fail; the failures are combined.
func (l *AutoDisposing) Close() error {
	l.mu.Lock()
	l.closed = true
	tracked := l.tracked
	l.tracked = nil
	l.mu.Unlock()

	var err error
	for i := len(tracked) - 1; i >= 0; i-- {
		err = multierr.Append(err, tracked[i].Close())
	}
	return err
}

func (l *AutoDisposing) String() string { return l.name }
