package container

import (
	"sync"

	"github.com/danpasecinic/spool/internal/key"
)

type Action int

const (
	ActionAdd Action = iota
	ActionRemove
)

func (a Action) String() string {
	if a == ActionAdd {
		return "add"
	}
	return "remove"
}

type Stage int

const (
	StageBefore Stage = iota
	StageAfter
)

func (s Stage) String() string {
	if s == StageBefore {
		return "before"
	}
	return "after"
}

// Event reports one key of a registration being added or removed. Events are
// delivered synchronously on the registering goroutine while the container
// lock is held, Before then After for each key.
type Event struct {
	Container    *Container
	Action       Action
	Stage        Stage
	Key          key.Key
	Registration *Registration
}

type Observer func(Event)

type subject struct {
	mu        sync.Mutex
	observers map[uint64]Observer
	order     []uint64
	next      uint64
	completed bool
}

func newSubject() *subject {
	return &subject{observers: make(map[uint64]Observer)}
}

// subscribe returns a function that removes the observer.
func (s *subject) subscribe(o Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return func() {}
	}

	id := s.next
	s.next++
	s.observers[id] = o
	s.order = append(s.order, id)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

func (s *subject) publish(e Event) {
	s.mu.Lock()
	if s.completed {
		s.mu.Unlock()
		return
	}
	observers := make([]Observer, 0, len(s.order))
	for _, id := range s.order {
		observers = append(observers, s.observers[id])
	}
	s.mu.Unlock()

	for _, o := range observers {
		o(e)
	}
}

func (s *subject) complete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.completed = true
	s.observers = make(map[uint64]Observer)
	s.order = nil
}
