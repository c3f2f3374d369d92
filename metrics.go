package spool

import (
	"time"

	"github.com/danpasecinic/spool/internal/container"
)

type ResolveHook func(key string, duration time.Duration, err error)

type RegisterHook func(key string)

type UnregisterHook func(key string)

// Event reports one key of a registration being added to or removed from a
// container. Observers run synchronously while the container is locked and
// must not register or unregister from inside the callback.
type Event = container.Event

type EventObserver = container.Observer

const (
	ActionAdd    = container.ActionAdd
	ActionRemove = container.ActionRemove
	StageBefore  = container.StageBefore
	StageAfter   = container.StageAfter
)
