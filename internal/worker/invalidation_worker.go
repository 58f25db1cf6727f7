package worker

import (
	"github.com/spec-kit/sro-service/internal/cache"
	"github.com/spec-kit/sro-service/internal/events"
)

// StartInvalidationWorker wires the cache store into the event stream.
// Must run before the first lifecycle operation so no transition can
// complete without its invalidation set registered.
func StartInvalidationWorker(dispatcher events.Dispatcher, store *cache.Store) {
	if dispatcher == nil || store == nil {
		return
	}
	cache.RegisterInvalidation(dispatcher, store)
}
