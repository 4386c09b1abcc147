package cache

import (
	"context"

	"github.com/rs/zerolog/log"

	"library-backend/internal/client/catalog"
)

// Applied reports the outcome of one event for one target identity.
type Applied struct {
	Event    catalog.ChangeEvent
	Identity QueryIdentity
	Hit      bool
	Changed  bool
}

// Reconciler applies change events to a fixed set of cached identities.
// Events are handled one at a time in arrival order.
type Reconciler struct {
	cache   *ReadCache
	targets []QueryIdentity
	onApply func(Applied)
}

func NewReconciler(c *ReadCache, targets ...QueryIdentity) *Reconciler {
	return &Reconciler{cache: c, targets: targets}
}

// OnApply registers a callback run after each target is processed.
func (r *Reconciler) OnApply(fn func(Applied)) *Reconciler {
	r.onApply = fn
	return r
}

// Handle applies one event. Unknown kinds are ignored.
func (r *Reconciler) Handle(event catalog.ChangeEvent) {
	if event.Kind != catalog.EventBookAdded {
		log.Debug().Str("kind", event.Kind).Msg("reconciler: ignoring event")
		return
	}

	for _, id := range r.targets {
		hit, changed := r.cache.Apply(id, event.Book)
		if r.onApply != nil {
			r.onApply(Applied{Event: event, Identity: id, Hit: hit, Changed: changed})
		}
	}
}

// Run consumes events until the channel closes or ctx is done.
func (r *Reconciler) Run(ctx context.Context, events <-chan catalog.ChangeEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			r.Handle(event)
		}
	}
}
