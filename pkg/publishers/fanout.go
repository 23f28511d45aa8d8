package publishers

import (
	"context"
	"errors"
	"fmt"
)

// Fanout broadcasts article events across every configured sink.
type Fanout struct {
	sinks []Publisher
}

// NewFanout builds a broadcaster over the given sinks, dropping nil entries.
func NewFanout(sinks []Publisher) *Fanout {
	active := make([]Publisher, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			active = append(active, s)
		}
	}
	return &Fanout{sinks: active}
}

// Publish forwards the event to every sink and reports how many accepted it.
// A failing sink does not short-circuit the rest; failures are aggregated
// into a single error.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f == nil || len(f.sinks) == 0 {
		return 0, nil
	}

	delivered := 0
	var errs []error
	for _, sink := range f.sinks {
		if err := sink.Publish(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s publisher[%s]: %w", sink.Type(), sink.ID(), err))
			continue
		}
		delivered++
	}
	return delivered, errors.Join(errs...)
}

// Size reports how many sinks are active.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.sinks)
}
