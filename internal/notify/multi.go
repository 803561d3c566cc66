package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
)

// Multi publishes one report to every sink.
// A failing sink never stops the others; failures come back joined.
type Multi struct {
	sinks  []contracts.Notifier
	logger *logger.Logger
}

// NewMulti creates a fan-out notifier. Nil sinks are skipped.
func NewMulti(log *logger.Logger, sinks ...contracts.Notifier) *Multi {
	m := &Multi{logger: log}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Name implements contracts.Notifier
func (m *Multi) Name() string {
	return "multi"
}

// Len returns the number of sinks
func (m *Multi) Len() int {
	return len(m.sinks)
}

// Publish implements contracts.Notifier
func (m *Multi) Publish(ctx context.Context, report *contracts.RunReport) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Publish(ctx, report); err != nil {
			m.logger.WithField("sink", s.Name()).WithError(err).Error("Notification failed")
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
