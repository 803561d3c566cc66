package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
)

type recordingSink struct {
	name     string
	err      error
	received []*contracts.RunReport
}

func (r *recordingSink) Name() string { return r.name }

func (r *recordingSink) Publish(_ context.Context, report *contracts.RunReport) error {
	r.received = append(r.received, report)
	return r.err
}

func TestMulti_Publish(t *testing.T) {
	broken := &recordingSink{name: "telegram", err: errors.New("chat not found")}
	ws := &recordingSink{name: "websocket"}
	m := NewMulti(logger.Nop(), broken, nil, ws)

	report := &contracts.RunReport{Considered: 1}
	err := m.Publish(context.Background(), report)

	assert.Equal(t, 2, m.Len())
	assert.ErrorContains(t, err, "telegram: chat not found")
	assert.Len(t, broken.received, 1)
	assert.Same(t, report, ws.received[0])
}

func TestMulti_NoSinks(t *testing.T) {
	m := NewMulti(logger.Nop())
	assert.NoError(t, m.Publish(context.Background(), &contracts.RunReport{}))
}
