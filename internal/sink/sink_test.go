package sink

import (
	"context"
	"errors"
	"testing"

	"github.com/nikdata/oura-hrv/internal"
	"github.com/nikdata/oura-hrv/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closer struct {
	err    error
	closed bool
}

func (c *closer) Name() string                                           { return "closer" }
func (c *closer) StoreNight(ctx context.Context, n internal.Night) error { return nil }
func (c *closer) Close() error {
	c.closed = true
	return c.err
}

func TestFromConfig_Disabled(t *testing.T) {
	sinks, err := FromConfig(&config.Config{})
	require.NoError(t, err)
	assert.Empty(t, sinks)
}

func TestCloseAll_ClosesEverySink(t *testing.T) {
	boom := errors.New("boom")
	a, b := &closer{err: boom}, &closer{}

	err := CloseAll([]ReadingSink{a, b})
	assert.ErrorIs(t, err, boom)
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}
