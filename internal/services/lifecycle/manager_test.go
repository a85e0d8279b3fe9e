package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdown_ReverseOrderAndJoinedErrors(t *testing.T) {
	m := New(time.Second, nil)
	var order []string
	m.Register("store", func(context.Context) error {
		order = append(order, "store")
		return errors.New("close failed")
	})
	m.Register("server", func(context.Context) error {
		order = append(order, "server")
		return nil
	})
	m.Register("skipped", nil)

	err := m.Shutdown(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close failed")
	assert.Equal(t, []string{"server", "store"}, order)

	assert.NoError(t, m.Shutdown(context.Background()))
	assert.Len(t, order, 2)
}

func TestWait_ReturnsComponentFailure(t *testing.T) {
	m := New(time.Second, nil)
	m.Go("server", func() error { return errors.New("bind: address in use") })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := m.Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server: bind: address in use")
}

func TestWait_ReturnsNilOnCancel(t *testing.T) {
	m := New(time.Second, nil)
	m.Go("server", func() error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, m.Wait(ctx))
}
