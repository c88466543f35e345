package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopRunsPostedFunctionsInOrder(t *testing.T) {
	t.Parallel()

	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []int
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		i := i
		loop.Post(func() { got = append(got, i) })
	}
	loop.Post(func() {
		// Posting from inside the loop must not block.
		loop.Post(func() {
			got = append(got, 99)
			close(done)
		})
	})

	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not drain")
	}
	cancel()

	require.True(t, errors.Is(<-errCh, context.Canceled))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 99}, got)
}

func TestLoopDropsPostsAfterStop(t *testing.T) {
	t.Parallel()

	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, loop.Run(ctx), context.Canceled)

	called := false
	loop.Post(func() { called = true })
	assert.False(t, called)

	loop.mu.Lock()
	defer loop.mu.Unlock()
	assert.Empty(t, loop.queue)
}
