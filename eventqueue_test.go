package gocqx

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueueDeliversInOrder(t *testing.T) {
	q := NewEventQueue()

	require.NoError(t, q.Post(Event{Tag: 1, OK: true}))
	require.NoError(t, q.Post(Event{Tag: 2, OK: false}))

	ev, err := q.Next()
	require.NoError(t, err)
	assert.Equal(t, Tag(1), ev.Tag)
	assert.True(t, ev.OK)

	ev, err = q.Next()
	require.NoError(t, err)
	assert.Equal(t, Tag(2), ev.Tag)
	assert.False(t, ev.OK)

	q.Close()
}

func TestEventQueueNextBlocksUntilPost(t *testing.T) {
	q := NewEventQueue()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()

		ev, err := q.Next()
		assert.NoError(t, err)
		assert.Equal(t, Tag(7), ev.Tag)
	}()

	require.NoError(t, q.Post(Event{Tag: 7, OK: true}))
	wg.Wait()

	q.Close()
}

func TestEventQueueCloseDrainsBacklog(t *testing.T) {
	q := NewEventQueue()

	require.NoError(t, q.Post(Event{Tag: 1, OK: true}))
	require.NoError(t, q.Post(Event{Tag: 2, OK: true}))
	q.Close()

	ev, err := q.Next()
	require.NoError(t, err)
	assert.Equal(t, Tag(1), ev.Tag)

	ev, err = q.Next()
	require.NoError(t, err)
	assert.Equal(t, Tag(2), ev.Tag)

	_, err = q.Next()
	assert.ErrorIs(t, err, ErrEventQueueClosed)
}

func TestEventQueueCloseUnblocksNext(t *testing.T) {
	q := NewEventQueue()

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := q.Next()
			assert.ErrorIs(t, err, ErrEventQueueClosed)
		}()
	}

	q.Close()
	wg.Wait()
}

func TestEventQueuePostAfterClose(t *testing.T) {
	q := NewEventQueue()
	q.Close()
	q.Close()

	err := q.Post(Event{Tag: 1, OK: true})
	assert.ErrorIs(t, err, ErrEventQueueClosed)
}
