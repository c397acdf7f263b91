package feed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cuemby/invoker/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	mu   sync.Mutex
	runs []types.Run
}

func (f *fakeSubmitter) Submit(run types.Run) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, run)
}

func (f *fakeSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.runs)
}

func TestDeliverForwardsToSubmitter(t *testing.T) {
	sub := &fakeSubmitter{}
	a := NewAdapter(sub, 2)

	err := a.Deliver(context.Background(), types.Run{Action: types.Action{Name: "hello"}})
	require.NoError(t, err)

	assert.Equal(t, 1, sub.count())
	assert.Equal(t, 1, a.InFlight())
}

func TestDeliverBlocksAtCapacity(t *testing.T) {
	sub := &fakeSubmitter{}
	a := NewAdapter(sub, 1)

	require.NoError(t, a.Deliver(context.Background(), types.Run{}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := a.Deliver(ctx, types.Run{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProcessedFreesASlot(t *testing.T) {
	sub := &fakeSubmitter{}
	a := NewAdapter(sub, 1)

	require.NoError(t, a.Deliver(context.Background(), types.Run{}))
	a.Processed()

	assert.Equal(t, 0, a.InFlight())

	err := a.Deliver(context.Background(), types.Run{})
	require.NoError(t, err)
	assert.Equal(t, 2, sub.count())
}
