package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreipc/corert/pkg/khandle"
	"github.com/coreipc/corert/pkg/kernel/simkernel"
)

func TestSnapshotReflectsRegisteredHandlers(t *testing.T) {
	k := simkernel.New()
	r, err := New(k)
	require.NoError(t, err)
	defer r.Close()

	assert.Empty(t, r.Snapshot())

	ends, st := k.MessagePipeCreate()
	require.Nil(t, st)

	id, err := r.AddHandler(HandlerFunc{}, ends.H0, khandle.SignalReadable, Forever)
	require.NoError(t, err)

	snap := r.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, id, snap[0].ID)
	assert.Equal(t, ends.H0, snap[0].Handle)
	assert.Equal(t, khandle.SignalReadable, snap[0].Signals)
	assert.True(t, snap[0].Deadline.IsZero())
}

func TestSnapshotEmptyAfterRemoveHandler(t *testing.T) {
	k := simkernel.New()
	r, err := New(k)
	require.NoError(t, err)
	defer r.Close()

	ends, st := k.MessagePipeCreate()
	require.Nil(t, st)

	id, err := r.AddHandler(HandlerFunc{}, ends.H0, khandle.SignalReadable, Forever)
	require.NoError(t, err)

	require.NoError(t, r.RemoveHandler(id))
	assert.Empty(t, r.Snapshot())
}
