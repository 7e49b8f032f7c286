package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreipc/corert/pkg/kernel/simkernel"
)

func TestNewInstallsCurrent(t *testing.T) {
	assert.Nil(t, Current())

	k := simkernel.New()
	r, err := New(k)
	require.NoError(t, err)
	defer r.Close()

	assert.Same(t, r, Current())
}

func TestCloseRestoresCurrent(t *testing.T) {
	k := simkernel.New()
	r, err := New(k)
	require.NoError(t, err)

	require.NoError(t, r.Close())
	assert.Nil(t, Current())
}

func TestNewRejectsSecondCurrentReactor(t *testing.T) {
	k1 := simkernel.New()
	r1, err := New(k1)
	require.NoError(t, err)
	defer r1.Close()

	k2 := simkernel.New()
	r2, err := New(k2)
	assert.Nil(t, r2)
	assert.ErrorIs(t, err, ErrAlreadyCurrent)
}

func TestCloseIsIdempotentForCurrent(t *testing.T) {
	k := simkernel.New()
	r, err := New(k)
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Nil(t, Current())
}
