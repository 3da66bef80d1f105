package e2ee

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallDerivesKey(t *testing.T) {
	p := NewProvisioner()

	require.NoError(t, p.Install("hunter2"))

	key := p.Context().Key()
	assert.Len(t, key, 32)
	assert.False(t, p.Context().Enabled(), "enabled only after the room accepts the key")
}

func TestInstallEmptyPassphrase(t *testing.T) {
	p := NewProvisioner()

	err := p.Install("")
	assert.ErrorIs(t, err, ErrEmptyPassphrase)
	assert.Nil(t, p.Context().Key())
}

func TestInstallDecodesURLEncoding(t *testing.T) {
	plain := NewProvisioner()
	encoded := NewProvisioner()

	require.NoError(t, plain.Install("pass phrase"))
	require.NoError(t, encoded.Install("pass%20phrase"))

	assert.Equal(t, plain.Context().Key(), encoded.Context().Key())
}

func TestInstallIdempotent(t *testing.T) {
	p := NewProvisioner()

	require.NoError(t, p.Install("hunter2"))
	first := p.Context().Key()

	require.NoError(t, p.Install("hunter2"))
	assert.Equal(t, first, p.Context().Key())
}

func TestInstallRepeatedFailureStaysFailed(t *testing.T) {
	p := NewProvisioner()

	require.Error(t, p.Install(""))
	assert.ErrorIs(t, p.Install(""), ErrEmptyPassphrase)
}

func TestConcurrentInstallsAgree(t *testing.T) {
	p := NewProvisioner()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = p.Install("hunter2")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, p.Context().Key(), 32)
}

func TestMarkEnabled(t *testing.T) {
	p := NewProvisioner()
	require.NoError(t, p.Install("hunter2"))

	p.Context().MarkEnabled()
	assert.True(t, p.Context().Enabled())
}
