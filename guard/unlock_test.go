package guard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnlocker_Latch(t *testing.T) {
	var u Unlocker

	assert.False(t, u.AttributeUnlocked("owner_id"))

	u.UnlockAttributes("owner_id", "currency")
	assert.True(t, u.AttributeUnlocked("owner_id"))
	assert.True(t, u.AttributeUnlocked("currency"))
	assert.False(t, u.AttributeUnlocked("created_at"))

	u.ClearUnlockedAttributes()
	assert.False(t, u.AttributeUnlocked("owner_id"))
	assert.Nil(t, u.UnlockedAttributeNames())
}

func TestUnlocker_LatchEmptyIsNoOp(t *testing.T) {
	var u Unlocker
	u.UnlockAttributes()
	// No latent empty set may be created.
	assert.Nil(t, u.unlocked)
}

func TestUnlocker_Scoped(t *testing.T) {
	var u Unlocker

	err := u.UnlockAttributesDuring([]string{"owner_id"}, func() error {
		assert.True(t, u.AttributeUnlocked("owner_id"))
		return nil
	})
	require.NoError(t, err)
	assert.False(t, u.AttributeUnlocked("owner_id"))
	assert.Nil(t, u.unlocked)
}

func TestUnlocker_ScopedNesting(t *testing.T) {
	var u Unlocker

	err := u.UnlockAttributesDuring([]string{"a"}, func() error {
		inner := u.UnlockAttributesDuring([]string{"b"}, func() error {
			assert.True(t, u.AttributeUnlocked("a"))
			assert.True(t, u.AttributeUnlocked("b"))
			return nil
		})
		require.NoError(t, inner)

		// Exiting the inner scope restores exactly the outer set.
		assert.True(t, u.AttributeUnlocked("a"))
		assert.False(t, u.AttributeUnlocked("b"))
		return nil
	})
	require.NoError(t, err)

	assert.False(t, u.AttributeUnlocked("a"))
	assert.False(t, u.AttributeUnlocked("b"))
}

func TestUnlocker_ScopedRestoresOnError(t *testing.T) {
	var u Unlocker
	sentinel := errors.New("body failed")

	err := u.UnlockAttributesDuring([]string{"owner_id"}, func() error {
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
	assert.False(t, u.AttributeUnlocked("owner_id"))
}

func TestUnlocker_ScopedRestoresOnPanic(t *testing.T) {
	var u Unlocker

	assert.Panics(t, func() {
		_ = u.UnlockAttributesDuring([]string{"owner_id"}, func() error {
			panic("boom")
		})
	})
	assert.False(t, u.AttributeUnlocked("owner_id"))
	assert.Nil(t, u.unlocked)
}

func TestUnlocker_ScopedEmptyNamesStillRunsBody(t *testing.T) {
	var u Unlocker
	ran := false

	err := u.UnlockAttributesDuring(nil, func() error {
		ran = true
		assert.False(t, u.AttributeUnlocked("owner_id"))
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Nil(t, u.unlocked)
}

func TestUnlocker_ScopedOnTopOfLatch(t *testing.T) {
	var u Unlocker
	u.UnlockAttributes("a")

	err := u.UnlockAttributesDuring([]string{"b"}, func() error {
		assert.True(t, u.AttributeUnlocked("a"))
		assert.True(t, u.AttributeUnlocked("b"))
		return nil
	})
	require.NoError(t, err)

	// The latched attribute survives the scope.
	assert.True(t, u.AttributeUnlocked("a"))
	assert.False(t, u.AttributeUnlocked("b"))
}

func TestUnlocker_RepeatedScopesDoNotLeak(t *testing.T) {
	var u Unlocker
	for i := 0; i < 3; i++ {
		err := u.UnlockAttributesDuring([]string{"owner_id"}, func() error { return nil })
		require.NoError(t, err)
		assert.Nil(t, u.unlocked)
	}
}
