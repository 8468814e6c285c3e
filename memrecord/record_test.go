package memrecord

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Lifecycle(t *testing.T) {
	rec := New("Account", Attributes{"owner_id": 1})

	assert.True(t, rec.IsNewRecord())
	assert.Equal(t, "Account", rec.TypeName())
	assert.NotEmpty(t, rec.ID())

	rec.markPersisted()
	assert.False(t, rec.IsNewRecord())
}

func TestRecord_ChangedAttributeNames(t *testing.T) {
	rec := New("Account", Attributes{"owner_id": 1, "currency": "EUR"})

	t.Run("new record reports everything changed", func(t *testing.T) {
		assert.Equal(t, []string{"currency", "owner_id"}, rec.ChangedAttributeNames())
	})

	rec.markPersisted()

	t.Run("clean after persist", func(t *testing.T) {
		assert.Empty(t, rec.ChangedAttributeNames())
	})

	t.Run("modified value", func(t *testing.T) {
		rec.Set("owner_id", 2)
		assert.Equal(t, []string{"owner_id"}, rec.ChangedAttributeNames())
	})

	t.Run("reverting clears the change", func(t *testing.T) {
		rec.Set("owner_id", 1)
		assert.Empty(t, rec.ChangedAttributeNames())
	})

	t.Run("added attribute", func(t *testing.T) {
		rec.Set("nickname", "main")
		assert.Equal(t, []string{"nickname"}, rec.ChangedAttributeNames())
	})
}

func TestRecord_ChangedAttributeNamesRemoved(t *testing.T) {
	rec := New("Account", Attributes{"owner_id": 1, "nickname": "main"})
	rec.markPersisted()

	delete(rec.attrs, "nickname")
	assert.Equal(t, []string{"nickname"}, rec.ChangedAttributeNames())
}

func TestRecord_ValidationErrors(t *testing.T) {
	rec := New("Account", nil)
	rec.AddValidationError("owner_id", "is locked and cannot be changed")

	require.True(t, rec.ValidationErrors().Any())
	assert.Equal(t, []string{"is locked and cannot be changed"}, rec.ValidationErrors().On("owner_id"))

	rec.ResetValidationErrors()
	assert.False(t, rec.ValidationErrors().Any())
}

func TestNew_CopiesAttributes(t *testing.T) {
	attrs := Attributes{"owner_id": 1}
	rec := New("Account", attrs)

	attrs["owner_id"] = 99
	got, ok := rec.Get("owner_id")
	require.True(t, ok)
	assert.Equal(t, 1, got)
}
