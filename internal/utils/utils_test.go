package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type row struct {
	ID      string  `db:"id"`
	Name    string  `db:"name"`
	Notes   *string `db:"notes"`
	Skipped string  `db:"-"`
	Untaged string
	hidden  string `db:"hidden"`
}

func TestStructTagValues(t *testing.T) {
	assert.Equal(t, []string{"id", "name", "notes"}, StructTagValues(&row{}))
	assert.Equal(t, []string{"id", "name", "notes"}, StructTagValues(row{}))
	assert.Panics(t, func() { StructTagValues("nope") })
}

func TestStructToMap(t *testing.T) {
	r := row{ID: "a", Name: "Boiler", hidden: "x"}

	m := StructToMap(r)
	assert.Len(t, m, 3)
	assert.Equal(t, "a", m["id"])
	assert.Equal(t, "Boiler", m["name"])
	assert.Nil(t, m["notes"])
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, 40000.0, RoundMoney(39999.999))
	assert.Equal(t, 0.13, RoundMoney(0.125))
	assert.Equal(t, 1234.57, RoundMoney(1234.5678))
}

func TestDeref(t *testing.T) {
	assert.Equal(t, "", PtrString(nil))
	assert.Equal(t, "x", PtrString(StringPtr("x")))
	assert.Equal(t, 0, Deref[int](nil))
}

func TestErrorWrapOrNil(t *testing.T) {
	assert.NoError(t, ErrorWrapOrNil(nil, "ignored"))

	base := errors.New("boom")
	assert.Same(t, base, ErrorWrapOrNil(base, ""))

	wrapped := ErrorWrapOrNil(base, "failed to save")
	assert.ErrorIs(t, wrapped, base)
	assert.EqualError(t, wrapped, "failed to save: boom")
}

func TestNanoID(t *testing.T) {
	id := NanoID()
	assert.Len(t, id, 32)
	assert.NotEqual(t, id, NanoID())
}
