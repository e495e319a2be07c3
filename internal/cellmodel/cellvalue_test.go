package cellmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullIsZeroValue(t *testing.T) {
	var zero CellValue
	assert.True(t, zero.IsNull(), "zero-value CellValue must be Null")
	assert.True(t, Null.IsNull(), "Null constant must be Null")
}

func TestVariantAccessors(t *testing.T) {
	assert.True(t, NewBool(true).Bool())
	assert.Equal(t, 3.5, NewNumber(3.5).Number())
	assert.Equal(t, "hi", NewText("hi").Text())
	assert.Equal(t, "raw", NewRaw("raw").Raw())

	bs := []byte{1, 2, 3}
	assert.Equal(t, bs, NewBytes(bs).Bytes())

	dt := DateTime{Year: 2021, Month: 1, Day: 1}
	assert.Equal(t, dt, NewDateTime(dt).DateTime())
}

func TestWrongVariantPanics(t *testing.T) {
	require.Panics(t, func() {
		NewText("x").Number()
	})
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "DateTime", KindDateTime.String())
}

func TestInterface(t *testing.T) {
	assert.Equal(t, float64(2), NewNumber(2).Interface())
	assert.Nil(t, Null.Interface())
}
