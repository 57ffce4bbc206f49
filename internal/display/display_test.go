package display

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vivjson/vivjson/value"
)

func TestStringifyPreservesKeyOrder(t *testing.T) {
	m := value.NewObject()
	m.Set("b", value.NewInt(2))
	m.Set("a", value.NewInt(1))

	out, err := Stringify(value.NewMap(m), "", "")
	assert.NoError(t, err)
	assert.Equal(t, `{"b":2,"a":1}`, out)
}

func TestStringifyInfinityToken(t *testing.T) {
	out, err := Stringify(value.NewFloat(math.Inf(1)), "Infinity", "NaN")
	assert.NoError(t, err)
	assert.Equal(t, "Infinity", out)

	out, err = Stringify(value.NewFloat(math.Inf(-1)), "Infinity", "NaN")
	assert.NoError(t, err)
	assert.Equal(t, "-Infinity", out)

	out, err = Stringify(value.NewFloat(math.NaN()), "Infinity", "NaN")
	assert.NoError(t, err)
	assert.Equal(t, "NaN", out)
}

func TestStringifyArrayAndScalars(t *testing.T) {
	arr := value.NewArray([]*value.Value{value.NewInt(1), value.NewString("x"), value.TrueValue, value.NullValue})
	out, err := Stringify(arr, "", "")
	assert.NoError(t, err)
	assert.Equal(t, `[1,"x",true,null]`, out)
}
