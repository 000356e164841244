package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_SortsKeys(t *testing.T) {
	data, err := Marshal(map[string]any{"b": 1, "a": []any{true, "x"}, "c": map[string]any{"z": int64(2), "y": []int{3, 4}}})
	require.NoError(t, err)
	assert.Equal(t, `{"a":[true,"x"],"b":1,"c":{"y":[3,4],"z":2}}`, string(data))
}

func TestMarshal_UTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes as surrogates 0xD83D..., which sort before U+FF5E.
	data, err := Marshal(map[string]any{"～": 1, "\U0001F600": 2})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"～\":1}", string(data))
}

func TestMarshal_StringEscaping(t *testing.T) {
	data, err := Marshal("<a&b>\"\\\n \x01")
	require.NoError(t, err)
	assert.Equal(t, "\"<a&b>\\\"\\\\\\n \\u0001\"", string(data))
}

func TestMarshal_NFC(t *testing.T) {
	decomposed, err := Marshal("e\u0301")
	require.NoError(t, err)
	composed, err := Marshal("\u00e9")
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
}

func TestMarshal_Rejects(t *testing.T) {
	for _, v := range []any{nil, 1.5, float32(2), struct{}{}, []any{nil}} {
		_, err := Marshal(v)
		assert.Error(t, err, "%#v", v)
	}
}

func TestMarshal_Permutation(t *testing.T) {
	data, err := Marshal([][]int{{2}, {0, 1}, {}})
	require.NoError(t, err)
	assert.Equal(t, `[[2],[0,1],[]]`, string(data))
}

func TestSolutionDigest(t *testing.T) {
	a, err := SolutionDigest("1", [][]int{{0}, {1}})
	require.NoError(t, err)
	assert.Len(t, a, 64)

	b, err := SolutionDigest("1", [][]int{{0}, {1}})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := SolutionDigest("1", [][]int{{1}, {0}})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	d, err := SolutionDigest("2", [][]int{{0}, {1}})
	require.NoError(t, err)
	assert.NotEqual(t, a, d)

	e, err := SolutionDigest("", nil)
	require.NoError(t, err)
	assert.Len(t, e, 64)
}
