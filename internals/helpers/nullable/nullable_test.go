package nullable

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type patchBody struct {
	Name Field[string] `json:"name"`
	Cost Field[int]    `json:"cost"`
}

func TestUnmarshalAbsent(t *testing.T) {
	var b patchBody
	require.NoError(t, json.Unmarshal([]byte(`{}`), &b))

	require.False(t, b.Name.Present)
	require.False(t, b.Name.Set())
	require.Nil(t, b.Name.Ptr())
}

func TestUnmarshalNull(t *testing.T) {
	var b patchBody
	require.NoError(t, json.Unmarshal([]byte(`{"name":null}`), &b))

	require.True(t, b.Name.Present)
	require.True(t, b.Name.Null)
	require.False(t, b.Name.Set())
	require.Nil(t, b.Name.Ptr())
	require.False(t, b.Cost.Present, "untouched sibling stays absent")
}

func TestUnmarshalValue(t *testing.T) {
	var b patchBody
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Hugo","cost":3}`), &b))

	require.True(t, b.Name.Set())
	require.Equal(t, "Hugo", b.Name.Value)
	require.True(t, b.Cost.Set())
	require.Equal(t, 3, b.Cost.Value)
}

func TestApplyTriState(t *testing.T) {
	prior := "keep me"

	dst := &prior
	Field[string]{}.Apply(&dst)
	require.Equal(t, &prior, dst, "absent field is a no-op")

	dst = &prior
	Null[string]().Apply(&dst)
	require.Nil(t, dst, "explicit null clears")

	dst = nil
	Of("new").Apply(&dst)
	require.NotNil(t, dst)
	require.Equal(t, "new", *dst)
}

func TestApplyValueIgnoresNull(t *testing.T) {
	v := uint(7)
	Null[uint]().ApplyValue(&v)
	require.Equal(t, uint(7), v)

	Of(uint(9)).ApplyValue(&v)
	require.Equal(t, uint(9), v)

	Field[uint]{}.ApplyValue(&v)
	require.Equal(t, uint(9), v)
}

func TestApplyRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := rapid.String().Draw(rt, "s")
		raw, err := json.Marshal(map[string]string{"name": s})
		require.NoError(rt, err)

		var b patchBody
		require.NoError(rt, json.Unmarshal(raw, &b))
		require.True(rt, b.Name.Set())
		require.Equal(rt, s, b.Name.Value)

		var dst *string
		b.Name.Apply(&dst)
		require.NotNil(rt, dst)
		require.Equal(rt, s, *dst)
	})
}
