// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTolerantUnmarshalBareObject(t *testing.T) {
	var got map[string]string
	ok := tolerantUnmarshal(`{"name": "Absurdism"}`, '{', &got)
	require.True(t, ok)
	assert.Equal(t, "Absurdism", got["name"])
}

func TestTolerantUnmarshalFencedObject(t *testing.T) {
	reply := "Sure, here is the analysis:\n```json\n{\"name\": \"Stoicism\", \"nested\": {\"a\": \"b\"}}\n```\nHope that helps!"
	var got map[string]json.RawMessage
	ok := tolerantUnmarshal(reply, '{', &got)
	require.True(t, ok)
	assert.Contains(t, got, "name")
	assert.Contains(t, got, "nested")
}

func TestTolerantUnmarshalFencedArrayNested(t *testing.T) {
	// Greedy fence matching keeps nested closers inside the payload.
	reply := "```json\n[{\"vals\": [1, 2]}, {\"vals\": [3]}]\n```"
	var got []map[string][]int
	ok := tolerantUnmarshal(reply, '[', &got)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, []int{1, 2}, got[0]["vals"])
}

func TestTolerantUnmarshalProseWrapped(t *testing.T) {
	reply := `The sections I propose are [{"number": 1}, {"number": 2}] as requested.`
	var got []map[string]int
	ok := tolerantUnmarshal(reply, '[', &got)
	require.True(t, ok)
	assert.Len(t, got, 2)
}

func TestTolerantUnmarshalIdempotentOnValidJSON(t *testing.T) {
	// Parsing a bare JSON value must equal decoding it directly.
	raw := `{"name": "x", "key_concepts": ["a", "b"]}`

	var direct, tolerant map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &direct))
	require.True(t, tolerantUnmarshal(raw, '{', &tolerant))
	assert.Equal(t, direct, tolerant)
}

func TestTolerantUnmarshalGarbageLeavesValueUntouched(t *testing.T) {
	got := []int{42}
	ok := tolerantUnmarshal("no json anywhere in this reply", '[', &got)
	assert.False(t, ok)
	// Caller's value stands as the designated empty result.
	assert.Equal(t, []int{42}, got)
}

func TestTolerantUnmarshalUnbalancedBrackets(t *testing.T) {
	var got []int
	assert.False(t, tolerantUnmarshal("closing ] before opening [", '[', &got))
	assert.False(t, tolerantUnmarshal("[1, 2", '[', &got))
}

func TestTolerantUnmarshalBadFenceFallsBack(t *testing.T) {
	// The fence holds no JSON value, but a complete object follows.
	reply := "```json\nnot json at all\n```\nActually: {\"name\": \"ok\"}"
	var got map[string]string
	ok := tolerantUnmarshal(reply, '{', &got)
	require.True(t, ok)
	assert.Equal(t, "ok", got["name"])
}
