package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_MakeTextList(t *testing.T) {
	testCases := []struct {
		name   string
		input  []string
		expect string
	}{
		{name: "empty", input: nil, expect: ""},
		{name: "one", input: []string{"a"}, expect: "a"},
		{name: "two", input: []string{"a", "b"}, expect: "a and b"},
		{name: "three", input: []string{"a", "b", "c"}, expect: "a, b, and c"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, MakeTextList(tc.input))
		})
	}
}

func Test_MakeTextList_doesNotModifyInput(t *testing.T) {
	input := []string{"a", "b", "c"}

	MakeTextList(input)

	assert.Equal(t, []string{"a", "b", "c"}, input)
}

func Test_KeySetOf(t *testing.T) {
	assert := assert.New(t)

	s := KeySetOf([]string{"a", "b", "a"})

	assert.True(s.Has("a"))
	assert.True(s.Has("b"))
	assert.False(s.Has("c"))
	assert.Len(s, 2)
	assert.Nil(KeySetOf[string](nil))
}

func Test_OrderedKeys(t *testing.T) {
	actual := OrderedKeys(map[string]int{"c": 1, "a": 2, "b": 3})

	assert.Equal(t, []string{"a", "b", "c"}, actual)
}
