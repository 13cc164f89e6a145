package gerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Error_Error(t *testing.T) {
	testCases := []struct {
		name   string
		err    Error
		expect string
	}{
		{name: "message only", err: New("bad thing"), expect: "bad thing"},
		{name: "cause only", err: New("", ErrNotFound), expect: ErrNotFound.Error()},
		{name: "message and causes", err: New("bad thing", ErrDB, ErrNotFound), expect: "bad thing: " + ErrDB.Error()},
		{name: "empty", err: New(""), expect: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.err.Error())
		})
	}
}

func Test_Error_Is(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		target error
		expect bool
	}{
		{name: "first cause", err: New("x", ErrBadArgument, ErrMalformedGrammar), target: ErrBadArgument, expect: true},
		{name: "later cause", err: New("x", ErrBadArgument, ErrMalformedGrammar), target: ErrMalformedGrammar, expect: true},
		{name: "not a cause", err: New("x", ErrBadArgument), target: ErrNotFound, expect: false},
		{name: "nested cause", err: New("outer", Malformed("inner")), target: ErrMalformedGrammar, expect: true},
		{name: "through fmt wrapping", err: fmt.Errorf("stage: %w", New("x", ErrUnremovableRecursion)), target: ErrUnremovableRecursion, expect: true},
		{name: "equal Error value", err: New("x", ErrDB), target: New("x", ErrDB), expect: true},
		{name: "WrapDB adds ErrDB", err: WrapDB("", errors.New("disk full")), target: ErrDB, expect: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, errors.Is(tc.err, tc.target))
		})
	}
}
