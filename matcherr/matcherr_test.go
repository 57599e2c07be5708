package matcherr

import (
	"errors"
	"testing"
)

func TestIsRecoverable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"quit", &QuitError{Byte: 0xff, Offset: 3}, true},
		{"gave up", &GaveUpError{Offset: 12}, true},
		{"haystack too long", &HaystackTooLongError{Len: 1 << 20}, false},
		{"unrelated error", errors.New("boom"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRecoverable(tc.err); got != tc.want {
				t.Errorf("IsRecoverable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestErrorStrings(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"nfa too large", &NFATooLargeError{Limit: 100, Got: 200}},
		{"unsupported feature", &UnsupportedFeatureError{Feature: "backreference"}},
		{"size limit", &SizeLimitExceededError{Component: "lazy DFA cache", Limit: 4096}},
		{"too many states", &TooManyStatesError{Limit: 1 << 20, Got: 1 << 21}},
		{"not one-pass (no reason)", &NotOnePassError{}},
		{"not one-pass (with reason)", &NotOnePassError{Reason: "two live terminals"}},
		{"unsupported word boundary", &UnsupportedWordBoundaryError{}},
		{"quit", &QuitError{Byte: 0x80, Offset: 7}},
		{"gave up", &GaveUpError{Offset: 9}},
		{"haystack too long", &HaystackTooLongError{Len: 64}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Error() == "" {
				t.Errorf("%T.Error() returned empty string", tc.err)
			}
		})
	}
}
