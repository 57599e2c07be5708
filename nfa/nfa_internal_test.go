package nfa

import "github.com/matchkit/matchkit/primitive"

func newTestInput(haystack string) *primitive.Input {
	return primitive.NewInput([]byte(haystack))
}
