package testutils

import (
	"fmt"
	"strings"
)

// ErrContainsStr is a want error for cmp.Diff with cmpopts.EquateErrors. It
// equals any error whose message contains Str, which keeps tests stable
// when wrapping adds context around the message they care about:
//
//	want := testutils.ErrContainsStr{Str: "unsupported language"}
//	if diff := cmp.Diff(want, err, cmpopts.EquateErrors()); diff != "" {
//
//nolint:errname
type ErrContainsStr struct {
	Str string
}

func (e ErrContainsStr) Error() string { return fmt.Sprintf("error containing %q", e.Str) }

func (e ErrContainsStr) Is(err error) bool {
	return err != nil && strings.Contains(err.Error(), e.Str)
}
