// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlfrag

import (
	"fmt"

	"github.com/canonical/sqlfrag/internal/parse"
)

// SyntaxError reports a malformed template: an unmatched brace or an
// invalid name inside a marker. It carries the line and column of the
// offending character.
type SyntaxError = parse.SyntaxError

// ArityError reports a mismatch between the number of values expected and
// the number given: positional arguments against positional markers, or
// row width against declared column types in [Unnest].
type ArityError struct {
	Want, Got int
	// Subject names what was counted, e.g. "positional arguments".
	Subject string
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("wrong number of %s: expected %d, got %d", e.Subject, e.Want, e.Got)
}

// UnfilledSlotError reports a render or a prepared parameter binding
// attempted while named slots remain outstanding. Name is the leftmost
// outstanding slot.
type UnfilledSlotError struct {
	Name string
}

func (e *UnfilledSlotError) Error() string {
	return fmt.Sprintf("unfilled slot %q", e.Name)
}

// TypeError reports a value of a type the engine cannot handle: an
// unsupported [Escape] argument, or a fragment passed to
// [Prepared.Params], whose marker positions were frozen at prepare time
// and cannot expand to absorb a splice.
type TypeError struct {
	Message string
}

func (e *TypeError) Error() string {
	return e.Message
}
