package repl

import (
	"errors"
	"fmt"
)

// userError is an error caused by attempting to interpret input. Either the
// input could not be understood or it asks for something that cannot be done
// with the current grammar.
//
// It carries a message meant to be shown to the person at the console along
// with a more technical message for Error().
type userError struct {
	msg   string
	human string
	wrap  error
}

func (e *userError) Error() string {
	return e.msg
}

// Unwrap gives the error that the userError wraps, if it wraps one.
func (e *userError) Unwrap() error {
	return e.wrap
}

// userErrorf returns a new userError whose console message is built from the
// given format and arguments.
func userErrorf(format string, a ...interface{}) error {
	human := fmt.Sprintf(format, a...)
	return &userError{
		msg:   fmt.Sprintf("got userError(%q)", human),
		human: human,
	}
}

// wrapUserErrorf is userErrorf but the returned error also wraps e.
func wrapUserErrorf(e error, format string, a ...interface{}) error {
	human := fmt.Sprintf(format, a...)
	return &userError{
		msg:   fmt.Sprintf("got userError(%q): %s", human, e),
		human: human,
		wrap:  e,
	}
}

// ConsoleMessage gets the message to display to the console for the given
// error. If err is or wraps an error created by this package, its console
// message is returned; otherwise, err.Error() is returned.
func ConsoleMessage(err error) string {
	var uErr *userError
	if errors.As(err, &uErr) {
		return uErr.human
	}
	return err.Error()
}
