package helpers

import "fmt"

// ErrArgumentsMismatch defines expression function called with wrong number of arguments.
type ErrArgumentsMismatch struct {
	Function string
	Count    int
}

// Error formats output.
func (e *ErrArgumentsMismatch) Error() string {
	return fmt.Sprintf("%s: unexpected number of arguments: %d", e.Function, e.Count)
}

// ErrWrongArgument defines expression function argument of unsupported type.
type ErrWrongArgument struct {
	Function string
	Index    int
}

// Error formats output.
func (e *ErrWrongArgument) Error() string {
	return fmt.Sprintf("%s: argument %d has unsupported type", e.Function, e.Index)
}

// ErrJqSyntax defines jq query which can't be compiled or applied.
type ErrJqSyntax struct {
	Query string
	Err   error
}

// Error formats output.
func (e *ErrJqSyntax) Error() string {
	return fmt.Sprintf("jq %s: %s", e.Query, e.Err.Error())
}

// Unwrap returns the cause.
func (e *ErrJqSyntax) Unwrap() error {
	return e.Err
}
