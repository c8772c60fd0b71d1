package registry

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	cst "github.com/proptrust/property-registry/contracts/registry/registryconst"
)

// Code is a numeric error code thrown by the contract.
type Code int

// Error codes of the contract.
const (
	CodeUnauthorized  Code = cst.CodeUnauthorized
	CodeAlreadyExists Code = cst.CodeAlreadyExists
	CodeNotFound      Code = cst.CodeNotFound
)

// Errors corresponding to contract error codes. Errors returned by
// [ParseError] match them with [errors.Is].
var (
	// ErrUnauthorized is returned when the sender lacks the role required by
	// the method.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyExists is returned on attempt to register an existing
	// property or to set a verdict on a finalized one.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound is returned when the property is not registered.
	ErrNotFound = errors.New("property not found")
)

// Error is a contract failure carrying its code and exception text.
type Error struct {
	Code    Code
	Message string
}

// Error implements error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("registry error %d: %s", e.Code, e.Message)
}

// Is makes Error match the sentinel of its code.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Code.sentinel(), target)
}

func (c Code) sentinel() error {
	switch c {
	case CodeUnauthorized:
		return ErrUnauthorized
	case CodeAlreadyExists:
		return ErrAlreadyExists
	case CodeNotFound:
		return ErrNotFound
	default:
		return nil
	}
}

var codedException = regexp.MustCompile(`\b(10[0-9]): ([^"]*)`)

// ParseError looks for a coded contract exception in err text and returns
// [*Error] wrapping err if one is found. It returns err as is otherwise.
// Errors of actor test invocations, unwrap helpers and application log
// fault exceptions are all supported.
func ParseError(err error) error {
	if err == nil {
		return nil
	}

	e, ok := parseException(err.Error())
	if !ok {
		return err
	}

	return fmt.Errorf("%w (%w)", e, err)
}

// ErrorFromFault converts FaultException of a failed transaction into
// [*Error]. It returns nil for an empty exception and a plain error for
// exceptions without a known code.
func ErrorFromFault(exception string) error {
	if exception == "" {
		return nil
	}

	e, ok := parseException(exception)
	if !ok {
		return errors.New(exception)
	}

	return e
}

func parseException(s string) (*Error, bool) {
	m := codedException.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, false
	}

	c := Code(n)
	if c.sentinel() == nil {
		return nil, false
	}

	return &Error{Code: c, Message: m[2]}, true
}
