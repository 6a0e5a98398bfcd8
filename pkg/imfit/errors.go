package imfit

import "github.com/pkg/errors"

// The failure modes of building, writing and reading imfit models. All
// returned errors wrap one of these, test with errors.Is.
var(
	ErrInvalidSpec      = errors.New("invalid parameter spec")
	ErrUnknownFunction  = errors.New("unknown functional form")
	ErrUnknownParam     = errors.New("unknown parameter")
	ErrBoundViolation   = errors.New("bound violation")
	ErrMalformedResult  = errors.New("malformed result text")
	ErrNoSuchObject     = errors.New("no such object")
	ErrNoSuchComponent  = errors.New("no such component")
)
