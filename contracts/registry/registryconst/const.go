package registryconst

// Error codes exposed to contract callers. Every failed registry operation
// FAULTs with an exception message starting with one of them.
const (
	CodeUnauthorized  = 101
	CodeAlreadyExists = 102
	// 103 is reserved.
	CodeNotFound = 104
)

// MaxIDLength is the maximum length of property identifier in bytes. Storage
// keys are limited to 64 bytes, one of them is taken by the key prefix.
const MaxIDLength = 63

const (
	// ErrUnauthorized is thrown when the caller lacks the role required by
	// the method: contract owner for verifier management, active verifier
	// for verdicts.
	ErrUnauthorized = "101: unauthorized"

	// ErrAlreadyExists is thrown on attempt to register a property with an
	// identifier that is already in use.
	ErrAlreadyExists = "102: property already exists"

	// ErrAlreadyFinalized is thrown on attempt to verify or reject a property
	// that already has a verdict.
	ErrAlreadyFinalized = "102: property is already finalized"

	// ErrNotFound is thrown when referenced property is missing.
	ErrNotFound = "104: property not found"

	// ErrInvalidAccount is thrown when account argument is not a 20-byte
	// script hash.
	ErrInvalidAccount = "invalid account"

	// ErrEmptyID is thrown on attempt to register a property with an empty
	// identifier.
	ErrEmptyID = "empty property identifier"

	// ErrTooLongID is thrown on attempt to register a property with an
	// identifier longer than MaxIDLength.
	ErrTooLongID = "property identifier is too long"
)
