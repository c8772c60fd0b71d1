package registryconst

// Status is an enumeration for property verification states.
type Status int

// Property verification states. Verified and Rejected are terminal.
const (
	// Unverified is the initial state of every registered property.
	Unverified Status = iota

	// Verified stands for properties approved by a verifier.
	Verified

	// Rejected stands for properties declined by a verifier.
	Rejected
)
