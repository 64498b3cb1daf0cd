package errs

// ErrorKind identifies a kind of internal error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// NotFound is returned when a requested object is not found.
	NotFound = ErrorKind("Not Found")

	// InvalidIdentity is returned when an address or object id is malformed.
	InvalidIdentity = ErrorKind("invalid identity")

	// DecodeError is returned when a raw object payload is missing or has malformed fields.
	DecodeError = ErrorKind("decode error")

	// TransportError is returned when the object-store node could not be reached
	// or returned a protocol-level failure.
	TransportError = ErrorKind("transport error")

	Conflict        = ErrorKind("conflict")
	InvalidArgument = ErrorKind("invalid argument")
	Unsupported     = ErrorKind("unsupported")
	InternalError   = ErrorKind("internal error")
	Timeout         = ErrorKind("timeout")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}
