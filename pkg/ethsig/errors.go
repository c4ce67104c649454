package ethsig

// ErrorKind identifies a kind of error. It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific Error.
const (
	// ErrInvalidPrivateKey is returned when a private key is not 32 bytes or
	// is not in the range (0, n).
	ErrInvalidPrivateKey = ErrorKind("ErrInvalidPrivateKey")

	// ErrInvalidPublicKey is returned when a public key cannot be decoded
	// into a point on the curve.
	ErrInvalidPublicKey = ErrorKind("ErrInvalidPublicKey")

	// ErrSignatureOutOfRange is returned when r or s is not in (0, n).
	ErrSignatureOutOfRange = ErrorKind("ErrSignatureOutOfRange")

	// ErrInvalidRecoveryCode is returned when v does not carry a legacy
	// (27..30) or EIP-155 (>= 35) recovery code.
	ErrInvalidRecoveryCode = ErrorKind("ErrInvalidRecoveryCode")

	// ErrPointNotOnCurve is returned when uncompressed coordinates do not
	// satisfy the curve equation.
	ErrPointNotOnCurve = ErrorKind("ErrPointNotOnCurve")

	// ErrInvalidEncoding is returned for point encodings with an unknown
	// length or prefix byte, or coordinates that are not field elements.
	ErrInvalidEncoding = ErrorKind("ErrInvalidEncoding")

	// ErrPointAtInfinity is returned when the identity element would have to
	// be serialized or used as a public key.
	ErrPointAtInfinity = ErrorKind("ErrPointAtInfinity")

	// ErrNotAQuadraticResidue is returned when a square root is requested
	// for a value that has none.
	ErrNotAQuadraticResidue = ErrorKind("ErrNotAQuadraticResidue")

	// ErrNoInverse is returned when a modular inverse does not exist.
	ErrNoInverse = ErrorKind("ErrNoInverse")

	// ErrUnrecoverableKey is returned when the recovery code asks for the
	// second x candidate (r + n) but r + n is not a field element.
	ErrUnrecoverableKey = ErrorKind("ErrUnrecoverableKey")

	// ErrTweakOutOfRange is returned when a tweak is greater than or equal
	// to the group order.
	ErrTweakOutOfRange = ErrorKind("ErrTweakOutOfRange")

	// ErrResultingKeyZero is returned when a tweaked private key is zero or a
	// tweaked public key is the point at infinity.
	ErrResultingKeyZero = ErrorKind("ErrResultingKeyZero")

	// ErrInvalidChainID is returned when a chain id is too large to be folded
	// into v.
	ErrInvalidChainID = ErrorKind("ErrInvalidChainID")

	// ErrRetryLimitExceeded is returned when signing could not find a valid
	// nonce within MaxSignAttempts candidates. This indicates a broken
	// randomness source or curve and should never happen.
	ErrRetryLimitExceeded = ErrorKind("ErrRetryLimitExceeded")

	// ErrInputTooLong is returned when an RLP item is too long for the 8
	// byte length prefix.
	ErrInputTooLong = ErrorKind("ErrInputTooLong")

	// ErrInvalidRLPItem is returned when a value cannot be RLP encoded.
	ErrInvalidRLPItem = ErrorKind("ErrInvalidRLPItem")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an error related to keys, signatures or encodings. It has
// full support for errors.Is and errors.As, so the caller can ascertain the
// specific reason for the error by checking the underlying error.
type Error struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error given a set of arguments.
func NewError(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}
