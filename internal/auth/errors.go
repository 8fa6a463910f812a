package auth

import "errors"

// Kind is the closed set of outcomes a credential operation can fail with.
type Kind int

const (
	// KindStorage is any unexpected persistence failure. Unknown errors map here.
	KindStorage Kind = iota
	// KindMissingCredentials is an empty email, password or refresh token.
	KindMissingCredentials
	// KindInvalidCredentials covers unknown emails, wrong passwords and
	// rejected tokens alike.
	KindInvalidCredentials
	// KindTokenCreation is a signing failure.
	KindTokenCreation
	// KindThrottled is a login attempted past the per-account attempt budget.
	KindThrottled
)

func (k Kind) String() string {
	switch k {
	case KindMissingCredentials:
		return "missing_credentials"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindTokenCreation:
		return "token_creation"
	case KindThrottled:
		return "throttled"
	default:
		return "storage"
	}
}

// Error carries a Kind and the underlying cause. The cause is for logs only
// and never reaches a client.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so callers can test against the
// sentinel values below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrMissingCredentials = &Error{Kind: KindMissingCredentials}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrStorage            = &Error{Kind: KindStorage}
	ErrTokenCreation      = &Error{Kind: KindTokenCreation}
	ErrThrottled          = &Error{Kind: KindThrottled}
)

// Wrap attaches kind to err.
func Wrap(kind Kind, err error) error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the Kind from err. Errors outside the taxonomy are storage errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}
