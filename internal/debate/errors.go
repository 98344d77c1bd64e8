package debate

import "errors"

// Kind enumerates user-visible domain failures. The route layer maps these
// to API error codes; nothing here is retried.
type Kind string

const (
	KindConversationClosed Kind = "conversation_closed"
	KindMalformedHistory   Kind = "malformed_history"
	KindInvalidMessage     Kind = "invalid_message"
)

type DomainError struct {
	Kind Kind
	Msg  string
}

func (e *DomainError) Error() string { return string(e.Kind) + ": " + e.Msg }

// IsKind reports whether err is a DomainError of the given kind.
func IsKind(err error, k Kind) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Kind == k
}
