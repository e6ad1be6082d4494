// Package access decides who may read or mutate a direct message. The
// checks are pure and run only after the caller's identity is established.
package access

// Addressed is anything with a sender and a recipient.
type Addressed interface {
	Sender() string
	Recipient() string
}

// CanView reports whether identity is the sender or the recipient of m.
func CanView(identity string, m Addressed) bool {
	if identity == "" {
		return false
	}
	return identity == m.Sender() || identity == m.Recipient()
}

// CanMarkRead reports whether identity is the recipient of m. The sender
// may never mark their own message read.
func CanMarkRead(identity string, m Addressed) bool {
	if identity == "" {
		return false
	}
	return identity == m.Recipient()
}
