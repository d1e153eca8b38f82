package chatclient

import "errors"

var (
	// ErrResolutionFailed covers network failures and in-band error
	// responses from the room endpoint alike.
	ErrResolutionFailed = errors.New("chatclient: room resolution failed")

	// ErrNotConnected reports a send attempted while the transport is not
	// open. The frame is dropped, not queued.
	ErrNotConnected = errors.New("chatclient: channel session not connected")

	// ErrSessionClosed reports an operation on a closed session.
	ErrSessionClosed = errors.New("chatclient: channel session closed")

	// ErrEmptyText rejects blank outbound messages.
	ErrEmptyText = errors.New("chatclient: empty message text")
)
