// Package chatclient is the client side of the chat relay: it resolves a
// patient's room, maintains a single websocket session to it, and keeps
// an ordered conversation log with optimistic local echo.
//
// The relay broadcasts every frame to all room members including the
// sender, so the controller tags outbound frames with a correlation id
// and drops inbound frames that carry its own role plus a correlation id.
package chatclient
