package auth

import (
	"net/http"
	"strings"
)

// UserHeader carries the caller's participant name. There are no credentials.
const UserHeader = "user"

// FromHeader returns the caller named in the user header.
func FromHeader(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(UserHeader))
}

// FromHeaderOrQuery also accepts ?user=, for websocket handshakes where
// browsers cannot set headers.
func FromHeaderOrQuery(r *http.Request) string {
	if user := FromHeader(r); user != "" {
		return user
	}
	return strings.TrimSpace(r.URL.Query().Get(UserHeader))
}
