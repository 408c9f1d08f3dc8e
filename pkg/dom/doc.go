// Package dom is a small, browser-like document model over golang.org/x/net/html.
//
// It keeps control state (values, checked radios, selected options) in the
// markup itself so a rendered document reflects what a user entered, and it
// dispatches input/change/click events to document-level listeners the way a
// page script would observe them. Writes made through SetText, SetStyle and
// attribute helpers never dispatch events.
package dom
