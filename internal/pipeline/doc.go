// Package pipeline runs a scan: list unread invitations, extract a date from
// each, insert the event and mark the message read.
//
// There is no deduplication. Removing the UNREAD label is what keeps a
// message from being processed again.
package pipeline
