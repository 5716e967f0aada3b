// Package mailbox retrieves raw messages from a remote POP3 mailbox and
// hands them, one at a time, to a handler for scrubbing. A message is only
// deleted from the mailbox after its handler has returned success, so a
// failed scrub leaves the message on the server for the next run.
package mailbox
