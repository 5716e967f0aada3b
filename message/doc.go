// Package message models a mail message as a tree of parts and keeps the
// bytes of everything it does not understand, or that you do not touch,
// exactly as they arrived. Parsing is forgiving (real mail is full of
// formatting that is not strictly correct) while generation is strict, and
// the two pair up to support transformations that rewrite a few parts of a
// message while the rest round-trips byte for byte. The filter package
// builds its scrubbing passes on exactly that pairing.
//
// Any message can be handled as an Opaque object: a header plus a body
// io.Reader that assigns no meaning to the content. Parse() with the
// WithoutMultipart() option always returns one, reading only the header and
// leaving the body reader untouched, which is the cheap way to inspect the
// top-level fields of a large message:
//
//	msg, err := message.Parse(in, message.WithoutMultipart())
//	if err != nil {
//	  panic(err)
//	}
//	subject, err := msg.GetHeader().GetSubject()
//
// To work with the individual parts of a multipart message, let Parse()
// recurse instead. It breaks a message into sub-parts, down to a
// configurable depth, and returns a *Multipart whenever the Content-type
// calls for one.
//
// New messages are put together with a Buffer: write body bytes into it and
// take an *Opaque out with its Opaque() method, or Add() parts to it and
// take a *Multipart out with its Multipart() method.
package message
