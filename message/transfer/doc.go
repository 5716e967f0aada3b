// Package transfer applies and reverses Content-transfer-encoding. Only
// quoted-printable and base64 actually transform bytes; 7bit, 8bit, binary,
// and an absent field all pass content through untouched.
//
// The scrubbing pipeline leaves transfer encodings in place while parsing so
// untouched parts keep their exact wire bytes, and reaches for this package
// only around a payload it is about to rewrite: decode before matching,
// re-encode after. "Decoded" here always means wire form to charset form and
// "encoded" the reverse.
package transfer
