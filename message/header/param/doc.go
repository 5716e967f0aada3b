// Package param models parameterized header values, the Content-type and
// Content-disposition field bodies in particular. The scrubber leans on it
// for the three things those fields decide: a part's media type (filter
// dispatch), its boundary parameter (multipart splitting), and its charset
// parameter (payload transcoding).
package param
