package header

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/zostay/go-addr/pkg/addr"

	"github.com/zostay/mailscrub/message/header/param"
)

var (
	// ErrNoSuchField is returned by getters when the named field is not
	// present in the header.
	ErrNoSuchField = errors.New("no such header field")

	// ErrNoSuchFieldParameter is returned by parameter getters when the
	// field exists but does not carry the requested parameter.
	ErrNoSuchFieldParameter = errors.New("no such header field parameter")

	// ErrManyFields is returned by single-value getters when the named field
	// occurs more than once. The first value is still returned alongside it.
	ErrManyFields = errors.New("many header fields found")

	// ErrWrongAddressType is returned by address setters given something
	// other than a string or an addr.Address.
	ErrWrongAddressType = errors.New("incorrect address type during write")
)

// Field names from RFC 5322 and the MIME fields of RFC 2045 that have typed
// accessors below. The Content-* trio drives scrubbing: Content-type decides
// how a part is filtered, Content-disposition marks it an attachment, and
// Content-id is what pruning matches against.
const (
	Bcc                     = "Bcc"
	Cc                      = "Cc"
	Comments                = "Comments"
	ContentDisposition      = "Content-disposition"
	ContentID               = "Content-id"
	ContentTransferEncoding = "Content-transfer-encoding"
	ContentType             = "Content-type"
	Date                    = "Date"
	From                    = "From"
	InReplyTo               = "In-reply-to"
	Keywords                = "Keywords"
	MessageID               = "Message-id"
	References              = "References"
	ReplyTo                 = "Reply-to"
	Sender                  = "Sender"
	Subject                 = "Subject"
	To                      = "To"
)

// UnixDateWithEarlyYear handles a date shape seen in real mailboxes that
// neither the RFC parser nor dateparse accepts.
const UnixDateWithEarlyYear = "Mon Jan 02 15:04:05 2006 MST"

// Header layers typed, cached accessors over a Base, which owns field
// storage and order. Reading through a typed accessor never rewrites the
// underlying field, so a header that is only inspected round-trips
// byte-for-byte.
//
// Getter conventions: a missing field yields the zero value with
// ErrNoSuchField; a field that occurs more than once yields the first value
// with ErrManyFields; parameter getters add ErrNoSuchFieldParameter when the
// field is present but the parameter is not.
type Header struct {
	Base

	// parsed memoizes parsed field bodies by lowercased field name. Cached
	// values must be immutable or handed out as copies, or a caller could
	// drift the cache away from the stored field bytes. Fields with a
	// semantic value are assumed singular, which holds for everything this
	// program reads.
	parsed map[string]any
}

// Clone returns a deep copy of the header.
func (hd *Header) Clone() *Header {
	// cached values are immutable and shared as-is
	cache := make(map[string]any, len(hd.parsed))
	for k, v := range hd.parsed {
		cache[k] = v
	}

	return &Header{
		Base:   *hd.Base.Clone(),
		parsed: cache,
	}
}

func (hd *Header) cacheLookup(name string) (any, bool) {
	v, ok := hd.parsed[strings.ToLower(name)]
	return v, ok
}

func (hd *Header) cacheStore(name string, value any) {
	if hd.parsed == nil {
		hd.parsed = make(map[string]any, hd.Len())
	}
	hd.parsed[strings.ToLower(name)] = value
}

// Get retrieves the body of the named field as a string, following the
// getter conventions described on Header.
func (hd *Header) Get(name string) (string, error) {
	idxs := hd.GetIndexesNamed(name)
	if len(idxs) == 0 {
		return "", ErrNoSuchField
	}

	body := hd.GetField(idxs[0]).Body()
	if len(idxs) > 1 {
		return body, ErrManyFields
	}

	return body, nil
}

// ParseTime parses a date field body, trying the RFC 5322 format first and
// then progressively more forgiving parsers. Real mailboxes carry dates in
// shapes the RFC never blessed; refusing them would make those messages
// unreadable for no benefit.
func ParseTime(s string) (time.Time, error) {
	when, err := mail.ParseDate(s)
	if err == nil {
		return when, nil
	}

	when, err = dateparse.ParseAny(s)
	if err == nil {
		return when, nil
	}

	when, err = time.Parse(UnixDateWithEarlyYear, s)
	if err == nil {
		return when, nil
	}

	return when, fmt.Errorf("cannot parse %q as a time", s)
}

func (hd *Header) loadTime(name string) (time.Time, error) {
	body, err := hd.Get(name)
	if err != nil {
		return time.Time{}, err
	}

	t, err := ParseTime(body)
	if err != nil {
		return t, err
	}

	hd.cacheStore(name, t)

	return t, nil
}

// GetTime reads the named field as a date via ParseTime, caching the parsed
// value.
func (hd *Header) GetTime(name string) (time.Time, error) {
	if v, ok := hd.cacheLookup(name); ok {
		if t, ok := v.(time.Time); ok {
			return t, nil
		}
	}

	return hd.loadTime(name)
}

// ParseAddressList parses an address field body. A strict parse is
// attempted first; when it fails, a lenient fallback takes over that
// returns something for any input, however mangled. The fallback trades
// correctness for coverage, so its results can be odd.
func ParseAddressList(s string) addr.AddressList {
	list, err := addr.ParseEmailAddressList(s)
	if err != nil {
		list = scrapeAddressList(s)
	}

	return list
}

func (hd *Header) loadAddressList(name string) (addr.AddressList, error) {
	body, err := hd.Get(name)
	if err != nil {
		return nil, err
	}

	list := ParseAddressList(body)
	hd.cacheStore(name, list)

	return list, nil
}

// GetAddressList reads the named field as an address list via
// ParseAddressList, caching the parsed value.
func (hd *Header) GetAddressList(name string) (addr.AddressList, error) {
	if v, ok := hd.cacheLookup(name); ok {
		if list, ok := v.(addr.AddressList); ok {
			return list, nil
		}
	}

	return hd.loadAddressList(name)
}

func (hd *Header) loadAllAddressLists(name string) ([]addr.AddressList, error) {
	bodies, err := hd.GetAll(name)
	if err != nil {
		return nil, err
	}

	lists := make([]addr.AddressList, len(bodies))
	for i, body := range bodies {
		lists[i] = ParseAddressList(body)
	}

	hd.cacheStore(name, lists)

	return lists, nil
}

// GetAllAddressLists reads every occurrence of the named field as an
// address list, one list per occurrence.
func (hd *Header) GetAllAddressLists(name string) ([]addr.AddressList, error) {
	if v, ok := hd.cacheLookup(name); ok {
		if lists, ok := v.([]addr.AddressList); ok {
			return lists, nil
		}
	}

	return hd.loadAllAddressLists(name)
}

func (hd *Header) loadParamValue(name string) (*param.Value, error) {
	body, err := hd.Get(name)
	if err != nil {
		return nil, err
	}

	val, err := param.Parse(body)
	if err != nil {
		return nil, err
	}

	hd.cacheStore(name, val)

	return val, nil
}

// GetParamValue reads the named field as a parameterized value
// (Content-type, Content-disposition).
func (hd *Header) GetParamValue(name string) (*param.Value, error) {
	if v, ok := hd.cacheLookup(name); ok {
		if val, ok := v.(*param.Value); ok {
			if val == nil {
				return nil, nil
			}
			// param.Value is mutable, hand out a copy to keep the cache honest
			return val.Clone(), nil
		}
	}

	return hd.loadParamValue(name)
}

func (hd *Header) loadAll(name string) ([]string, error) {
	fields := hd.GetAllFieldsNamed(name)
	if len(fields) == 0 {
		return nil, ErrNoSuchField
	}

	bodies := make([]string, len(fields))
	for i, fld := range fields {
		bodies[i] = fld.Body()
	}

	hd.cacheStore(name, bodies)

	return bodies, nil
}

// GetAll returns the bodies of every field with the given name, in header
// order, or ErrNoSuchField when there are none.
func (hd *Header) GetAll(name string) ([]string, error) {
	if v, ok := hd.cacheLookup(name); ok {
		if bodies, ok := v.([]string); ok {
			return bodies, nil
		}
	}

	return hd.loadAll(name)
}

// SetAll makes the named field occur exactly len(bodies) times: existing
// occurrences are rewritten in place, missing ones are appended at the end,
// extra ones are deleted.
func (hd *Header) SetAll(name string, bodies ...string) {
	idxs := hd.GetIndexesNamed(name)

	for i, body := range bodies {
		if i < len(idxs) {
			hd.GetField(idxs[i]).SetBody(body)
			continue
		}

		hd.InsertBeforeField(hd.Len(), name, body)
	}

	for i := len(idxs) - 1; i >= len(bodies); i-- {
		_ = hd.DeleteField(idxs[i])
	}
}

// Set makes the named field occur exactly once with the given body. The
// first existing occurrence is rewritten in place so the field keeps its
// position; duplicates are deleted; a missing field is appended at the end.
// All Set* methods replace this way.
func (hd *Header) Set(name, body string) {
	idxs := hd.GetIndexesNamed(name)

	if len(idxs) == 0 {
		hd.InsertBeforeField(hd.Len(), name, body)
		return
	}

	// indexes shift left as fields are deleted, so delete from the back
	for i := len(idxs) - 1; i > 0; i-- {
		_ = hd.DeleteField(idxs[i])
	}

	fld := hd.GetField(idxs[0])
	fld.SetName(name)
	fld.SetBody(body)
}

// SetTime sets the named field to the given time, formatted per
// time.RFC1123Z.
func (hd *Header) SetTime(name string, body time.Time) {
	hd.cacheStore(name, body)
	hd.Set(name, body.Format(time.RFC1123Z))
}

// SetAddressList sets the named field to the given addresses as a single
// field.
func (hd *Header) SetAddressList(name string, body ...addr.Address) {
	hd.cacheStore(name, body)
	hd.Set(name, addr.AddressList(body).String())
}

// SetAllAddressLists sets one occurrence of the named field per given
// address list.
func (hd *Header) SetAllAddressLists(name string, bodies ...addr.AddressList) {
	hd.cacheStore(name, bodies)
	flat := make([]string, len(bodies))
	for i, body := range bodies {
		flat[i] = body.String()
	}
	hd.SetAll(name, flat...)
}

// SetParamValue sets the named field to the given parameterized value.
func (hd *Header) SetParamValue(name string, body *param.Value) {
	hd.cacheStore(name, body)
	hd.Set(name, body.String())
}

func (hd *Header) primaryValue(name string) (string, error) {
	val, err := hd.GetParamValue(name)
	if err != nil {
		return "", err
	}

	return val.Value(), nil
}

// setPrimaryValue replaces the primary value of a parameterized field,
// keeping its other parameters. Duplicate occurrences are deleted first so
// the read below cannot fail with ErrManyFields.
func (hd *Header) setPrimaryValue(name, v string) {
	idxs := hd.GetIndexesNamed(name)
	for i := len(idxs) - 1; i > 0; i-- {
		_ = hd.DeleteField(idxs[i])
	}

	val, err := hd.GetParamValue(name)
	if err != nil {
		// unreadable or missing, start the field over
		val = param.New(v)
	} else {
		val = param.Modify(val, param.Change(v))
	}

	hd.SetParamValue(name, val)
}

func (hd *Header) fieldParam(name, p string) (string, error) {
	val, err := hd.GetParamValue(name)
	if err != nil {
		return "", err
	}

	if v := val.Parameter(p); v != "" {
		return v, nil
	}

	return "", ErrNoSuchFieldParameter
}

// setFieldParam updates one parameter of a parameterized field. The field
// must already exist.
func (hd *Header) setFieldParam(name, p, v string) error {
	val, err := hd.GetParamValue(name)
	if err != nil {
		return err
	}

	hd.SetParamValue(name, param.Modify(val, param.Set(p, v)))

	return nil
}

// GetContentType returns the Content-type field as a param.Value.
func (hd *Header) GetContentType() (*param.Value, error) {
	return hd.GetParamValue(ContentType)
}

// SetContentType replaces the Content-type field with the given param.Value.
func (hd *Header) SetContentType(v *param.Value) {
	hd.SetParamValue(ContentType, v)
}

// GetMediaType returns the media type from the Content-type field, without
// its parameters. This is what part classification dispatches on.
func (hd *Header) GetMediaType() (string, error) {
	return hd.primaryValue(ContentType)
}

// SetMediaType replaces the media type on the Content-type field, creating
// the field if needed and keeping any parameters already set.
func (hd *Header) SetMediaType(mt string) {
	hd.setPrimaryValue(ContentType, mt)
}

// GetCharset returns the charset parameter of the Content-type field. The
// returned label names the encoding of the part's decoded payload bytes.
func (hd *Header) GetCharset() (string, error) {
	return hd.fieldParam(ContentType, param.Charset)
}

// SetCharset sets the charset parameter on the Content-type field, which
// must already exist.
func (hd *Header) SetCharset(c string) error {
	return hd.setFieldParam(ContentType, param.Charset, c)
}

// GetBoundary returns the boundary parameter of the Content-type field,
// which delimits the sub-parts of a multipart message.
func (hd *Header) GetBoundary() (string, error) {
	return hd.fieldParam(ContentType, param.Boundary)
}

// SetBoundary sets the boundary parameter on the Content-type field, which
// must already exist.
func (hd *Header) SetBoundary(b string) error {
	return hd.setFieldParam(ContentType, param.Boundary, b)
}

// GetContentDisposition returns the Content-disposition field as a
// param.Value.
func (hd *Header) GetContentDisposition() (*param.Value, error) {
	return hd.GetParamValue(ContentDisposition)
}

// SetContentDisposition replaces the Content-disposition field with the
// given param.Value.
func (hd *Header) SetContentDisposition(v *param.Value) {
	hd.SetParamValue(ContentDisposition, v)
}

// GetPresentation reads the primary value of the Content-disposition
// field, typically "inline" or "attachment". Note that attachment
// classification does not read this value; any Content-disposition
// occurrence marks a part as an attachment regardless of what it says.
func (hd *Header) GetPresentation() (string, error) {
	return hd.primaryValue(ContentDisposition)
}

// SetPresentation replaces the primary value of the Content-disposition
// field, creating the field if needed and keeping any parameters already
// set.
func (hd *Header) SetPresentation(d string) {
	hd.setPrimaryValue(ContentDisposition, d)
}

// GetFilename returns the filename parameter of the Content-disposition
// field.
func (hd *Header) GetFilename() (string, error) {
	return hd.fieldParam(ContentDisposition, param.Filename)
}

// SetFilename sets the filename parameter on the Content-disposition field,
// which must already exist.
func (hd *Header) SetFilename(f string) error {
	return hd.setFieldParam(ContentDisposition, param.Filename, f)
}

// GetContentID returns the identifier in the Content-id field exactly as
// written, angle brackets and all. Callers comparing identifiers against
// cid: references must normalize both sides first.
func (hd *Header) GetContentID() (string, error) {
	return hd.Get(ContentID)
}

// SetContentID sets the Content-id field.
func (hd *Header) SetContentID(cid string) {
	hd.Set(ContentID, cid)
}

// GetDate returns the Date field as a time.Time, parsed via ParseTime.
func (hd *Header) GetDate() (time.Time, error) {
	return hd.GetTime(Date)
}

// SetDate sets the Date field from the given time.
func (hd *Header) SetDate(d time.Time) {
	hd.SetTime(Date, d)
}

// GetSubject returns the body of the Subject field.
func (hd *Header) GetSubject() (string, error) {
	return hd.Get(Subject)
}

// SetSubject replaces the Subject field.
func (hd *Header) SetSubject(s string) {
	hd.Set(Subject, s)
}

// setAddressField sets an address field from values that are each either a
// string or an addr.Address.
func (hd *Header) setAddressField(name string, vals []any) error {
	var list addr.AddressList
	for _, val := range vals {
		switch v := val.(type) {
		case string:
			parsed, err := addr.ParseEmailAddress(v)
			if err != nil {
				return err
			}
			list = append(list, parsed)
		case addr.Address:
			list = append(list, v)
		default:
			return ErrWrongAddressType
		}
	}
	hd.SetAddressList(name, list...)
	return nil
}

// GetTo returns the To field as an addr.AddressList.
func (hd *Header) GetTo() (addr.AddressList, error) {
	return hd.GetAddressList(To)
}

// SetTo sets the To field from strings or addr.Address values. Strings must
// parse strictly.
func (hd *Header) SetTo(a ...any) error {
	return hd.setAddressField(To, a)
}

// GetFrom returns the From field as an addr.AddressList.
func (hd *Header) GetFrom() (addr.AddressList, error) {
	return hd.GetAddressList(From)
}

// SetFrom sets the From field from strings or addr.Address values. Strings
// must parse strictly.
func (hd *Header) SetFrom(a ...any) error {
	return hd.setAddressField(From, a)
}

// GetMessageID returns the body of the Message-id field.
func (hd *Header) GetMessageID() (string, error) {
	return hd.Get(MessageID)
}

// SetMessageID sets the Message-id field.
func (hd *Header) SetMessageID(ref string) {
	hd.Set(MessageID, ref)
}

// GetTransferEncoding returns the body of the Content-transfer-encoding
// field.
func (hd *Header) GetTransferEncoding() (string, error) {
	return hd.Get(ContentTransferEncoding)
}

// SetTransferEncoding replaces the Content-transfer-encoding field.
func (hd *Header) SetTransferEncoding(b string) {
	hd.Set(ContentTransferEncoding, b)
}

// splitComment strips RFC 5322 comments from a raw address, returning the
// text outside any parentheses and the text inside them.
func splitComment(s string) (string, string) {
	var plain, note strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '(':
			depth++
			if depth > 1 {
				note.WriteRune(r)
			}
		case r == ')':
			depth--
			switch {
			case depth == 0:
				// closed the outermost comment
			case depth < 0:
				depth = 0
				plain.WriteRune(r)
			default:
				note.WriteRune(r)
			}
		case depth > 0:
			note.WriteRune(r)
		default:
			plain.WriteRune(r)
		}
	}

	return plain.String(), note.String()
}

// scrapeAddressList is the lenient fallback behind ParseAddressList. It
// splits on commas, pulls comments out of each piece, treats the last word
// as the address and everything before it as the display name, and wraps
// the result in an addr.Mailbox. Groups are not modeled; a field that uses
// them parses as something flat and approximate. The point is to return a
// usable value for the malformed address fields real mail carries, not to
// validate anything.
func scrapeAddressList(v string) addr.AddressList {
	chunks := strings.Split(v, ",")
	out := make(addr.AddressList, 0, len(chunks))
	for _, raw := range chunks {
		text, note := splitComment(raw)

		text = strings.TrimSpace(text)
		note = strings.TrimSpace(note)

		words := strings.Fields(text)

		var display, address string
		switch {
		case len(words) == 0:
			address = ""
		case len(words) > 1:
			display = strings.Join(words[:len(words)-1], " ")
			address = words[len(words)-1]
		default:
			address = words[0]
		}

		if address == "" {
			continue
		}

		var spec *addr.AddrSpec
		if i := strings.Index(address, "@"); i > -1 {
			spec = addr.NewAddrSpecParsed(
				address[:i],
				address[i+1:],
				address,
			)
		} else {
			spec = addr.NewAddrSpecParsed(
				address,
				"",
				address,
			)
		}

		mbox, err := addr.NewMailboxParsed(display, spec, note, raw)
		if err != nil {
			mbox, _ = addr.NewMailboxParsed(display, spec, "", raw)
		}

		out = append(out, mbox)
	}

	return out
}
