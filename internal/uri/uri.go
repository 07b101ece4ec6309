// Package uri models the file identifiers an editor hands to batchrun.
//
// An ID is the Go form of an editor document URI: a scheme plus a path, with the
// authority and query kept so scheme handlers (git, http, custom commands) can
// locate the document. Two IDs name the same document when their normalized
// scheme and path match; authority and query do not take part in equality.
package uri

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// FileScheme is the scheme of documents that live on the local filesystem.
const FileScheme = "file"

// schemeRE matches a URI scheme prefix. Single letter schemes are rejected so
// Windows drive paths such as C:\tools\x.bat are treated as paths.
var schemeRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]+:`)

// ID identifies a document independent of any open editor.
type ID struct {
	Scheme    string `json:"scheme" yaml:"scheme"`
	Authority string `json:"authority,omitempty" yaml:"authority,omitempty"`
	Path      string `json:"path" yaml:"path"`
	Query     string `json:"query,omitempty" yaml:"query,omitempty"` // escaped
}

// Parse reads a URI string or a bare filesystem path.
//
// Bare paths become absolute file URIs. The query is kept in its escaped form;
// DecodedQuery returns it unescaped.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ID{}, errors.New("uri: empty identifier")
	}
	if !schemeRE.MatchString(s) {
		return FromPath(s)
	}
	u, err := url.Parse(s)
	if err != nil {
		return ID{}, fmt.Errorf("uri: parse %q: %w", s, err)
	}
	id := ID{
		Scheme:    strings.ToLower(u.Scheme),
		Authority: u.Host,
		Path:      u.Path,
		Query:     u.RawQuery,
	}
	if u.Opaque != "" {
		// untitled:Untitled-1, file:C:/x.bat
		p, err := url.PathUnescape(u.Opaque)
		if err != nil {
			return ID{}, fmt.Errorf("uri: parse %q: %w", s, err)
		}
		if id.Scheme == FileScheme && !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		id.Path = p
	}
	return id, nil
}

// FromPath builds a file ID from a local path, made absolute against the
// working directory.
func FromPath(p string) (ID, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return ID{}, fmt.Errorf("uri: abs %q: %w", p, err)
	}
	slashed := filepath.ToSlash(abs)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	return ID{Scheme: FileScheme, Path: slashed}, nil
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool { return id == ID{} }

// Equal reports whether id and other name the same document.
func (id ID) Equal(other ID) bool {
	a, b := id.Normalize(), other.Normalize()
	return a.Scheme == b.Scheme && a.Path == b.Path
}

// Normalize returns id with a lower-case scheme and a cleaned path. For file
// IDs a Windows drive letter is lower-cased, matching how editors print them.
func (id ID) Normalize() ID {
	n := id
	n.Scheme = strings.ToLower(id.Scheme)
	if n.Path != "" {
		n.Path = path.Clean(n.Path)
	}
	if n.Scheme == FileScheme && hasDrive(n.Path) {
		n.Path = "/" + strings.ToLower(n.Path[1:2]) + n.Path[2:]
	}
	return n
}

// LocalPath converts a file ID into an OS path.
func (id ID) LocalPath() (string, error) {
	if !strings.EqualFold(id.Scheme, FileScheme) {
		return "", fmt.Errorf("uri: %s is not a local file", id)
	}
	p := id.Path
	switch {
	case id.Authority != "":
		// UNC share: file://server/share/x.bat
		p = "//" + id.Authority + p
	case hasDrive(p) && runtime.GOOS == "windows":
		p = p[1:]
	}
	return filepath.FromSlash(p), nil
}

// DecodedQuery returns the unescaped query. Editor git URIs carry a JSON
// document there.
func (id ID) DecodedQuery() string {
	q, err := url.QueryUnescape(id.Query)
	if err != nil {
		return id.Query
	}
	return q
}

// Base returns the last element of the path.
func (id ID) Base() string { return path.Base(id.Path) }

// String renders id as a URI.
func (id ID) String() string {
	u := url.URL{
		Scheme:   id.Scheme,
		Host:     id.Authority,
		Path:     id.Path,
		RawQuery: id.Query,
		OmitHost: id.Authority == "" && !strings.EqualFold(id.Scheme, FileScheme),
	}
	return u.String()
}

// MarshalJSON encodes id in its string form.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON accepts either a URI string or a serialized URI object
// carrying scheme, authority, path and query fields. Serialized objects hold
// the query unescaped.
func (id *ID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		parsed, err := Parse(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}
	var obj struct {
		Scheme    string `json:"scheme"`
		Authority string `json:"authority"`
		Path      string `json:"path"`
		Query     string `json:"query"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("uri: decode: %w", err)
	}
	if obj.Scheme == "" {
		return errors.New("uri: object has no scheme")
	}
	*id = ID{
		Scheme:    strings.ToLower(obj.Scheme),
		Authority: obj.Authority,
		Path:      obj.Path,
		Query:     EscapeQuery(obj.Query),
	}
	return nil
}

// hasDrive reports whether p looks like /c:/...
func hasDrive(p string) bool {
	if len(p) < 3 || p[0] != '/' || p[2] != ':' {
		return false
	}
	c := p[1]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// EscapeQuery percent-encodes the bytes of q that are not allowed in a URI
// query. '+' and '%' are encoded too so DecodedQuery returns q unchanged.
func EscapeQuery(q string) string {
	var b strings.Builder
	for i := 0; i < len(q); i++ {
		c := q[i]
		if keepInQuery(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

func keepInQuery(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-._~!$&'()*,;=:@/?", c) >= 0
}
