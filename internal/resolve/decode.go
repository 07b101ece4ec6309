package resolve

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jprybylski/batchrun/internal/uri"
)

// ParseArgument converts a command-line argument into an Argument.
// JSON documents go through Decode; anything else is read as a URI or path.
func ParseArgument(s string) (Argument, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return None{}, nil
	}
	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "\"") || s == "null" {
		return Decode([]byte(s))
	}
	id, err := uri.Parse(s)
	if err != nil {
		return nil, err
	}
	return Direct{URI: id}, nil
}

// Decode converts a JSON invocation argument into an Argument.
//
// Strings and serialized URI objects decode to Direct, objects with a
// resourceUri to Resource, objects with both original and modified to Diff.
// null, empty input and unrecognised objects decode to None. Only malformed
// JSON is an error.
func Decode(b []byte) (Argument, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return None{}, nil
	}
	if b[0] == '"' {
		var id uri.ID
		if err := json.Unmarshal(b, &id); err != nil {
			return nil, fmt.Errorf("decode argument: %w", err)
		}
		return Direct{URI: id}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("decode argument: %w", err)
	}

	if raw, ok := fields["resourceUri"]; ok {
		if id, ok := decodeID(raw); ok {
			return Resource{URI: id}, nil
		}
	}
	rawOrig, hasOrig := fields["original"]
	rawMod, hasMod := fields["modified"]
	if hasOrig && hasMod {
		orig, ok1 := decodeID(rawOrig)
		mod, ok2 := decodeID(rawMod)
		if ok1 && ok2 {
			return Diff{Original: orig, Modified: mod}, nil
		}
	}
	if _, ok := fields["scheme"]; ok {
		if id, ok := decodeID(b); ok {
			return Direct{URI: id}, nil
		}
	}
	return None{}, nil
}

func decodeID(raw json.RawMessage) (uri.ID, bool) {
	var id uri.ID
	if err := json.Unmarshal(raw, &id); err != nil || id.IsZero() {
		return uri.ID{}, false
	}
	return id, true
}
