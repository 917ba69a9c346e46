package marketplace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrTransport is wrapped by failures to get a response body at all: connection
	// errors, timeouts and non-2xx statuses.
	ErrTransport = errors.New("marketplace transport")
	// ErrDecode is wrapped by failures to interpret a response body as a listing.
	ErrDecode = errors.New("marketplace decode")
)

// Record is a single plugin object exactly as the marketplace sent it.
type Record = json.RawMessage

type listingWrapper struct {
	Plugins []json.RawMessage `json:"plugins"`
}

// DecodeListing interprets a listing body. Two shapes are accepted, a bare JSON array
// of plugin objects and an object carrying the array under "plugins". A `null` body,
// an empty array and a wrapper without plugins all decode to an empty listing.
func DecodeListing(data []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrDecode)
	}

	var records []json.RawMessage
	switch trimmed[0] {
	case 'n':
		if string(trimmed) != "null" {
			return nil, fmt.Errorf("%w: unexpected token at start of body", ErrDecode)
		}
		return nil, nil
	case '[':
		err := json.Unmarshal(trimmed, &records)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
	case '{':
		var wrapper listingWrapper
		err := json.Unmarshal(trimmed, &wrapper)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		records = wrapper.Plugins
	default:
		return nil, fmt.Errorf("%w: body is neither an array nor an object", ErrDecode)
	}

	for i, r := range records {
		r = bytes.TrimSpace(r)
		if len(r) == 0 || r[0] != '{' {
			return nil, fmt.Errorf("%w: record %d is not an object", ErrDecode, i)
		}
		records[i] = r
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records, nil
}
