package interaction

import (
	"strings"

	"github.com/PrimeAPI/JDA/internal/util"
)

// Component ids ride on the platform's opaque custom id string: the
// originating user, an action tag and optional parameters, colon-joined.
// The platform caps the whole string at 100 characters.
const (
	customIDSep    = ":"
	customIDMaxLen = 100
)

// CustomID is the decoded form of a component's custom id.
type CustomID struct {
	Originator uint64
	Action     string
	Params     []string
}

// EncodeCustomID joins originator, action and params into a component id.
// There is no truncation fallback; oversized ids fail so the caller can
// shorten its parameters.
func EncodeCustomID(originator uint64, action string, params ...string) (string, error) {
	parts := make([]string, 0, 2+len(params))
	parts = append(parts, util.FormatSnowflake(originator), action)
	parts = append(parts, params...)
	id := strings.Join(parts, customIDSep)
	if len(id) > customIDMaxLen {
		return "", ErrCustomIDTooLong
	}
	return id, nil
}

// DecodeCustomID splits a raw component id. Originator and action are
// mandatory; params are passed through unvalidated, their interpretation
// belongs to the handler. The originator must parse as a snowflake: a
// non-numeric first field is rejected here as malformed rather than
// surviving to fail the authorization comparison, since every id this
// process encodes starts with a user id. Either way the click is dropped.
func DecodeCustomID(raw string) (CustomID, error) {
	parts := strings.Split(raw, customIDSep)
	if len(parts) < 2 {
		return CustomID{}, ErrMalformedCustomID
	}
	originator, err := util.ParseSnowflake(parts[0])
	if err != nil {
		return CustomID{}, ErrMalformedCustomID
	}
	return CustomID{
		Originator: originator,
		Action:     parts[1],
		Params:     parts[2:],
	}, nil
}
