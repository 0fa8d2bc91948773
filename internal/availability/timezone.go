package availability

import (
	"errors"
	"fmt"
	"time"
)

var ErrUnknownTimeZone = errors.New("unknown time zone")

var zoneIndex = func() map[string]struct{} {
	m := make(map[string]struct{}, len(zoneNames))
	for _, name := range zoneNames {
		m[name] = struct{}{}
	}
	return m
}()

// IsValidTimeZone reports whether name is on the supported zone allow-list.
func IsValidTimeZone(name string) bool {
	_, ok := zoneIndex[name]
	return ok
}

// LoadZone resolves a supported zone name to its rules. A name outside the
// allow-list, or one the platform zone database cannot resolve, is a
// configuration error for the caller to surface.
func LoadZone(name string) (*time.Location, error) {
	if !IsValidTimeZone(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimeZone, name)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnknownTimeZone, name, err)
	}
	return loc, nil
}
