package chrono

import "time"

type API interface {
	Now() time.Time
	Location() *time.Location
}

type StandardImpl struct {
	location *time.Location
}

// NewStandardImpl creates a clock that renders times in the given IANA zone,
// an empty zone means UTC.
func NewStandardImpl(zone string) (StandardImpl, error) {
	if zone == "" {
		return StandardImpl{location: time.UTC}, nil
	}
	location, err := time.LoadLocation(zone)
	if err != nil {
		return StandardImpl{}, err
	}
	return StandardImpl{location: location}, nil
}

func (s StandardImpl) Now() time.Time {
	return time.Now().In(s.location)
}

func (s StandardImpl) Location() *time.Location {
	return s.location
}

// FixedImpl always reports the same instant.
type FixedImpl struct {
	Time time.Time
}

func (f FixedImpl) Now() time.Time {
	return f.Time
}

func (f FixedImpl) Location() *time.Location {
	if f.Time.Location() == nil {
		return time.UTC
	}
	return f.Time.Location()
}
