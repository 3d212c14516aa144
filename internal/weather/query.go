package weather

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrEmptyQuery is returned by ParseQuery when the input is blank.
var ErrEmptyQuery = errors.New("empty location query")

// Query is a location descriptor accepted by the provider. Exactly one of
// Coordinates, PostalCode or City is used per request.
type Query interface {
	// String returns the location string the provider expects in its q parameter.
	String() string
	isQuery()
}

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

// Validate reports whether the pair lies within the valid coordinate ranges.
func (c Coordinates) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", c.Lon)
	}
	return nil
}

// PostalCode is passed to the provider as-is.
type PostalCode struct {
	Code string
}

func (p PostalCode) String() string { return p.Code }

// City is a free-text place name.
type City struct {
	Name string
}

// String percent-encodes the name the way encodeURIComponent does, so spaces
// become %20 rather than +.
func (c City) String() string {
	return strings.ReplaceAll(url.QueryEscape(c.Name), "+", "%20")
}

func (Coordinates) isQuery() {}
func (PostalCode) isQuery()  {}
func (City) isQuery()        {}

// ParseQuery classifies user-entered search text. Input consisting only of
// ASCII digits is a postal code; anything else is a city name.
func ParseQuery(text string) (Query, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyQuery
	}
	if isDigits(text) {
		return PostalCode{Code: text}, nil
	}
	return City{Name: text}, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
