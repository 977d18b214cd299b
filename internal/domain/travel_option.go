package domain

import (
	"fmt"
	"strings"
	"time"
)

type TravelType string

const (
	TravelTypeFlight TravelType = "Flight"
	TravelTypeTrain  TravelType = "Train"
	TravelTypeBus    TravelType = "Bus"
)

var TravelTypes = []TravelType{TravelTypeFlight, TravelTypeTrain, TravelTypeBus}

func (t TravelType) Valid() bool {
	for _, known := range TravelTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseTravelType accepts the canonical names case-insensitively.
func ParseTravelType(s string) (TravelType, error) {
	for _, known := range TravelTypes {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", ValidationError{Field: "type", Msg: fmt.Sprintf("select a valid choice, %q is not one of the available choices", s)}
}

type TravelOption struct {
	ID             int64
	Type           TravelType
	Source         string
	Destination    string
	DateTime       time.Time
	PriceCents     int64
	AvailableSeats int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (o TravelOption) String() string {
	return fmt.Sprintf("%s from %s to %s", o.Type, o.Source, o.Destination)
}

// TravelOptionFilter narrows the bookable list. Zero fields impose no constraint.
type TravelOptionFilter struct {
	Type        TravelType
	Source      string
	Destination string
	// Date is a calendar date; only its year, month and day are used.
	Date time.Time
}

func (f TravelOptionFilter) HasDate() bool {
	return !f.Date.IsZero()
}

// DayRange returns the half-open interval covering Date in loc.
func (f TravelOptionFilter) DayRange(loc *time.Location) (time.Time, time.Time) {
	y, m, d := f.Date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// Key is a normalized representation used for cache keys.
func (f TravelOptionFilter) Key() string {
	date := ""
	if f.HasDate() {
		date = f.Date.Format("2006-01-02")
	}
	return fmt.Sprintf("type=%s|source=%s|destination=%s|date=%s",
		f.Type,
		strings.ToLower(strings.TrimSpace(f.Source)),
		strings.ToLower(strings.TrimSpace(f.Destination)),
		date,
	)
}
