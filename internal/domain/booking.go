package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusCancelled BookingStatus = "Cancelled"
)

type Booking struct {
	ID              int64
	UserID          int64
	TravelOptionID  int64
	Seats           int
	TotalPriceCents int64
	Status          BookingStatus
	CreatedAt       time.Time

	// TravelOption is populated by listings and owner lookups.
	TravelOption *TravelOption
}

func (b Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}
