package api

import (
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
)

type travelOptionView struct {
	ID             int64  `json:"id"`
	Type           string `json:"type"`
	Source         string `json:"source"`
	Destination    string `json:"destination"`
	DateTime       string `json:"date_time"`
	Price          string `json:"price"`
	AvailableSeats int    `json:"available_seats"`
	Label          string `json:"label"`
}

func newTravelOptionView(o domain.TravelOption, loc *time.Location) travelOptionView {
	return travelOptionView{
		ID:             o.ID,
		Type:           string(o.Type),
		Source:         o.Source,
		Destination:    o.Destination,
		DateTime:       o.DateTime.In(loc).Format(time.RFC3339),
		Price:          domain.FormatCents(o.PriceCents),
		AvailableSeats: o.AvailableSeats,
		Label:          o.String(),
	}
}

type bookingView struct {
	ID             int64             `json:"id"`
	TravelOptionID int64             `json:"travel_option_id"`
	TravelOption   *travelOptionView `json:"travel_option,omitempty"`
	Seats          int               `json:"number_of_seats"`
	TotalPrice     string            `json:"total_price"`
	Status         string            `json:"status"`
	BookingDate    string            `json:"booking_date"`
}

func newBookingView(b domain.Booking, loc *time.Location) bookingView {
	view := bookingView{
		ID:             b.ID,
		TravelOptionID: b.TravelOptionID,
		Seats:          b.Seats,
		TotalPrice:     domain.FormatCents(b.TotalPriceCents),
		Status:         string(b.Status),
		BookingDate:    b.CreatedAt.In(loc).Format(time.RFC3339),
	}
	if b.TravelOption != nil {
		option := newTravelOptionView(*b.TravelOption, loc)
		view.TravelOption = &option
	}
	return view
}

type userView struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func newUserView(u domain.User) userView {
	return userView{ID: u.ID, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}
