package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMyBookings_requiresLogin(t *testing.T) {
	s := newTestServer()

	w := s.do(t, http.MethodGet, "/my_bookings/", nil, nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login/?next=/my_bookings/", w.Header().Get("Location"))
	s.bookings.AssertNotCalled(t, "ListBookings", mock.Anything, mock.Anything)
}

func TestMyBookings_invalidSessionIsAnonymous(t *testing.T) {
	s := newTestServer()

	w := s.do(t, http.MethodGet, "/my_bookings/", nil, nil, &http.Cookie{Name: "session", Value: "garbage"})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login/?next=/my_bookings/", w.Header().Get("Location"))
}

func TestMyBookings_list(t *testing.T) {
	s := newTestServer()
	s.bookings.On("ListBookings", mock.Anything, alice).Return([]domain.Booking{
		{ID: 2, UserID: 7, TravelOptionID: 1, Seats: 2, TotalPriceCents: 20000, Status: domain.BookingStatusConfirmed, CreatedAt: departure, TravelOption: flightOption(3)},
		{ID: 1, UserID: 7, TravelOptionID: 1, Seats: 1, TotalPriceCents: 10000, Status: domain.BookingStatusCancelled, CreatedAt: departure},
	}, nil)

	w := s.do(t, http.MethodGet, "/my_bookings/", &alice, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp myBookingsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Bookings, 2)
	assert.Equal(t, int64(2), resp.Bookings[0].ID)
	assert.Equal(t, "200.00", resp.Bookings[0].TotalPrice)
	require.NotNil(t, resp.Bookings[0].TravelOption)
	assert.Equal(t, "Cancelled", resp.Bookings[1].Status)
}

func TestBook_getUnknownOption(t *testing.T) {
	s := newTestServer()
	s.travel.On("GetByID", mock.Anything, int64(99)).Return(nil, domain.NotFoundError{Resource: "travel option"})

	w := s.do(t, http.MethodGet, "/book/99/", &alice, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBook_nonNumericIDIsNotFound(t *testing.T) {
	s := newTestServer()

	w := s.do(t, http.MethodGet, "/book/abc/", &alice, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBook_successRedirectsWithNotice(t *testing.T) {
	s := newTestServer()
	s.travel.On("GetByID", mock.Anything, int64(1)).Return(flightOption(5), nil)
	s.bookings.On("CreateBooking", mock.Anything, alice, booking.CreateBookingInput{TravelOptionID: 1, Seats: 2}).
		Return(&domain.Booking{ID: 42, Seats: 2, TotalPriceCents: 20000, Status: domain.BookingStatusConfirmed}, nil)

	w := s.do(t, http.MethodPost, "/book/1/", &alice, url.Values{"number_of_seats": {"2"}})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/my_bookings/", w.Header().Get("Location"))
	flash := cookieNamed(w, flashCookie)
	require.NotNil(t, flash)

	s.bookings.On("ListBookings", mock.Anything, alice).Return([]domain.Booking{}, nil)
	w = s.do(t, http.MethodGet, "/my_bookings/", &alice, nil, flash)

	require.Equal(t, http.StatusOK, w.Code)
	var resp myBookingsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, message{Level: levelSuccess, Text: msgBooked}, resp.Messages[0])
	cleared := cookieNamed(w, flashCookie)
	require.NotNil(t, cleared)
	assert.True(t, cleared.MaxAge < 0)
}

func TestBook_invalidSeatsRerenders(t *testing.T) {
	s := newTestServer()
	s.travel.On("GetByID", mock.Anything, int64(1)).Return(flightOption(5), nil)
	s.bookings.On("CreateBooking", mock.Anything, alice, booking.CreateBookingInput{TravelOptionID: 1, Seats: 6}).
		Return(nil, domain.ValidationError{Field: "number_of_seats", Msg: "invalid seat count"})

	w := s.do(t, http.MethodPost, "/book/1/", &alice, url.Values{"number_of_seats": {"6"}})

	require.Equal(t, http.StatusOK, w.Code)
	var resp bookTravelResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, levelError, resp.Messages[0].Level)
	assert.Equal(t, msgInvalidSeats, resp.Messages[0].Text)
	assert.Equal(t, 5, resp.TravelOption.AvailableSeats)
}

func TestBook_lostRaceRerenders(t *testing.T) {
	s := newTestServer()
	s.travel.On("GetByID", mock.Anything, int64(1)).Return(flightOption(1), nil)
	s.bookings.On("CreateBooking", mock.Anything, alice, mock.Anything).Return(nil, domain.ErrSeatsUnavailable)

	w := s.do(t, http.MethodPost, "/book/1/", &alice, url.Values{"number_of_seats": {"1"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), msgInvalidSeats)
}

func TestBook_deletedUserGoesToLogin(t *testing.T) {
	s := newTestServer()
	s.travel.On("GetByID", mock.Anything, int64(1)).Return(flightOption(5), nil)
	s.bookings.On("CreateBooking", mock.Anything, alice, mock.Anything).
		Return(nil, fmt.Errorf("user 7 no longer exists: %w", domain.ErrUnauthenticated))

	w := s.do(t, http.MethodPost, "/book/1/", &alice, url.Values{"number_of_seats": {"1"}})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login/?next=/book/1/", w.Header().Get("Location"))
}

func TestBook_nonNumericSeats(t *testing.T) {
	s := newTestServer()
	s.travel.On("GetByID", mock.Anything, int64(1)).Return(flightOption(5), nil)

	w := s.do(t, http.MethodPost, "/book/1/", &alice, url.Values{"number_of_seats": {"two"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), wholeNumberError)
	s.bookings.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancel_getConfirmation(t *testing.T) {
	s := newTestServer()
	s.bookings.On("GetBooking", mock.Anything, alice, int64(42)).
		Return(&domain.Booking{ID: 42, UserID: 7, Seats: 2, Status: domain.BookingStatusConfirmed, TravelOption: flightOption(3)}, nil)

	w := s.do(t, http.MethodGet, "/cancel_booking/42/", &alice, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp cancelBookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.Booking.ID)
	s.bookings.AssertNotCalled(t, "CancelBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancel_post(t *testing.T) {
	s := newTestServer()
	s.bookings.On("CancelBooking", mock.Anything, alice, int64(42)).
		Return(&domain.Booking{ID: 42, Status: domain.BookingStatusCancelled}, nil)

	w := s.do(t, http.MethodPost, "/cancel_booking/42/", &alice, url.Values{})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/my_bookings/", w.Header().Get("Location"))
	assert.NotNil(t, cookieNamed(w, flashCookie))
}

func TestCancel_foreignBookingIsNotFound(t *testing.T) {
	s := newTestServer()
	s.bookings.On("CancelBooking", mock.Anything, alice, int64(43)).Return(nil, domain.NotFoundError{Resource: "booking"})
	s.bookings.On("GetBooking", mock.Anything, alice, int64(43)).Return(nil, domain.NotFoundError{Resource: "booking"})

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/cancel_booking/43/", &alice, url.Values{}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/cancel_booking/43/", &alice, nil).Code)
}

func TestTicket(t *testing.T) {
	s := newTestServer()
	s.bookings.On("GetBooking", mock.Anything, alice, int64(42)).
		Return(&domain.Booking{ID: 42, UserID: 7, Seats: 2, TotalPriceCents: 20000, Status: domain.BookingStatusConfirmed, CreatedAt: departure, TravelOption: flightOption(3)}, nil)

	w := s.do(t, http.MethodGet, "/ticket/42/", &alice, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ticket_42.pdf")
	assert.True(t, len(w.Body.Bytes()) > 4 && string(w.Body.Bytes()[:4]) == "%PDF")
}

func TestLoginRedirectKeepsSlashes(t *testing.T) {
	assert.Equal(t, "/login/?next=/cancel_booking/5/", loginRedirect("/cancel_booking/5/"))
	assert.Equal(t, "/login/?next=/a+b/", loginRedirect("/a b/"))
	assert.Equal(t, "/login/?next=/book/1/%3Fref%3Dhome", loginRedirect("/book/1/?ref=home"))
}

func TestBook_requiresLoginKeepsQuery(t *testing.T) {
	s := newTestServer()

	w := s.do(t, http.MethodGet, "/book/1/?ref=home", nil, nil)

	assert.Equal(t, http.StatusFound, w.Code)
	next, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/book/1/?ref=home", next.Query().Get("next"))
	s.travel.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestBook_jsonBody(t *testing.T) {
	s := newTestServer()
	s.travel.On("GetByID", mock.Anything, int64(1)).Return(flightOption(5), nil)
	s.bookings.On("CreateBooking", mock.Anything, alice, booking.CreateBookingInput{TravelOptionID: 1, Seats: 3}).
		Return(&domain.Booking{ID: 43, Seats: 3}, nil)

	w := s.doJSON(t, http.MethodPost, "/book/1/", &alice, `{"number_of_seats": 3}`)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/my_bookings/", w.Header().Get("Location"))
}

func TestBook_malformedBodyRerenders(t *testing.T) {
	s := newTestServer()
	s.travel.On("GetByID", mock.Anything, int64(1)).Return(flightOption(5), nil)

	w := s.doJSON(t, http.MethodPost, "/book/1/", &alice, `{"number_of_seats":`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp bookTravelResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid form data", resp.Errors["__all__"])
	s.bookings.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything, mock.Anything)
}
