package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/Domenick1991/travelbooking/internal/service/travel"
	"github.com/Domenick1991/travelbooking/internal/ticket"
	"github.com/gin-gonic/gin"
)

const (
	msgBooked        = "Booking successful!"
	msgCancelled     = "Booking cancelled successfully."
	msgInvalidSeats  = "Invalid number of seats or not enough seats available."
	myBookingsPath   = "/my_bookings/"
	seatsField       = "number_of_seats"
	wholeNumberError = "enter a whole number"
)

type BookingHandler struct {
	service  booking.BookingUseCase
	travel   travel.TravelUseCase
	location *time.Location
}

// Seats accepts a JSON number or a form string.
type bookingForm struct {
	Seats json.Number `form:"number_of_seats" json:"number_of_seats"`
}

type bookingFormView struct {
	Seats string `json:"number_of_seats"`
}

type bookTravelResponse struct {
	TravelOption travelOptionView  `json:"travel_option"`
	Form         bookingFormView   `json:"form"`
	Errors       map[string]string `json:"errors,omitempty"`
	Messages     []message         `json:"messages,omitempty"`
}

type myBookingsResponse struct {
	Bookings []bookingView `json:"bookings"`
	Messages []message     `json:"messages,omitempty"`
}

type cancelBookingResponse struct {
	Booking  bookingView `json:"booking"`
	Messages []message   `json:"messages,omitempty"`
}

func NewBookingHandler(service booking.BookingUseCase, travel travel.TravelUseCase, location *time.Location) *BookingHandler {
	return &BookingHandler{service: service, travel: travel, location: location}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	authed := router.Group("/", RequireAuth())
	authed.GET("/book/:travel_id/", h.bookForm)
	authed.POST("/book/:travel_id/", h.book)
	authed.GET("/my_bookings/", h.list)
	authed.GET("/cancel_booking/:booking_id/", h.cancelForm)
	authed.POST("/cancel_booking/:booking_id/", h.cancel)
	authed.GET("/ticket/:booking_id/", h.ticket)
}

func (h *BookingHandler) bookForm(c *gin.Context) {
	option, ok := h.travelOption(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, bookTravelResponse{
		TravelOption: newTravelOptionView(*option, h.location),
		Messages:     takeFlash(c),
	})
}

func (h *BookingHandler) book(c *gin.Context) {
	option, ok := h.travelOption(c)
	if !ok {
		return
	}

	var form bookingForm
	bindErr := c.ShouldBind(&form)
	rerender := func(errs map[string]string, msgs []message) {
		c.JSON(http.StatusOK, bookTravelResponse{
			TravelOption: newTravelOptionView(*option, h.location),
			Form:         bookingFormView{Seats: form.Seats.String()},
			Errors:       errs,
			Messages:     msgs,
		})
	}
	if bindErr != nil {
		rerender(map[string]string{"__all__": "invalid form data"}, nil)
		return
	}

	seats, err := strconv.Atoi(form.Seats.String())
	if err != nil {
		rerender(map[string]string{seatsField: wholeNumberError}, nil)
		return
	}

	_, err = h.service.CreateBooking(c.Request.Context(), principalFrom(c), booking.CreateBookingInput{
		TravelOptionID: option.ID,
		Seats:          seats,
	})
	if err != nil {
		if isFormError(err) {
			rerender(nil, []message{{Level: levelError, Text: msgInvalidSeats}})
			return
		}
		respondFailure(c, err)
		return
	}

	setFlash(c, levelSuccess, msgBooked)
	c.Redirect(http.StatusFound, myBookingsPath)
}

func (h *BookingHandler) list(c *gin.Context) {
	bookings, err := h.service.ListBookings(c.Request.Context(), principalFrom(c))
	if err != nil {
		respondFailure(c, err)
		return
	}

	views := make([]bookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, newBookingView(b, h.location))
	}
	c.JSON(http.StatusOK, myBookingsResponse{Bookings: views, Messages: takeFlash(c)})
}

func (h *BookingHandler) cancelForm(c *gin.Context) {
	b, ok := h.ownedBooking(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cancelBookingResponse{Booking: newBookingView(*b, h.location), Messages: takeFlash(c)})
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, ok := pathID(c, "booking_id")
	if !ok {
		return
	}
	if _, err := h.service.CancelBooking(c.Request.Context(), principalFrom(c), id); err != nil {
		respondFailure(c, err)
		return
	}
	setFlash(c, levelSuccess, msgCancelled)
	c.Redirect(http.StatusFound, myBookingsPath)
}

func (h *BookingHandler) ticket(c *gin.Context) {
	b, ok := h.ownedBooking(c)
	if !ok {
		return
	}

	body, filename, err := ticket.Render(*b, principalFrom(c).Username, h.location)
	if err != nil {
		respondFailure(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", body)
}

func (h *BookingHandler) travelOption(c *gin.Context) (*domain.TravelOption, bool) {
	id, ok := pathID(c, "travel_id")
	if !ok {
		return nil, false
	}
	option, err := h.travel.GetByID(c.Request.Context(), id)
	if err != nil {
		respondFailure(c, err)
		return nil, false
	}
	return option, true
}

func (h *BookingHandler) ownedBooking(c *gin.Context) (*domain.Booking, bool) {
	id, ok := pathID(c, "booking_id")
	if !ok {
		return nil, false
	}
	b, err := h.service.GetBooking(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		respondFailure(c, err)
		return nil, false
	}
	return b, true
}

// pathID parses a positive integer path parameter; anything else does not
// name a resource and is a 404.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusNotFound, "not found")
		return 0, false
	}
	return id, true
}
