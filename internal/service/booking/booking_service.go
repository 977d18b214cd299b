package booking

import (
	"context"
	"strconv"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/kafka"
	"github.com/Domenick1991/travelbooking/internal/logging"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/sirupsen/logrus"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, principal domain.Principal, input CreateBookingInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, principal domain.Principal, bookingID int64) (*domain.Booking, error)
	ListBookings(ctx context.Context, principal domain.Principal) ([]domain.Booking, error)
	GetBooking(ctx context.Context, principal domain.Principal, bookingID int64) (*domain.Booking, error)
}

type Cache interface {
	InvalidateTravelOptions(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	options            repository.TravelOptionRepository
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	now                func() time.Time
}

type CreateBookingInput struct {
	TravelOptionID int64 `json:"travel_option_id"`
	Seats          int   `json:"number_of_seats"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

// NewBookingService accepts nil cache and producer.
func NewBookingService(
	bookings repository.BookingRepository,
	options repository.TravelOptionRepository,
	cache Cache,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		options:      options,
		cache:        cache,
		producer:     producer,
		bookingTopic: bookingTopic,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, p domain.Principal, input CreateBookingInput) (*domain.Booking, error) {
	if !p.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	option, err := s.options.GetByID(ctx, input.TravelOptionID)
	if err != nil {
		return nil, err
	}
	if input.Seats <= 0 || input.Seats > option.AvailableSeats {
		return nil, domain.ValidationError{Field: "number_of_seats", Msg: "invalid seat count"}
	}

	booking := &domain.Booking{
		UserID:         p.UserID,
		TravelOptionID: option.ID,
		Seats:          input.Seats,
	}
	// The availability read above may be stale; the repository re-checks it
	// atomically and reports domain.ErrSeatsUnavailable on conflict.
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}
	booking.TravelOption = option

	logging.FromContext(ctx).WithFields(logrus.Fields{
		"booking_id":       booking.ID,
		"travel_option_id": option.ID,
		"seats":            booking.Seats,
		"user_id":          p.UserID,
	}).Info("booking created")

	s.invalidate(ctx)
	s.publish(ctx, kafka.EventBookingCreated, p, booking, option)
	return booking, nil
}

// CancelBooking is idempotent: cancelling an already cancelled booking
// returns it unchanged and credits no seats.
func (s *BookingService) CancelBooking(ctx context.Context, p domain.Principal, bookingID int64) (*domain.Booking, error) {
	if !p.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	booking, changed, err := s.bookings.Cancel(ctx, bookingID, p.UserID)
	if err != nil {
		return nil, err
	}
	if !changed {
		return booking, nil
	}

	logging.FromContext(ctx).WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"seats":      booking.Seats,
		"user_id":    p.UserID,
	}).Info("booking cancelled")

	s.invalidate(ctx)
	option, err := s.options.GetByID(ctx, booking.TravelOptionID)
	if err != nil {
		option = nil
	}
	booking.TravelOption = option
	s.publish(ctx, kafka.EventBookingCancelled, p, booking, option)
	return booking, nil
}

// ListBookings returns the caller's bookings, newest first.
func (s *BookingService) ListBookings(ctx context.Context, p domain.Principal) ([]domain.Booking, error) {
	if !p.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return s.bookings.ListByUser(ctx, p.UserID)
}

func (s *BookingService) GetBooking(ctx context.Context, p domain.Principal, bookingID int64) (*domain.Booking, error) {
	if !p.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return s.bookings.GetForUser(ctx, bookingID, p.UserID)
}

func (s *BookingService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTravelOptions(ctx); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("travel option cache invalidation failed")
	}
}

// publish is best effort: the booking is already committed.
func (s *BookingService) publish(ctx context.Context, eventType string, p domain.Principal, booking *domain.Booking, option *domain.TravelOption) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:            eventType,
		BookingID:       booking.ID,
		UserID:          p.UserID,
		Username:        p.Username,
		TravelOptionID:  booking.TravelOptionID,
		Seats:           booking.Seats,
		TotalPriceCents: booking.TotalPriceCents,
		Status:          string(booking.Status),
		OccurredAt:      s.now(),
	}
	if option != nil {
		event.Route = option.String()
		event.DepartsAt = option.DateTime
	}

	key := strconv.FormatInt(booking.ID, 10)
	log := logging.FromContext(ctx).WithFields(logrus.Fields{"booking_id": booking.ID, "event": eventType})
	if err := s.producer.Publish(ctx, s.bookingTopic, key, event); err != nil {
		log.WithError(err).Warn("failed to publish booking event")
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
			log.WithError(err).Warn("failed to publish booking notification")
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
