package travel

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/logging"
	"github.com/Domenick1991/travelbooking/internal/repository"
)

type TravelUseCase interface {
	List(ctx context.Context, filter domain.TravelOptionFilter) ([]domain.TravelOption, error)
	GetByID(ctx context.Context, id int64) (*domain.TravelOption, error)
	Create(ctx context.Context, option *domain.TravelOption) error
}

type Cache interface {
	GetTravelOptions(ctx context.Context, filter domain.TravelOptionFilter) ([]domain.TravelOption, int64, error)
	SetTravelOptions(ctx context.Context, filter domain.TravelOptionFilter, version int64, options []domain.TravelOption) error
	InvalidateTravelOptions(ctx context.Context) error
}

type TravelService struct {
	repo  repository.TravelOptionRepository
	cache Cache
}

// NewTravelService accepts a nil cache, in which case every list hits the database.
func NewTravelService(repo repository.TravelOptionRepository, cache Cache) *TravelService {
	return &TravelService{repo: repo, cache: cache}
}

// List returns bookable options (available seats > 0) matching every
// supplied criterion, earliest departure first.
func (s *TravelService) List(ctx context.Context, filter domain.TravelOptionFilter) ([]domain.TravelOption, error) {
	var (
		version   int64
		cacheable bool
	)
	if s.cache != nil {
		cached, v, err := s.cache.GetTravelOptions(ctx, filter)
		switch {
		case err != nil:
			logging.FromContext(ctx).WithError(err).Warn("travel option cache read failed")
		case cached != nil:
			return cached, nil
		default:
			version, cacheable = v, true
		}
	}

	options, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	// The list is stored under the version seen before the database read.
	// An invalidation in between makes that key unreachable.
	if cacheable {
		if err := s.cache.SetTravelOptions(ctx, filter, version, options); err != nil {
			logging.FromContext(ctx).WithError(err).Warn("travel option cache write failed")
		}
	}
	return options, nil
}

func (s *TravelService) GetByID(ctx context.Context, id int64) (*domain.TravelOption, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TravelService) Create(ctx context.Context, option *domain.TravelOption) error {
	option.Source = strings.TrimSpace(option.Source)
	option.Destination = strings.TrimSpace(option.Destination)

	switch {
	case !option.Type.Valid():
		return domain.ValidationError{Field: "type", Msg: "must be one of Flight, Train, Bus"}
	case option.Source == "" || utf8.RuneCountInString(option.Source) > 100:
		return domain.ValidationError{Field: "source", Msg: "must be 1 to 100 characters"}
	case option.Destination == "" || utf8.RuneCountInString(option.Destination) > 100:
		return domain.ValidationError{Field: "destination", Msg: "must be 1 to 100 characters"}
	case option.DateTime.IsZero():
		return domain.ValidationError{Field: "date_time", Msg: "is required"}
	case option.PriceCents < 0:
		return domain.ValidationError{Field: "price", Msg: "must not be negative"}
	case option.AvailableSeats < 0:
		return domain.ValidationError{Field: "available_seats", Msg: "must not be negative"}
	}

	if err := s.repo.Create(ctx, option); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *TravelService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTravelOptions(ctx); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("travel option cache invalidation failed")
	}
}

var _ TravelUseCase = (*TravelService)(nil)
