package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/travelbooking/internal/auth"
	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/service/account"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTravelUseCase struct {
	mock.Mock
}

func (m *MockTravelUseCase) List(ctx context.Context, filter domain.TravelOptionFilter) ([]domain.TravelOption, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TravelOption), args.Error(1)
}

func (m *MockTravelUseCase) GetByID(ctx context.Context, id int64) (*domain.TravelOption, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TravelOption), args.Error(1)
}

func (m *MockTravelUseCase) Create(ctx context.Context, option *domain.TravelOption) error {
	args := m.Called(ctx, option)
	return args.Error(0)
}

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, p domain.Principal, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, p, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, p domain.Principal, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, p, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListBookings(ctx context.Context, p domain.Principal) ([]domain.Booking, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, p domain.Principal, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, p, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type MockAccountUseCase struct {
	mock.Mock
}

func (m *MockAccountUseCase) Register(ctx context.Context, input account.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAccountUseCase) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAccountUseCase) GetProfile(ctx context.Context, p domain.Principal) (*domain.User, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAccountUseCase) UpdateProfile(ctx context.Context, p domain.Principal, input account.ProfileInput) (*domain.User, error) {
	args := m.Called(ctx, p, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

var (
	alice     = domain.Principal{UserID: 7, Username: "alice"}
	departure = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
)

type testServer struct {
	router   *gin.Engine
	travel   *MockTravelUseCase
	bookings *MockBookingUseCase
	accounts *MockAccountUseCase
	sessions *auth.SessionManager
}

func newTestServer() *testServer {
	gin.SetMode(gin.TestMode)
	s := &testServer{
		travel:   new(MockTravelUseCase),
		bookings: new(MockBookingUseCase),
		accounts: new(MockAccountUseCase),
		sessions: auth.NewSessionManager("test-secret", time.Hour),
	}
	s.router = NewRouter(Dependencies{
		Travel:     s.travel,
		Bookings:   s.bookings,
		Accounts:   s.accounts,
		Sessions:   s.sessions,
		CookieName: "session",
		Location:   time.UTC,
	})
	return s
}

// do sends a request, optionally authenticated as principal and with a form body.
func (s *testServer) do(t *testing.T, method, target string, principal *domain.Principal, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if principal != nil {
		token, err := s.sessions.Issue(domain.User{ID: principal.UserID, Username: principal.Username})
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: "session", Value: token})
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) doJSON(t *testing.T, method, target string, principal *domain.Principal, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if principal != nil {
		token, err := s.sessions.Issue(domain.User{ID: principal.UserID, Username: principal.Username})
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: "session", Value: token})
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func flightOption(seats int) *domain.TravelOption {
	return &domain.TravelOption{ID: 1, Type: domain.TravelTypeFlight, Source: "Paris", Destination: "Rome", DateTime: departure, PriceCents: 10000, AvailableSeats: seats}
}
