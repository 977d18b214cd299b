package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/travelbooking/internal/auth"
	"github.com/Domenick1991/travelbooking/internal/service/account"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/Domenick1991/travelbooking/internal/service/travel"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Dependencies struct {
	Travel   travel.TravelUseCase
	Bookings booking.BookingUseCase
	Accounts account.AccountUseCase
	Sessions *auth.SessionManager

	CookieName     string
	SecureCookie   bool
	Location       *time.Location
	AllowedOrigins []string
}

func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.CookieName == "" {
		deps.CookieName = "session"
	}

	router := gin.New()
	router.Use(RequestID(), Logger(), gin.Recovery())
	if len(deps.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Location"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	cookies := cookieJar{name: deps.CookieName, secure: deps.SecureCookie, sessions: deps.Sessions}
	router.Use(cookies.authenticate())

	router.GET("/health", health)

	travelHandler := NewTravelHandler(deps.Travel, deps.Location)
	travelHandler.Register(&router.RouterGroup)

	accountHandler := NewAccountHandler(deps.Accounts, cookies)
	accountHandler.Register(&router.RouterGroup)

	bookingHandler := NewBookingHandler(deps.Bookings, deps.Travel, deps.Location)
	bookingHandler.Register(&router.RouterGroup)

	router.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "not found")
	})
	return router
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
