package api

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/service/travel"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type TravelHandler struct {
	service  travel.TravelUseCase
	location *time.Location
}

type filterQuery struct {
	Type        string `form:"type" json:"type"`
	Source      string `form:"source" json:"source"`
	Destination string `form:"destination" json:"destination"`
	Date        string `form:"date" json:"date"`
}

type travelOptionsResponse struct {
	Filters       filterQuery        `json:"filters"`
	Errors        map[string]string  `json:"errors,omitempty"`
	TravelOptions []travelOptionView `json:"travel_options"`
	Messages      []message          `json:"messages,omitempty"`
}

func NewTravelHandler(service travel.TravelUseCase, location *time.Location) *TravelHandler {
	return &TravelHandler{service: service, location: location}
}

func (h *TravelHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
}

// list applies the filters only when all of them are valid. Any invalid
// field yields the unfiltered list alongside the field errors.
func (h *TravelHandler) list(c *gin.Context) {
	var query filterQuery
	_ = c.ShouldBindQuery(&query)

	filter, errs := h.parseFilter(query)
	if len(errs) > 0 {
		filter = domain.TravelOptionFilter{}
	}

	options, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		respondFailure(c, err)
		return
	}

	views := make([]travelOptionView, 0, len(options))
	for _, o := range options {
		views = append(views, newTravelOptionView(o, h.location))
	}
	c.JSON(http.StatusOK, travelOptionsResponse{
		Filters:       query,
		Errors:        errs,
		TravelOptions: views,
		Messages:      takeFlash(c),
	})
}

func (h *TravelHandler) parseFilter(q filterQuery) (domain.TravelOptionFilter, map[string]string) {
	var filter domain.TravelOptionFilter
	errs := map[string]string{}

	if t := strings.TrimSpace(q.Type); t != "" {
		parsed, err := domain.ParseTravelType(t)
		if err != nil {
			errs["type"] = err.(domain.ValidationError).Msg
		}
		filter.Type = parsed
	}

	filter.Source = strings.TrimSpace(q.Source)
	if utf8.RuneCountInString(filter.Source) > 100 {
		errs["source"] = "ensure this value has at most 100 characters"
	}
	filter.Destination = strings.TrimSpace(q.Destination)
	if utf8.RuneCountInString(filter.Destination) > 100 {
		errs["destination"] = "ensure this value has at most 100 characters"
	}

	if d := strings.TrimSpace(q.Date); d != "" {
		date, err := time.ParseInLocation(dateLayout, d, h.location)
		if err != nil {
			errs["date"] = "enter a valid date"
		}
		filter.Date = date
	}

	if len(errs) == 0 {
		return filter, nil
	}
	return filter, errs
}
