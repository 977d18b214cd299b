package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTravelHandler_listUnfiltered(t *testing.T) {
	s := newTestServer()
	s.travel.On("List", mock.Anything, domain.TravelOptionFilter{}).Return([]domain.TravelOption{*flightOption(5)}, nil)

	w := s.do(t, http.MethodGet, "/", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp travelOptionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.TravelOptions, 1)
	assert.Equal(t, "100.00", resp.TravelOptions[0].Price)
	assert.Equal(t, "Flight from Paris to Rome", resp.TravelOptions[0].Label)
	assert.Empty(t, resp.Errors)
	s.travel.AssertExpectations(t)
}

func TestTravelHandler_listFiltered(t *testing.T) {
	s := newTestServer()
	want := domain.TravelOptionFilter{
		Type:        domain.TravelTypeTrain,
		Source:      "par",
		Destination: "lyon",
		Date:        time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	s.travel.On("List", mock.Anything, want).Return([]domain.TravelOption{}, nil)

	w := s.do(t, http.MethodGet, "/?type=Train&source=par&destination=lyon&date=2025-01-10", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(mustField(t, w.Body.Bytes(), "travel_options")))
	s.travel.AssertExpectations(t)
}

func TestTravelHandler_invalidFilterListsEverything(t *testing.T) {
	s := newTestServer()
	s.travel.On("List", mock.Anything, domain.TravelOptionFilter{}).Return([]domain.TravelOption{*flightOption(5)}, nil)

	w := s.do(t, http.MethodGet, "/?type=Boat&date=10-01-2025&source=par", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp travelOptionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "type")
	assert.Contains(t, resp.Errors, "date")
	assert.Len(t, resp.TravelOptions, 1)
	assert.Equal(t, "par", resp.Filters.Source)
	s.travel.AssertExpectations(t)
}

func TestTravelHandler_listFailure(t *testing.T) {
	s := newTestServer()
	s.travel.On("List", mock.Anything, domain.TravelOptionFilter{}).Return(nil, errors.New("db down"))

	w := s.do(t, http.MethodGet, "/", nil, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestHealthAndNoRoute(t *testing.T) {
	s := newTestServer()

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/nowhere/", nil, nil).Code)
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer()

	w := s.do(t, http.MethodGet, "/health", nil, nil)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func mustField(t *testing.T, body []byte, field string) json.RawMessage {
	t.Helper()
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &doc))
	return doc[field]
}
