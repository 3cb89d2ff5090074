package handler_test

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/map-collection/internal/domain"
	"github.com/pkordes/map-collection/internal/handler"
	"github.com/pkordes/map-collection/internal/service"
)

func TestCreateTrip_ParsesDates(t *testing.T) {
	trips := &mockTrips{
		create: func(_ context.Context, owner string, in service.TripInput) (domain.Trip, error) {
			assert.Equal(t, amy, owner)
			assert.Equal(t, "Tainan", in.Title)
			assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), in.StartDate)
			require.NotNil(t, in.EndDate)
			assert.Equal(t, time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC), *in.EndDate)
			assert.Nil(t, in.Days)
			return domain.Trip{
				ID: uuid.New(), OwnerEmail: owner, Title: in.Title, Days: 3,
				StartDate: in.StartDate, EndDate: in.EndDate,
			}, nil
		},
	}
	h := newRouter(handler.Services{Trips: trips})

	rec := do(t, h, http.MethodPost, "/trips", amy, strings.NewReader(
		`{"title":"Tainan","start_date":"2026-04-01","end_date":"2026-04-03"}`))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"start_date":"2026-04-01"`)
	assert.Contains(t, rec.Body.String(), `"end_date":"2026-04-03"`)
	got := decode[handler.TripResponse](t, rec)
	assert.Equal(t, 3, got.Days)
	assert.Contains(t, rec.Body.String(), `"collaborators":[]`)
}

func TestCreateTrip_DayCountOnly(t *testing.T) {
	trips := &mockTrips{
		create: func(_ context.Context, owner string, in service.TripInput) (domain.Trip, error) {
			require.NotNil(t, in.Days)
			assert.Equal(t, 4, *in.Days)
			assert.Nil(t, in.EndDate)
			return domain.Trip{Title: in.Title, Days: *in.Days, StartDate: in.StartDate}, nil
		},
	}
	h := newRouter(handler.Services{Trips: trips})

	rec := do(t, h, http.MethodPost, "/trips", amy, strings.NewReader(`{"title":"Tainan","start_date":"2026-04-01","days":4}`))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "end_date")
}

func TestCreateTrip_Invalid(t *testing.T) {
	trips := &mockTrips{
		create: func(context.Context, string, service.TripInput) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w: end_date must not be before start_date", domain.ErrValidation)
		},
	}
	h := newRouter(handler.Services{Trips: trips})

	rec := do(t, h, http.MethodPost, "/trips", amy, strings.NewReader(`{"start_date":"2026-04-01"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "title is required")

	rec = do(t, h, http.MethodPost, "/trips", amy, strings.NewReader(`{"title":"x","start_date":"April 1st"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "dates are YYYY-MM-DD")

	rec = do(t, h, http.MethodPost, "/trips", amy, strings.NewReader(`{"title":"x","start_date":"2026-04-03","end_date":"2026-04-01"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "end_date must not be before start_date", decode[handler.ErrorResponse](t, rec).Error.Message)
}

func TestListTrips(t *testing.T) {
	trips := &mockTrips{
		list: func(_ context.Context, caller string, p domain.PaginationParams) (service.TripPage, error) {
			assert.Equal(t, amy, caller)
			assert.Equal(t, domain.PaginationParams{Page: 1, Limit: 100}, p)
			return service.TripPage{Trips: []domain.Trip{{Title: "A"}, {Title: "B"}}, Total: 2}, nil
		},
	}
	h := newRouter(handler.Services{Trips: trips})

	rec := do(t, h, http.MethodGet, "/trips?limit=500", amy, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[handler.TripList](t, rec)
	assert.Len(t, got.Data, 2)
	assert.Equal(t, handler.Pagination{Page: 1, Limit: 100, Total: 2}, got.Pagination)
}

func TestGetTrip_NotAccessible(t *testing.T) {
	trips := &mockTrips{
		get: func(context.Context, string, uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("%w: you are not a member of this trip", domain.ErrForbidden)
		},
	}
	h := newRouter(handler.Services{Trips: trips})

	rec := do(t, h, http.MethodGet, "/trips/"+uuid.NewString(), bob, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", errorCode(t, rec))
}

func TestDeleteTrip(t *testing.T) {
	trips := &mockTrips{
		delete: func(_ context.Context, caller string, _ uuid.UUID) error {
			if caller != amy {
				return fmt.Errorf("%w: only the owner can delete a trip", domain.ErrForbidden)
			}
			return nil
		},
	}
	h := newRouter(handler.Services{Trips: trips})
	id := uuid.NewString()

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/trips/"+id, amy, nil).Code)
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodDelete, "/trips/"+id, bob, nil).Code)
}

func TestAddTripCollaborator(t *testing.T) {
	trips := &mockTrips{
		addCollaborator: func(_ context.Context, _ string, id uuid.UUID, email string) (domain.Trip, error) {
			if email == "ghost@example.com" {
				return domain.Trip{}, domain.ErrNotFound
			}
			return domain.Trip{ID: id, Collaborators: []string{email}}, nil
		},
	}
	h := newRouter(handler.Services{Trips: trips})
	target := "/trips/" + uuid.NewString() + "/collaborators"

	rec := do(t, h, http.MethodPost, target, amy, jsonBody(t, map[string]string{"email": bob}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{bob}, decode[handler.TripResponse](t, rec).Collaborators)

	rec = do(t, h, http.MethodPost, target, amy, jsonBody(t, map[string]string{"email": "ghost@example.com"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---- export ----------------------------------------------------------------

func exportRows(tripID uuid.UUID) []domain.ItineraryRow {
	lat, lng := 22.9971, 120.2127
	return []domain.ItineraryRow{
		{TripID: tripID.String(), TripTitle: "Tainan", Day: 1, Date: "2026-04-01",
			StopName: "Chihkan Tower", StopDescription: "fort, \"old\"", Lat: &lat, Lng: &lng, PhotoURL: "http://media.test/a.jpg"},
		{TripID: tripID.String(), TripTitle: "Tainan", Day: 2, Date: "2026-04-02"},
	}
}

func TestExportTrip_JSONByDefault(t *testing.T) {
	tripID := uuid.New()
	export := &mockExport{
		export: func(_ context.Context, caller string, id uuid.UUID) ([]domain.ItineraryRow, error) {
			assert.Equal(t, amy, caller)
			return exportRows(id), nil
		},
	}
	h := newRouter(handler.Services{Export: export})

	rec := do(t, h, http.MethodGet, "/trips/"+tripID.String()+"/export", amy, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	got := decode[[]handler.ItineraryRowResponse](t, rec)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].StopName)
	assert.Equal(t, "Chihkan Tower", *got[0].StopName)
	assert.Nil(t, got[1].StopName, "empty day has no stop fields")
	assert.Nil(t, got[1].Lat)
}

func TestExportTrip_CSV(t *testing.T) {
	tripID := uuid.New()
	export := &mockExport{
		export: func(_ context.Context, _ string, id uuid.UUID) ([]domain.ItineraryRow, error) {
			return exportRows(id), nil
		},
	}
	h := newRouter(handler.Services{Export: export})

	rec := do(t, h, http.MethodGet, "/trips/"+tripID.String()+"/export?format=csv", amy, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="trip-`+tripID.String()+`.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, strconv.Itoa(rec.Body.Len()), rec.Header().Get("Content-Length"))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"trip_id", "trip_title", "day", "date", "stop_name", "stop_description", "lat", "lng", "photo_url"}, records[0])
	assert.Equal(t, []string{tripID.String(), "Tainan", "1", "2026-04-01", "Chihkan Tower", `fort, "old"`, "22.9971", "120.2127", "http://media.test/a.jpg"}, records[1])
	assert.Equal(t, []string{tripID.String(), "Tainan", "2", "2026-04-02", "", "", "", "", ""}, records[2])
}

func TestExportTrip_UnknownFormat(t *testing.T) {
	h := newRouter(handler.Services{})

	rec := do(t, h, http.MethodGet, "/trips/"+uuid.NewString()+"/export?format=xml", amy, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "format must be one of: json csv", decode[handler.ErrorResponse](t, rec).Error.Message)
}

func TestExportTrip_NotFound(t *testing.T) {
	export := &mockExport{
		export: func(context.Context, string, uuid.UUID) ([]domain.ItineraryRow, error) {
			return nil, fmt.Errorf("service.ExportService.Export: %w", domain.ErrNotFound)
		},
	}
	h := newRouter(handler.Services{Export: export})

	rec := do(t, h, http.MethodGet, "/trips/"+uuid.NewString()+"/export?format=csv", amy, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "trip not found", decode[handler.ErrorResponse](t, rec).Error.Message)
}
