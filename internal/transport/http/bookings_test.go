package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kferacho3/BodegaDanes/internal/app"
	"github.com/kferacho3/BodegaDanes/internal/domain"
)

type fakeReserver struct {
	code string
	err  error
	last app.ReserveInput
}

func (f *fakeReserver) Reserve(ctx context.Context, in app.ReserveInput) (string, error) {
	f.last = in
	return f.code, f.err
}

func TestHandleCreateBooking(t *testing.T) {
	t.Parallel()

	t.Run("creates the reservation", func(t *testing.T) {
		svc := &fakeReserver{code: "AB12CD"}
		body := `{"date":"2025-07-04","serviceId":"price_basic","meta":{"email":"sam@example.com","guests":"40"}}`
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
		rec := httptest.NewRecorder()
		HandleCreateBooking(svc)(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp createBookingResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if !resp.OK || resp.ConfirmationCode != "AB12CD" {
			t.Fatalf("unexpected response: %+v", resp)
		}
		if svc.last.CustomerEmail != "sam@example.com" {
			t.Fatalf("expected email lifted from meta, got %q", svc.last.CustomerEmail)
		}
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		svc := &fakeReserver{code: "AB12CD"}
		req := httptest.NewRequest(http.MethodPost, "/bookings",
			strings.NewReader(`{"date":"2025-07-04","serviceId":"p","bogus":true}`))
		rec := httptest.NewRecorder()
		HandleCreateBooking(svc)(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("maps service errors", func(t *testing.T) {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{domain.ErrInvalidDate, http.StatusBadRequest, codeInvalidDate},
			{domain.ErrServiceIDRequired, http.StatusBadRequest, codeServiceIDRequired},
			{domain.ErrDayNotBookable, http.StatusConflict, codeDayNotBookable},
			{context.DeadlineExceeded, http.StatusInternalServerError, codeInternalError},
		}
		for _, tc := range cases {
			svc := &fakeReserver{err: tc.err}
			req := httptest.NewRequest(http.MethodPost, "/bookings",
				strings.NewReader(`{"date":"2025-07-04","serviceId":"p"}`))
			rec := httptest.NewRecorder()
			HandleCreateBooking(svc)(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("%v: expected status %d, got %d", tc.err, tc.status, rec.Code)
			}
			var resp errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Code != tc.code {
				t.Fatalf("%v: expected code %s, got %s", tc.err, tc.code, resp.Code)
			}
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
		rec := httptest.NewRecorder()
		HandleCreateBooking(&fakeReserver{})(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status 405, got %d", rec.Code)
		}
	})
}

type fakeBookingFinder struct {
	booking domain.Booking
	err     error
}

func (f *fakeBookingFinder) Lookup(ctx context.Context, code, identity string) (domain.Booking, error) {
	return f.booking, f.err
}

func TestHandleLookupBooking(t *testing.T) {
	t.Parallel()

	t.Run("returns the booking", func(t *testing.T) {
		svc := &fakeBookingFinder{booking: domain.Booking{
			Date:             time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC),
			ServiceID:        "price_basic",
			ConfirmationCode: "AB12CD",
			StripeSessionID:  "cs_123",
			Meta:             map[string]any{"guests": "40"},
		}}
		req := httptest.NewRequest(http.MethodPost, "/bookings/lookup",
			strings.NewReader(`{"code":"AB12CD","identity":"sam@example.com"}`))
		rec := httptest.NewRecorder()
		HandleLookupBooking(svc)(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var resp bookingResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Date != "2025-07-04" || !resp.Confirmed || resp.ConfirmationCode != "AB12CD" {
			t.Fatalf("unexpected response: %+v", resp)
		}
	})

	t.Run("a miss is a 404", func(t *testing.T) {
		svc := &fakeBookingFinder{err: domain.ErrBookingNotFound}
		req := httptest.NewRequest(http.MethodPost, "/bookings/lookup",
			strings.NewReader(`{"code":"ZZ99ZZ","identity":"sam@example.com"}`))
		rec := httptest.NewRecorder()
		HandleLookupBooking(svc)(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
		var resp errorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Code != codeBookingNotFound {
			t.Fatalf("expected code %s, got %s", codeBookingNotFound, resp.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/bookings/lookup", strings.NewReader(`{`))
		rec := httptest.NewRecorder()
		HandleLookupBooking(&fakeBookingFinder{})(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})
}
