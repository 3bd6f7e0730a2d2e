//go:build api

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/attendly/checkin-console/internal/auth"
	"github.com/attendly/checkin-console/internal/dto"
	"github.com/attendly/checkin-console/internal/gateway"
	"github.com/attendly/checkin-console/internal/handler"
	"github.com/attendly/checkin-console/internal/middleware"
	"github.com/attendly/checkin-console/internal/roster"
	"github.com/attendly/checkin-console/internal/scanner"
	"github.com/attendly/checkin-console/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEventService is an in-memory stand-in for the remote event-management
// service, keyed by ticket id.
type fakeEventService struct {
	mu      sync.Mutex
	tickets map[string]*dto.TicketRow
}

func newFakeEventService() *fakeEventService {
	return &fakeEventService{tickets: map[string]*dto.TicketRow{
		"T1": {ID: "T1", Status: "confirmed", User: &dto.TicketUser{ID: "U1", Name: "Ada", Email: "ada@x.com"}},
		"T2": {ID: "T2", Status: "confirmed", User: &dto.TicketUser{ID: "U2", Name: "Grace", Email: "grace@x.com"}},
	}}
}

func (f *fakeEventService) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/events/{event}/guest-tickets", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		resp := dto.TicketListResponse{}
		for _, row := range f.tickets {
			resp.Tickets = append(resp.Tickets, *row)
		}
		resp.Count = len(resp.Tickets)
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("POST /api/v1/check-ins", func(w http.ResponseWriter, r *http.Request) {
		var req dto.CheckInRequest
		json.NewDecoder(r.Body).Decode(&req)

		f.mu.Lock()
		defer f.mu.Unlock()
		row, ok := f.tickets[req.TicketID]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(dto.UpstreamError{Message: "unknown ticket"})
			return
		}
		checkedIn := true
		now := time.Now().UTC()
		row.IsCheckedIn = &checkedIn
		row.Status = "checked-in"
		row.CheckedInAt = &now
		json.NewEncoder(w).Encode(dto.CheckInResponse{Guest: row})
	})
	mux.HandleFunc("PATCH /api/v1/events/{event}/tickets/{ticket}/check-in", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		row, ok := f.tickets[r.PathValue("ticket")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(dto.UpstreamError{Message: "unknown ticket"})
			return
		}
		checkedIn := false
		row.IsCheckedIn = &checkedIn
		row.Status = "confirmed"
		row.CheckedInAt = nil
		json.NewEncoder(w).Encode(dto.CheckInResponse{Guest: row})
	})
	return mux
}

func newConsole(t *testing.T, upstreamURL string) *httptest.Server {
	t.Helper()

	tokens := auth.NewTokenStore("test-token")
	store := roster.NewStore()
	svc := service.NewCheckInService(gateway.NewHTTPGateway(upstreamURL, tokens), store, tokens, nil, "E1", nil)
	scan := scanner.New(svc, 50*time.Millisecond)

	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	handler.NewGuestHandler(svc, scan).RegisterRoutes(e)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	resp, err := http.Post(url, "application/json", reader)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestConsole_FullFlow(t *testing.T) {
	upstream := httptest.NewServer(newFakeEventService().handler())
	defer upstream.Close()

	console := newConsole(t, upstream.URL)

	t.Run("Step1_RefreshRoster", func(t *testing.T) {
		resp := post(t, console.URL+"/api/v1/roster/refresh", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var rosterResp dto.RosterResponse
		decodeJSON(t, resp, &rosterResp)
		assert.Equal(t, 2, rosterResp.Count)
	})

	t.Run("Step2_AddManualGuest", func(t *testing.T) {
		resp := post(t, console.URL+"/api/v1/roster/guests", dto.AddGuestRequest{Name: "Walk In", Email: "walkin@x.com"})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var guest dto.GuestResponse
		decodeJSON(t, resp, &guest)
		assert.False(t, guest.CanCheckIn)

		// The manual guest cannot be checked in.
		resp = post(t, console.URL+"/api/v1/roster/guests/"+guest.ID+"/check-in", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("Step3_CheckInByList", func(t *testing.T) {
		resp := post(t, console.URL+"/api/v1/roster/guests/T1/check-in", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var rosterResp dto.RosterResponse
		decodeJSON(t, resp, &rosterResp)
		for _, g := range rosterResp.Guests {
			if g.ID == "T1" {
				assert.True(t, g.IsCheckedIn)
				assert.NotNil(t, g.CheckedInAt)
			}
		}
	})

	t.Run("Step4_CheckInByScan", func(t *testing.T) {
		resp := post(t, console.URL+"/api/v1/scan", dto.ScanRequest{Code: "T2"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var status dto.ScanStatusResponse
		decodeJSON(t, resp, &status)
		assert.Equal(t, "success", status.Status)
	})

	t.Run("Step5_ScanUnknownTicket", func(t *testing.T) {
		// Wait out the auto-reset from the previous scan.
		time.Sleep(100 * time.Millisecond)

		resp := post(t, console.URL+"/api/v1/scan", dto.ScanRequest{Code: "bogus"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var status dto.ScanStatusResponse
		decodeJSON(t, resp, &status)
		assert.Equal(t, "error", status.Status)
		assert.Contains(t, status.Message, "unknown ticket")
	})

	t.Run("Step6_UndoCheckIn", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodDelete, console.URL+"/api/v1/roster/guests/T1/check-in", nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var rosterResp dto.RosterResponse
		decodeJSON(t, resp, &rosterResp)
		for _, g := range rosterResp.Guests {
			if g.ID == "T1" {
				assert.False(t, g.IsCheckedIn)
				assert.Nil(t, g.CheckedInAt)
			}
		}
	})
}

func TestConsole_UnauthorizedRedirect(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer upstream.Close()

	console := newConsole(t, upstream.URL)

	resp := post(t, console.URL+"/api/v1/roster/refresh", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var errResp dto.ErrorResponse
	decodeJSON(t, resp, &errResp)
	assert.Equal(t, "/sign-in", errResp.Redirect)
	assert.True(t, strings.Contains(errResp.Message, "credential"), fmt.Sprintf("unexpected message: %s", errResp.Message))
}
