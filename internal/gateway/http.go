package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/attendly/checkin-console/internal/auth"
	"github.com/attendly/checkin-console/internal/dto"
)

type httpGateway struct {
	baseURL string
	tokens  *auth.TokenStore
	client  *http.Client
}

func NewHTTPGateway(baseURL string, tokens *auth.TokenStore) EventGateway {
	return &httpGateway{
		baseURL: baseURL,
		tokens:  tokens,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *httpGateway) ListGuestTickets(ctx context.Context, eventID string) ([]dto.TicketRow, error) {
	path := fmt.Sprintf("/api/v1/events/%s/guest-tickets", url.PathEscape(eventID))

	var resp dto.TicketListResponse
	if err := g.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tickets, nil
}

func (g *httpGateway) SubmitCheckIn(ctx context.Context, req dto.CheckInRequest) (*dto.CheckInResponse, error) {
	var resp dto.CheckInResponse
	if err := g.do(ctx, http.MethodPost, "/api/v1/check-ins", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (g *httpGateway) SubmitUndoCheckIn(ctx context.Context, eventID, ticketID string) (*dto.CheckInResponse, error) {
	path := fmt.Sprintf("/api/v1/events/%s/tickets/%s/check-in",
		url.PathEscape(eventID), url.PathEscape(ticketID))

	var resp dto.CheckInResponse
	if err := g.do(ctx, http.MethodPatch, path, dto.UndoCheckInRequest{CheckedIn: false}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (g *httpGateway) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := g.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := g.client.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
		return decodeInto(data, out)
	case res.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case res.StatusCode == http.StatusConflict:
		// Already-checked-in conflicts still carry the guest payload and
		// flow through the normal success path.
		if checkIn, ok := out.(*dto.CheckInResponse); ok {
			if decodeInto(data, checkIn) == nil && checkIn.Guest != nil {
				return nil
			}
		}
		return &RemoteError{StatusCode: res.StatusCode, Message: upstreamMessage(data)}
	default:
		return &RemoteError{StatusCode: res.StatusCode, Message: upstreamMessage(data)}
	}
}

func decodeInto(data []byte, out any) error {
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func upstreamMessage(data []byte) string {
	var e dto.UpstreamError
	if json.Unmarshal(data, &e) == nil {
		return e.Message
	}
	return ""
}
