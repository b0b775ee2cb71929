package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/akraslov/notesync/internal/common"
)

// HTTPClient implements Client over plain HTTP/JSON. The embedded
// http.Client's timeout is the only request timeout; a timed-out call is
// reported as an ordinary RemoteError.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient returns a client for the API rooted at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
	}
}

// doJSON performs one request and maps the response to the tri-state result:
// (value, nil) on success with a body, (nil, nil) on success without one, and
// (*common.RemoteError) for non-2xx statuses and transport failures.
func doJSON[T any](ctx context.Context, c *HTTPClient, method, path string, body any) (*T, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &common.RemoteError{Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &common.RemoteError{Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &common.RemoteError{Status: resp.StatusCode, Message: remoteMessage(data, resp.Status)}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &common.RemoteError{Status: resp.StatusCode, Message: fmt.Sprintf("undecodable response: %v", err)}
	}
	return &out, nil
}

func remoteMessage(body []byte, fallback string) string {
	var e errorBody
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return fallback
}

// requireBody upgrades a success-without-data result to ErrEmptyResponse for
// operations that must return one.
func requireBody[T any](v *T, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, common.ErrEmptyResponse
	}
	return v, nil
}

func listBody[T any](v *[]T, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return *v, nil
}

func (c *HTTPClient) CreateNote(ctx context.Context, req NoteRequest) (*NoteResponse, error) {
	return requireBody(doJSON[NoteResponse](ctx, c, http.MethodPost, "/api/notes", req))
}

func (c *HTTPClient) CreateUserNote(ctx context.Context, userID int64, req NoteRequest) (*NoteResponse, error) {
	return requireBody(doJSON[NoteResponse](ctx, c, http.MethodPost,
		fmt.Sprintf("/api/users/%d/notes", userID), req))
}

func (c *HTTPClient) UpdateNote(ctx context.Context, remoteID int64, req NoteRequest) (*NoteResponse, error) {
	return requireBody(doJSON[NoteResponse](ctx, c, http.MethodPut,
		fmt.Sprintf("/api/notes/%d", remoteID), req))
}

func (c *HTTPClient) UpdateUserNote(ctx context.Context, userID, remoteID int64, req NoteRequest) (*NoteResponse, error) {
	return requireBody(doJSON[NoteResponse](ctx, c, http.MethodPut,
		fmt.Sprintf("/api/users/%d/notes/%d", userID, remoteID), req))
}

func (c *HTTPClient) DeleteNote(ctx context.Context, remoteID int64) error {
	_, err := doJSON[struct{}](ctx, c, http.MethodDelete, fmt.Sprintf("/api/notes/%d", remoteID), nil)
	return err
}

func (c *HTTPClient) DeleteUserNote(ctx context.Context, userID, remoteID int64) error {
	_, err := doJSON[struct{}](ctx, c, http.MethodDelete,
		fmt.Sprintf("/api/users/%d/notes/%d", userID, remoteID), nil)
	return err
}

func (c *HTTPClient) ListUserNotes(ctx context.Context, userID int64) ([]NoteResponse, error) {
	return listBody(doJSON[[]NoteResponse](ctx, c, http.MethodGet,
		fmt.Sprintf("/api/users/%d/notes", userID), nil))
}

func (c *HTTPClient) CreateUser(ctx context.Context, req UserRequest) (*UserResponse, error) {
	return requireBody(doJSON[UserResponse](ctx, c, http.MethodPost, "/api/users", req))
}

func (c *HTTPClient) UpdateUser(ctx context.Context, userID int64, req UserRequest) (*UserResponse, error) {
	return requireBody(doJSON[UserResponse](ctx, c, http.MethodPut,
		fmt.Sprintf("/api/users/%d", userID), req))
}

func (c *HTTPClient) LoginUser(ctx context.Context, req UserRequest) (*UserResponse, error) {
	return requireBody(doJSON[UserResponse](ctx, c, http.MethodPost, "/api/users/login", req))
}

func (c *HTTPClient) ShareNote(ctx context.Context, userID int64, req ShareRequest) (*ShareResponse, error) {
	return requireBody(doJSON[ShareResponse](ctx, c, http.MethodPost,
		fmt.Sprintf("/api/users/%d/shares", userID), req))
}

func (c *HTTPClient) UpdateShareStatus(ctx context.Context, userID, shareID int64) (*ShareUpdateResponse, error) {
	return requireBody(doJSON[ShareUpdateResponse](ctx, c, http.MethodPut,
		fmt.Sprintf("/api/users/%d/shares/%d", userID, shareID), nil))
}

func (c *HTTPClient) ListSharedWithMe(ctx context.Context, userID int64) ([]ShareResponse, error) {
	return listBody(doJSON[[]ShareResponse](ctx, c, http.MethodGet,
		fmt.Sprintf("/api/users/%d/shares/received", userID), nil))
}

func (c *HTTPClient) ListSharedByMe(ctx context.Context, userID int64) ([]ShareResponse, error) {
	return listBody(doJSON[[]ShareResponse](ctx, c, http.MethodGet,
		fmt.Sprintf("/api/users/%d/shares/sent", userID), nil))
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	_, err := doJSON[struct{}](ctx, c, http.MethodGet, "/api/ping", nil)
	return err
}
