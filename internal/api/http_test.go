package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akraslov/notesync/internal/common"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, 5*time.Second)
}

func TestCreateNote_DecodesResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/notes", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req NoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "hello", req.Title)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(NoteResponse{ID: 42, Title: req.Title})
	})

	resp, err := c.CreateNote(context.Background(), NoteRequest{Title: "hello"})
	require.NoError(t, err)
	require.Equal(t, int64(42), resp.ID)
	require.Equal(t, "hello", resp.Title)
}

func TestCreateUserNote_RoutesToUserPath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/users/7/notes", r.URL.Path)
		_ = json.NewEncoder(w).Encode(NoteResponse{ID: 1})
	})

	_, err := c.CreateUserNote(context.Background(), 7, NoteRequest{Title: "x"})
	require.NoError(t, err)
}

func TestErrorStatusCarriesServerMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "note not found"})
	})

	_, err := c.UpdateNote(context.Background(), 99, NoteRequest{Title: "x"})
	var rerr *common.RemoteError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, http.StatusNotFound, rerr.Status)
	require.Equal(t, "note not found", rerr.Message)
}

func TestErrorStatusWithPlainTextBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "teapot", http.StatusTeapot)
	})

	_, err := c.CreateUser(context.Background(), UserRequest{Username: "a", Password: "b"})
	var rerr *common.RemoteError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, http.StatusTeapot, rerr.Status)
	require.Equal(t, "teapot", rerr.Message)
}

func TestEmptySuccessBodyWhereOneIsRequired(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := c.CreateNote(context.Background(), NoteRequest{Title: "x"})
	require.ErrorIs(t, err, common.ErrEmptyResponse)
}

func TestDeleteToleratesEmptyBody(t *testing.T) {
	var gotMethod, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeleteNote(context.Background(), 42))
	require.Equal(t, http.MethodDelete, gotMethod)
	require.Equal(t, "/api/notes/42", gotPath)

	require.NoError(t, c.DeleteUserNote(context.Background(), 7, 42))
	require.Equal(t, "/api/users/7/notes/42", gotPath)
}

func TestListUserNotes_EmptyBodyMeansNoNotes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/users/7/notes", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	list, err := c.ListUserNotes(context.Background(), 7)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestListUserNotes_DecodesList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]NoteResponse{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}})
	})

	list, err := c.ListUserNotes(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "b", list[1].Title)
}

func TestTransportFailureIsRemoteErrorWithoutStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // nothing is listening anymore
	c := NewHTTPClient(srv.URL, time.Second)

	_, err := c.CreateNote(context.Background(), NoteRequest{Title: "x"})
	var rerr *common.RemoteError
	require.ErrorAs(t, err, &rerr)
	require.Zero(t, rerr.Status, "a transport failure has no HTTP status")
}

func TestUndecodableSuccessBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})

	_, err := c.LoginUser(context.Background(), UserRequest{Username: "a", Password: "b"})
	var rerr *common.RemoteError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, http.StatusOK, rerr.Status)
}

func TestShareEndpoints(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/users/7/shares":
			var req ShareRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			_ = json.NewEncoder(w).Encode(ShareResponse{
				ID: 1, NoteID: req.NoteID, OwnerID: 7, TargetUserID: req.TargetUserID, Status: "active",
			})
		case r.Method == http.MethodPut && r.URL.Path == "/api/users/7/shares/1":
			_ = json.NewEncoder(w).Encode(ShareUpdateResponse{ID: 1, Status: "revoked"})
		case r.Method == http.MethodGet && r.URL.Path == "/api/users/7/shares/received":
			_ = json.NewEncoder(w).Encode([]ShareResponse{{ID: 3}})
		case r.Method == http.MethodGet && r.URL.Path == "/api/users/7/shares/sent":
			_ = json.NewEncoder(w).Encode([]ShareResponse{{ID: 1}, {ID: 2}})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	share, err := c.ShareNote(ctx, 7, ShareRequest{NoteID: 42, TargetUserID: 9})
	require.NoError(t, err)
	require.Equal(t, int64(42), share.NoteID)
	require.Equal(t, int64(9), share.TargetUserID)

	upd, err := c.UpdateShareStatus(ctx, 7, 1)
	require.NoError(t, err)
	require.Equal(t, "revoked", upd.Status)

	received, err := c.ListSharedWithMe(ctx, 7)
	require.NoError(t, err)
	require.Len(t, received, 1)

	sent, err := c.ListSharedByMe(ctx, 7)
	require.NoError(t, err)
	require.Len(t, sent, 2)
}

func TestPing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/ping", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, c.Ping(context.Background()))
}
