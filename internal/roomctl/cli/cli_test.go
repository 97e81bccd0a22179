package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
	Header http.Header
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{
			Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(data), Header: r.Header.Clone(),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd(&out)
	cmd.SetArgs(append(args, "--server", srv.URL))
	err := cmd.Execute()
	return out.String(), err
}

func TestRoomsCreate(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusCreated, `{"data":{"id":"65f000000000000000000a01","name":"Blue Room"}}`)

	out, err := run(t, srv, "rooms", "create", "Blue Room")
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/rooms", req.Path)
	assert.JSONEq(t, `{"name":"Blue Room","created_at":"0001-01-01T00:00:00Z"}`, req.Body)
	assert.Contains(t, out, `"id": "65f000000000000000000a01"`)
}

func TestMembersDelete(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, `{"message":"Member deleted"}`)

	out, err := run(t, srv, "members", "rm", "65f000000000000000000b01")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, (*requests)[0].Method)
	assert.Equal(t, "/members/65f000000000000000000b01", (*requests)[0].Path)
	assert.Contains(t, out, "Member deleted")
}

func TestErrorStatusBecomesError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusBadRequest, `{"error":"The selected room is already booked during this time slot.","code":"ROOM_UNAVAILABLE"}`)

	_, err := run(t, srv, "meetings", "create",
		"--name", "Planning", "--room", "65f000000000000000000a01", "-p", "65f000000000000000000b01",
		"--from", "1000", "--to", "2000")

	require.Error(t, err)
	assert.Equal(t, "The selected room is already booked during this time slot. (ROOM_UNAVAILABLE)", err.Error())
}

func TestMeetingsCreate_SendsBodyAndIdempotencyKey(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusCreated, `{"data":{"id":"65f000000000000000000c01"}}`)

	_, err := run(t, srv, "meetings", "create",
		"--name", "Planning", "--room", "65f000000000000000000a01",
		"-p", "65f000000000000000000b01", "-p", "65f000000000000000000b02",
		"--from", "2026-03-02T09:00:00Z", "--to", "2026-03-02T10:00:00Z",
		"--idempotency-key", "abc")
	require.NoError(t, err)

	req := (*requests)[0]
	assert.Equal(t, "/meetings/create", req.Path)
	assert.Equal(t, "abc", req.Header.Get("Idempotency-Key"))

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.Body), &body))
	from := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, float64(from), body["from"])
	assert.Equal(t, float64(from+time.Hour.Milliseconds()), body["to"])
	assert.Equal(t, []any{"65f000000000000000000b01", "65f000000000000000000b02"}, body["participantIds"])
}

func TestMeetingsList_BuildsQuery(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, `{"data":[]}`)

	_, err := run(t, srv, "meetings", "list", "--room", "65f000000000000000000a01", "--from", "1000")
	require.NoError(t, err)
	assert.Equal(t, "/meetings", (*requests)[0].Path)
	assert.Equal(t, "from=1000&room_id=65f000000000000000000a01", (*requests)[0].Query)
}

func TestMeetingsCreate_RejectsBadTime(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusCreated, `{}`)

	_, err := run(t, srv, "meetings", "create", "--from", "tomorrow", "--to", "2000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid time "tomorrow"`)
	assert.Empty(t, *requests)
}

func TestParseInstant(t *testing.T) {
	ms, err := parseInstant("1700000000000")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), ms)

	ms, err = parseInstant("1970-01-01T00:00:01Z")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), ms)
}
