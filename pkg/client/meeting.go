package client

import (
	"net/url"
	"strconv"
)

type MeetingClient struct {
	httpClient *HttpClient
}

func NewMeetingClient(baseUrl string) *MeetingClient {
	return &MeetingClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

// Create books a meeting. A non-empty idempotencyKey makes retries safe.
func (c *MeetingClient) Create(body any, idempotencyKey string) (*Response, error) {
	if idempotencyKey == "" {
		return c.httpClient.POST("/meetings/create", body)
	}
	return c.httpClient.POSTWithHeaders("/meetings/create", body, map[string]string{
		"Idempotency-Key": idempotencyKey,
	})
}

func (c *MeetingClient) Availability(body any) (*Response, error) {
	return c.httpClient.POST("/meetings/availability", body)
}

// Search lists meetings. Empty ids and nil bounds are omitted from the query.
func (c *MeetingClient) Search(roomID, memberID string, from, to *int64) (*Response, error) {
	q := url.Values{}
	if roomID != "" {
		q.Set("room_id", roomID)
	}
	if memberID != "" {
		q.Set("member_id", memberID)
	}
	if from != nil {
		q.Set("from", strconv.FormatInt(*from, 10))
	}
	if to != nil {
		q.Set("to", strconv.FormatInt(*to, 10))
	}

	path := "/meetings"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}
	return c.httpClient.GET(path)
}

func (c *MeetingClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/meetings/id/" + url.PathEscape(id))
}

func (c *MeetingClient) Delete(id string) (*Response, error) {
	return c.httpClient.DELETE("/meetings/id/" + url.PathEscape(id))
}

func (c *MeetingClient) RoomCalendar(roomID string) (*Response, error) {
	return c.httpClient.GET("/meetings/room/" + url.PathEscape(roomID) + "/calendar.ics")
}
