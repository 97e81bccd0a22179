package client

import (
	"net/url"
)

type RoomClient struct {
	httpClient *HttpClient
}

func NewRoomClient(baseUrl string) *RoomClient {
	return &RoomClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *RoomClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/rooms", body)
}

func (c *RoomClient) GetAll() (*Response, error) {
	return c.httpClient.GET("/rooms")
}

func (c *RoomClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/rooms/" + url.PathEscape(id))
}

func (c *RoomClient) Update(id string, body any) (*Response, error) {
	return c.httpClient.PUT("/rooms/"+url.PathEscape(id), body)
}

func (c *RoomClient) Delete(id string) (*Response, error) {
	return c.httpClient.DELETE("/rooms/" + url.PathEscape(id))
}
