package client

import (
	"net/url"
)

type MemberClient struct {
	httpClient *HttpClient
}

func NewMemberClient(baseUrl string) *MemberClient {
	return &MemberClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *MemberClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/members", body)
}

func (c *MemberClient) GetAll() (*Response, error) {
	return c.httpClient.GET("/members")
}

func (c *MemberClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/members/" + url.PathEscape(id))
}

func (c *MemberClient) Update(id string, body any) (*Response, error) {
	return c.httpClient.PUT("/members/"+url.PathEscape(id), body)
}

func (c *MemberClient) Delete(id string) (*Response, error) {
	return c.httpClient.DELETE("/members/" + url.PathEscape(id))
}
