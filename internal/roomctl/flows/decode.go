package flows

import (
	"fmt"
	"regexp"

	"roomly/pkg/client"
)

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// decodeData checks the status and unwraps the {"data": ...} envelope.
func decodeData[T any](resp *client.Response, wantStatus int) (T, error) {
	var envelope struct {
		Data T `json:"data"`
	}
	if resp.StatusCode != wantStatus {
		return envelope.Data, fmt.Errorf("%s", client.GetErrorMessage(resp))
	}
	if err := resp.DecodeJSON(&envelope); err != nil {
		return envelope.Data, fmt.Errorf("failed to decode response: %w", err)
	}
	return envelope.Data, nil
}
