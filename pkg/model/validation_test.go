package model

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

const (
	roomHex   = "507f1f77bcf86cd799439011"
	memberHex = "507f1f77bcf86cd799439012"
)

func TestMeeting_ValidationRules(t *testing.T) {
	validate := validator.New()

	tests := []struct {
		name        string
		meeting     *Meeting
		expectValid bool
	}{
		{
			name: "valid meeting",
			meeting: &Meeting{
				Name: "Standup", RoomID: roomHex, ParticipantIDs: []string{memberHex},
				From: 100, To: 200,
			},
			expectValid: true,
		},
		{
			name: "missing name",
			meeting: &Meeting{
				RoomID: roomHex, ParticipantIDs: []string{memberHex}, From: 100, To: 200,
			},
			expectValid: false,
		},
		{
			name: "empty participants",
			meeting: &Meeting{
				Name: "Standup", RoomID: roomHex, ParticipantIDs: []string{}, From: 100, To: 200,
			},
			expectValid: false,
		},
		{
			name: "participant id is not an object id",
			meeting: &Meeting{
				Name: "Standup", RoomID: roomHex, ParticipantIDs: []string{"alice"}, From: 100, To: 200,
			},
			expectValid: false,
		},
		{
			name: "zero length interval",
			meeting: &Meeting{
				Name: "Standup", RoomID: roomHex, ParticipantIDs: []string{memberHex}, From: 200, To: 200,
			},
			expectValid: false,
		},
		{
			name: "negative epoch values are allowed",
			meeting: &Meeting{
				Name: "Standup", RoomID: roomHex, ParticipantIDs: []string{memberHex}, From: -50, To: 0,
			},
			expectValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.meeting)
			if tt.expectValid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRoomAndMember_NameRequired(t *testing.T) {
	validate := validator.New()

	assert.NoError(t, validate.Struct(&Room{Name: "Aurora"}))
	assert.Error(t, validate.Struct(&Room{}))
	assert.Error(t, validate.Struct(&Room{ID: "not-hex", Name: "Aurora"}))

	assert.NoError(t, validate.Struct(&Member{Name: "Alice"}))
	assert.Error(t, validate.Struct(&Member{}))
}
