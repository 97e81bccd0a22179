package validator

import (
	"errors"
	"strings"
	"testing"

	"roomly/pkg/model"
)

func TestValidate(t *testing.T) {
	v := NewRoomValidator()

	tests := []struct {
		name    string
		room    *model.Room
		wantErr bool
	}{
		{"valid", &model.Room{Name: "Blue Room"}, false},
		{"valid with id", &model.Room{ID: "507f1f77bcf86cd799439011", Name: "Blue Room"}, false},
		{"empty name", &model.Room{Name: ""}, true},
		{"name too long", &model.Room{Name: strings.Repeat("x", 101)}, true},
		{"malformed id", &model.Room{ID: "room-1", Name: "Blue Room"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.room)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_TranslatesMessages(t *testing.T) {
	err := NewRoomValidator().Validate(&model.Room{})

	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(verrs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(verrs))
	}
	if verrs[0].Field != "Name" || verrs[0].Message != "name is required" {
		t.Errorf("unexpected error: %+v", verrs[0])
	}
}

func TestValidateUpdate(t *testing.T) {
	v := NewRoomValidator()

	if err := v.ValidateUpdate(&model.RoomUpdate{Name: "Green Room"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := v.ValidateUpdate(&model.RoomUpdate{}); err == nil {
		t.Error("expected error for empty name")
	}
}
