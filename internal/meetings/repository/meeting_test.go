package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"roomly/pkg/model"
)

func TestBuildSearchFilter(t *testing.T) {
	from, to := int64(100), int64(200)

	tests := []struct {
		name   string
		filter model.MeetingFilter
		want   bson.M
	}{
		{
			name:   "empty filter matches everything",
			filter: model.MeetingFilter{},
			want:   bson.M{},
		},
		{
			name:   "room and window",
			filter: model.MeetingFilter{RoomID: "r1", From: &from, To: &to},
			want: bson.M{
				"room_id": "r1",
				"from":    bson.M{"$lt": to},
				"to":      bson.M{"$gt": from},
			},
		},
		{
			name:   "member only",
			filter: model.MeetingFilter{MemberID: "m1"},
			want:   bson.M{"participant_ids": "m1"},
		},
		{
			name:   "open ended window",
			filter: model.MeetingFilter{From: &from},
			want:   bson.M{"to": bson.M{"$gt": from}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildSearchFilter(tt.filter))
		})
	}
}
