package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCollections_CoverEveryStore(t *testing.T) {
	names := make([]string, 0, 4)
	for _, def := range Collections() {
		names = append(names, def.Name)
		assert.NotEmpty(t, def.Indexes, "collection %s has no indexes", def.Name)
		assert.Contains(t, def.Validator, "$jsonSchema", "collection %s has no schema", def.Name)
	}

	assert.Equal(t, []string{"Rooms", "Members", "Meetings", "Slot_locks"}, names)
}

func TestMeetingsIndexes_SupportOverlapQueries(t *testing.T) {
	assert.Equal(t, bson.D{
		{Key: "room_id", Value: 1},
		{Key: "from", Value: 1},
		{Key: "to", Value: 1},
	}, MeetingsIndexes[0].Keys)
	assert.Equal(t, bson.D{
		{Key: "participant_ids", Value: 1},
		{Key: "from", Value: 1},
		{Key: "to", Value: 1},
	}, MeetingsIndexes[1].Keys)
}
