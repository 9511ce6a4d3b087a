package mongo

import (
	"testing"

	mongodb "mentorbook/pkg/db/mongo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBookingLocksTTLIndex(t *testing.T) {
	require.Len(t, BookingLocksIndexes, 1)
	idx := BookingLocksIndexes[0]

	assert.Equal(t, bson.D{{Key: "expires_at", Value: 1}}, idx.Keys)
	require.NotNil(t, idx.Options)
	require.NotNil(t, idx.Options.ExpireAfterSeconds)
	assert.Equal(t, int32(0), *idx.Options.ExpireAfterSeconds)
}

func TestCollectionsHaveValidators(t *testing.T) {
	defs := Collections()

	for _, name := range []string{
		mongodb.SessionsCollection,
		mongodb.BookingLocksCollection,
		mongodb.AvailabilitiesCollection,
	} {
		def, ok := defs[name]
		require.True(t, ok, "missing collection %s", name)
		assert.Contains(t, def.Validator, "$jsonSchema")
		assert.NotEmpty(t, def.Indexes)
	}
}

func TestSessionsCapacityIndexLeadsWithMentor(t *testing.T) {
	keys, ok := SessionsIndexes[0].Keys.(bson.D)
	require.True(t, ok)
	require.Len(t, keys, 3)
	assert.Equal(t, "mentor_id", keys[0].Key)
	assert.Equal(t, "scheduled_at", keys[1].Key)
	assert.Equal(t, "status", keys[2].Key)
}
