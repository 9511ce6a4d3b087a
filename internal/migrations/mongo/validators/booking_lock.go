package validators

import "go.mongodb.org/mongo-driver/bson"

// BookingLockValidator requires expires_at to be a date; the TTL monitor
// silently skips documents where it is not.
var BookingLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"owner",
			"mentor_id",
			"scheduled_at",
			"duration_minutes",
			"expires_at",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"owner": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"mentor_id": objectIDString,

			"scheduled_at": bson.M{
				"bsonType": "date",
			},

			"duration_minutes": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"session_candidate": bson.M{
				"bsonType": "object",
			},

			"expires_at": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
