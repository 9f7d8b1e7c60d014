package validators

import (
	"pawcare/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

func bookingStatusNames() []string {
	statuses := model.BookingStatuses()
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return names
}

func timeSlotLabels() []string {
	slots := model.TimeSlots()
	labels := make([]string, len(slots))
	for i, s := range slots {
		labels[i] = s.Label
	}
	return labels
}

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"service_name",
			"date",
			"time_slot",
			"status",
			"created_at",
			"updated_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 128,
			},

			"service_name": bson.M{
				"bsonType": "string",
				"enum":     model.Services(),
			},

			"date": bson.M{
				"bsonType": "date",
			},

			"time_slot": bson.M{
				"bsonType": "string",
				"enum":     timeSlotLabels(),
			},

			"notes": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum":     bookingStatusNames(),
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var SlotGuardValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"service_name", "date", "time_slot", "version", "updated_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":          bson.M{"bsonType": "string"},
			"service_name": bson.M{"bsonType": "string"},
			"date":         bson.M{"bsonType": "date"},
			"time_slot":    bson.M{"bsonType": "string"},
			"version":      bson.M{"bsonType": []string{"int", "long"}},
			"updated_at":   bson.M{"bsonType": "date"},
		},
	},
}
