package validators

import "go.mongodb.org/mongo-driver/bson"

var PetValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"owner_id", "name", "species", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "objectId"},
			"owner_id":   bson.M{"bsonType": "string", "maxLength": 128},
			"name":       bson.M{"bsonType": "string", "minLength": 2, "maxLength": 60},
			"species":    bson.M{"bsonType": "string"},
			"breed":      bson.M{"bsonType": "string"},
			"birth_date": bson.M{"bsonType": "date"},
			"weight_kg":  bson.M{"bsonType": []string{"double", "int", "long"}},
			"notes":      bson.M{"bsonType": "string", "maxLength": 500},
			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
