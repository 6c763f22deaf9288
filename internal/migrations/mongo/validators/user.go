package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"name", "email", "password_hash", "created_at"},
		"properties": bson.M{
			"_id":           bson.M{"bsonType": "objectId"},
			"name":          bson.M{"bsonType": "string", "minLength": 1, "maxLength": 100},
			"email":         bson.M{"bsonType": "string", "maxLength": 254},
			"password_hash": bson.M{"bsonType": "string"},
			"created_at":    bson.M{"bsonType": "date"},
		},
	},
}
