package validators

import "go.mongodb.org/mongo-driver/bson"

var OTPCodeValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"phone", "code_hash", "attempts", "expires_at"},
		"properties": bson.M{
			"phone":      bson.M{"bsonType": "string"},
			"code_hash":  bson.M{"bsonType": "string"},
			"attempts":   bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
			"expires_at": bson.M{"bsonType": "date"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
