package validators

import "go.mongodb.org/mongo-driver/bson"

var companionSchema = bson.M{
	"bsonType": "object",
	"required": []string{"name"},
	"properties": bson.M{
		"name":         bson.M{"bsonType": "string", "minLength": 1, "maxLength": 100},
		"phone_number": bson.M{"bsonType": "string"},
		"photo":        bson.M{"bsonType": "string", "maxLength": 2048},
	},
}

var VisitorGroupValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"group_id", "primary_visitor", "companions", "in_time"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":      bson.M{"bsonType": "objectId"},
			"group_id": bson.M{"bsonType": "string", "pattern": "^[A-Z0-9]+$"},
			"primary_visitor": bson.M{
				"bsonType": "object",
				"required": []string{"visitor_name", "phone_number", "address", "reason", "photo_url"},
				"properties": bson.M{
					"visitor_name": bson.M{"bsonType": "string", "minLength": 1, "maxLength": 100},
					"phone_number": bson.M{"bsonType": "string", "pattern": `^\+[1-9][0-9]{6,14}$`},
					"address":      bson.M{"bsonType": "string", "minLength": 1, "maxLength": 300},
					"reason":       bson.M{"bsonType": "string", "minLength": 1, "maxLength": 300},
					"photo_url":    bson.M{"bsonType": "string", "maxLength": 2048},
				},
			},
			"companions": bson.M{
				"bsonType": "array",
				"maxItems": 50,
				"items":    companionSchema,
			},
			"in_time":  bson.M{"bsonType": "date"},
			"out_time": bson.M{"bsonType": []string{"date", "null"}},
		},
	},
}
