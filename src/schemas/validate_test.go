package schemas

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tsotimus/monkko/src/fields"
)

func TestValidate(t *testing.T) {
	require := require.New(t)
	def := userDef()

	t.Run("must be ok for a conforming document", func(t *testing.T) {
		err := Validate(def, bson.M{
			"name":           "Jo",
			"email":          "jo@example.com",
			"age":            int32(31),
			"address":        bson.M{"street": "1 Main St", "city": "Paris", "zip": "75001"},
			"organisationId": primitive.NewObjectID(),
			"teamIds":        bson.A{primitive.NewObjectID()},
			"nickname":       "undeclared keys are tolerated",
		})
		require.NoError(err)
	})

	t.Run("must collect every problem", func(t *testing.T) {
		err := Validate(def, bson.M{
			"age":     -1,
			"address": bson.M{"street": "1 Main St"},
		})
		require.ErrorIs(err, ErrValidation)
		require.ErrorIs(err, fields.ErrInvalidValue)

		var vErr *ValidationError
		require.True(errors.As(err, &vErr))
		require.Equal("User", vErr.Schema)
		// address.city, age, email and name
		require.Len(vErr.Problems, 4)
		require.Contains(err.Error(), "field 'email': is required")
	})
}

func TestApplyDefaults(t *testing.T) {
	require := require.New(t)

	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	orgID := primitive.NewObjectID()
	def := Definition{
		Name: "Post", DB: "monkko-test", Collection: "posts",
		Fields: map[string]fields.Descriptor{
			"status":    fields.String(fields.StringProps{Default: fields.Ptr("draft")}),
			"views":     fields.Number(fields.NumberProps{Default: fields.Ptr(0.0)}),
			"published": fields.Boolean(fields.BooleanProps{Default: fields.Ptr(false)}),
			"at":        fields.Date(fields.DateProps{Default: &at}),
			"org":       fields.Reference(fields.ReferenceProps{Ref: "Organisation", Default: fields.Ptr(orgID.Hex())}),
			"meta": fields.Object(map[string]fields.Descriptor{
				"lang": fields.String(fields.StringProps{Default: fields.Ptr("en")}),
			}, fields.Props{}),
		},
	}

	doc := bson.M{"status": "live", "meta": bson.M{}}
	ApplyDefaults(def, doc)

	require.Equal("live", doc["status"])
	require.Equal(0.0, doc["views"])
	require.Equal(false, doc["published"])
	require.Equal(primitive.NewDateTimeFromTime(at), doc["at"])
	require.Equal(orgID, doc["org"])
	require.Equal(bson.M{"lang": "en"}, doc["meta"])
}
