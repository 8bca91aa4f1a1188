package schemas

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tsotimus/monkko/src/fields"
)

func TestInferShape(t *testing.T) {
	require := require.New(t)

	shape := InferShape(userDef())
	require.Equal("User", shape.Name)
	require.Equal("UserDocument", shape.TypeName())

	names := make([]string, 0, len(shape.Fields))
	for _, f := range shape.Fields {
		names = append(names, f.Name)
	}
	require.Equal([]string{"_id", "address", "age", "email", "name", "organisationId", "teamIds", "createdAt", "updatedAt"}, names)

	id, _ := shape.Field("_id")
	require.Equal("primitive.ObjectID", id.Type)
	require.False(id.Optional)

	email, _ := shape.Field("email")
	require.Equal("string", email.Type)
	require.False(email.Optional)

	age, _ := shape.Field("age")
	require.Equal("float64", age.Type)
	require.True(age.Optional)

	addr, _ := shape.Field("address")
	require.Equal(fields.KindObject, addr.Kind)
	require.Equal("struct{city string; street string; zip string}", addr.Type)
	require.Len(addr.Fields, 3)

	org, _ := shape.Field("organisationId")
	require.Equal("primitive.ObjectID", org.Type)
	require.Equal("Organisation", org.Ref)
	require.False(org.Populated)

	teams, _ := shape.Field("teamIds")
	require.Equal("[]primitive.ObjectID", teams.Type)
	require.True(teams.Array)

	created, _ := shape.Field("createdAt")
	require.Equal("time.Time", created.Type)

	t.Run("no timestamps without the option", func(t *testing.T) {
		s := InferShape(organisationDef())
		_, ok := s.Field(CreatedAtField)
		require.False(ok)
	})
}

func TestShapePopulate(t *testing.T) {
	require := require.New(t)

	catalog := NewCatalog()
	catalog.Register(organisationDef())

	shape := InferShape(userDef())
	populated := shape.Populate(catalog, "organisationId", "teamIds", "name")

	org, _ := populated.Field("organisationId")
	require.True(org.Populated)
	require.Equal("OrganisationDocument", org.Type)
	require.Len(org.Fields, 3)

	// Team is not registered, so the identifier type stays.
	teams, _ := populated.Field("teamIds")
	require.False(teams.Populated)
	require.Equal("[]primitive.ObjectID", teams.Type)

	name, _ := populated.Field("name")
	require.Equal("string", name.Type)

	// The unpopulated shape is left untouched.
	orgBefore, _ := shape.Field("organisationId")
	require.False(orgBefore.Populated)

	t.Run("array references populate to arrays of documents", func(t *testing.T) {
		team := Definition{
			Name: "Team", DB: "monkko-test", Collection: "teams",
			Fields: map[string]fields.Descriptor{"title": fields.String(fields.StringProps{})},
		}
		catalog.Register(team)
		teams, _ := shape.Populate(catalog, "teamIds").Field("teamIds")
		require.True(teams.Populated)
		require.Equal("[]TeamDocument", teams.Type)
	})
}
