package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestQueryPlan(t *testing.T) {
	require := require.New(t)

	t.Run("must be ok to record populates without fetching", func(t *testing.T) {
		f := newFixture(orgSchema())
		q := f.find(bson.M{"name": "Jo"}).
			Populate("organisationId").
			PopulateFields([]string{"teamIds"}, WithStrategy(StrategyAggregation), WithSelect("name"))

		plan := q.Plan()
		require.Equal("User", plan.Schema.Name)
		require.Equal(bson.M{"name": "Jo"}, plan.Filter)
		require.False(plan.Single)
		require.Equal([]PopulateRequest{
			{Fields: []string{"organisationId"}, Strategy: StrategyMultiple},
			{Fields: []string{"teamIds"}, Strategy: StrategyAggregation, Select: []string{"name"}},
		}, plan.Populates)
		require.Equal([]string{"organisationId", "teamIds"}, plan.PopulatedFields())

		require.Empty(f.client.Journal().Entries())
	})

	t.Run("plans are snapshots", func(t *testing.T) {
		f := newFixture()
		q := f.findOne(bson.M{}).Populate("organisationId")

		plan := q.Plan()
		require.True(plan.Single)
		plan.Populates[0].Fields[0] = "changed"
		plan.Populates = append(plan.Populates, NewPopulateRequest([]string{"teamIds"}))

		again := q.Plan()
		require.Len(again.Populates, 1)
		require.Equal("organisationId", again.Populates[0].Fields[0])
	})

	t.Run("populate after execution panics", func(t *testing.T) {
		f := newFixture(orgSchema())
		q := f.find(bson.M{})
		_, err := q.Exec(context.Background())
		require.NoError(err)

		requireIllegalState(t, func() { q.Populate("organisationId") })

		single := f.findOne(bson.M{})
		_, err = single.Exec(context.Background())
		require.NoError(err)
		requireIllegalState(t, func() { single.PopulateFields([]string{"teamIds"}) })
	})

	t.Run("plans can run on an executor directly", func(t *testing.T) {
		f := newFixture(orgSchema())
		o1 := f.insert(t, f.orgs, bson.M{"name": "Acme"})
		f.insert(t, f.users, bson.M{"name": "Jo", "organisationId": o1})

		plan := Plan{
			Schema:    userSchema(),
			Filter:    bson.M{"name": "Jo"},
			Populates: []PopulateRequest{NewPopulateRequest([]string{"organisationId"})},
		}
		docs, err := f.executor.Execute(context.Background(), plan)
		require.NoError(err)
		require.Len(docs, 1)
		require.True(RefOf(docs[0]["organisationId"]).IsResolved())

		docs, err = f.executor.Execute(context.Background(), plan)
		require.NoError(err)
		require.Len(docs, 1)
		require.Equal(2, f.lookups("users"))
	})
}

func requireIllegalState(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok)
		require.True(t, errors.Is(err, ErrIllegalState))

		var stateErr *IllegalStateError
		require.ErrorAs(t, err, &stateErr)
		require.Equal(t, "populate", stateErr.Op)
	}()
	fn()
}

func TestRef(t *testing.T) {
	require := require.New(t)
	id := primitive.NewObjectID()

	raw := RefOf(id)
	require.False(raw.IsResolved())
	require.False(raw.IsZero())
	require.Equal(id.Hex(), raw.Key())

	doc := bson.M{"_id": id, "name": "Acme"}
	resolved := RefOf(doc)
	require.True(resolved.IsResolved())
	require.Equal(id, resolved.ID)
	require.Equal("Acme", resolved.Doc["name"])

	fromD := RefOf(bson.D{{Key: "_id", Value: id}})
	require.True(fromD.IsResolved())
	require.Equal(id.Hex(), fromD.Key())

	require.True(RefOf(nil).IsZero())
	require.Equal("", RefOf(nil).Key())

	refs := RefsOf(bson.A{doc, id})
	require.Len(refs, 2)
	require.True(refs[0].IsResolved())
	require.False(refs[1].IsResolved())

	require.Len(RefsOf(id), 1)
	require.Nil(RefsOf(nil))
}

func TestDecode(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	type Org struct {
		ID   primitive.ObjectID `bson:"_id"`
		Name string             `bson:"name"`
	}
	type User struct {
		ID             primitive.ObjectID `bson:"_id"`
		Name           string             `bson:"name"`
		OrganisationID primitive.ObjectID `bson:"organisationId"`
	}
	type PopulatedUser struct {
		ID           primitive.ObjectID `bson:"_id"`
		Name         string             `bson:"name"`
		Organisation Org                `bson:"organisationId"`
	}

	f := newFixture(orgSchema())
	o1 := f.insert(t, f.orgs, bson.M{"name": "Acme"}).(primitive.ObjectID)
	f.insert(t, f.users, bson.M{"name": "Jo", "organisationId": o1})

	plain, err := f.find(bson.M{}).Exec(ctx)
	require.NoError(err)
	users, err := DecodeAll[User](plain)
	require.NoError(err)
	require.Len(users, 1)
	require.Equal(o1, users[0].OrganisationID)

	doc, err := f.findOne(bson.M{}).Populate("organisationId").Exec(ctx)
	require.NoError(err)
	populated, err := Decode[PopulatedUser](doc)
	require.NoError(err)
	require.Equal(Org{ID: o1, Name: "Acme"}, populated.Organisation)

	_, err = Decode[User](nil)
	require.ErrorIs(err, ErrNilDocument)
}
