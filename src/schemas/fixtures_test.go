package schemas

import "github.com/tsotimus/monkko/src/fields"

var address = DefineSubDocument(map[string]fields.Descriptor{
	"street": fields.String(fields.StringProps{Required: true}),
	"city":   fields.String(fields.StringProps{Required: true}),
	"zip":    fields.String(fields.StringProps{Required: true, MaxLength: 10}),
})

func organisationDef() Definition {
	return Definition{
		Name:       "Organisation",
		DB:         "monkko-test",
		Collection: "organisations",
		Fields: map[string]fields.Descriptor{
			"name":     fields.String(fields.StringProps{Required: true}),
			"industry": fields.String(fields.StringProps{Optional: true}),
		},
	}
}

func userDef() Definition {
	return Definition{
		Name:       "User",
		DB:         "monkko-test",
		Collection: "users",
		Fields: map[string]fields.Descriptor{
			"name":           fields.String(fields.StringProps{Required: true}),
			"email":          fields.String(fields.StringProps{Required: true, Unique: true}),
			"age":            fields.Number(fields.NumberProps{Optional: true, Min: fields.Ptr(0.0)}),
			"address":        address(fields.Props{Optional: true}),
			"organisationId": fields.Reference(fields.ReferenceProps{Ref: "Organisation", Optional: true}),
			"teamIds":        fields.Array(fields.Reference(fields.ReferenceProps{Ref: "Team", Optional: true})),
		},
		Options: Options{Timestamps: true},
	}
}
