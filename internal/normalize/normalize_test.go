package normalize_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/dbsyncengine/schemasync/internal/normalize"
)

func TestDefaultTypeCasting(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		name      string
		dbDefault string
		want      string
	}{
		{"text default user", "'user'::text", "user"},
		{"text default active", "'active'::text", "active"},
		{"bigint default zero", "'0'::bigint", "0"},
		{"bigint default number", "'123'::bigint", "123"},
		{"boolean default true", "'true'::boolean", "true"},
		{"boolean default false", "'false'::boolean", "false"},
		{"bare literal unchanged", "active", "active"},
		{"embedded quote", "'it''s'::text", "it's"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			c.Assert(normalize.Default(tc.dbDefault), qt.Equals, tc.want)
		})
	}
}

func TestDefaultBothSidesConverge(t *testing.T) {
	c := qt.New(t)
	c.Assert(normalize.Default("'active'::text"), qt.Equals, normalize.Default("active"))
	c.Assert(normalize.Default("'123'::bigint"), qt.Equals, normalize.Default("123"))
}

func TestIdentifierFolding(t *testing.T) {
	c := qt.New(t)
	c.Assert(normalize.Identifier("Users"), qt.Equals, normalize.Identifier("users"))
}
