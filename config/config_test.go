package config_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/dbsyncengine/schemasync/config"
)

func TestDefaultOptionsDisablesWidening(t *testing.T) {
	c := qt.New(t)
	opts := config.DefaultOptions()
	c.Assert(opts.WidenUniqueWithTenantColumn, qt.IsFalse)
	c.Assert(opts.TenantColumnName, qt.Equals, "organization_id")
}

func TestWithTenantWideningDefaultsColumnName(t *testing.T) {
	c := qt.New(t)
	opts := config.WithTenantWidening("")
	c.Assert(opts.WidenUniqueWithTenantColumn, qt.IsTrue)
	c.Assert(opts.TenantColumnName, qt.Equals, "organization_id")
}

func TestWithTenantWideningCustomColumnName(t *testing.T) {
	c := qt.New(t)
	opts := config.WithTenantWidening("tenant_id")
	c.Assert(opts.WidenUniqueWithTenantColumn, qt.IsTrue)
	c.Assert(opts.TenantColumnName, qt.Equals, "tenant_id")
}
