package schemas

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	require := require.New(t)

	t.Run("must be ok to register and look up", func(t *testing.T) {
		c := NewCatalog()
		c.Register(organisationDef())
		c.Register(userDef())

		def, ok := c.Lookup("Organisation")
		require.True(ok)
		require.Equal("organisations", def.Collection)

		_, ok = c.Lookup("Missing")
		require.False(ok)

		require.Equal([]string{"Organisation", "User"}, c.Names())
		require.Equal(2, c.Len())
	})

	t.Run("last registration wins", func(t *testing.T) {
		c := NewCatalog()
		c.Register(organisationDef())

		replaced := organisationDef()
		replaced.Collection = "orgs_v2"
		c.Register(replaced)

		def, ok := c.Lookup("Organisation")
		require.True(ok)
		require.Equal("orgs_v2", def.Collection)
		require.Equal(1, c.Len())
	})

	t.Run("concurrent registration is safe", func(t *testing.T) {
		c := NewCatalog()
		wg := sync.WaitGroup{}
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				def := organisationDef()
				def.Name = fmt.Sprintf("Org%d", i%10)
				c.Register(def)
				_, _ = c.Lookup(def.Name)
			}(i)
		}
		wg.Wait()
		require.Equal(10, c.Len())
	})

	t.Run("process-wide catalog", func(t *testing.T) {
		def := organisationDef()
		def.Name = "DefaultCatalogOrganisation"
		Register(def)

		got, ok := Lookup(def.Name)
		require.True(ok)
		require.Equal(def.Collection, got.Collection)
		require.Contains(Default().Names(), def.Name)
	})
}
