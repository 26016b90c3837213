package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmbeddedFilesAreOrdered(t *testing.T) {
	migrations, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	assert.Equal(t, "0001_create_users", migrations[0].Version)
	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Version, migrations[i].Version)
	}
	for _, mig := range migrations {
		assert.Contains(t, mig.SQL, "CREATE TABLE", mig.Version)
	}
}

func TestLoad_SortsByFileName(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_b.sql": {Data: []byte("SELECT 2;")},
		"0001_a.sql": {Data: []byte("SELECT 1;")},
		"README.md":  {Data: []byte("ignored")},
	}
	migrations, err := load(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "0001_a", migrations[0].Version)
	assert.Equal(t, "SELECT 2;", migrations[1].SQL)
}

func TestPending(t *testing.T) {
	all := []Migration{{Version: "0001_a"}, {Version: "0002_b"}, {Version: "0003_c"}}

	pending := Pending(all, map[string]bool{"0001_a": true, "0003_c": true})
	require.Len(t, pending, 1)
	assert.Equal(t, "0002_b", pending[0].Version)

	assert.Len(t, Pending(all, nil), 3)
	assert.Empty(t, Pending(all, map[string]bool{"0001_a": true, "0002_b": true, "0003_c": true}))
}
