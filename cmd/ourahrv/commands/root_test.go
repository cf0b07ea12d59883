package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandWiring(t *testing.T) {
	root := NewRootCommand()

	for _, name := range []string{"run", "organize", "serve", "authorize", "exchange"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	organize, _, err := root.Find([]string{"organize"})
	require.NoError(t, err)
	assert.NotNil(t, organize.Flags().Lookup("dry-run"))
}

func TestTimezoneDatabaseIsEmbedded(t *testing.T) {
	t.Setenv("ZONEINFO", t.TempDir())

	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	_, offset := time.Date(2025, 11, 2, 12, 0, 0, 0, loc).Zone()
	assert.Equal(t, -6*3600, offset)
}
