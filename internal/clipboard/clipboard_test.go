package clipboard

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubSystem(t *testing.T, unsupported bool) *[]string {
	t.Helper()
	origUnsupported, origWrite := systemUnsupported, systemWrite
	t.Cleanup(func() { systemUnsupported, systemWrite = origUnsupported, origWrite })

	var written []string
	systemUnsupported = func() bool { return unsupported }
	systemWrite = func(text string) error {
		written = append(written, text)
		return nil
	}
	return &written
}

func TestCopy_System(t *testing.T) {
	written := stubSystem(t, false)

	require.NoError(t, Copy(context.Background(), "", "note text"))
	assert.Equal(t, []string{"note text"}, *written)
	assert.Equal(t, "system", Describe(""))
}

func TestCopy_Unsupported(t *testing.T) {
	written := stubSystem(t, true)

	assert.ErrorIs(t, Copy(context.Background(), "  ", "note text"), ErrNoCommand)
	assert.Empty(t, *written)
	assert.Equal(t, "none", Describe(""))
}

func TestCopy_ConfiguredCommand(t *testing.T) {
	written := stubSystem(t, false)
	out := filepath.Join(t.TempDir(), "clip")

	require.NoError(t, Copy(context.Background(), "tee "+out, "copied text"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "copied text", string(data))
	assert.Empty(t, *written, "system clipboard must not be used when a command is configured")
	assert.Equal(t, "tee "+out, Describe("tee "+out))
}

func TestCopy_CommandFails(t *testing.T) {
	stubSystem(t, false)
	assert.Error(t, Copy(context.Background(), "false", "text"))
}
