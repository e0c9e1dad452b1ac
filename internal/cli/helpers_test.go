package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// scenariosDir holds the harness scenarios, which all pass.
var scenariosDir = filepath.Join("..", "harness", "testdata", "scenarios")

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// response is CLIResponse with typed data.
type response[T any] struct {
	Status string    `json:"status"`
	Data   T         `json:"data"`
	Error  *CLIError `json:"error"`
}

func decode[T any](t *testing.T, out string) response[T] {
	t.Helper()
	var resp response[T]
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

func testDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "studio.db")
}

// populate runs the harness scenarios into a new database.
func populate(t *testing.T) string {
	t.Helper()
	db := testDB(t)
	_, err := execute(t, NewRunCommand(&RootOptions{Format: "text"}), scenariosDir, "--db", db)
	require.NoError(t, err)
	return db
}
