package treefs

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"testing"

	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/gatetree/api"
)

func ptr(s string) *string { return &s }

func testDoc() *api.Document {
	return &api.Document{
		SchemaVersion: api.SchemaVersion,
		Root: api.NodeSnapshot{
			Name: "gate",
			Kind: "root",
			Parameters: []api.ParameterSnapshot{
				{Label: "Material Database", Values: []any{"/data/GateMaterials.db"}},
			},
			Children: []api.NodeSnapshot{
				{
					Name: "world",
					Kind: "world",
					Parameters: []api.ParameterSnapshot{
						{Label: "X Length", Values: []any{50.0}, Unit: ptr("cm")},
						{Label: "Position (X, Y, Z)", Values: []any{0.0, 0.0, 1.5}, Unit: ptr("mm")},
					},
					Children: []api.NodeSnapshot{
						{
							Name: "ring",
							Kind: "volume",
							Meta: api.Meta{Shape: "cylinder", Repeater: "ring"},
							Parameters: []api.ParameterSnapshot{
								{Label: "Repeat Number", Values: []any{8.0}},
								{Label: "Repeat Number", Values: []any{2.0}},
								{Label: "Insert a/b", Values: []any{"False"}},
								{Label: "Name", Values: []any{"two words"}},
							},
						},
					},
				},
			},
		},
	}
}

func TestReadDir(t *testing.T) {
	fs := New(testDoc())

	infos, err := fs.ReadDir("/")
	require.NoError(t, err)
	var names []string
	for _, fi := range infos {
		names = append(names, fi.Name())
	}
	assert.Equal(t, []string{MetaFile, "world", "Material Database"}, names)
	assert.True(t, infos[1].IsDir())
	assert.False(t, infos[2].IsDir())

	infos, err = fs.ReadDir("world/ring")
	require.NoError(t, err)
	names = names[:0]
	for _, fi := range infos {
		names = append(names, fi.Name())
	}
	assert.Equal(t, []string{MetaFile, "Repeat Number", "Repeat Number (2)", "Insert a_b", "Name"}, names)

	_, err = fs.ReadDir("world/missing")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = fs.ReadDir("world/X Length")
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	fs := New(testDoc())

	tests := []struct {
		path string
		want string
	}{
		{"/Material Database", "/data/GateMaterials.db\n"},
		{"world/X Length", "50 cm\n"},
		{"world/Position (X, Y, Z)", "0 0 1.5 mm\n"},
		{"world/ring/Repeat Number (2)", "2\n"},
		{"world/ring/Insert a_b", "False\n"},
		{"world/ring/Name", "\"two words\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			data, err := util.ReadFile(fs, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))

			fi, err := fs.Stat(tt.path)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.want)), fi.Size())
		})
	}
}

func TestMetaFile(t *testing.T) {
	fs := New(testDoc())
	data, err := util.ReadFile(fs, "world/ring/"+MetaFile)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "ring", got["name"])
	assert.Equal(t, "volume", got["kind"])
	assert.Equal(t, map[string]any{"shape": "cylinder", "repeater": "ring"}, got["meta"])
}

func TestReadOnly(t *testing.T) {
	fs := New(testDoc())

	_, err := fs.Create("world/new")
	assert.ErrorIs(t, err, errReadOnly)
	_, err = fs.OpenFile("world/X Length", os.O_RDWR, 0)
	assert.ErrorIs(t, err, errReadOnly)
	assert.ErrorIs(t, fs.Remove("world"), errReadOnly)
	assert.ErrorIs(t, fs.MkdirAll("world/x", 0o755), errReadOnly)

	_, err = fs.Open("world")
	assert.Error(t, err)
}

func TestChrootAndSeek(t *testing.T) {
	fs := New(testDoc())
	sub, err := fs.Chroot("world")
	require.NoError(t, err)

	f, err := sub.Open("X Length")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	_, err = f.Seek(3, io.SeekStart)
	require.NoError(t, err)
	rest, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "cm\n", string(rest))
}

func TestReadAt(t *testing.T) {
	fs := New(testDoc())
	f, err := fs.Open("world/X Length")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	buf := make([]byte, 2)
	n, err := f.ReadAt(buf, 3)
	require.NoError(t, err)
	assert.Equal(t, "cm", string(buf[:n]))

	n, err = f.ReadAt(buf, -1)
	assert.ErrorIs(t, err, os.ErrInvalid)
	assert.Zero(t, n)
}

func TestNFSServerStarts(t *testing.T) {
	srv, err := NewServer(New(testDoc()))
	require.NoError(t, err)
	defer func() { _ = srv.Close() }()

	assert.True(t, srv.Port() > 0, "server should be on a valid port")

	conn, err := net.Dial("tcp", fmt.Sprintf("localhost:%d", srv.Port()))
	require.NoError(t, err)
	_ = conn.Close()
}
