// Package treefs exposes a snapshot document as a read-only
// billy.Filesystem. Every node is a directory named after the node,
// every parameter a file named after its label, and each directory
// carries a virtual _meta.json describing the node.
package treefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/helper/chroot"

	"github.com/agentic-research/gatetree/api"
)

// MetaFile is the virtual file present in every directory.
const MetaFile = "_meta.json"

var errReadOnly = errors.New("read-only filesystem")

// TreeFS adapts a Document to billy.Filesystem.
type TreeFS struct {
	doc     *api.Document
	modTime time.Time
}

// New returns a filesystem over doc. doc must not be modified while the
// filesystem is in use.
func New(doc *api.Document) *TreeFS {
	return &TreeFS{doc: doc, modTime: time.Now()}
}

// entry is either a node (param == nil) or one of its parameters.
type entry struct {
	node  *api.NodeSnapshot
	param *api.ParameterSnapshot
	meta  bool
}

// FileName maps a parameter label to the name of its file. Slashes are
// replaced and duplicated labels get a numeric suffix in tree order.
func FileName(label string, seen map[string]int) string {
	name := strings.ReplaceAll(strings.TrimSpace(label), "/", "_")
	if name == "" || name == "." || name == ".." {
		name = "_"
	}
	seen[name]++
	if n := seen[name]; n > 1 {
		return fmt.Sprintf("%s (%d)", name, n)
	}
	return name
}

// files returns the parameter files of n keyed by file name, in order.
func files(n *api.NodeSnapshot) ([]string, map[string]*api.ParameterSnapshot) {
	seen := map[string]int{}
	names := make([]string, 0, len(n.Parameters))
	byName := make(map[string]*api.ParameterSnapshot, len(n.Parameters))
	for i := range n.Parameters {
		name := FileName(n.Parameters[i].Label, seen)
		names = append(names, name)
		byName[name] = &n.Parameters[i]
	}
	return names, byName
}

func (fs *TreeFS) resolve(filename string) (entry, bool) {
	p := cleanPath(filename)
	cur := &fs.doc.Root
	if p == "/" {
		return entry{node: cur}, true
	}
	segs := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, seg := range segs {
		last := i == len(segs)-1
		if child := childByName(cur, seg); child != nil {
			cur = child
			continue
		}
		if !last {
			return entry{}, false
		}
		if seg == MetaFile {
			return entry{node: cur, meta: true}, true
		}
		if _, byName := files(cur); byName[seg] != nil {
			return entry{node: cur, param: byName[seg]}, true
		}
		return entry{}, false
	}
	return entry{node: cur}, true
}

func childByName(n *api.NodeSnapshot, name string) *api.NodeSnapshot {
	for i := range n.Children {
		if n.Children[i].Name == name {
			return &n.Children[i]
		}
	}
	return nil
}

// Content renders a parameter file: the slot values separated by
// spaces, then the unit if any.
func Content(p *api.ParameterSnapshot) []byte {
	parts := make([]string, 0, len(p.Values)+1)
	for _, v := range p.Values {
		parts = append(parts, formatValue(v))
	}
	if p.Unit != nil && *p.Unit != "" {
		parts = append(parts, *p.Unit)
	}
	return []byte(strings.Join(parts, " ") + "\n")
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		if x == "" || strings.ContainsAny(x, " \t") {
			return fmt.Sprintf("%q", x)
		}
		return x
	default:
		return fmt.Sprint(x)
	}
}

type metaView struct {
	Name string   `json:"name"`
	Kind string   `json:"kind"`
	Meta api.Meta `json:"meta"`
}

func metaContent(n *api.NodeSnapshot) []byte {
	data, _ := json.MarshalIndent(metaView{Name: n.Name, Kind: n.Kind, Meta: n.Meta}, "", "  ")
	return append(data, '\n')
}

func (fs *TreeFS) content(e entry) []byte {
	if e.meta {
		return metaContent(e.node)
	}
	return Content(e.param)
}

func (fs *TreeFS) info(e entry) os.FileInfo {
	switch {
	case e.meta:
		return &staticFileInfo{name: MetaFile, size: int64(len(metaContent(e.node))), mode: 0o444, modTime: fs.modTime}
	case e.param != nil:
		return &staticFileInfo{name: e.param.Label, size: int64(len(Content(e.param))), mode: 0o444, modTime: fs.modTime}
	}
	return &staticFileInfo{name: e.node.Name, mode: os.ModeDir | 0o555, modTime: fs.modTime}
}

// --- billy.Basic ---

func (fs *TreeFS) Create(string) (billy.File, error) { return nil, errReadOnly }

func (fs *TreeFS) Open(filename string) (billy.File, error) {
	return fs.OpenFile(filename, os.O_RDONLY, 0)
}

func (fs *TreeFS) OpenFile(filename string, flag int, _ os.FileMode) (billy.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND) != 0 {
		return nil, errReadOnly
	}
	filename = cleanPath(filename)
	e, ok := fs.resolve(filename)
	if !ok {
		return nil, &os.PathError{Op: "open", Path: filename, Err: os.ErrNotExist}
	}
	if !e.meta && e.param == nil {
		return nil, &os.PathError{Op: "open", Path: filename, Err: fmt.Errorf("is a directory")}
	}
	return &bytesFile{name: filename, data: fs.content(e)}, nil
}

func (fs *TreeFS) Stat(filename string) (os.FileInfo, error) {
	return fs.Lstat(filename)
}

func (fs *TreeFS) Rename(string, string) error { return errReadOnly }
func (fs *TreeFS) Remove(string) error         { return errReadOnly }

func (fs *TreeFS) Join(elem ...string) string {
	return path.Join(elem...)
}

// --- billy.TempFile ---

func (fs *TreeFS) TempFile(string, string) (billy.File, error) {
	return nil, billy.ErrNotSupported
}

// --- billy.Dir ---

func (fs *TreeFS) ReadDir(dirname string) ([]os.FileInfo, error) {
	dirname = cleanPath(dirname)
	e, ok := fs.resolve(dirname)
	if !ok {
		return nil, &os.PathError{Op: "readdir", Path: dirname, Err: os.ErrNotExist}
	}
	if e.meta || e.param != nil {
		return nil, &os.PathError{Op: "readdir", Path: dirname, Err: fmt.Errorf("not a directory")}
	}

	n := e.node
	names, byName := files(n)
	infos := make([]os.FileInfo, 0, len(n.Children)+len(names)+1)
	infos = append(infos, fs.info(entry{node: n, meta: true}))
	for i := range n.Children {
		infos = append(infos, fs.info(entry{node: &n.Children[i]}))
	}
	for _, name := range names {
		fi := fs.info(entry{node: n, param: byName[name]}).(*staticFileInfo)
		fi.name = name
		infos = append(infos, fi)
	}
	return infos, nil
}

func (fs *TreeFS) MkdirAll(string, os.FileMode) error { return errReadOnly }

// --- billy.Symlink ---

func (fs *TreeFS) Lstat(filename string) (os.FileInfo, error) {
	filename = cleanPath(filename)
	e, ok := fs.resolve(filename)
	if !ok {
		return nil, &os.PathError{Op: "lstat", Path: filename, Err: os.ErrNotExist}
	}
	fi := fs.info(e).(*staticFileInfo)
	fi.name = path.Base(filename)
	return fi, nil
}

func (fs *TreeFS) Symlink(string, string) error { return billy.ErrNotSupported }

func (fs *TreeFS) Readlink(string) (string, error) { return "", billy.ErrNotSupported }

// --- billy.Chroot ---

func (fs *TreeFS) Chroot(p string) (billy.Filesystem, error) {
	return chroot.New(fs, p), nil
}

func (fs *TreeFS) Root() string { return "/" }

// --- billy.Capable ---

func (fs *TreeFS) Capabilities() billy.Capability {
	return billy.ReadCapability | billy.SeekCapability
}

func cleanPath(p string) string {
	return path.Clean("/" + p)
}

type staticFileInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
}

func (fi *staticFileInfo) Name() string       { return fi.name }
func (fi *staticFileInfo) Size() int64        { return fi.size }
func (fi *staticFileInfo) Mode() os.FileMode  { return fi.mode }
func (fi *staticFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *staticFileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi *staticFileInfo) Sys() any           { return nil }

var (
	_ billy.Filesystem = (*TreeFS)(nil)
	_ billy.Capable    = (*TreeFS)(nil)
	_ billy.File       = (*bytesFile)(nil)
)
