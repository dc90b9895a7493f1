// Package workspace owns one configuration tree and the collaborators
// that build, import and export it. Every tree mutation goes through a
// Workspace method, which serializes access.
package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	billy "github.com/go-git/go-billy/v5"

	"github.com/agentic-research/gatetree/api"
	"github.com/agentic-research/gatetree/internal/catalog"
	"github.com/agentic-research/gatetree/internal/config"
	"github.com/agentic-research/gatetree/internal/docio"
	"github.com/agentic-research/gatetree/internal/materialdb"
	"github.com/agentic-research/gatetree/internal/model"
	"github.com/agentic-research/gatetree/internal/snapshot"
	"github.com/agentic-research/gatetree/internal/version"
)

var (
	ErrNodeNotFound      = errors.New("node not found")
	ErrInvalidParent     = errors.New("invalid parent")
	ErrNotRemovable      = errors.New("node is part of the baseline")
	ErrUnknownKind       = errors.New("unknown kind")
	ErrAlreadyPresent    = errors.New("already present")
	ErrParameterNotFound = errors.New("parameter not found")
	ErrNoTree            = errors.New("no tree: build a baseline or import a document first")
)

// Options configure a Workspace.
type Options struct {
	// FS resolves document and material database paths.
	FS     billy.Filesystem
	// Dir anchors relative material database paths of documents that
	// were not read from a file.
	Dir    string
	Logger *slog.Logger
	Config config.Config
}

// Workspace is safe for concurrent use.
type Workspace struct {
	mu       sync.Mutex
	fs       billy.Filesystem
	log      *slog.Logger
	cfg      config.Config
	dir      string
	catalog  *catalog.Catalog
	warnings snapshot.Collector
	db       *materialdb.DB
	root     *model.Node
}

// New returns an empty workspace. The configured version is normalized
// (a failure is reported and falls back) and the configured material
// database, if any, is loaded.
func New(opts Options) *Workspace {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	w := &Workspace{
		fs:  opts.FS,
		log: opts.Logger,
		cfg: opts.Config,
		dir: opts.Dir,
	}
	v := w.normalizeVersion(opts.Config.GateVersion)
	w.catalog = catalog.New(opts.Config.CatalogContext(v, nil))
	if opts.Config.MaterialDatabase != "" {
		if err := w.loadMaterials(opts.Config.MaterialDatabase); err != nil {
			w.report(snapshot.Warning{Kind: snapshot.MaterialDatabase, Message: err.Error()})
		}
	}
	return w
}

func (w *Workspace) report(warn snapshot.Warning) {
	w.warnings.Report(warn)
	w.log.Warn(warn.Message, "kind", warn.Kind, "path", warn.Path)
}

func (w *Workspace) reporter() snapshot.Reporter {
	return snapshot.ReporterFunc(w.report)
}

func (w *Workspace) normalizeVersion(in any) version.Version {
	v, err := version.Normalize(in)
	if err != nil {
		w.report(snapshot.Warning{Kind: snapshot.VersionParseFailure, Message: err.Error()})
	}
	return v
}

// Catalog returns the builders bound to this workspace.
func (w *Workspace) Catalog() *catalog.Catalog { return w.catalog }

// Version is the simulator version new nodes are built for.
func (w *Workspace) Version() version.Version { return w.catalog.Version() }

// SetVersion normalizes in and uses it for later builds. Nodes already
// in the tree keep their addresses.
func (w *Workspace) SetVersion(in any) version.Version {
	w.mu.Lock()
	defer w.mu.Unlock()
	v := w.normalizeVersion(in)
	w.catalog.SetVersion(v)
	return v
}

// Warnings returns every condition recovered since the last Clear,
// across all calls. Import and SetParameter also return their own.
func (w *Workspace) Warnings() []snapshot.Warning { return w.warnings.Warnings() }

// ClearWarnings drops the accumulated warnings.
func (w *Workspace) ClearWarnings() { w.warnings.Reset() }

// Root returns the live tree, or nil before a baseline exists. Callers
// must not mutate it.
func (w *Workspace) Root() *model.Node {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.root
}

// Materials returns the loaded material names.
func (w *Workspace) Materials() []string { return w.catalog.Materials() }

func (w *Workspace) loadMaterials(path string) error {
	if w.fs == nil {
		return fmt.Errorf("load %s: no filesystem", path)
	}
	db, err := materialdb.Load(w.fs, path)
	if err != nil {
		return err
	}
	for _, p := range db.Problems {
		w.log.Debug("material database line skipped", "path", path, "err", p)
	}
	w.db = db
	w.catalog.SetMaterials(db.MaterialNames())
	w.log.Info("material database loaded", "path", path,
		"elements", len(db.Elements), "materials", len(db.Materials))
	return nil
}

// ImportMaterialDB loads the database at path. A workspace without a
// tree gets a baseline offering the new materials; an existing tree is
// preserved and only records the path.
func (w *Workspace) ImportMaterialDB(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.loadMaterials(path); err != nil {
		return err
	}
	if w.root == nil || len(w.root.Children) == 0 {
		w.root = w.catalog.Baseline()
	} else {
		w.log.Info("material database loaded, existing tree preserved")
	}
	w.setMaterialPath(path)
	return nil
}

func (w *Workspace) setMaterialPath(path string) {
	for _, p := range w.root.ParametersByLabel(catalog.MaterialDatabaseLabel) {
		p.SetValues([]any{path})
	}
}

// EnsureBaseline builds the baseline tree if none exists and returns the tree.
func (w *Workspace) EnsureBaseline() *model.Node {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ensureBaseline()
}

func (w *Workspace) ensureBaseline() *model.Node {
	if w.root == nil || len(w.root.Children) == 0 {
		w.root = w.catalog.Baseline()
		if w.db != nil {
			w.setMaterialPath(w.db.Path)
		}
	}
	return w.root
}

// Reset discards the tree.
func (w *Workspace) Reset() {
	w.mu.Lock()
	w.root = nil
	w.mu.Unlock()
}

// importer reports into rep as well as the workspace log. docDir
// resolves a relative material database path.
func (w *Workspace) importer(rep snapshot.Reporter, docDir string) *snapshot.Importer {
	rep = snapshot.Tee(rep, w.reporter())
	return &snapshot.Importer{
		Baseline:   w.catalog.Baseline,
		Reconciler: snapshot.NewReconciler(w.catalog, rep),
		OnDocument: func(doc *api.Document) error { return w.onDocument(doc, rep, docDir) },
	}
}

// materialPath resolves a document's material database path. A
// relative path is tried against docDir first, then against the
// workspace directory. The second result reports whether the file exists.
func (w *Workspace) materialPath(path, docDir string) (string, bool) {
	if path == "" || w.fs == nil {
		return path, true
	}
	candidates := []string{path}
	if !filepath.IsAbs(path) && !strings.HasPrefix(path, "/") {
		candidates = candidates[:0]
		for _, dir := range []string{docDir, w.dir} {
			if dir != "" && dir != "." {
				candidates = append(candidates, filepath.Join(dir, path))
			}
		}
		if w.dir == "" || w.dir == "." {
			candidates = append(candidates, path)
		}
	}
	for _, c := range candidates {
		if _, err := w.fs.Stat(c); !errors.Is(err, os.ErrNotExist) {
			return c, true
		}
	}
	return candidates[0], false
}

// onDocument auto-imports the document's material database before the
// baseline is built, so new volumes offer its materials. Failures are
// warnings.
func (w *Workspace) onDocument(doc *api.Document, rep snapshot.Reporter, docDir string) error {
	path, ok := w.materialPath(doc.MaterialDatabasePath, docDir)
	if path == "" || (w.db != nil && w.db.Path == path) {
		return nil
	}
	if !ok {
		rep.Report(snapshot.Warning{Kind: snapshot.MaterialDatabase, Message: fmt.Sprintf("%s: not found, keeping current materials", doc.MaterialDatabasePath)})
		return nil
	}
	if err := w.loadMaterials(path); err != nil {
		rep.Report(snapshot.Warning{Kind: snapshot.MaterialDatabase, Message: err.Error()})
	}
	return nil
}

// Import decodes data and merges it onto the tree, building a baseline
// first when there is none. It returns the warnings raised by this
// import only.
func (w *Workspace) Import(data []byte, f snapshot.Format) ([]snapshot.Warning, error) {
	return w.importData(data, f, "")
}

func (w *Workspace) importData(data []byte, f snapshot.Format, docDir string) ([]snapshot.Warning, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var call snapshot.Collector
	root, err := w.importer(&call, docDir).Import(w.root, data, f)
	w.root = root
	if err != nil {
		return call.Warnings(), err
	}
	w.log.Info("document applied", "warnings", len(call.Warnings()))
	return call.Warnings(), nil
}

// ImportDocument merges an already decoded document and returns the
// warnings it raised.
func (w *Workspace) ImportDocument(doc *api.Document) ([]snapshot.Warning, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var call snapshot.Collector
	root, err := w.importer(&call, "").ImportDocument(w.root, doc)
	w.root = root
	return call.Warnings(), err
}

// ImportFile reads a document from the workspace filesystem and imports
// it. A relative material database path in the document is resolved
// against the document's directory.
func (w *Workspace) ImportFile(path string) ([]snapshot.Warning, error) {
	data, f, err := docio.Read(w.fs, path)
	if err != nil {
		return nil, err
	}
	return w.importData(data, f, filepath.Dir(path))
}

// Preview applies doc to a copy of the tree and returns the resulting
// document and the warnings it raised. The tree is left untouched.
func (w *Workspace) Preview(doc *api.Document) (*api.Document, []snapshot.Warning, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var target *model.Node
	if w.root != nil && len(w.root.Children) > 0 {
		target = w.root.Clone()
	} else {
		target = w.catalog.Baseline()
	}
	var warnings snapshot.Collector
	if err := snapshot.NewReconciler(w.catalog, &warnings).Apply(target, doc); err != nil {
		return nil, nil, err
	}
	return snapshot.Build(target), warnings.Warnings(), nil
}

// Export serializes the tree.
func (w *Workspace) Export() (*api.Document, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.root == nil {
		return nil, ErrNoTree
	}
	return snapshot.Build(w.root), nil
}

// ExportFile writes the tree to path, encoded by its extension.
func (w *Workspace) ExportFile(path string) error {
	doc, err := w.Export()
	if err != nil {
		return err
	}
	return docio.Save(w.fs, path, doc)
}

// find resolves a node path. The leading root name is optional:
// "gate/world/box" and "world/box" name the same node.
func (w *Workspace) find(path string) (*model.Node, error) {
	if w.root == nil {
		return nil, ErrNoTree
	}
	trimmed := strings.Trim(path, "/")
	if rest, ok := strings.CutPrefix(trimmed, w.root.Name); ok && (rest == "" || rest[0] == '/') {
		trimmed = rest
	}
	n := w.root.Find(trimmed)
	if n == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNodeNotFound)
	}
	return n, nil
}

func (w *Workspace) container(kind model.Kind) (*model.Node, error) {
	root := w.ensureBaseline()
	for _, c := range root.Children {
		if c.Kind == kind {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%s container: %w", kind, ErrNodeNotFound)
}
