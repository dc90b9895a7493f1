package snapshot

import (
	"errors"
	"fmt"
	"sync"

	"github.com/agentic-research/gatetree/api"
	"github.com/agentic-research/gatetree/internal/model"
)

// State is a step of an import.
type State int

const (
	Idle State = iota
	LoadingDocument
	EnsuringBaseline
	Reconciling
	Done
	Failed
)

var stateNames = [...]string{"Idle", "LoadingDocument", "EnsuringBaseline", "Reconciling", "Done", "Failed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Importer runs a document import: decode, make sure a baseline tree
// exists, then reconcile. A failure leaves earlier mutations in place.
type Importer struct {
	// Baseline builds the skeleton used when the target tree is missing
	// or empty.
	Baseline func() *model.Node
	// Reconciler merges the decoded document.
	Reconciler *Reconciler
	// OnDocument, when set, runs after decoding and before the baseline
	// is ensured. An error fails the import.
	OnDocument func(*api.Document) error

	mu    sync.Mutex
	state State
	err   error
}

// State returns the current state and, once Failed, the cause.
func (im *Importer) State() (State, error) {
	im.mu.Lock()
	defer im.mu.Unlock()
	return im.state, im.err
}

func (im *Importer) set(s State) {
	im.mu.Lock()
	im.state = s
	im.mu.Unlock()
}

func (im *Importer) fail(step string, err error) error {
	err = fmt.Errorf("%s: %w", step, err)
	im.mu.Lock()
	im.state, im.err = Failed, err
	im.mu.Unlock()
	return err
}

// Import decodes data with f and merges it onto root, returning the
// resulting tree. A nil or childless root is replaced by a baseline.
func (im *Importer) Import(root *model.Node, data []byte, f Format) (*model.Node, error) {
	im.mu.Lock()
	im.state, im.err = Idle, nil
	im.mu.Unlock()

	im.set(LoadingDocument)
	doc, err := f.Unmarshal(data)
	if err != nil {
		return root, im.fail("load document", err)
	}
	return im.ImportDocument(root, doc)
}

// ImportDocument is Import for an already decoded document.
func (im *Importer) ImportDocument(root *model.Node, doc *api.Document) (*model.Node, error) {
	if doc == nil {
		return root, im.fail("load document", &MalformedError{Reason: "no document"})
	}
	if im.OnDocument != nil {
		if err := im.OnDocument(doc); err != nil {
			return root, im.fail("load document", err)
		}
	}

	im.set(EnsuringBaseline)
	if root == nil || len(root.Children) == 0 {
		if im.Baseline == nil {
			return root, im.fail("ensure baseline", errors.New("no baseline builder"))
		}
		root = im.Baseline()
	}

	im.set(Reconciling)
	if err := im.Reconciler.Apply(root, doc); err != nil {
		return root, im.fail("reconcile", err)
	}
	im.set(Done)
	return root, nil
}
