package snapshot

import (
	"fmt"
	"sync"
)

// WarningKind classifies a recovered condition.
type WarningKind string

const (
	// UnmatchedParameter: a snapshot label has no live parameter on the node.
	UnmatchedParameter WarningKind = "UnmatchedParameter"
	// UnknownUnit: a snapshot unit is not a candidate of the matched parameter.
	UnknownUnit WarningKind = "UnknownUnit"
	// UncreatableChild: a missing child cannot be dispatched to any builder.
	UncreatableChild WarningKind = "UncreatableChild"
	// VersionParseFailure: a version descriptor fell back to the default.
	VersionParseFailure WarningKind = "VersionParseFailure"
	// MaterialDatabase: the document's material database could not be loaded.
	MaterialDatabase WarningKind = "MaterialDatabase"
)

// Warning is a non-fatal condition met while applying a document.
type Warning struct {
	Kind WarningKind `json:"kind"`
	// Path of the node the warning is about, e.g. "gate/source/src".
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Path == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s: %s: %s", w.Kind, w.Path, w.Message)
}

// Reporter receives every recovered condition.
type Reporter interface {
	Report(Warning)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Warning)

// Report implements Reporter.
func (f ReporterFunc) Report(w Warning) { f(w) }

// Discard drops every warning.
var Discard Reporter = ReporterFunc(func(Warning) {})

// Collector accumulates warnings. It is safe for concurrent use.
type Collector struct {
	mu       sync.Mutex
	warnings []Warning
}

// Report implements Reporter.
func (c *Collector) Report(w Warning) {
	c.mu.Lock()
	c.warnings = append(c.warnings, w)
	c.mu.Unlock()
}

// Warnings returns the accumulated warnings in report order.
func (c *Collector) Warnings() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Warning(nil), c.warnings...)
}

// Reset drops the accumulated warnings.
func (c *Collector) Reset() {
	c.mu.Lock()
	c.warnings = nil
	c.mu.Unlock()
}

// Tee fans each warning out to every reporter.
func Tee(reporters ...Reporter) Reporter {
	return ReporterFunc(func(w Warning) {
		for _, r := range reporters {
			r.Report(w)
		}
	})
}
