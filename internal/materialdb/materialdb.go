// Package materialdb reads material database files: an [Elements]
// section of element definitions and a [Materials] section whose
// entries are followed by "+" component lines.
package materialdb

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Extension is required on database file names.
const Extension = ".db"

// ErrNotMaterialDatabase is returned for a path without Extension.
var ErrNotMaterialDatabase = errors.New("not a material database file")

// LineError reports a line that could not be parsed. Such lines are
// skipped; parsing continues.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Element is one entry of the elements section.
type Element struct {
	Name   string
	Symbol string
	Z      float64
	// A is the molar mass in g/mole.
	A float64
}

// Component is one "+el:" or "+mat:" line under a material.
type Component struct {
	// Kind is "el" or "mat".
	Kind     string
	Name     string
	Fraction float64
	Count    int
}

// Material is one entry of the materials section.
type Material struct {
	Name        string
	Density     float64
	DensityUnit string
	State       string
	Components  []Component
}

// DB is a parsed material database. Names keep file order.
type DB struct {
	Path      string
	Elements  []Element
	Materials []Material
	// Problems lists the lines that were skipped.
	Problems []error
}

// MaterialNames returns the material names in file order.
func (db *DB) MaterialNames() []string {
	if db == nil {
		return nil
	}
	names := make([]string, 0, len(db.Materials))
	for _, m := range db.Materials {
		names = append(names, m.Name)
	}
	return names
}

// Material looks a material up by name.
func (db *DB) Material(name string) (Material, bool) {
	for _, m := range db.Materials {
		if m.Name == name {
			return m, true
		}
	}
	return Material{}, false
}

// Load reads and parses the database at path on fs.
func Load(fs billy.Filesystem, path string) (*DB, error) {
	if !strings.EqualFold(filepath.Ext(path), Extension) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotMaterialDatabase)
	}
	data, err := util.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read material database: %w", err)
	}
	db, err := Parse(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	db.Path = path
	return db, nil
}

// Parse reads a database. Only read errors are returned; bad lines are
// recorded in Problems.
func Parse(r io.Reader) (*DB, error) {
	db := &DB{}
	var (
		section string
		current *Material
		lineNo  int
	)
	flush := func() {
		if current != nil {
			db.Materials = append(db.Materials, *current)
			current = nil
		}
	}
	problem := func(text string, err error) {
		db.Problems = append(db.Problems, &LineError{Line: lineNo, Text: text, Err: err})
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			flush()
			section = strings.ToLower(strings.Trim(line, "[]"))
			continue
		}
		switch section {
		case "elements":
			el, err := parseElement(line)
			if err != nil {
				problem(line, err)
				continue
			}
			db.Elements = append(db.Elements, el)
		case "materials":
			if strings.HasPrefix(line, "+") {
				if current == nil {
					problem(line, errors.New("component outside a material"))
					continue
				}
				c, err := parseComponent(line)
				if err != nil {
					problem(line, err)
					continue
				}
				current.Components = append(current.Components, c)
				continue
			}
			flush()
			m, err := parseMaterial(line)
			if err != nil {
				problem(line, err)
				continue
			}
			current = &m
		}
	}
	flush()
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return db, nil
}

// splitEntry splits "Name: k=v ; k=v" into the name and its properties.
func splitEntry(line string) (string, map[string]string, error) {
	name, rest, ok := strings.Cut(line, ":")
	if !ok {
		return "", nil, errors.New("missing ':'")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, errors.New("empty name")
	}
	props := map[string]string{}
	for _, part := range strings.Split(rest, ";") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		props[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return name, props, nil
}

func parseElement(line string) (Element, error) {
	name, props, err := splitEntry(line)
	if err != nil {
		return Element{}, err
	}
	el := Element{Name: name, Symbol: props["S"]}
	if el.Symbol == "" {
		el.Symbol = "?"
	}
	if z, ok := props["Z"]; ok {
		if el.Z, err = strconv.ParseFloat(z, 64); err != nil {
			return Element{}, fmt.Errorf("Z: %w", err)
		}
	}
	if a, ok := props["A"]; ok {
		fields := strings.Fields(a)
		if len(fields) == 0 {
			return Element{}, errors.New("A: empty")
		}
		if el.A, err = strconv.ParseFloat(fields[0], 64); err != nil {
			return Element{}, fmt.Errorf("A: %w", err)
		}
	}
	return el, nil
}

func parseMaterial(line string) (Material, error) {
	name, props, err := splitEntry(line)
	if err != nil {
		return Material{}, err
	}
	m := Material{Name: name, State: props["state"]}
	if d, ok := props["d"]; ok {
		fields := strings.Fields(d)
		if len(fields) > 0 {
			if m.Density, err = strconv.ParseFloat(fields[0], 64); err != nil {
				return Material{}, fmt.Errorf("d: %w", err)
			}
		}
		if len(fields) > 1 {
			m.DensityUnit = fields[1]
		}
	}
	return m, nil
}

func parseComponent(line string) (Component, error) {
	kind, rest, ok := strings.Cut(strings.TrimPrefix(line, "+"), ":")
	if !ok {
		return Component{}, errors.New("missing ':'")
	}
	_, props, err := splitEntry("c:" + rest)
	if err != nil {
		return Component{}, err
	}
	c := Component{Kind: strings.TrimSpace(kind), Name: props["name"]}
	if f, ok := props["f"]; ok {
		if c.Fraction, err = strconv.ParseFloat(f, 64); err != nil {
			return Component{}, fmt.Errorf("f: %w", err)
		}
	}
	if n, ok := props["n"]; ok {
		if c.Count, err = strconv.Atoi(n); err != nil {
			return Component{}, fmt.Errorf("n: %w", err)
		}
	}
	return c, nil
}
