// Package rpp reads and writes REAPER's nested-chunk project text format
package rpp

import "strconv"

// Element is a single entry of an RPP chunk tree. A leaf element is one
// line (name plus parameter tokens); a chunk element additionally holds
// ordered children and is serialized as `<NAME params…` … `>`.
type Element struct {
	Name     string
	Params   []string
	Raw      string // original source line, empty for synthesized elements
	Chunk    bool
	Children []*Element
}

// NewLeaf creates a leaf element
func NewLeaf(name string, params ...string) *Element {
	return &Element{Name: name, Params: params}
}

// NewChunk creates an empty chunk element
func NewChunk(name string, params ...string) *Element {
	return &Element{Name: name, Params: params, Chunk: true}
}

// Add appends a child and returns it for chaining
func (e *Element) Add(child *Element) *Element {
	e.Children = append(e.Children, child)
	return child
}

// AddLeaf appends a new leaf child and returns it
func (e *Element) AddLeaf(name string, params ...string) *Element {
	return e.Add(NewLeaf(name, params...))
}

// AddChunk appends a new chunk child and returns it
func (e *Element) AddChunk(name string, params ...string) *Element {
	return e.Add(NewChunk(name, params...))
}

// Find returns the first child with the given name, or nil
func (e *Element) Find(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FindAll returns all children with the given name, in declaration order
func (e *Element) FindAll(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Param returns the parameter at index i, or the empty string
func (e *Element) Param(i int) string {
	if i < 0 || i >= len(e.Params) {
		return ""
	}
	return e.Params[i]
}

// IntParam returns the parameter at index i as an integer, or def when
// missing or unparsable
func (e *Element) IntParam(i int, def int) int {
	v, err := strconv.Atoi(e.Param(i))
	if err != nil {
		return def
	}
	return v
}

// FloatParam returns the parameter at index i as a float, or def when
// missing or unparsable
func (e *Element) FloatParam(i int, def float64) float64 {
	v, err := strconv.ParseFloat(e.Param(i), 64)
	if err != nil {
		return def
	}
	return v
}
