// Package modgraph tracks which files declare which `mod name;` submodules
// and resolves those declarations to files.
//
// The graph caches only per-file declarations. Resolution goes through a
// View bound to the caller's FileResolver, so a graph never holds edges
// that are stale with respect to the file set it is queried against.
package modgraph

import (
	"fmt"
	"path"
	"sort"

	"crateview/internal/core/ports"
	"crateview/internal/engine/syntax"
	"crateview/internal/shared/util"
)

// ParseFunc returns the syntax tree of a file in the graph.
type ParseFunc func(id ports.FileID) *syntax.File

type ChangeKind int

const (
	Insert ChangeKind = iota
	Update
	Delete
)

func (k ChangeKind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Update:
		return "update"
	case Delete:
		return "delete"
	}
	return fmt.Sprintf("ChangeKind(%d)", int(k))
}

type node struct {
	decls util.OnceCell[[]syntax.ModuleDecl]
}

// ModuleMap is the module graph. It is not safe for concurrent mutation;
// queries may run concurrently once mutation has stopped.
type ModuleMap struct {
	nodes map[ports.FileID]*node
}

func New() *ModuleMap {
	return &ModuleMap{nodes: make(map[ports.FileID]*node)}
}

// Clone returns a graph with its own node table. Nodes are shared; their
// cached declarations are immutable once computed.
func (m *ModuleMap) Clone() *ModuleMap {
	nodes := make(map[ports.FileID]*node, len(m.nodes))
	for id, n := range m.nodes {
		nodes[id] = n
	}
	return &ModuleMap{nodes: nodes}
}

// UpdateFile records a change to a file. Insert and Update install a fresh
// node whose declarations are recomputed on next use; Delete removes it.
func (m *ModuleMap) UpdateFile(id ports.FileID, kind ChangeKind) {
	switch kind {
	case Insert, Update:
		m.nodes[id] = &node{}
	case Delete:
		delete(m.nodes, id)
	}
}

func (m *ModuleMap) Len() int { return len(m.nodes) }

func (m *ModuleMap) Contains(id ports.FileID) bool {
	_, ok := m.nodes[id]
	return ok
}

// Files returns the ids in the graph in ascending order.
func (m *ModuleMap) Files() []ports.FileID {
	return util.SortedKeys(m.nodes)
}

// Declarations returns the `mod name;` items of id in source order.
func (m *ModuleMap) Declarations(id ports.FileID, parse ParseFunc) []syntax.ModuleDecl {
	n, ok := m.nodes[id]
	if !ok {
		return nil
	}
	return n.decls.GetOrInit(func() []syntax.ModuleDecl {
		var out []syntax.ModuleDecl
		for _, decl := range parse(id).Modules() {
			if decl.HasSemi {
				out = append(out, decl)
			}
		}
		return out
	})
}

// Candidates returns the file-relative paths a `mod name;` may live at when
// declared in a dir owner.
func Candidates(name string) []string {
	return []string{
		fmt.Sprintf("../%s.rs", name),
		fmt.Sprintf("../%s/mod.rs", name),
	}
}

// NestedCandidates returns the paths a `mod name;` declared in a non-owner
// file with the given stem may live at: the directory named after the file.
func NestedCandidates(stem, name string) []string {
	return []string{
		fmt.Sprintf("../%s/%s.rs", stem, name),
		fmt.Sprintf("../%s/%s/mod.rs", stem, name),
	}
}

// IsDirOwnerStem reports whether a file with this stem may host submodules
// next to itself.
func IsDirOwnerStem(stem string) bool {
	return stem == "mod" || stem == "lib" || stem == "main"
}

// MoveTarget returns where a non-owner file must move to own a directory.
func MoveTarget(stem string) string {
	return fmt.Sprintf("../%s/mod.rs", stem)
}

// JoinRelative resolves rel against base, both file-relative paths.
func JoinRelative(base, rel string) string {
	return path.Clean(path.Join(base, rel))
}

// resolveAt resolves candidates against id to files present in the graph.
func (m *ModuleMap) resolveAt(id ports.FileID, candidates []string, resolver ports.FileResolver) []ports.FileID {
	var out []ports.FileID
	for _, candidate := range candidates {
		target, ok := resolver.Resolve(id, candidate)
		if ok && target != id && m.Contains(target) {
			out = append(out, target)
		}
	}
	return out
}

// View answers resolution queries against one resolver. The set of files
// declared anywhere in the graph is computed on first use and kept, so a
// View must not outlive a mutation of its graph.
type View struct {
	graph    *ModuleMap
	resolver ports.FileResolver
	parse    ParseFunc
	declared util.OnceCell[map[ports.FileID]bool]
}

// View returns a query view of m. Queries on the view are safe for
// concurrent use.
func (m *ModuleMap) View(resolver ports.FileResolver, parse ParseFunc) *View {
	return &View{graph: m, resolver: resolver, parse: parse}
}

// declaredFiles returns every file some declaration in the graph may resolve
// to under either layout. Stem owners only use the owner layout.
func (v *View) declaredFiles() map[ports.FileID]bool {
	return v.declared.GetOrInit(func() map[ports.FileID]bool {
		declared := make(map[ports.FileID]bool)
		for _, id := range v.graph.Files() {
			stem := v.resolver.FileStem(id)
			for _, decl := range v.graph.Declarations(id, v.parse) {
				candidates := Candidates(decl.Name)
				if !IsDirOwnerStem(stem) {
					candidates = append(candidates, NestedCandidates(stem, decl.Name)...)
				}
				for _, target := range v.graph.resolveAt(id, candidates, v.resolver) {
					declared[target] = true
				}
			}
		}
		return declared
	})
}

// isDirOwner is true for mod.rs, lib.rs, main.rs and for crate roots, which
// are files no declaration resolves to.
func (v *View) isDirOwner(id ports.FileID) bool {
	return IsDirOwnerStem(v.resolver.FileStem(id)) || !v.declaredFiles()[id]
}

// resolve returns the files `mod name;` in id resolves to: next to id for a
// dir owner, inside the directory named after id otherwise.
func (v *View) resolve(id ports.FileID, name string) []ports.FileID {
	if v.isDirOwner(id) {
		return v.graph.resolveAt(id, Candidates(name), v.resolver)
	}
	return v.graph.resolveAt(id, NestedCandidates(v.resolver.FileStem(id), name), v.resolver)
}

// ChildModuleByName returns the files the declaration `mod name;` in id
// resolves to. More than one result means the layout is ambiguous.
func (v *View) ChildModuleByName(id ports.FileID, name string) []ports.FileID {
	if !v.graph.Contains(id) {
		return nil
	}
	for _, decl := range v.graph.Declarations(id, v.parse) {
		if decl.Name == name {
			return v.resolve(id, name)
		}
	}
	return nil
}

// Parent is a declaration in another file that resolves to a module.
type Parent struct {
	File ports.FileID
	Name string
	Decl syntax.ModuleDecl
}

// ParentModules returns the declarations that resolve to id, ordered by
// declaring file then source position.
func (v *View) ParentModules(id ports.FileID) []Parent {
	if !v.graph.Contains(id) {
		return nil
	}
	var out []Parent
	for _, owner := range v.graph.Files() {
		if owner == id {
			continue
		}
		for _, decl := range v.graph.Declarations(owner, v.parse) {
			for _, target := range v.resolve(owner, decl.Name) {
				if target == id {
					out = append(out, Parent{File: owner, Name: decl.Name, Decl: decl})
					break
				}
			}
		}
	}
	return out
}

// Problem is a malformed module declaration.
type Problem interface {
	problem()
}

// UnresolvedModule is a declaration none of whose candidate files exist.
type UnresolvedModule struct {
	Candidate string
}

// NotDirOwner is a declaration in a file that cannot host submodules. The
// file has to move to MoveTo, after which the submodule lives at Candidate
// relative to the moved file.
type NotDirOwner struct {
	MoveTo    string
	Candidate string
}

// AmbiguousModule is a declaration that resolves to more than one file.
type AmbiguousModule struct {
	Files []ports.FileID
}

func (UnresolvedModule) problem() {}
func (NotDirOwner) problem()      {}
func (AmbiguousModule) problem()  {}

// Problems calls fn once for every malformed declaration in id, in source
// order. A declaration in a non-owner that resolves inside the file's own
// directory is well formed.
func (v *View) Problems(id ports.FileID, fn func(decl syntax.ModuleDecl, p Problem)) {
	decls := v.graph.Declarations(id, v.parse)
	if len(decls) == 0 {
		return
	}
	owner := v.isDirOwner(id)
	stem := v.resolver.FileStem(id)

	for _, decl := range decls {
		candidate := Candidates(decl.Name)[0]
		targets := v.resolve(id, decl.Name)
		switch {
		case len(targets) == 0 && !owner:
			fn(decl, NotDirOwner{MoveTo: MoveTarget(stem), Candidate: candidate})
		case len(targets) == 0:
			fn(decl, UnresolvedModule{Candidate: candidate})
		case len(targets) > 1:
			sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
			fn(decl, AmbiguousModule{Files: targets})
		}
	}
}
