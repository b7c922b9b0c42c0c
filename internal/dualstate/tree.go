// Package dualstate holds the virtual filesystem tree and the App
// projection over it, linked by weak cross-references, plus the reducer
// that applies FsActions to both sides in one transaction. It gives the
// simulator (and, conceptually, the desktop front-end) a side-effect-free
// twin of real filesystem + application state.
package dualstate

import (
	"path"
	"strings"
	"weak"
)

// Path is a forward-slash-normalized absolute path within the tree,
// independent of the host OS's native separator.
type Path string

// Join appends components to p.
func (p Path) Join(elems ...string) Path {
	return Path(path.Join(append([]string{string(p)}, elems...)...))
}

// Base returns the final path component.
func (p Path) Base() string { return path.Base(string(p)) }

// Dir returns the parent path.
func (p Path) Dir() Path { return Path(path.Dir(string(p))) }

// Components splits p into its non-empty segments.
func (p Path) Components() []string {
	trimmed := strings.Trim(string(p), "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// Folder is a node in the virtual filesystem tree.
type Folder struct {
	Name      string
	Parent    *Folder
	Folders   map[string]*Folder
	Files     map[string]*File
	appRef    weak.Pointer[ResourceHandle]
	hasAppRef bool
}

// File is a leaf node in the virtual filesystem tree.
type File struct {
	Name      string
	Content   []byte
	Parent    *Folder
	appRef    weak.Pointer[ResourceHandle]
	hasAppRef bool
}

// NewRoot creates an empty root folder named name.
func NewRoot(name string) *Folder {
	return &Folder{Name: name, Folders: map[string]*Folder{}, Files: map[string]*File{}}
}

// Path reconstructs f's absolute path by walking parents. The root
// folder's own Name is a label only (for debugging/logging) and never
// appears in a path; the root's path is "/".
func (f *Folder) Path() Path {
	if f.Parent == nil {
		return Path("/")
	}
	return f.Parent.Path().Join(f.Name)
}

// Path reconstructs file's absolute path.
func (file *File) Path() Path {
	return file.Parent.Path().Join(file.Name)
}

// AddFolder creates and links a child folder named name.
func (f *Folder) AddFolder(name string) *Folder {
	child := &Folder{Name: name, Parent: f, Folders: map[string]*Folder{}, Files: map[string]*File{}}
	f.Folders[name] = child
	return child
}

// AddFile creates and links a child file named name with the given content.
func (f *Folder) AddFile(name string, content []byte) *File {
	file := &File{Name: name, Content: content, Parent: f}
	f.Files[name] = file
	return file
}

// RemoveFolder detaches and returns the named child folder, if present.
func (f *Folder) RemoveFolder(name string) (*Folder, bool) {
	child, ok := f.Folders[name]
	if !ok {
		return nil, false
	}
	delete(f.Folders, name)
	child.Parent = nil
	return child, true
}

// RemoveFile detaches and returns the named child file, if present.
func (f *Folder) RemoveFile(name string) (*File, bool) {
	file, ok := f.Files[name]
	if !ok {
		return nil, false
	}
	delete(f.Files, name)
	file.Parent = nil
	return file, true
}

// Walk finds the node at the relative path beneath f, returning whichever
// of folder/file matched (never both) and ok=false if nothing exists there.
func (f *Folder) Walk(components []string) (folder *Folder, file *File, ok bool) {
	if len(components) == 0 {
		return f, nil, true
	}
	head, rest := components[0], components[1:]
	if len(rest) == 0 {
		if child, exists := f.Folders[head]; exists {
			return child, nil, true
		}
		if leaf, exists := f.Files[head]; exists {
			return nil, leaf, true
		}
		return nil, nil, false
	}
	child, exists := f.Folders[head]
	if !exists {
		return nil, nil, false
	}
	return child.Walk(rest)
}
