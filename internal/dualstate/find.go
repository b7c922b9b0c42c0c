package dualstate

import "github.com/colebrumley/fswatch/internal/appconfig"

// FindPathResource returns the App-projection object linked to the tree
// node at path: it walks the tree to that node and resolves the node's
// weak back-reference. A node with no linked resource (for example an
// ordinary file inside a container folder) yields false; the resources of
// enclosing folders are not consulted, and cfg is not used.
func FindPathResource(s *State, cfg *appconfig.Config, path Path) (any, bool) {
	folder, file, ok := s.Root.Walk(path.Components())
	if !ok {
		return nil, false
	}
	if file != nil {
		return s.FileBackRef(file)
	}
	return s.FolderBackRef(folder)
}

// FindProject returns the project whose base path is base, if registered.
func (s *State) FindProject(base Path) (*Project, bool) {
	for _, p := range s.App.Projects {
		if p.Base == base {
			return p, true
		}
	}
	return nil, false
}

// FindContainer walks a Data's container tree by name path (each element
// a container name, innermost last) and returns the container found there.
func FindContainer(data *Data, names []string) (*Container, bool) {
	if data == nil || len(names) == 0 {
		return nil, false
	}
	children := data.Containers
	var found *Container
	for _, name := range names {
		found = nil
		for _, c := range children {
			if c.Name == name {
				found = c
				break
			}
		}
		if found == nil {
			return nil, false
		}
		children = found.Children
	}
	return found, true
}
