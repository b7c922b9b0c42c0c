package dualstate

import (
	"weak"

	"github.com/google/uuid"
)

// NodeMap records, for a DuplicateWithFsReferencesAndMap call, which cloned
// tree node and app-projection resource correspond to which original one, so
// a caller can translate a mutation planned against the original world into
// the clone (or vice versa) without re-walking paths.
type NodeMap struct {
	Folders   map[*Folder]*Folder
	Files     map[*File]*File
	Resources map[any]any
}

// DuplicateWithFsReferencesAndMap produces an independent deep copy of s --
// fs tree, app projection, and the weak cross-references between them --
// plus a NodeMap from every original node/resource to its clone. The
// simulator uses this to speculatively try a batch of actions against a
// throwaway copy before committing them to the live world.
func (s *State) DuplicateWithFsReferencesAndMap() (*State, *NodeMap) {
	nm := &NodeMap{
		Folders:   make(map[*Folder]*Folder),
		Files:     make(map[*File]*File),
		Resources: make(map[any]any),
	}

	clone := &State{resources: make(map[uuid.UUID]any, len(s.resources))}
	clone.Root = cloneFolder(s.Root, nil, nm)

	clone.App = &AppState{
		UserManifestPath:    s.App.UserManifestPath,
		ProjectManifestPath: s.App.ProjectManifestPath,
		LocalConfigPath:     s.App.LocalConfigPath,
	}
	for _, p := range s.App.Projects {
		clone.App.Projects = append(clone.App.Projects, cloneProject(clone, p, nm))
	}

	return clone, nm
}

func cloneFolder(f *Folder, parent *Folder, nm *NodeMap) *Folder {
	if f == nil {
		return nil
	}
	clone := &Folder{
		Name:      f.Name,
		Parent:    parent,
		Folders:   make(map[string]*Folder, len(f.Folders)),
		Files:     make(map[string]*File, len(f.Files)),
		hasAppRef: f.hasAppRef,
	}
	nm.Folders[f] = clone
	for name, child := range f.Folders {
		clone.Folders[name] = cloneFolder(child, clone, nm)
	}
	for name, file := range f.Files {
		clone.Files[name] = cloneFile(file, clone, nm)
	}
	return clone
}

func cloneFile(f *File, parent *Folder, nm *NodeMap) *File {
	if f == nil {
		return nil
	}
	clone := &File{
		Name:      f.Name,
		Content:   append([]byte(nil), f.Content...),
		Parent:    parent,
		hasAppRef: f.hasAppRef,
	}
	nm.Files[f] = clone
	return clone
}

// relinkFolder re-establishes clone's weak back-reference now that both its
// resource and its cloned folder node exist, mirroring State.linkFolder.
func relinkFolder(clone *State, folder *Folder, handle *ResourceHandle, resource any) {
	clone.register(handle.ID, resource)
	folder.appRef = weak.Make(handle)
	folder.hasAppRef = true
}

func relinkFile(clone *State, file *File, handle *ResourceHandle, resource any) {
	clone.register(handle.ID, resource)
	file.appRef = weak.Make(handle)
	file.hasAppRef = true
}

func cloneProject(clone *State, p *Project, nm *NodeMap) *Project {
	cp := &Project{ID: p.ID, Base: p.Base, Handle: p.Handle}
	nm.Resources[p] = cp
	if folder := nm.Folders[resolveFolder(p.FsRef)]; folder != nil {
		cp.FsRef = weak.Make(folder)
		relinkFolder(clone, folder, &cp.Handle, cp)
	}
	if p.AnalysesFolder != nil {
		af := *p.AnalysesFolder
		cp.AnalysesFolder = &af
	}
	if p.Config != nil {
		cp.Config = cloneProjectConfig(clone, p.Config, nm)
	}
	if p.Data != nil {
		cp.Data = cloneData(clone, p.Data, nm)
	}
	return cp
}

func cloneProjectConfig(clone *State, c *ProjectConfig, nm *NodeMap) *ProjectConfig {
	cc := &ProjectConfig{Handle: c.Handle}
	nm.Resources[c] = cc
	if folder := nm.Folders[resolveFolder(c.FsRef)]; folder != nil {
		cc.FsRef = weak.Make(folder)
		relinkFolder(clone, folder, &cc.Handle, cc)
	}
	if c.Properties != nil {
		cc.Properties = &ProjectProperties{Handle: c.Properties.Handle}
		nm.Resources[c.Properties] = cc.Properties
		if file := nm.Files[resolveFile(c.Properties.FsRef)]; file != nil {
			cc.Properties.FsRef = weak.Make(file)
			relinkFile(clone, file, &cc.Properties.Handle, cc.Properties)
		}
	}
	if c.Settings != nil {
		cc.Settings = &ProjectSettings{Handle: c.Settings.Handle}
		nm.Resources[c.Settings] = cc.Settings
		if file := nm.Files[resolveFile(c.Settings.FsRef)]; file != nil {
			cc.Settings.FsRef = weak.Make(file)
			relinkFile(clone, file, &cc.Settings.Handle, cc.Settings)
		}
	}
	if c.Analyses != nil {
		cc.Analyses = &AnalysisManifest{Handle: c.Analyses.Handle}
		for _, e := range c.Analyses.Entries {
			entry := *e
			cc.Analyses.Entries = append(cc.Analyses.Entries, &entry)
		}
		nm.Resources[c.Analyses] = cc.Analyses
		if file := nm.Files[resolveFile(c.Analyses.FsRef)]; file != nil {
			cc.Analyses.FsRef = weak.Make(file)
			relinkFile(clone, file, &cc.Analyses.Handle, cc.Analyses)
		}
	}
	return cc
}

func cloneData(clone *State, d *Data, nm *NodeMap) *Data {
	cd := &Data{Handle: d.Handle, RootPath: d.RootPath, RootName: d.RootName}
	nm.Resources[d] = cd
	if folder := nm.Folders[resolveFolder(d.FsRef)]; folder != nil {
		cd.FsRef = weak.Make(folder)
		relinkFolder(clone, folder, &cd.Handle, cd)
	}
	for _, c := range d.Containers {
		cd.Containers = append(cd.Containers, cloneContainer(clone, c, nm))
	}
	return cd
}

func cloneContainer(clone *State, c *Container, nm *NodeMap) *Container {
	cc := &Container{Handle: c.Handle, Name: c.Name}
	nm.Resources[c] = cc
	if folder := nm.Folders[resolveFolder(c.FsRef)]; folder != nil {
		cc.FsRef = weak.Make(folder)
		relinkFolder(clone, folder, &cc.Handle, cc)
	}
	if c.Data != nil {
		cc.Data = cloneContainerData(clone, c.Data, nm)
	}
	for _, child := range c.Children {
		cc.Children = append(cc.Children, cloneContainer(clone, child, nm))
	}
	return cc
}

func cloneContainerData(clone *State, d *ContainerData, nm *NodeMap) *ContainerData {
	cd := &ContainerData{Handle: d.Handle}
	nm.Resources[d] = cd
	if folder := nm.Folders[resolveFolder(d.FsRef)]; folder != nil {
		cd.FsRef = weak.Make(folder)
		relinkFolder(clone, folder, &cd.Handle, cd)
	}
	if d.Config != nil {
		cd.Config = cloneContainerConfig(clone, d.Config, nm)
	}
	return cd
}

func cloneContainerConfig(clone *State, c *ContainerConfig, nm *NodeMap) *ContainerConfig {
	cc := &ContainerConfig{Handle: c.Handle}
	nm.Resources[c] = cc
	if folder := nm.Folders[resolveFolder(c.FsRef)]; folder != nil {
		cc.FsRef = weak.Make(folder)
		relinkFolder(clone, folder, &cc.Handle, cc)
	}
	if c.Properties != nil {
		cc.Properties = &ContainerProperties{Handle: c.Properties.Handle}
		nm.Resources[c.Properties] = cc.Properties
		if file := nm.Files[resolveFile(c.Properties.FsRef)]; file != nil {
			cc.Properties.FsRef = weak.Make(file)
			relinkFile(clone, file, &cc.Properties.Handle, cc.Properties)
		}
	}
	if c.Settings != nil {
		cc.Settings = &ContainerSettings{Handle: c.Settings.Handle}
		nm.Resources[c.Settings] = cc.Settings
		if file := nm.Files[resolveFile(c.Settings.FsRef)]; file != nil {
			cc.Settings.FsRef = weak.Make(file)
			relinkFile(clone, file, &cc.Settings.Handle, cc.Settings)
		}
	}
	if c.Assets != nil {
		cc.Assets = &AssetManifest{Handle: c.Assets.Handle}
		for _, e := range c.Assets.Entries {
			entry := *e
			cc.Assets.Entries = append(cc.Assets.Entries, &entry)
		}
		nm.Resources[c.Assets] = cc.Assets
		if file := nm.Files[resolveFile(c.Assets.FsRef)]; file != nil {
			cc.Assets.FsRef = weak.Make(file)
			relinkFile(clone, file, &cc.Assets.Handle, cc.Assets)
		}
	}
	return cc
}

func resolveFolder(ref weak.Pointer[Folder]) *Folder { return ref.Value() }
func resolveFile(ref weak.Pointer[File]) *File       { return ref.Value() }
