package dualstate

import (
	"weak"

	"github.com/google/uuid"
)

// ResourceKind tags which concrete App projection type a ResourceHandle
// identifies, so a weak back-reference resolved from the fs tree can be
// looked up in State.resources without a generic weak pointer per type.
type ResourceKind int

const (
	ResourceProject ResourceKind = iota
	ResourceProjectConfig
	ResourceProjectProperties
	ResourceProjectSettings
	ResourceAnalysisManifest
	ResourceAnalysis
	ResourceData
	ResourceContainer
	ResourceContainerData
	ResourceContainerConfig
	ResourceContainerProperties
	ResourceContainerSettings
	ResourceAssetManifest
	ResourceAsset
)

// ResourceHandle is embedded by value in every App projection struct
// that can be targeted by a weak fs->app back-reference. Folder.appRef
// and File.appRef are weak.Pointer[ResourceHandle]s; resolving one gives
// the handle's ID, which State.ResolveHandle looks up to recover the strong
// *Project/*Container/... pointer.
type ResourceHandle struct {
	ID   uuid.UUID
	Kind ResourceKind
}

// State owns the whole dual-state world: the virtual fs tree root and
// the app projection, plus the id->resource index that lets a resolved
// ResourceHandle be turned back into its concrete owner.
type State struct {
	Root      *Folder
	App       *AppState
	resources map[uuid.UUID]any
}

// NewState creates an empty dual-state world rooted at rootName.
func NewState(rootName string) *State {
	return &State{
		Root:      NewRoot(rootName),
		App:       &AppState{},
		resources: make(map[uuid.UUID]any),
	}
}

// register indexes resource by its handle's ID so ResolveHandle can find it.
func (s *State) register(id uuid.UUID, resource any) { s.resources[id] = resource }

func (s *State) unregister(id uuid.UUID) { delete(s.resources, id) }

// ResolveHandle recovers the strong resource a previously-resolved
// ResourceHandle identifies.
func (s *State) ResolveHandle(h ResourceHandle) (any, bool) {
	r, ok := s.resources[h.ID]
	return r, ok
}

// linkFolder fills in handle and points folder's weak back-reference at it.
// The resource's own FsRef to folder is set by the caller.
func (s *State) linkFolder(folder *Folder, id uuid.UUID, kind ResourceKind, handle *ResourceHandle) {
	*handle = ResourceHandle{ID: id, Kind: kind}
	folder.appRef = weak.Make(handle)
	folder.hasAppRef = true
}

func (s *State) linkFile(file *File, id uuid.UUID, kind ResourceKind, handle *ResourceHandle) {
	*handle = ResourceHandle{ID: id, Kind: kind}
	file.appRef = weak.Make(handle)
	file.hasAppRef = true
}

// FolderBackRef resolves folder's app back-reference, if any and still live.
func (s *State) FolderBackRef(folder *Folder) (any, bool) {
	if !folder.hasAppRef {
		return nil, false
	}
	h := folder.appRef.Value()
	if h == nil {
		return nil, false
	}
	return s.ResolveHandle(*h)
}

// FileBackRef resolves file's app back-reference, if any and still live.
func (s *State) FileBackRef(file *File) (any, bool) {
	if !file.hasAppRef {
		return nil, false
	}
	h := file.appRef.Value()
	if h == nil {
		return nil, false
	}
	return s.ResolveHandle(*h)
}

// AppState mirrors §3.2: the three global config file paths plus the
// registered projects.
type AppState struct {
	UserManifestPath    string
	ProjectManifestPath string
	LocalConfigPath     string
	Projects            []*Project
}

// Project mirrors §3.2's Project: identity, base path, optional config,
// optional analyses folder path, and a Data holder.
type Project struct {
	Handle ResourceHandle
	ID     uuid.UUID
	Base   Path

	Config         *ProjectConfig // nil == NotPresent
	AnalysesFolder *Path          // path only, nil == NotPresent
	Data           *Data

	FsRef weak.Pointer[Folder]
}

// ProjectConfig mirrors §3.2: owns the three fixed project config files.
type ProjectConfig struct {
	Handle ResourceHandle

	Properties *ProjectProperties
	Settings   *ProjectSettings
	Analyses   *AnalysisManifest

	FsRef weak.Pointer[Folder]
}

type ProjectProperties struct {
	Handle ResourceHandle
	FsRef  weak.Pointer[File]
}

type ProjectSettings struct {
	Handle ResourceHandle
	FsRef  weak.Pointer[File]
}

// AnalysisManifest mirrors §3.2: an ordered list of Analysis entries.
type AnalysisManifest struct {
	Handle ResourceHandle
	FsRef  weak.Pointer[File]

	Entries []*Analysis
}

// Analysis mirrors §3.2: a resource id plus a path relative to the
// analyses root.
type Analysis struct {
	ID           uuid.UUID
	RelativePath string
}

// Data mirrors §3.2: the data-root path plus an optional container tree.
type Data struct {
	Handle ResourceHandle

	RootPath   Path
	RootName   string
	Containers []*Container // the data root's child containers; deeper levels hang off Container.Children

	FsRef weak.Pointer[Folder]
}

// Container mirrors §3.2: a named node in the data tree, with optional
// ContainerData materialized when its app-dir is present.
type Container struct {
	Handle ResourceHandle

	Name string
	Data *ContainerData // nil == NotPresent

	Children []*Container
	FsRef    weak.Pointer[Folder]
}

// ContainerData mirrors §3.2: present iff the container's app-dir child
// exists; owns the container's config.
type ContainerData struct {
	Handle ResourceHandle

	Config *ContainerConfig
	FsRef  weak.Pointer[Folder]
}

type ContainerConfig struct {
	Handle ResourceHandle

	Properties *ContainerProperties
	Settings   *ContainerSettings
	Assets     *AssetManifest

	FsRef weak.Pointer[Folder]
}

type ContainerProperties struct {
	Handle ResourceHandle
	FsRef  weak.Pointer[File]
}

type ContainerSettings struct {
	Handle ResourceHandle
	FsRef  weak.Pointer[File]
}

// AssetManifest mirrors §3.2: an ordered list of Asset file names.
type AssetManifest struct {
	Handle ResourceHandle
	FsRef  weak.Pointer[File]

	Entries []*Asset
}

// Asset mirrors §3.2: a resource id plus the file name it names inside
// its container's folder.
type Asset struct {
	ID       uuid.UUID
	FileName string
}
