package dualstate

import (
	"fmt"
	"weak"

	"github.com/google/uuid"

	"github.com/colebrumley/fswatch/internal/appconfig"
)

// Reduce applies action to both the fs tree and the app projection in one
// transaction: the tree mutation happens first, then the projection is
// re-derived from the tree's current shape so presence invariants
// (Data iff data-root folder exists, ContainerData iff app-dir child
// exists, ...) hold by construction rather than by incremental bookkeeping.
func (s *State) Reduce(action FsAction, cfg *appconfig.Config) error {
	if err := s.applyToTree(action); err != nil {
		return err
	}
	s.syncProjects(cfg)
	return nil
}

func (s *State) applyToTree(action FsAction) error {
	switch action.Kind {
	case ActionCreateFolder:
		return s.createFolder(action.Path)
	case ActionCreateFile:
		return s.createFile(action.Path, action.Content)
	case ActionRemove:
		return s.remove(action.Path)
	case ActionRename, ActionMove:
		return s.move(action.From, action.To)
	case ActionCopy:
		return s.copy(action.From, action.To)
	case ActionModify:
		return s.modify(action.Path, action.Content)
	default:
		return fmt.Errorf("unknown action kind %d", action.Kind)
	}
}

func (s *State) resolveParent(p Path) (*Folder, string, error) {
	parent, _, ok := s.Root.Walk(p.Dir().Components())
	if !ok || parent == nil {
		return nil, "", fmt.Errorf("parent of %q does not exist", p)
	}
	return parent, p.Base(), nil
}

func (s *State) createFolder(p Path) error {
	parent, name, err := s.resolveParent(p)
	if err != nil {
		return err
	}
	parent.AddFolder(name)
	return nil
}

func (s *State) createFile(p Path, content []byte) error {
	parent, name, err := s.resolveParent(p)
	if err != nil {
		return err
	}
	parent.AddFile(name, content)
	return nil
}

func (s *State) remove(p Path) error {
	parent, name, err := s.resolveParent(p)
	if err != nil {
		return err
	}
	if _, ok := parent.RemoveFolder(name); ok {
		return nil
	}
	if _, ok := parent.RemoveFile(name); ok {
		return nil
	}
	return fmt.Errorf("nothing at %q to remove", p)
}

func (s *State) move(from, to Path) error {
	fromParent, fromName, err := s.resolveParent(from)
	if err != nil {
		return err
	}
	toParent, toName, err := s.resolveParent(to)
	if err != nil {
		return err
	}

	if folder, ok := fromParent.RemoveFolder(fromName); ok {
		folder.Name = toName
		folder.Parent = toParent
		toParent.Folders[toName] = folder
		return nil
	}
	if file, ok := fromParent.RemoveFile(fromName); ok {
		file.Name = toName
		file.Parent = toParent
		toParent.Files[toName] = file
		return nil
	}
	return fmt.Errorf("nothing at %q to move", from)
}

func (s *State) copy(from, to Path) error {
	_, fromFile, ok := s.Root.Walk(from.Components())
	if ok && fromFile != nil {
		content := append([]byte(nil), fromFile.Content...)
		return s.createFile(to, content)
	}
	fromFolder, _, ok := s.Root.Walk(from.Components())
	if ok && fromFolder != nil {
		return s.copyFolder(fromFolder, to)
	}
	return fmt.Errorf("nothing at %q to copy", from)
}

func (s *State) copyFolder(src *Folder, to Path) error {
	if err := s.createFolder(to); err != nil {
		return err
	}
	_, _, ok := s.Root.Walk(to.Components())
	if !ok {
		return fmt.Errorf("copy target %q missing after create", to)
	}
	for name, file := range src.Files {
		if err := s.createFile(to.Join(name), append([]byte(nil), file.Content...)); err != nil {
			return err
		}
	}
	for name, folder := range src.Folders {
		if err := s.copyFolder(folder, to.Join(name)); err != nil {
			return err
		}
	}
	return nil
}

func (s *State) modify(p Path, content []byte) error {
	_, file, ok := s.Root.Walk(p.Components())
	if !ok || file == nil {
		return fmt.Errorf("nothing at %q to modify", p)
	}
	file.Content = content
	return nil
}

// put registers a freshly-created resource under a new id and returns it,
// so the id used to register and the id used to link are always the same.
func (s *State) put(resource any) uuid.UUID {
	id := uuid.New()
	s.register(id, resource)
	return id
}

// syncProjects re-derives AppState.Projects and every nested projection
// object from the current shape of the tree, reusing existing objects by
// base path / name so manifest-only state (the Entries lists of
// AnalysisManifest and AssetManifest) survives across reductions. Reduce
// itself never adds or removes manifest entries.
func (s *State) syncProjects(cfg *appconfig.Config) {
	existing := make(map[string]*Project, len(s.App.Projects))
	for _, p := range s.App.Projects {
		existing[string(p.Base)] = p
	}

	var next []*Project
	for name, folder := range s.Root.Folders {
		if _, hasAppDir := folder.Folders[cfg.AppDir]; !hasAppDir {
			continue
		}
		base := s.Root.Path().Join(name)
		project, ok := existing[string(base)]
		var id uuid.UUID
		if !ok {
			id = uuid.New()
			project = &Project{ID: id, Base: base}
			s.register(id, project)
		} else {
			id = project.ID
			delete(existing, string(base))
		}
		project.FsRef = weak.Make(folder)
		s.linkFolder(folder, id, ResourceProject, &project.Handle)
		s.syncProjectConfig(cfg, folder, project)
		s.syncProjectData(cfg, folder, project)
		next = append(next, project)
	}

	for _, stale := range existing {
		s.unregister(stale.ID)
	}
	s.App.Projects = next
}

func (s *State) syncProjectConfig(cfg *appconfig.Config, projectFolder *Folder, project *Project) {
	appDir, ok := projectFolder.Folders[cfg.AppDir]
	if !ok {
		project.Config = nil
		return
	}
	cfgObj := project.Config
	var id uuid.UUID
	if cfgObj == nil {
		cfgObj = &ProjectConfig{}
		id = s.put(cfgObj)
		project.Config = cfgObj
	} else {
		id = cfgObj.Handle.ID
	}
	cfgObj.FsRef = weak.Make(appDir)
	s.linkFolder(appDir, id, ResourceProjectConfig, &cfgObj.Handle)

	if f, ok := appDir.Files[cfg.ProjectPropertiesFile]; ok {
		p := cfgObj.Properties
		var pid uuid.UUID
		if p == nil {
			p = &ProjectProperties{}
			pid = s.put(p)
			cfgObj.Properties = p
		} else {
			pid = p.Handle.ID
		}
		p.FsRef = weak.Make(f)
		s.linkFile(f, pid, ResourceProjectProperties, &p.Handle)
	} else {
		cfgObj.Properties = nil
	}

	if f, ok := appDir.Files[cfg.ProjectSettingsFile]; ok {
		p := cfgObj.Settings
		var pid uuid.UUID
		if p == nil {
			p = &ProjectSettings{}
			pid = s.put(p)
			cfgObj.Settings = p
		} else {
			pid = p.Handle.ID
		}
		p.FsRef = weak.Make(f)
		s.linkFile(f, pid, ResourceProjectSettings, &p.Handle)
	} else {
		cfgObj.Settings = nil
	}

	if f, ok := appDir.Files[cfg.AnalysesFile]; ok {
		m := cfgObj.Analyses
		var mid uuid.UUID
		if m == nil {
			m = &AnalysisManifest{}
			mid = s.put(m)
			cfgObj.Analyses = m
		} else {
			mid = m.Handle.ID
		}
		m.FsRef = weak.Make(f)
		s.linkFile(f, mid, ResourceAnalysisManifest, &m.Handle)
	} else {
		cfgObj.Analyses = nil
	}
}

func (s *State) syncProjectData(cfg *appconfig.Config, projectFolder *Folder, project *Project) {
	if analysisFolder, ok := projectFolder.Folders[cfg.AnalysesDirName]; ok {
		p := analysisFolder.Path()
		project.AnalysesFolder = &p
	} else {
		project.AnalysesFolder = nil
	}

	dataFolder, ok := projectFolder.Folders[cfg.DataDirName]
	if !ok {
		project.Data = nil
		return
	}
	data := project.Data
	var id uuid.UUID
	if data == nil {
		data = &Data{}
		id = s.put(data)
		project.Data = data
	} else {
		id = data.Handle.ID
	}
	data.RootPath = dataFolder.Path()
	data.RootName = dataFolder.Name
	data.FsRef = weak.Make(dataFolder)
	s.linkFolder(dataFolder, id, ResourceData, &data.Handle)
	data.Containers = s.syncContainers(cfg, dataFolder, data.Containers)
}

func (s *State) syncContainers(cfg *appconfig.Config, folder *Folder, previous []*Container) []*Container {
	existing := make(map[string]*Container, len(previous))
	for _, c := range previous {
		existing[c.Name] = c
	}

	var next []*Container
	for name, child := range folder.Folders {
		if name == cfg.AppDir {
			continue
		}
		container, ok := existing[name]
		var id uuid.UUID
		if !ok {
			container = &Container{Name: name}
			id = s.put(container)
		} else {
			id = container.Handle.ID
			delete(existing, name)
		}
		container.FsRef = weak.Make(child)
		s.linkFolder(child, id, ResourceContainer, &container.Handle)

		if appDir, hasAppDir := child.Folders[cfg.AppDir]; hasAppDir {
			data := container.Data
			var dataID uuid.UUID
			if data == nil {
				data = &ContainerData{}
				dataID = s.put(data)
				container.Data = data
			} else {
				dataID = data.Handle.ID
			}
			data.FsRef = weak.Make(appDir)
			s.linkFolder(appDir, dataID, ResourceContainerData, &data.Handle)
			s.syncContainerConfig(cfg, appDir, data)
		} else {
			container.Data = nil
		}

		container.Children = s.syncContainers(cfg, child, container.Children)
		next = append(next, container)
	}
	for _, stale := range existing {
		s.unregister(stale.Handle.ID)
	}
	return next
}

func (s *State) syncContainerConfig(cfg *appconfig.Config, appDir *Folder, data *ContainerData) {
	cc := data.Config
	var id uuid.UUID
	if cc == nil {
		cc = &ContainerConfig{}
		id = s.put(cc)
		data.Config = cc
	} else {
		id = cc.Handle.ID
	}
	cc.FsRef = weak.Make(appDir)
	s.linkFolder(appDir, id, ResourceContainerConfig, &cc.Handle)

	if f, ok := appDir.Files[cfg.ContainerPropertiesFile]; ok {
		p := cc.Properties
		var pid uuid.UUID
		if p == nil {
			p = &ContainerProperties{}
			pid = s.put(p)
			cc.Properties = p
		} else {
			pid = p.Handle.ID
		}
		p.FsRef = weak.Make(f)
		s.linkFile(f, pid, ResourceContainerProperties, &p.Handle)
	} else {
		cc.Properties = nil
	}

	if f, ok := appDir.Files[cfg.ContainerSettingsFile]; ok {
		p := cc.Settings
		var pid uuid.UUID
		if p == nil {
			p = &ContainerSettings{}
			pid = s.put(p)
			cc.Settings = p
		} else {
			pid = p.Handle.ID
		}
		p.FsRef = weak.Make(f)
		s.linkFile(f, pid, ResourceContainerSettings, &p.Handle)
	} else {
		cc.Settings = nil
	}

	if f, ok := appDir.Files[cfg.AssetsFile]; ok {
		m := cc.Assets
		var mid uuid.UUID
		if m == nil {
			m = &AssetManifest{}
			mid = s.put(m)
			cc.Assets = m
		} else {
			mid = m.Handle.ID
		}
		m.FsRef = weak.Make(f)
		s.linkFile(f, mid, ResourceAssetManifest, &m.Handle)
	} else {
		cc.Assets = nil
	}
}
