package appevent

import (
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/colebrumley/fswatch/internal/appconfig"
	"github.com/colebrumley/fswatch/internal/classify"
	"github.com/colebrumley/fswatch/internal/fsevent"
)

// Converter turns FsEvents into AppEvents using the classifier.
type Converter struct {
	Cfg *appconfig.Config
	FS  classify.StatFS
}

// New creates a Converter over cfg, probing the real filesystem.
func New(cfg *appconfig.Config) *Converter {
	return &Converter{Cfg: cfg, FS: classify.DefaultStatFS}
}

// ConvertBatch converts every FsEvent independently (classification and
// conversion are pure and order-independent across events) and returns
// the successfully converted AppEvents alongside an aggregated error for
// everything that failed.
func (c *Converter) ConvertBatch(events []fsevent.Event) ([]Event, error) {
	var out []Event
	var errs *multierror.Error

	for _, ev := range events {
		converted, err := c.convertOne(ev)
		if err != nil {
			errs = multierror.Append(errs, &ConversionError{Event: ev, Kind: err})
			continue
		}
		out = append(out, converted...)
	}

	return out, errs.ErrorOrNil()
}

func (c *Converter) convertOne(ev fsevent.Event) ([]Event, error) {
	switch ev.Subject {
	case fsevent.SubjectFile:
		return c.convertFile(ev)
	case fsevent.SubjectFolder:
		return c.convertFolder(ev)
	case fsevent.SubjectAny:
		return c.convertAny(ev)
	default:
		return nil, nil
	}
}

// --- §4.4.1, §4.4.2, §4.4.3: file events -----------------------------------

func (c *Converter) convertFile(ev fsevent.Event) ([]Event, error) {
	switch ev.Action {
	case fsevent.ActionRenamed:
		return c.fileRenamed(ev)
	case fsevent.ActionMoved:
		return c.fileMoved(ev)
	default:
		return c.fileSimple(ev)
	}
}

// fileSimple handles Created/Removed/DataModified/Other per §4.4.1.
func (c *Converter) fileSimple(ev fsevent.Event) ([]Event, error) {
	kind, ok, err := classify.ResourceKind(c.FS, c.Cfg, ev.Path)
	if err != nil {
		if inferred, infOk := c.inferByFilename(ev.Path); infOk {
			return []Event{New(inferred, fileAction(ev.Action), ev.Time).WithPath(ev.Path)}, nil
		}
		if _, isNotInProject := err.(*classify.ErrNotInProject); isNotInProject {
			return []Event{New(SubjectFile, fileAction(ev.Action), ev.Time).WithPath(ev.Path)}, nil
		}
		return nil, err
	}
	if !ok {
		return []Event{New(SubjectFile, fileAction(ev.Action), ev.Time).WithPath(ev.Path)}, nil
	}
	return []Event{New(fileKindSubject(kind), fileAction(ev.Action), ev.Time).WithPath(ev.Path)}, nil
}

// inferByFilename is the best-effort project-file inference fallback:
// when a path cannot yet be classified (its project is not fully
// loadable), a matching fixed filename still pins its subject.
func (c *Converter) inferByFilename(path string) (Subject, bool) {
	switch filepath.Base(path) {
	case c.Cfg.ProjectPropertiesFile:
		return SubjectProjectProperties, true
	case c.Cfg.ProjectSettingsFile:
		return SubjectProjectSettings, true
	case c.Cfg.AnalysesFile:
		return SubjectProjectAnalyses, true
	default:
		return 0, false
	}
}

func fileAction(a fsevent.Action) Action {
	switch a {
	case fsevent.ActionCreated:
		return ActionCreated
	case fsevent.ActionRemoved:
		return ActionRemoved
	case fsevent.ActionDataModified:
		return ActionModifiedData
	default:
		return ActionModifiedOther
	}
}

func fileKindSubject(k classify.FileResourceKind) Subject {
	switch k {
	case classify.FileUserManifest:
		return SubjectConfigUserManifest
	case classify.FileProjectManifest:
		return SubjectConfigProjectManifest
	case classify.FileLocalConfig:
		return SubjectConfigLocalConfig
	case classify.FileProjectProperties:
		return SubjectProjectProperties
	case classify.FileProjectSettings:
		return SubjectProjectSettings
	case classify.FileAnalysisManifest:
		return SubjectProjectAnalyses
	case classify.FileAnalysis:
		return SubjectAnalysisFile
	case classify.FileAsset:
		return SubjectAssetFile
	case classify.FileContainerProperties:
		return SubjectContainerProperties
	case classify.FileContainerSettings:
		return SubjectContainerSettings
	case classify.FileContainerAssetManifest:
		return SubjectContainerAssets
	default:
		return SubjectFile
	}
}

// fileMoved implements §4.4.2.
func (c *Converter) fileMoved(ev fsevent.Event) ([]Event, error) {
	fromKind, fromOk, fromErr := classify.ResourceKind(c.FS, c.Cfg, ev.From)
	toKind, toOk, toErr := classify.ResourceKind(c.FS, c.Cfg, ev.To)

	if fromErr == nil && toErr == nil && fromOk && toOk && fromKind == toKind {
		fromRoot, _ := projectRootFor(c.FS, c.Cfg, ev.From)
		toRoot, _ := projectRootFor(c.FS, c.Cfg, ev.To)
		action := ActionMoved
		if fromRoot != toRoot {
			action = ActionMovedProject
		}
		return []Event{New(fileKindSubject(fromKind), action, ev.Time).WithFromTo(ev.From, ev.To)}, nil
	}

	if fromErr != nil && toErr != nil {
		return []Event{New(SubjectFile, ActionMoved, ev.Time).WithFromTo(ev.From, ev.To)}, nil
	}

	var removedSubj, modifiedSubj Subject = SubjectFile, SubjectFile
	if fromOk {
		removedSubj = fileKindSubject(fromKind)
	}
	if toOk {
		modifiedSubj = fileKindSubject(toKind)
	}
	return []Event{
		New(removedSubj, ActionRemoved, ev.Time).WithPath(ev.From),
		New(modifiedSubj, ActionModifiedOther, ev.Time).WithPath(ev.To),
	}, nil
}

// fileRenamed implements §4.4.3.
func (c *Converter) fileRenamed(ev fsevent.Event) ([]Event, error) {
	fromKind, fromOk, fromErr := classify.ResourceKind(c.FS, c.Cfg, ev.From)
	toKind, toOk, toErr := classify.ResourceKind(c.FS, c.Cfg, ev.To)

	fromIsErr, toIsErr := fromErr != nil, toErr != nil
	if fromIsErr != toIsErr {
		return nil, &ErrInvalidState{From: ev.From, To: ev.To, Reason: "one side classifies as an error, the other does not"}
	}

	if fromOk && toOk && fromKind == toKind {
		return []Event{New(fileKindSubject(fromKind), ActionRenamed, ev.Time).WithFromTo(ev.From, ev.To)}, nil
	}

	var removedSubj, createdSubj Subject = SubjectFile, SubjectFile
	if fromOk {
		removedSubj = fileKindSubject(fromKind)
	}
	if toOk {
		createdSubj = fileKindSubject(toKind)
	}
	return []Event{
		New(removedSubj, ActionRemoved, ev.Time).WithPath(ev.From),
		New(createdSubj, ActionCreated, ev.Time).WithPath(ev.To),
	}, nil
}

// --- §4.4.4, §4.4.5, §4.4.6: folder events ----------------------------------

func (c *Converter) convertFolder(ev fsevent.Event) ([]Event, error) {
	switch ev.Action {
	case fsevent.ActionRenamed:
		return c.folderRenamed(ev)
	case fsevent.ActionMoved:
		return c.folderMoved(ev)
	case fsevent.ActionCreated, fsevent.ActionRemoved:
		return c.folderCreatedOrRemoved(ev)
	default:
		return []Event{New(SubjectFolder, ActionModifiedOther, ev.Time).WithPath(ev.Path)}, nil
	}
}

func (c *Converter) folderCreatedOrRemoved(ev fsevent.Event) ([]Event, error) {
	kind, err := classify.DirKindOf(c.FS, c.Cfg, ev.Path)
	if err != nil {
		return []Event{New(SubjectFolder, folderAction(ev.Action), ev.Time).WithPath(ev.Path)}, nil
	}

	created := ev.Action == fsevent.ActionCreated
	switch kind {
	case classify.DirAppConfig:
		return []Event{New(SubjectConfigDir, folderAction(ev.Action), ev.Time).WithPath(ev.Path)}, nil
	case classify.DirProjectRoot:
		if created {
			return []Event{New(SubjectProjectFolder, ActionModifiedOther, ev.Time).WithPath(ev.Path)}, nil
		}
		return []Event{New(SubjectProjectFolder, ActionRemoved, ev.Time).WithPath(ev.Path)}, nil
	case classify.DirProjectConfig:
		return []Event{New(SubjectProjectConfigDir, folderAction(ev.Action), ev.Time).WithPath(ev.Path)}, nil
	case classify.DirProjectAnalysis:
		return []Event{New(SubjectProjectAnalysisDir, folderAction(ev.Action), ev.Time).WithPath(ev.Path)}, nil
	case classify.DirProjectData:
		return []Event{New(SubjectProjectDataDir, folderAction(ev.Action), ev.Time).WithPath(ev.Path)}, nil
	case classify.DirContainer:
		return []Event{New(SubjectGraph, folderAction(ev.Action), ev.Time).WithPath(ev.Path)}, nil
	case classify.DirContainerLike:
		if created && hasContainerProperties(c.FS, c.Cfg, ev.Path) {
			return []Event{New(SubjectGraph, ActionCreated, ev.Time).WithPath(ev.Path)}, nil
		}
		return []Event{New(SubjectFolder, folderAction(ev.Action), ev.Time).WithPath(ev.Path)}, nil
	case classify.DirContainerConfig:
		return []Event{New(SubjectContainerConfigDir, folderAction(ev.Action), ev.Time).WithPath(ev.Path)}, nil
	default:
		return []Event{New(SubjectFolder, folderAction(ev.Action), ev.Time).WithPath(ev.Path)}, nil
	}
}

func hasContainerProperties(fs classify.StatFS, cfg *appconfig.Config, containerPath string) bool {
	return fs.Exists(filepath.Join(containerPath, cfg.AppDir, cfg.ContainerPropertiesFile))
}

func folderAction(a fsevent.Action) Action {
	if a == fsevent.ActionCreated {
		return ActionCreated
	}
	return ActionRemoved
}

// folderMoved implements §4.4.5: parent paths differ.
func (c *Converter) folderMoved(ev fsevent.Event) ([]Event, error) {
	fromKind, fromErr := classify.DirKindOf(c.FS, c.Cfg, ev.From)
	toKind, toErr := classify.DirKindOf(c.FS, c.Cfg, ev.To)

	if fromErr == nil && toErr == nil && fromKind == classify.DirContainer && toKind == classify.DirContainer {
		fromRoot, _ := projectRootFor(c.FS, c.Cfg, ev.From)
		toRoot, _ := projectRootFor(c.FS, c.Cfg, ev.To)
		if fromRoot == toRoot {
			return []Event{New(SubjectGraph, ActionMoved, ev.Time).WithFromTo(ev.From, ev.To)}, nil
		}
		return []Event{
			New(SubjectGraph, ActionRemoved, ev.Time).WithPath(ev.From),
			New(SubjectGraph, ActionCreated, ev.Time).WithPath(ev.To),
		}, nil
	}

	if fromErr == nil && toErr == nil && fromKind == classify.DirProjectRoot && toKind == classify.DirProjectRoot {
		fromRoot, _ := projectRootFor(c.FS, c.Cfg, ev.From)
		toRoot, _ := projectRootFor(c.FS, c.Cfg, ev.To)
		if fromRoot != toRoot {
			return []Event{New(SubjectProjectFolder, ActionMovedProject, ev.Time).WithFromTo(ev.From, ev.To)}, nil
		}
	}

	fromEvents, _ := c.folderCreatedOrRemoved(fsevent.NewSingle(fsevent.SubjectFolder, fsevent.ActionRemoved, ev.From, ev.Time))
	toEvents, _ := c.folderCreatedOrRemoved(fsevent.NewSingle(fsevent.SubjectFolder, fsevent.ActionCreated, ev.To, ev.Time))
	return append(fromEvents, toEvents...), nil
}

// folderRenamed implements §4.4.6: parent paths coincide.
func (c *Converter) folderRenamed(ev fsevent.Event) ([]Event, error) {
	fromKind, fromErr := classify.DirKindOf(c.FS, c.Cfg, ev.From)
	toKind, toErr := classify.DirKindOf(c.FS, c.Cfg, ev.To)

	if fromErr != nil || toErr != nil {
		fromEvents, _ := c.folderCreatedOrRemoved(fsevent.NewSingle(fsevent.SubjectFolder, fsevent.ActionRemoved, ev.From, ev.Time))
		toEvents, _ := c.folderCreatedOrRemoved(fsevent.NewSingle(fsevent.SubjectFolder, fsevent.ActionCreated, ev.To, ev.Time))
		return append(fromEvents, toEvents...), nil
	}

	containerish := func(k classify.DirKind) bool {
		return k == classify.DirContainer || k == classify.DirContainerLike
	}

	switch {
	case containerish(fromKind) && containerish(toKind):
		return []Event{New(SubjectContainerRenamed, ActionRenamed, ev.Time).WithFromTo(ev.From, ev.To)}, nil

	case containerish(fromKind) && toKind == classify.DirContainerConfig:
		return []Event{
			New(SubjectFolder, ActionRemoved, ev.Time).WithPath(ev.From),
			New(SubjectContainerConfigDir, ActionCreated, ev.Time).WithPath(ev.To),
		}, nil

	case fromKind == classify.DirContainerConfig && containerish(toKind):
		return []Event{
			New(SubjectContainerConfigDir, ActionRemoved, ev.Time).WithPath(ev.From),
			New(SubjectFolder, ActionCreated, ev.Time).WithPath(ev.To),
		}, nil

	case fromKind == classify.DirProjectRoot && toKind == classify.DirProjectRoot:
		return []Event{
			New(SubjectProjectFolder, ActionMoved, ev.Time).WithFromTo(ev.From, ev.To),
			New(SubjectProjectFolder, ActionModifiedOther, ev.Time).WithPath(ev.To),
		}, nil

	case fromKind == classify.DirProjectAnalysis && toKind == classify.DirProjectAnalysis:
		return []Event{New(SubjectProjectAnalysisDir, ActionRenamed, ev.Time).WithFromTo(ev.From, ev.To)}, nil

	case fromKind == classify.DirProjectData && toKind == classify.DirProjectData:
		return []Event{New(SubjectProjectDataDir, ActionRenamed, ev.Time).WithFromTo(ev.From, ev.To)}, nil

	default:
		fromEvents, _ := c.folderCreatedOrRemoved(fsevent.NewSingle(fsevent.SubjectFolder, fsevent.ActionRemoved, ev.From, ev.Time))
		toEvents, _ := c.folderCreatedOrRemoved(fsevent.NewSingle(fsevent.SubjectFolder, fsevent.ActionCreated, ev.To, ev.Time))
		return append(fromEvents, toEvents...), nil
	}
}

// --- §4.4.7: Any::Removed ----------------------------------------------

func (c *Converter) convertAny(ev fsevent.Event) ([]Event, error) {
	fileKind, fileOk, fileErr := classify.ResourceKind(c.FS, c.Cfg, ev.Path)
	dirKind, dirErr := classify.DirKindOf(c.FS, c.Cfg, ev.Path)

	_, fileNotInProject := fileErr.(*classify.ErrNotInProject)
	_, dirNotInProject := dirErr.(*classify.ErrNotInProject)

	switch {
	case fileErr == nil && fileOk:
		return []Event{New(fileKindSubject(fileKind), ActionRemoved, ev.Time).WithPath(ev.Path)}, nil
	case dirErr == nil:
		return c.folderCreatedOrRemoved(fsevent.NewSingle(fsevent.SubjectFolder, fsevent.ActionRemoved, ev.Path, ev.Time))
	case fileErr != nil && !fileNotInProject:
		return nil, fileErr
	case dirErr != nil && !dirNotInProject:
		return nil, dirErr
	default:
		return []Event{New(SubjectAny, ActionRemoved, ev.Time).WithPath(ev.Path)}, nil
	}
}

// projectRootFor re-derives the owning project root for path, used to
// decide same-project vs. cross-project moves.
func projectRootFor(fs classify.StatFS, cfg *appconfig.Config, path string) (string, error) {
	dir := filepath.Dir(path)
	for {
		if fs.Exists(filepath.Join(dir, cfg.AppDir, cfg.ProjectPropertiesFile)) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &classify.ErrNotInProject{Path: path}
		}
		dir = parent
	}
}
