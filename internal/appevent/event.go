// Package appevent defines the AppEvent tagged union and the Semantic
// Converter that folds classified FsEvents into it, implementing the
// project/container/analysis/asset/config lifecycle decision tables.
package appevent

import (
	"time"

	"github.com/google/uuid"
)

// Subject is the entity an AppEvent is about.
type Subject int

const (
	SubjectConfigProjectManifest Subject = iota
	SubjectConfigUserManifest
	SubjectConfigLocalConfig
	SubjectConfigDir
	SubjectProjectFolder
	SubjectProjectProperties
	SubjectProjectSettings
	SubjectProjectAnalyses
	SubjectProjectConfigDir
	SubjectProjectAnalysisDir
	SubjectProjectDataDir
	SubjectContainerProperties
	SubjectContainerSettings
	SubjectContainerAssets
	SubjectContainerConfigDir
	SubjectContainerRenamed
	SubjectGraph
	SubjectAnalysisFile
	SubjectAssetFile
	SubjectFile
	SubjectFolder
	SubjectAny
)

func (s Subject) String() string {
	names := [...]string{
		"config_project_manifest", "config_user_manifest", "config_local_config", "config_dir",
		"project_folder", "project_properties", "project_settings", "project_analyses",
		"project_config_dir", "project_analysis_dir", "project_data_dir",
		"container_properties", "container_settings", "container_assets",
		"container_config_dir", "container_renamed",
		"graph", "analysis_file", "asset_file", "file", "folder", "any",
	}
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// Action is what happened to the Subject.
type Action int

const (
	ActionCreated Action = iota
	ActionRemoved
	ActionMoved
	ActionMovedProject
	ActionRenamed
	ActionModifiedData
	ActionModifiedOther
)

func (a Action) String() string {
	switch a {
	case ActionCreated:
		return "created"
	case ActionRemoved:
		return "removed"
	case ActionMoved:
		return "moved"
	case ActionMovedProject:
		return "moved_project"
	case ActionRenamed:
		return "renamed"
	case ActionModifiedData:
		return "modified_data"
	case ActionModifiedOther:
		return "modified_other"
	default:
		return "unknown"
	}
}

// Event is a single semantic application event.
type Event struct {
	ID      uuid.UUID
	Time    time.Time
	Subject Subject
	Action  Action

	// ProjectPath identifies the owning project, when the subject is
	// project- or container-scoped.
	ProjectPath string

	Path string
	From string
	To   string
}

// New constructs an Event with a fresh id.
func New(subject Subject, action Action, t time.Time) Event {
	return Event{ID: uuid.New(), Time: t, Subject: subject, Action: action}
}

// WithPath sets Path and returns the event for chaining.
func (e Event) WithPath(path string) Event { e.Path = path; return e }

// WithFromTo sets From/To (and Path as an alias for To) and returns the event.
func (e Event) WithFromTo(from, to string) Event { e.From = from; e.To = to; e.Path = to; return e }

// WithProject sets ProjectPath and returns the event.
func (e Event) WithProject(path string) Event { e.ProjectPath = path; return e }
