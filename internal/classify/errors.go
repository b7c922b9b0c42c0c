package classify

import "fmt"

// ErrNotInProject means no ancestor directory of path holds the project
// marker (the project-properties file inside its app-directory).
type ErrNotInProject struct {
	Path string
}

func (e *ErrNotInProject) Error() string {
	return fmt.Sprintf("%q is not inside a project", e.Path)
}

// ErrLoadProject wraps a failure to read the project-root marker itself.
type ErrLoadProject struct {
	Path    string
	Details string
}

func (e *ErrLoadProject) Error() string {
	return fmt.Sprintf("loading project at %q: %s", e.Path, e.Details)
}

// ErrLoadProjectManifest wraps a failure to read a project's manifest-type
// file (properties, settings, analyses) once its project root is known.
type ErrLoadProjectManifest struct {
	Path    string
	Details string
}

func (e *ErrLoadProjectManifest) Error() string {
	return fmt.Sprintf("loading project manifest at %q: %s", e.Path, e.Details)
}
