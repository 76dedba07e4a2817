package contextpath

import (
	"errors"
	"fmt"

	"github.com/Retype15/axes/pkg/prompt"
)

var (
	ErrEmptyContext            = errors.New("empty context")
	ErrGlobalRecentNotAtStart  = errors.New("'**' is only allowed as the first segment")
	ErrLocalPathNotAtStart     = errors.New("'.' and '_' are only allowed as the first segment")
	ErrAlreadyAtRoot           = errors.New("already at the top of the hierarchy")
	ErrNoLastUsedProject       = errors.New("no project has been used yet, cannot resolve '**'")
	ErrProjectNotFoundFromPath = errors.New("no registered project in the working directory or its parents")
	ErrProjectNotFoundInCwd    = errors.New("no registered project in the working directory")
	ErrRootProjectNotFound     = errors.New("top-level project not found")
	ErrChildProjectNotFound    = errors.New("child project not found")
	ErrNoLastUsedChild         = errors.New("no last used child")
	ErrCancelled               = prompt.ErrCancelled
)

// RootProjectNotFoundError reports a first segment that names no child of
// the root.
type RootProjectNotFoundError struct {
	Name string
}

func (e *RootProjectNotFoundError) Error() string {
	return fmt.Sprintf("top-level project %q not found", e.Name)
}

func (e *RootProjectNotFoundError) Is(target error) bool {
	return target == ErrRootProjectNotFound
}

// ChildProjectNotFoundError reports a literal segment with no matching child.
type ChildProjectNotFoundError struct {
	Child  string
	Parent string
}

func (e *ChildProjectNotFoundError) Error() string {
	return fmt.Sprintf("project %q has no child named %q", e.Parent, e.Child)
}

func (e *ChildProjectNotFoundError) Is(target error) bool {
	return target == ErrChildProjectNotFound
}

// NoLastUsedChildError reports '*' on a project without children.
type NoLastUsedChildError struct {
	Parent string
}

func (e *NoLastUsedChildError) Error() string {
	return fmt.Sprintf("project %q has no children to pick for '*'", e.Parent)
}

func (e *NoLastUsedChildError) Is(target error) bool {
	return target == ErrNoLastUsedChild
}
