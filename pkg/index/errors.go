package index

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("project not found")
	ErrNameCollision = errors.New("name already used by a sibling")
	ErrCycle         = errors.New("parent cycle")
	ErrBrokenLink    = errors.New("broken parent link")
	ErrRootImmutable = errors.New("the global project cannot be moved or removed")
	ErrInvalidName   = errors.New("invalid project name")
)

// NotFoundError reports an identity absent from the index.
type NotFoundError struct {
	ID ID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotFound, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NameCollisionError reports a sibling that already uses Name under Parent.
type NameCollisionError struct {
	Name   string
	Parent ID
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("project name %q is already used by another child of %s", e.Name, e.Parent)
}

func (e *NameCollisionError) Is(target error) bool {
	return target == ErrNameCollision
}

// CycleError reports the first identity seen twice while walking parents.
type CycleError struct {
	ID ID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s through %s", ErrCycle, e.ID)
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

// BrokenLinkError reports a parent pointer to an unregistered identity.
type BrokenLinkError struct {
	Child         ID
	MissingParent ID
}

func (e *BrokenLinkError) Error() string {
	return fmt.Sprintf("%s: project %s points to missing parent %s", ErrBrokenLink, e.Child, e.MissingParent)
}

func (e *BrokenLinkError) Is(target error) bool {
	return target == ErrBrokenLink
}

// ParseError reports a malformed index file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse index %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
