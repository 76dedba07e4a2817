package contextpath

import (
	"github.com/Retype15/axes/pkg/cachefile"
	"github.com/Retype15/axes/pkg/index"
	"github.com/Retype15/axes/pkg/layout"
)

// LastUsedChild is the record a parent keeps of the child last resolved
// through it.
type LastUsedChild struct {
	ChildUUID *index.ID
}

// ReadLastUsedChild loads the record under the parent project root.
func ReadLastUsedChild(root string) (LastUsedChild, error) {
	var rec LastUsedChild
	if err := cachefile.Read(layout.LastUsedPath(root), &rec); err != nil {
		return LastUsedChild{}, err
	}
	return rec, nil
}

// WriteLastUsedChild replaces the record under the parent project root.
func WriteLastUsedChild(root string, child index.ID) error {
	return cachefile.Write(layout.LastUsedPath(root), LastUsedChild{ChildUUID: &child})
}
