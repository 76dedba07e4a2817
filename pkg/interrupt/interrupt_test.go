package interrupt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlag(t *testing.T) {
	f := NewFlag()
	assert.False(t, f.Raised())
	f.Raise()
	assert.True(t, f.Raised())
	f.Reset()
	assert.False(t, f.Raised())
}

func TestStartStopIdempotent(t *testing.T) {
	f := NewFlag()
	f.Start()
	f.Start()
	f.Stop()
	f.Stop()
	assert.False(t, f.Raised())
}
