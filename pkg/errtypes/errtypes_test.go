package errtypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "not found: abc", NotFound("abc").Error())
	assert.Equal(t, "already exists: abc", AlreadyExists("abc").Error())
	assert.Equal(t, "lock contention: abc", LockContention("abc").Error())
	assert.Equal(t, "invalid input: abc", InvalidInput("abc").Error())
	assert.Equal(t, "internal error: abc", InternalError("abc").Error())
}

func TestMarkerInterfaces(t *testing.T) {
	var err error = NotFound("x")
	marker, ok := err.(IsNotFound)
	assert.True(t, ok)
	marker.IsNotFound()

	err = AlreadyExists("x")
	_, ok = err.(IsAlreadyExists)
	assert.True(t, ok)

	err = LockContention("x")
	_, ok = err.(IsLockContention)
	assert.True(t, ok)
}
