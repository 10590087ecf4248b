package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasAny(t *testing.T) {
	assert.True(t, HasAny("write /data: No space left on device", "no space left", "quota"))
	assert.True(t, HasAny("QuotaExceeded", "quota"))
	assert.False(t, HasAny("permission denied", "no space left", "quota"))
	assert.False(t, HasAny("anything"))
}
