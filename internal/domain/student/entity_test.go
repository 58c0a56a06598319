package student

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameFromEmail(t *testing.T) {
	assert.Equal(t, "Alex Rivera", NameFromEmail("alex.rivera@snapx.edu"))
	assert.Equal(t, "Jordan", NameFromEmail("jordan@snapx.edu"))
}

func TestAvatarFromEmail(t *testing.T) {
	assert.Equal(t, "AL", AvatarFromEmail("alex.rivera@snapx.edu"))
	assert.Equal(t, "J", AvatarFromEmail("j"))
}
