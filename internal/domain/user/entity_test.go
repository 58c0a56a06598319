package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Capabilities(t *testing.T) {
	assert.True(t, RoleStudent.CanStudy())
	assert.False(t, RoleStudent.CanTeach())

	assert.True(t, RoleTeacher.CanTeach())
	assert.False(t, RoleTeacher.CanStudy())

	// admin inherits both student- and teacher-gated capabilities
	assert.True(t, RoleAdmin.CanTeach())
	assert.True(t, RoleAdmin.CanStudy())
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleTeacher, ParseRole(" Teacher "))
	assert.Equal(t, RoleStudent, ParseRole("student"))
	assert.Equal(t, RoleStudent, ParseRole("garbage"))
	assert.Equal(t, RoleStudent, ParseRole(""))
}

func TestUser_Initials(t *testing.T) {
	u := User{Name: "Alex Rivera"}
	assert.Equal(t, "AR", u.Initials())

	withAvatar := User{Name: "Alex Rivera", Avatar: "XX"}
	assert.Equal(t, "XX", withAvatar.Initials())
}

func TestUser_Validate(t *testing.T) {
	u := User{ID: "u1", Name: "Alex Rivera", Email: "alex.rivera@snapx.edu", Role: RoleStudent}
	assert.NoError(t, u.Validate())

	bad := User{ID: "u1", Email: "not-an-email", Role: RoleStudent}
	assert.Error(t, bad.Validate())
}
