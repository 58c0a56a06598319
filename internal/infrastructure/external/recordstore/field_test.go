package recordstore

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField_ScalarString(t *testing.T) {
	var f Field
	require.NoError(t, json.Unmarshal([]byte(`"3"`), &f))

	assert.Equal(t, "3", f.Raw())
	assert.Equal(t, "3", f.Display())
	assert.False(t, f.IsWrapped())
	assert.Equal(t, 3, f.Int(0))
}

func TestField_WrapperObject(t *testing.T) {
	var f Field
	require.NoError(t, json.Unmarshal([]byte(`{"value": "3", "display_value": "In Progress"}`), &f))

	assert.Equal(t, "3", f.Raw())
	assert.Equal(t, "In Progress", f.Display())
	assert.True(t, f.IsWrapped())
	assert.Equal(t, 3, f.Int(0))
}

func TestField_NumericScalar(t *testing.T) {
	var f Field
	require.NoError(t, json.Unmarshal([]byte(`42`), &f))

	assert.Equal(t, "42", f.Raw())
	assert.Equal(t, 42, f.Int(0))
	assert.Equal(t, 42.0, f.Float(0))
}

func TestField_BooleanScalar(t *testing.T) {
	var f Field
	require.NoError(t, json.Unmarshal([]byte(`true`), &f))

	assert.True(t, f.Bool())
}

func TestField_Null(t *testing.T) {
	var f Field
	require.NoError(t, json.Unmarshal([]byte(`null`), &f))

	assert.True(t, f.IsZero())
	assert.Equal(t, "fallback", f.String("fallback"))
	assert.Equal(t, 7, f.Int(7))
}

func TestField_ParseFailureDefaults(t *testing.T) {
	var f Field
	require.NoError(t, json.Unmarshal([]byte(`"not-a-number"`), &f))

	assert.Equal(t, 0, f.Int(0))
	assert.Equal(t, 4.8, f.Float(4.8))
	assert.False(t, f.Bool())
}

func TestField_InStruct(t *testing.T) {
	var rec struct {
		SysID  Field `json:"sys_id"`
		State  Field `json:"u_state"`
		Title  Field `json:"u_title"`
		Absent Field `json:"u_absent"`
	}
	payload := `{
		"sys_id": "abc123",
		"u_state": {"value": "2", "display_value": "In Progress"},
		"u_title": "Midterm"
	}`
	require.NoError(t, json.Unmarshal([]byte(payload), &rec))

	assert.Equal(t, "abc123", rec.SysID.Raw())
	assert.Equal(t, "2", rec.State.Raw())
	assert.Equal(t, "In Progress", rec.State.Display())
	assert.Equal(t, "Midterm", rec.Title.Display())
	assert.True(t, rec.Absent.IsZero())
}
