package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestVersion_String verifies the dotted rendering used in diagnostics.
func TestVersion_String(t *testing.T) {
	assert.Equal(t, "4.2.1", Version{Major: 4, Minor: 2, Micro: 1}.String())
	assert.Equal(t, "0.0.0", Version{}.String())
}

// TestRecipe_Dockerfile verifies the Dockerfile naming convention.
func TestRecipe_Dockerfile(t *testing.T) {
	assert.Equal(t, "dockerfile_2.5.0", Recipe("2.5.0").Dockerfile())
	assert.Equal(t, "dockerfile_4.2.1", Recipe("4.2.1").Dockerfile())
}

// TestSelectRecipe checks the major-version mapping, including majors
// that have no recipe.
func TestSelectRecipe(t *testing.T) {
	tests := []struct {
		version  Version
		expected Recipe
		hasError bool
	}{
		{Version{2, 1, 0}, "2.5.0", false},
		{Version{2, 12, 3}, "2.5.0", false}, // minor and micro are ignored
		{Version{4, 0, 0}, "4.2.1", false},
		{Version{4, 2, 1}, "4.2.1", false},
		{Version{3, 0, 0}, "", true},
		{Version{5, 0, 0}, "", true},
		{Version{0, 0, 0}, "", true},
		{Version{-2, 0, 0}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.version.String(), func(t *testing.T) {
			recipe, err := SelectRecipe(tt.version)
			if tt.hasError {
				require.Error(t, err)
				assert.True(t, IsKind(err, KindUnexpectedVersion))
				assert.Empty(t, recipe)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, recipe)
		})
	}
}

// TestSelectRecipe_ErrorMessage verifies the rejection names the full
// version triple, not just the major component.
func TestSelectRecipe_ErrorMessage(t *testing.T) {
	_, err := SelectRecipe(Version{Major: 3, Minor: 1, Micro: 4})
	require.Error(t, err)
	assert.Equal(t, "unexpected Qemu version: 3.1.4", err.Error())
}

// TestSupportedRecipes verifies the returned table is ordered and that
// callers cannot mutate the package-level mapping through it.
func TestSupportedRecipes(t *testing.T) {
	recipes := SupportedRecipes()
	require.Len(t, recipes, 2)
	assert.Equal(t, RecipeMapping{Major: 2, Recipe: "2.5.0"}, recipes[0])
	assert.Equal(t, RecipeMapping{Major: 4, Recipe: "4.2.1"}, recipes[1])

	recipes[0].Recipe = "9.9.9"
	again, err := SelectRecipe(Version{Major: 2})
	require.NoError(t, err)
	assert.Equal(t, Recipe("2.5.0"), again)
}

// TestInstallerError_Error verifies that Error returns the message alone,
// even when an underlying error is attached.
func TestInstallerError_Error(t *testing.T) {
	inner := errors.New("exit status 2")
	err := WrapInstallerError(KindCommand, "sudo docker build failed: exit status 2", inner)

	assert.Equal(t, "sudo docker build failed: exit status 2", err.Error())
	assert.Same(t, inner, errors.Unwrap(err))

	plain := NewInstallerError(KindMissingMarker, "Missing VERSION file")
	assert.Equal(t, "Missing VERSION file", plain.Error())
	assert.Nil(t, plain.Unwrap())
}

// TestIsKind verifies kind detection through fmt.Errorf wrapping.
func TestIsKind(t *testing.T) {
	err := NewInstallerError(KindVersionParse, "bad version")
	wrapped := fmt.Errorf("reading source: %w", err)

	assert.True(t, IsKind(err, KindVersionParse))
	assert.True(t, IsKind(wrapped, KindVersionParse))
	assert.False(t, IsKind(wrapped, KindCommand))
	assert.False(t, IsKind(errors.New("plain"), KindVersionParse))
	assert.False(t, IsKind(nil, KindVersionParse))
}

// TestExitCodes pins the numeric exit codes.
func TestExitCodes(t *testing.T) {
	assert.Equal(t, 0, int(ExitSuccess))
	assert.Equal(t, 255, int(ExitFailure))
}
