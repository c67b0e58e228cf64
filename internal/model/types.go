package model

import "fmt"

// Version is the release number of a Qemu source tree, as read from the
// first line of its VERSION marker file (e.g. "4.2.1").
//
// Only Major is load-bearing: it selects the build recipe. Minor and Micro
// are kept for diagnostics. A Version is constructed once per run and
// never mutated.
type Version struct {
	Major int `json:"major" yaml:"major"`
	Minor int `json:"minor" yaml:"minor"`
	Micro int `json:"micro" yaml:"micro"`
}

// String returns the dotted "major.minor.micro" form of the version.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Micro)
}

// Recipe identifies the containerized build description (a Dockerfile in
// the builder directory) used to compile a given Qemu major version.
//
// The identifier is the Qemu release the Dockerfile was written against,
// e.g. "2.5.0"; the file itself is named "dockerfile_2.5.0".
type Recipe string

// String returns the recipe identifier.
func (r Recipe) String() string {
	return string(r)
}

// Dockerfile returns the conventional file name of the recipe's
// Dockerfile inside the builder directory.
func (r Recipe) Dockerfile() string {
	return "dockerfile_" + string(r)
}

// RecipeMapping pairs a Qemu major version with the recipe that builds it.
type RecipeMapping struct {
	Major  int    `json:"major" yaml:"major"`
	Recipe Recipe `json:"recipe" yaml:"recipe"`
}

// recipeTable is the hand-maintained major-version to recipe mapping.
// Build dependencies change slowly between minor releases, so matching
// on the major version alone is sufficient. Supporting a new major means
// adding a row here together with its Dockerfile.
var recipeTable = []RecipeMapping{
	{Major: 2, Recipe: "2.5.0"},
	{Major: 4, Recipe: "4.2.1"},
}

// SupportedRecipes returns a copy of the recipe table in lookup order.
func SupportedRecipes() []RecipeMapping {
	out := make([]RecipeMapping, len(recipeTable))
	copy(out, recipeTable)
	return out
}

// SelectRecipe returns the build recipe for the given version.
//
// Versions whose major component has no entry in the recipe table are
// rejected with a KindUnexpectedVersion InstallerError that names the
// full version triple.
func SelectRecipe(v Version) (Recipe, error) {
	for _, m := range recipeTable {
		if m.Major == v.Major {
			return m.Recipe, nil
		}
	}
	return "", NewInstallerError(KindUnexpectedVersion,
		fmt.Sprintf("unexpected Qemu version: %s", v))
}
