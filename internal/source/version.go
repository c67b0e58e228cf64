package source

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shinji-kodama/qemu-eos-builder/internal/model"
)

// VersionFile is the marker file name at the root of a Qemu source tree.
const VersionFile = "VERSION"

// ReadVersion reads the VERSION marker directly inside dir and parses its
// first line as "major.minor.micro".
//
// A missing marker is a KindMissingMarker error. Content that does not
// start with three dot-separated integers is a KindVersionParse error.
// Fields after the third are ignored (e.g. "4.2.1.eos").
func ReadVersion(dir string) (model.Version, error) {
	p := filepath.Join(dir, VersionFile)

	// os.Stat follows symlinks, so a symlinked VERSION file is accepted.
	// A directory named VERSION is treated as missing.
	info, err := os.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		return model.Version{}, model.NewInstallerError(model.KindMissingMarker, "Missing VERSION file")
	}

	line, err := readFirstLine(p)
	if err != nil {
		return model.Version{}, model.WrapInstallerError(model.KindVersionParse,
			fmt.Sprintf("failed to read %s: %v", p, err), err)
	}

	return ParseVersion(line)
}

// ParseVersion parses a dotted version string. Surrounding whitespace on
// each field is tolerated; anything else that is not a base-10 integer is
// rejected.
func ParseVersion(s string) (model.Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 3 {
		return model.Version{}, model.NewInstallerError(model.KindVersionParse,
			fmt.Sprintf("invalid VERSION %q: expected major.minor.micro", strings.TrimSpace(s)))
	}

	var nums [3]int
	for i := range nums {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return model.Version{}, model.WrapInstallerError(model.KindVersionParse,
				fmt.Sprintf("invalid VERSION %q: %v", strings.TrimSpace(s), err), err)
		}
		nums[i] = n
	}

	return model.Version{Major: nums[0], Minor: nums[1], Micro: nums[2]}, nil
}

// readFirstLine returns the first line of the file without its line
// terminator. An empty file yields an empty string.
func readFirstLine(p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	return "", scanner.Err()
}
