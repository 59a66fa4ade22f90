// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package svutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-tfe"
	"github.com/tidwall/gjson"
)

// ErrNoVersions is returned when a spec is resolved against an empty list.
var ErrNoVersions = errors.New("no state versions")

const fileScheme = "file://"

// Resolve returns the versions matching specs, in spec order. A spec is one
// of:
//
//	CSV~N  - the Nth version back from the current one
//	-N, 0  - same as CSV~N
//	N      - the version with serial N
//	path   - a state file on disk
//	prefix - the first version whose ID starts with prefix
//
// With no specs the current version is returned.
func Resolve(versions []*tfe.StateVersion, specs ...string) ([]*tfe.StateVersion, error) {
	if len(specs) == 0 {
		specs = []string{"CSV~0"}
	}

	result := make([]*tfe.StateVersion, 0, len(specs))
	for _, spec := range specs {
		sv, err := resolveSpec(spec, versions)
		if err != nil {
			return nil, err
		}
		result = append(result, sv)
	}
	return result, nil
}

// Range resolves from and to and returns every version between them,
// inclusive, oldest first. An empty from means the oldest version and an
// empty to means the current one. When either end is a file on disk, only the
// two ends are returned.
func Range(versions []*tfe.StateVersion, from, to string) ([]*tfe.StateVersion, error) {
	if from == "" {
		if len(versions) == 0 {
			return nil, ErrNoVersions
		}
		from = "CSV~" + strconv.Itoa(len(versions)-1)
	}
	if to == "" {
		to = "CSV~0"
	}

	ends, err := Resolve(versions, from, to)
	if err != nil {
		return nil, err
	}
	out, err := Between(versions, ends[0], ends[1])
	if err != nil {
		return nil, fmt.Errorf("--from %s, --to %s: %w", from, to, err)
	}
	return out, nil
}

// Between returns every version from oldest to newest, inclusive, oldest
// first. When either end is not in versions only the two ends are returned.
func Between(versions []*tfe.StateVersion, oldest, newest *tfe.StateVersion) ([]*tfe.StateVersion, error) {
	i, j := indexOf(versions, oldest), indexOf(versions, newest)
	if i < 0 || j < 0 {
		return []*tfe.StateVersion{oldest, newest}, nil
	}
	if i < j {
		return nil, fmt.Errorf("%s (serial %d) is newer than %s (serial %d)",
			oldest.ID, oldest.Serial, newest.ID, newest.Serial)
	}

	out := make([]*tfe.StateVersion, 0, i-j+1)
	for k := i; k >= j; k-- {
		out = append(out, versions[k])
	}
	return out, nil
}

// FileVersion describes a state file on disk as a state version. The serial
// is read from the document when it is readable plaintext state.
func FileVersion(path string) *tfe.StateVersion {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	sv := &tfe.StateVersion{ID: path, JSONDownloadURL: fileScheme + abs}
	if info, err := os.Stat(abs); err == nil {
		sv.CreatedAt = info.ModTime()
	}
	if doc, err := os.ReadFile(abs); err == nil {
		sv.Serial = gjson.GetBytes(doc, "serial").Int()
	}
	return sv
}

// LocalPath returns the file behind sv when it was built by FileVersion.
func LocalPath(sv *tfe.StateVersion) (string, bool) {
	if sv == nil {
		return "", false
	}
	return strings.CutPrefix(sv.JSONDownloadURL, fileScheme)
}

func resolveSpec(spec string, versions []*tfe.StateVersion) (*tfe.StateVersion, error) {
	switch {
	case strings.HasPrefix(strings.ToUpper(spec), "CSV~"):
		return resolveCSVSpec(spec, versions)
	case isNumeric(spec):
		return resolveNumericSpec(spec, versions)
	case isFilePath(spec):
		return FileVersion(spec), nil
	default:
		return resolveIDSpec(spec, versions)
	}
}

func resolveCSVSpec(spec string, versions []*tfe.StateVersion) (*tfe.StateVersion, error) {
	parts := strings.Split(spec, "~")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid CSV spec format: %s", spec)
	}
	index, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid CSV index: %s", parts[1])
	}
	return at(versions, index)
}

// resolveNumericSpec treats values <= 0 as a relative index and anything else
// as a serial.
func resolveNumericSpec(spec string, versions []*tfe.StateVersion) (*tfe.StateVersion, error) {
	i, _ := strconv.Atoi(spec)
	if i <= 0 {
		return at(versions, -i)
	}

	for _, v := range versions {
		if v.Serial == int64(i) {
			return v, nil
		}
	}
	return nil, fmt.Errorf("failed to find state version with serial %d", i)
}

func resolveIDSpec(spec string, versions []*tfe.StateVersion) (*tfe.StateVersion, error) {
	for _, v := range versions {
		if strings.HasPrefix(v.ID, spec) {
			return v, nil
		}
	}
	return nil, fmt.Errorf("failed to find state version with ID prefix: %s", spec)
}

func at(versions []*tfe.StateVersion, index int) (*tfe.StateVersion, error) {
	if len(versions) == 0 {
		return nil, ErrNoVersions
	}
	if index < 0 || index > len(versions)-1 {
		return nil, fmt.Errorf("index %d out of range for versions of length %d", index, len(versions))
	}
	return versions[index], nil
}

func indexOf(versions []*tfe.StateVersion, sv *tfe.StateVersion) int {
	for i, v := range versions {
		if v.ID == sv.ID {
			return i
		}
	}
	return -1
}

func isNumeric(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func isFilePath(s string) bool {
	info, err := os.Stat(s)
	return err == nil && !info.IsDir()
}
