// Package target models one watchable params document and the directories
// derived from it.
package target

import (
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar"
)

const (
	// ConfigFileName is the name of the dotnet-svcutil params document.
	ConfigFileName = "dotnet-svcutil.params.json"

	// ServiceReferenceDir is the folder that holds a params document.
	ServiceReferenceDir = "ServiceReference"

	// ConfigPattern matches params documents under any ServiceReference
	// folder, relative to a workspace root.
	ConfigPattern = "**/" + ServiceReferenceDir + "/" + ConfigFileName
)

// Target identifies one params document. ConfigPath is the identity key.
type Target struct {
	// ConfigPath is the absolute, cleaned path of the params document.
	ConfigPath string `json:"configPath" yaml:"configPath"`

	// Dir is the folder containing the document and the generator's
	// working directory.
	Dir string `json:"dir" yaml:"dir"`

	// ParentDir is the folder containing Dir, typically the project folder.
	ParentDir string `json:"parentDir" yaml:"parentDir"`
}

// New derives a Target from a params document path.
func New(configPath string) Target {
	p := configPath
	if abs, err := filepath.Abs(configPath); err == nil {
		p = abs
	}
	p = filepath.Clean(p)
	dir := filepath.Dir(p)
	return Target{
		ConfigPath: p,
		Dir:        dir,
		ParentDir:  filepath.Dir(dir),
	}
}

// ForDirectory returns the Target whose params document lives in the
// ServiceReference folder under projectDir.
func ForDirectory(projectDir string) Target {
	return New(filepath.Join(projectDir, ServiceReferenceDir, ConfigFileName))
}

// Key returns the identity key of the target.
func (t Target) Key() string {
	return t.ConfigPath
}

func (t Target) String() string {
	return t.ConfigPath
}

// IsConfigPath reports whether path names a params document inside a
// ServiceReference folder.
func IsConfigPath(path string) bool {
	slashed := filepath.ToSlash(filepath.Clean(path))
	ok, err := doublestar.Match(ConfigPattern, slashed)
	if err != nil {
		return false
	}
	if ok {
		return true
	}
	// Relative paths that start at the ServiceReference folder.
	ok, _ = doublestar.Match(ServiceReferenceDir+"/"+ConfigFileName, slashed)
	return ok
}

// Discover returns the targets of every params document under root, sorted
// by path.
func Discover(root string) ([]Target, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	matches, err := doublestar.Glob(filepath.Join(abs, filepath.FromSlash(ConfigPattern)))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	targets := make([]Target, 0, len(matches))
	for _, m := range matches {
		targets = append(targets, New(m))
	}
	return targets, nil
}
