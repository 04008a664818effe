package scenario

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed scenarios/*.yaml
var builtinFS embed.FS

// DefaultName is the scenario the CLI runs when none is given.
const DefaultName = "engine-vibration"

// BuiltinNames lists the bundled scenarios.
func BuiltinNames() []string {
	entries, _ := fs.ReadDir(builtinFS, "scenarios")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// Builtin loads a bundled scenario by name.
func Builtin(name string) (*Scenario, error) {
	data, err := builtinFS.ReadFile("scenarios/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("scenario: no builtin scenario %q (have %s)", name, strings.Join(BuiltinNames(), ", "))
	}
	return Parse(data)
}
