package env_vars

import (
	"os"
	"strings"

	"github.com/specialistvlad/partgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Environ lists the variables as KEY=value pairs. Defaults to os.Environ.
	Environ func() []string
}

// Vars parses KEY=value pairs into a map. Entries without '=' are dropped.
func Vars(environ []string) map[string]string {
	envMap := make(map[string]string, len(environ))
	for _, e := range environ {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			envMap[pair[0]] = pair[1]
		}
	}
	return envMap
}

// Register registers the env.vars part. Its export reads the environment
// each time it is requested; it needs no instance.
func (m *Module) Register(r *registry.Registry) {
	environ := m.Environ
	if environ == nil {
		environ = os.Environ
	}

	b := registry.NewPart[struct{}]("env.vars").
		Describe("Exports the process environment variables.")
	registry.ExportValue(b, "all", "env.vars", func() map[string]string {
		return Vars(environ())
	}, map[string]any{"source": "process"})
	r.Register(b.MustBuild())
}
