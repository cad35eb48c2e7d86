package app

import (
	"github.com/specialistvlad/partgrid/internal/registry"
	"github.com/specialistvlad/partgrid/modules/env_vars"
	"github.com/specialistvlad/partgrid/modules/print"
)

// coreModules is the definitive list of all modules that are compiled into
// the partgrid binary.
var coreModules = []registry.Module{
	&env_vars.Module{},
	&print.Module{},
}
