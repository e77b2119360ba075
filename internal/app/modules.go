package app

import (
	"github.com/anvilbuild/anvil/internal/registry"
	"github.com/anvilbuild/anvil/modules/publish"
	"github.com/anvilbuild/anvil/modules/shell"
)

// coreModules is the definitive list of all plugin modules that are
// compiled into the anvil binary.
var coreModules = []registry.Module{
	&shell.Module{},
	&publish.Module{},
}
