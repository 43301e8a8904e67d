package app

import (
	"github.com/gridsound/audiograph/internal/catalog"
	"github.com/gridsound/audiograph/modules/dynamics"
	"github.com/gridsound/audiograph/modules/filters"
	"github.com/gridsound/audiograph/modules/output"
	"github.com/gridsound/audiograph/modules/sources"
	"github.com/gridsound/audiograph/modules/synths"
)

// coreModules is the definitive list of all node type modules that are
// compiled into the audiograph binary.
var coreModules = []catalog.Module{
	&synths.Module{},
	&sources.Module{},
	&filters.Module{},
	&dynamics.Module{},
	&output.Module{},
}
