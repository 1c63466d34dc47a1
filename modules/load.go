package modules

import (
	"github.com/taskvine/taskvine/modules/core"
	"github.com/taskvine/taskvine/pkg/application"
)

var BuiltInModules = []application.Module{
	core.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
