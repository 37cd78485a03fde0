package modules

import (
	"github.com/akdemia/akdemia/modules/curriculum"
	"github.com/akdemia/akdemia/modules/importer"
	"github.com/akdemia/akdemia/pkg/application"
)

// BuiltInModules is the ordered module set loaded by the server and the CLI.
// Curriculum registers import targets, so it loads before the importer.
var BuiltInModules = []application.Module{
	curriculum.NewModule(),
	importer.NewModule(),
}

// Load registers every built-in module with the application.
func Load(app application.Application) error {
	for _, module := range BuiltInModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
