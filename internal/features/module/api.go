package module

import (
	"go-admin/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type ModuleApi struct {
	moduleController *ModuleController
}

func NewModuleApi(moduleController *ModuleController) api.Route {
	return &ModuleApi{
		moduleController: moduleController,
	}
}

func (h *ModuleApi) Setup(app *fiber.App) {
	modules := app.Group("/api/modules")
	modules.Get("/", h.moduleController.ListModules)
	modules.Get("/:name", h.moduleController.GetModule)
}
