package module

import (
	"github.com/gofiber/fiber/v2"
)

type ModuleController struct {
	Registry *Registry
}

func NewModuleController(registry *Registry) *ModuleController {
	return &ModuleController{
		Registry: registry,
	}
}

type moduleSummary struct {
	Name    string  `json:"name"`
	Label   string  `json:"label"`
	Backend Backend `json:"backend"`
}

// ListModules returns the modules available for listing.
func (ctrl *ModuleController) ListModules(c *fiber.Ctx) error {
	entries := ctrl.Registry.List()
	out := make([]moduleSummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, moduleSummary{Name: e.Module.Name, Label: e.Module.Label, Backend: e.Module.Backend})
	}
	return c.JSON(out)
}

// GetModule returns one module definition.
func (ctrl *ModuleController) GetModule(c *fiber.Ctx) error {
	e, err := ctrl.Registry.Get(c.Params("name"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Module not found",
		})
	}
	return c.JSON(e.Module)
}
