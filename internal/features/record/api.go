package record

import (
	"go-admin/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type RecordApi struct {
	recordController *RecordController
}

func NewRecordApi(recordController *RecordController) api.Route {
	return &RecordApi{
		recordController: recordController,
	}
}

// Setup registers record-related routes
func (h *RecordApi) Setup(app *fiber.App) {
	records := app.Group("/api/records/:module")

	records.Get("/", h.recordController.ListRecords)
	records.Get("/export", h.recordController.ExportRecords)
	records.Get("/catalog", h.recordController.GetCatalog)
}
