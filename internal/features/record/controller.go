package record

import (
	"context"
	"errors"
	"fmt"

	"go-admin/internal/features/module"
	"go-admin/pkg/criteria"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// StatusClientClosedRequest is written when the caller went away mid-query.
const StatusClientClosedRequest = 499

type RecordController struct {
	Service RecordService
	Log     *zap.Logger
}

func NewRecordController(service RecordService, log *zap.Logger) *RecordController {
	return &RecordController{Service: service, Log: log}
}

// ListRecords handles GET /api/records/:module
func (ctrl *RecordController) ListRecords(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return ctrl.writeError(c, err)
	}

	result, err := ctrl.Service.List(c.UserContext(), c.Params("module"), q)
	if err != nil {
		return ctrl.writeError(c, err)
	}
	return c.JSON(result)
}

// ExportRecords handles GET /api/records/:module/export
func (ctrl *RecordController) ExportRecords(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return ctrl.writeError(c, err)
	}

	data, filename, err := ctrl.Service.Export(c.UserContext(), c.Params("module"), q)
	if err != nil {
		return ctrl.writeError(c, err)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	return c.Send(data)
}

type catalogField struct {
	Name       string             `json:"name"`
	Type       criteria.ValueType `json:"type"`
	Sortable   bool               `json:"sortable"`
	Searchable bool               `json:"searchable"`
	Filterable bool               `json:"filterable"`
	Choices    []string           `json:"choices,omitempty"`
}

// GetCatalog handles GET /api/records/:module/catalog
func (ctrl *RecordController) GetCatalog(c *fiber.Ctx) error {
	cat, err := ctrl.Service.Catalog(c.Params("module"))
	if err != nil {
		return ctrl.writeError(c, err)
	}

	fields := cat.Fields()
	out := make([]catalogField, 0, len(fields))
	for _, f := range fields {
		out = append(out, catalogField{
			Name:       f.Name,
			Type:       f.Type,
			Sortable:   f.Sortable,
			Searchable: f.Searchable,
			Filterable: f.CanFilter(),
			Choices:    f.Choices,
		})
	}
	return c.JSON(fiber.Map{
		"primary_key": cat.PrimaryKey(),
		"fields":      out,
		"operators":   criteria.DefaultRegistry().Operators(),
	})
}

func (ctrl *RecordController) writeError(c *fiber.Ctx, err error) error {
	var (
		validation  *criteria.ValidationError
		unknown     *criteria.UnknownFieldError
		unsupported *criteria.UnsupportedOperatorError
		badSort     *criteria.UnsupportedSortError
		dataAccess  *DataAccessError
	)

	switch {
	case errors.As(err, &validation):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":    validation.Error(),
			"field":    validation.Field,
			"operator": validation.Operator,
		})
	case errors.As(err, &unknown):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": unknown.Error(),
			"field": unknown.Field,
		})
	case errors.As(err, &unsupported):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":    unsupported.Error(),
			"field":    unsupported.Field,
			"operator": unsupported.Operator,
		})
	case errors.As(err, &badSort):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": badSort.Error(),
			"field": badSort.Field,
		})
	case errors.Is(err, module.ErrModuleNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Module not found",
		})
	case errors.As(err, &dataAccess):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch records",
			"ref":   dataAccess.Ref,
		})
	case errors.Is(err, context.Canceled):
		return c.SendStatus(StatusClientClosedRequest)
	}

	if ctrl.Log != nil {
		ctrl.Log.Error("Unhandled list error", zap.String("module", c.Params("module")), zap.Error(err))
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}
