package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hiero-ledger/relay-lockgate/domains/health"
	"github.com/hiero-ledger/relay-lockgate/pkg/utils"
)

type Health struct {
	Service health.IHealthUsecase
}

// InitRestHealth mounts the liveness/readiness endpoint used by
// orchestrators and the operator dashboard alike.
func InitRestHealth(app fiber.Router, service health.IHealthUsecase) Health {
	handler := Health{Service: service}
	app.Get("/healthz", handler.GetStatus)
	return handler
}

func (h *Health) GetStatus(c *fiber.Ctx) error {
	report := h.Service.GetStatus(c.UserContext())

	status := fiber.StatusOK
	if report.Status != health.StatusOK {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(utils.ResponseData{
		Status:  status,
		Code:    string(report.Status),
		Message: "health status retrieved",
		Results: report.Components,
	})
}
