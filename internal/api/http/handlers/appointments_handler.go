package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staffing-service/internal/api/dto"
	"github.com/spec-kit/staffing-service/internal/service"
)

// AppointmentsHandler exposes appointment scheduling, the index and the future/past views.
type AppointmentsHandler struct {
	appointments *service.AppointmentService
}

// NewAppointmentsHandler constructs the handler.
func NewAppointmentsHandler(appointments *service.AppointmentService) *AppointmentsHandler {
	return &AppointmentsHandler{appointments: appointments}
}

// List handles GET /appointments.
func (h *AppointmentsHandler) List(c *fiber.Ctx) error {
	list, err := h.appointments.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"appointments": dto.NewAppointmentDetailList(list)}})
}

// Future handles GET /appointments/future/:ownerId.
func (h *AppointmentsHandler) Future(c *fiber.Ctx) error {
	list, err := h.appointments.Future(c.UserContext(), c.Params("ownerId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"appointments": dto.NewAppointmentList(list)}})
}

// Past handles GET /appointments/past/:ownerId.
func (h *AppointmentsHandler) Past(c *fiber.Ctx) error {
	list, err := h.appointments.Past(c.UserContext(), c.Params("ownerId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"appointments": dto.NewAppointmentList(list)}})
}

// Create handles POST /appointments.
func (h *AppointmentsHandler) Create(c *fiber.Ctx) error {
	var req dto.AppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	appt, err := h.appointments.Create(c.UserContext(), appointmentInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAppointmentResponse(appt)})
}

// Get handles GET /appointments/:id.
func (h *AppointmentsHandler) Get(c *fiber.Ctx) error {
	appt, err := h.appointments.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAppointmentResponse(appt)})
}

// Update handles PUT /appointments/:id.
func (h *AppointmentsHandler) Update(c *fiber.Ctx) error {
	var req dto.AppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	appt, err := h.appointments.Update(c.UserContext(), c.Params("id"), appointmentInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAppointmentResponse(appt)})
}

// Delete handles DELETE /appointments/:id.
func (h *AppointmentsHandler) Delete(c *fiber.Ctx) error {
	if err := h.appointments.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func appointmentInput(req dto.AppointmentRequest) service.AppointmentInput {
	return service.AppointmentInput{
		VisitAt:    req.VisitAt,
		EmployeeID: req.EmployeeID,
		OwnerID:    req.OwnerID,
		Vaccines:   req.Vaccines,
	}
}
