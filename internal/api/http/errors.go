package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

var kindStatus = map[apperrors.Kind]int{
	apperrors.KindValidation:   fiber.StatusBadRequest,
	apperrors.KindConflict:     fiber.StatusConflict,
	apperrors.KindUnauthorized: fiber.StatusUnauthorized,
	apperrors.KindForbidden:    fiber.StatusForbidden,
	apperrors.KindNotFound:     fiber.StatusNotFound,
	apperrors.KindDependency:   fiber.StatusServiceUnavailable,
	apperrors.KindInternal:     fiber.StatusInternalServerError,
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperrors.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// toDomainError also accepts fiber's own errors (unknown route, bad method, body limit).
func toDomainError(err error) (*apperrors.DomainError, int) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch {
		case fe.Code == fiber.StatusNotFound:
			return apperrors.NewDomainError(apperrors.KindNotFound, apperrors.CodeNotFound, fe.Message, nil), fe.Code
		case fe.Code < fiber.StatusInternalServerError:
			return apperrors.NewDomainError(apperrors.KindValidation, apperrors.CodeValidationFailed, fe.Message, nil), fe.Code
		}
	}
	domainErr := apperrors.ToDomainError(err)
	return domainErr, StatusFor(domainErr.Kind)
}

// ErrorBody renders the error envelope shared by every endpoint.
func ErrorBody(domainErr *apperrors.DomainError) fiber.Map {
	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	return fiber.Map{"error": body}
}

// ErrorHandler is the fiber.Config ErrorHandler for errors that escape the middleware chain.
func ErrorHandler(c *fiber.Ctx, err error) error {
	domainErr, status := toDomainError(err)
	return c.Status(status).JSON(ErrorBody(domainErr))
}
