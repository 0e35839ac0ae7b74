package http

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

func TestStatusForKinds(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{apperrors.NewValidationError("bad", nil), fiber.StatusBadRequest},
		{apperrors.NewWeakSecret(nil), fiber.StatusBadRequest},
		{apperrors.NewDuplicateIdentifier(), fiber.StatusConflict},
		{apperrors.NewAuthFailure(), fiber.StatusUnauthorized},
		{apperrors.NewInvalidToken(), fiber.StatusUnauthorized},
		{apperrors.NewForbidden("no"), fiber.StatusForbidden},
		{apperrors.NewNotFound("thing", nil), fiber.StatusNotFound},
		{apperrors.NewDependencyFailure("mail", errors.New("down")), fiber.StatusServiceUnavailable},
		{errors.New("boom"), fiber.StatusInternalServerError},
		{fiber.ErrNotFound, fiber.StatusNotFound},
		{fiber.ErrUnprocessableEntity, fiber.StatusUnprocessableEntity},
	}
	for _, tc := range tests {
		_, status := toDomainError(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
	}
}

func TestErrorBodyOmitsEmptyDetails(t *testing.T) {
	body := ErrorBody(apperrors.ToDomainError(apperrors.NewAuthFailure()))
	inner := body["error"].(fiber.Map)
	assert.Equal(t, apperrors.CodeAuthFailure, inner["code"])
	assert.NotContains(t, inner, "details")
}
