package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staffing-service/internal/api/dto"
	"github.com/spec-kit/staffing-service/internal/auth"
	"github.com/spec-kit/staffing-service/internal/service"
	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

// AuthHandler exposes registration, login and credential recovery endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}

	cred, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Identifier: req.Identifier,
		Secret:     req.Secret,
		Role:       req.Role,
		Name:       req.Name,
		Email:      req.Email,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"credential": dto.NewCredentialResponse(cred),
		},
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}

	result, err := h.auth.Login(c.UserContext(), service.LoginInput{
		Identifier:    req.Identifier,
		Secret:        req.Secret,
		OriginAddress: c.IP(),
		ClientAgent:   c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"credential": dto.NewCredentialResponse(result.Credential),
			"session":    dto.NewSessionResponse(result.Session, result.Reused),
			"auth": dto.AuthResponse{
				Token:     result.AccessToken,
				TokenType: "Bearer",
				ExpiresAt: result.ExpiresAt,
			},
		},
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.auth.Logout(c.UserContext(), principal); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "logged out"}})
}

// RequestReset handles POST /auth/reset/request. The response does not reveal whether the
// address is registered.
func (h *AuthHandler) RequestReset(c *fiber.Ctx) error {
	var req dto.ResetRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	if err := h.auth.RequestReset(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"message": "if the address is registered, a reset token has been sent"},
	})
}

// ConfirmReset handles POST /auth/reset/confirm.
func (h *AuthHandler) ConfirmReset(c *fiber.Ctx) error {
	var req dto.ResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	if err := h.auth.ConfirmReset(c.UserContext(), req.Token, req.NewSecret); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "secret updated"}})
}

// ChangeSecret handles POST /auth/secret/change.
func (h *AuthHandler) ChangeSecret(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChangeSecretRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	if err := h.auth.ChangeSecret(c.UserContext(), principal.Credential.ID, req.CurrentSecret, req.NewSecret); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "secret updated"}})
}

func invalidPayload() error {
	return apperrors.NewValidationError("invalid payload", nil)
}
