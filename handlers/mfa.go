package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ncastro/clinica-backend/database"
	"github.com/ncastro/clinica-backend/middleware"
	"github.com/ncastro/clinica-backend/models"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

// SetupMFA genera un secreto TOTP para el usuario autenticado. El secreto
// queda guardado pero MFA no se habilita hasta verificar un código.
func SetupMFA(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int)

	var req models.MFASetupRequest
	if err := c.BodyParser(&req); err != nil || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Datos inválidos"})
	}

	var email, password string
	var mfaEnabled bool
	err := database.GetDB().QueryRow(context.Background(),
		"SELECT email, password, mfa_enabled FROM Usuario WHERE id_usuario = $1", userID).Scan(
		&email, &password, &mfaEnabled)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Usuario no encontrado"})
	}
	if mfaEnabled {
		return c.Status(409).JSON(fiber.Map{"error": "MFA ya está habilitado"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(password), []byte(req.Password)); err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Contraseña incorrecta"})
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Clinica",
		AccountName: email,
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al generar el secreto MFA"})
	}

	_, err = database.GetDB().Exec(context.Background(),
		"UPDATE Usuario SET mfa_secret = $1, updated_at = $2 WHERE id_usuario = $3",
		key.Secret(), time.Now(), userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al guardar el secreto MFA"})
	}

	return c.JSON(models.MFASetupResponse{
		Secret:    key.Secret(),
		QRCodeURL: key.URL(),
	})
}

// VerifyMFA valida el primer código TOTP y habilita MFA para el usuario
func VerifyMFA(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int)

	var req models.MFAVerifyRequest
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Datos inválidos"})
	}

	var secret string
	var mfaEnabled bool
	err := database.GetDB().QueryRow(context.Background(),
		"SELECT COALESCE(mfa_secret, ''), mfa_enabled FROM Usuario WHERE id_usuario = $1", userID).Scan(
		&secret, &mfaEnabled)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Usuario no encontrado"})
	}
	if secret == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Primero debe configurar MFA"})
	}

	if !totp.Validate(req.Code, secret) {
		return c.Status(401).JSON(fiber.Map{"error": "Código MFA inválido"})
	}

	if !mfaEnabled {
		_, err = database.GetDB().Exec(context.Background(),
			"UPDATE Usuario SET mfa_enabled = TRUE, updated_at = $1 WHERE id_usuario = $2",
			time.Now(), userID)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Error al habilitar MFA"})
		}
	}

	userEmail, _ := c.Locals("user_email").(string)
	userRol, _ := c.Locals("user_rol").(string)
	middleware.LogCustomEvent(models.LogLevelSuccess, "MFA habilitado", userEmail, userRol,
		map[string]interface{}{"user_id": userID, "action": "mfa_enabled"})

	return c.JSON(fiber.Map{"mensaje": "MFA habilitado exitosamente"})
}

// DisableMFA deshabilita MFA para el usuario autenticado. Requiere la
// contraseña y un código TOTP vigente.
func DisableMFA(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int)

	var req struct {
		Password string `json:"password"`
		Code     string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil || req.Password == "" || req.Code == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Contraseña y código MFA son requeridos"})
	}

	var password, secret string
	var mfaEnabled bool
	err := database.GetDB().QueryRow(context.Background(),
		"SELECT password, COALESCE(mfa_secret, ''), mfa_enabled FROM Usuario WHERE id_usuario = $1",
		userID).Scan(&password, &secret, &mfaEnabled)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Usuario no encontrado"})
	}
	if !mfaEnabled {
		return c.Status(400).JSON(fiber.Map{"error": "MFA no está habilitado"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(password), []byte(req.Password)); err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Contraseña incorrecta"})
	}
	if !totp.Validate(req.Code, secret) {
		return c.Status(401).JSON(fiber.Map{"error": "Código MFA inválido"})
	}

	_, err = database.GetDB().Exec(context.Background(),
		"UPDATE Usuario SET mfa_enabled = FALSE, mfa_secret = NULL, updated_at = $1 WHERE id_usuario = $2",
		time.Now(), userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al deshabilitar MFA"})
	}

	userEmail, _ := c.Locals("user_email").(string)
	userRol, _ := c.Locals("user_rol").(string)
	middleware.LogCustomEvent(models.LogLevelWarning, "MFA deshabilitado", userEmail, userRol,
		map[string]interface{}{"user_id": userID, "action": "mfa_disabled"})

	return c.JSON(fiber.Map{"mensaje": "MFA deshabilitado exitosamente"})
}
