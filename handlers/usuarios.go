package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/ncastro/clinica-backend/database"
	"github.com/ncastro/clinica-backend/middleware"
	"github.com/ncastro/clinica-backend/models"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

// RefreshTokenTTL es la vida útil del refresh token persistido
const RefreshTokenTTL = 7 * 24 * time.Hour

// RegistrarUsuario crea un nuevo usuario en el sistema
func RegistrarUsuario(c *fiber.Ctx) error {
	var usuario models.Usuario
	if err := c.BodyParser(&usuario); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Datos inválidos"})
	}

	rolesValidos := map[string]bool{
		"admin":      true,
		"medico":     true,
		"secretaria": true,
	}
	if !rolesValidos[usuario.Rol] {
		return c.Status(400).JSON(fiber.Map{"error": "Rol de usuario inválido"})
	}

	if usuario.Nombre == "" || usuario.Apellido == "" || usuario.Email == "" || usuario.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Nombre, apellido, email y contraseña son requeridos"})
	}

	// Verificar si el email ya existe
	var existeEmail int
	err := database.GetDB().QueryRow(context.Background(),
		"SELECT COUNT(*) FROM Usuario WHERE email = $1", usuario.Email).Scan(&existeEmail)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error interno del servidor"})
	}
	if existeEmail > 0 {
		return c.Status(409).JSON(fiber.Map{"error": "El email ya está registrado"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(usuario.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al procesar la contraseña"})
	}

	var nuevoID int
	err = database.GetDB().QueryRow(context.Background(),
		`INSERT INTO Usuario (nombre, apellido, email, password, rol, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id_usuario`,
		usuario.Nombre, usuario.Apellido, usuario.Email, string(hashedPassword),
		usuario.Rol, time.Now(), time.Now()).Scan(&nuevoID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al crear el usuario"})
	}

	respuesta := models.UsuarioResponse{
		ID:        nuevoID,
		Nombre:    usuario.Nombre,
		Apellido:  usuario.Apellido,
		Email:     usuario.Email,
		Rol:       usuario.Rol,
		CreatedAt: time.Now(),
	}

	return c.Status(201).JSON(fiber.Map{
		"mensaje": "Usuario creado exitosamente",
		"usuario": respuesta,
	})
}

// Login autentica un usuario y devuelve tokens de acceso y refresh.
// Si el usuario tiene MFA habilitado el código TOTP es obligatorio.
func Login(c *fiber.Ctx) error {
	var loginReq models.LoginRequest
	if err := c.BodyParser(&loginReq); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Datos inválidos"})
	}

	var usuario models.Usuario
	err := database.GetDB().QueryRow(context.Background(),
		`SELECT id_usuario, nombre, apellido, email, password, rol, mfa_enabled,
		        COALESCE(mfa_secret, ''), created_at
		 FROM Usuario WHERE email = $1`, loginReq.Email).Scan(
		&usuario.ID, &usuario.Nombre, &usuario.Apellido, &usuario.Email, &usuario.Password,
		&usuario.Rol, &usuario.MFAEnabled, &usuario.MFASecret, &usuario.CreatedAt)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Credenciales inválidas"})
	}

	err = bcrypt.CompareHashAndPassword([]byte(usuario.Password), []byte(loginReq.Password))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Credenciales inválidas"})
	}

	if usuario.MFAEnabled {
		if loginReq.MFACode == "" {
			return c.Status(401).JSON(fiber.Map{
				"error":        "Código MFA requerido",
				"mfa_required": true,
			})
		}
		if !totp.Validate(loginReq.MFACode, usuario.MFASecret) {
			return c.Status(401).JSON(fiber.Map{"error": "Código MFA inválido"})
		}
	}

	accessToken, err := middleware.GenerateJWT(usuario.ID, usuario.Email, usuario.Rol)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al generar token"})
	}

	refreshToken, err := emitirRefreshToken(usuario.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al generar token"})
	}

	middleware.LogCustomEvent(models.LogLevelSuccess, "Login exitoso", usuario.Email, usuario.Rol,
		map[string]interface{}{"user_id": usuario.ID, "action": "login"})

	return c.JSON(models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(middleware.AccessTokenTTL.Seconds()),
		Usuario: models.UsuarioResponse{
			ID:         usuario.ID,
			Nombre:     usuario.Nombre,
			Apellido:   usuario.Apellido,
			Email:      usuario.Email,
			Rol:        usuario.Rol,
			MFAEnabled: usuario.MFAEnabled,
			CreatedAt:  usuario.CreatedAt,
		},
	})
}

// RefreshToken canjea un refresh token vigente por un nuevo par de tokens.
// El token usado se revoca para que no pueda reutilizarse.
func RefreshToken(c *fiber.Ctx) error {
	var req models.RefreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Datos inválidos"})
	}

	var rt models.RefreshToken
	err := database.GetDB().QueryRow(context.Background(),
		`SELECT id, user_id, token, expires_at, is_revoked FROM RefreshToken WHERE token = $1`,
		req.RefreshToken).Scan(&rt.ID, &rt.UserID, &rt.Token, &rt.ExpiresAt, &rt.IsRevoked)
	if err != nil || rt.IsRevoked || time.Now().After(rt.ExpiresAt) {
		return c.Status(401).JSON(fiber.Map{"error": "Refresh token inválido o expirado"})
	}

	var usuario models.Usuario
	err = database.GetDB().QueryRow(context.Background(),
		"SELECT id_usuario, email, rol FROM Usuario WHERE id_usuario = $1", rt.UserID).Scan(
		&usuario.ID, &usuario.Email, &usuario.Rol)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Refresh token inválido o expirado"})
	}

	_, err = database.GetDB().Exec(context.Background(),
		"UPDATE RefreshToken SET is_revoked = TRUE WHERE id = $1", rt.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error interno del servidor"})
	}

	accessToken, err := middleware.GenerateJWT(usuario.ID, usuario.Email, usuario.Rol)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al generar token"})
	}

	nuevoRefresh, err := emitirRefreshToken(usuario.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al generar token"})
	}

	return c.JSON(fiber.Map{
		"access_token":  accessToken,
		"refresh_token": nuevoRefresh,
		"expires_in":    int(middleware.AccessTokenTTL.Seconds()),
	})
}

// Logout revoca todos los refresh tokens del usuario autenticado
func Logout(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int)

	_, err := database.GetDB().Exec(context.Background(),
		"UPDATE RefreshToken SET is_revoked = TRUE WHERE user_id = $1 AND is_revoked = FALSE", userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al cerrar sesión"})
	}

	return c.JSON(fiber.Map{"mensaje": "Sesión cerrada exitosamente"})
}

// ObtenerUsuarios obtiene todos los usuarios (solo admin)
func ObtenerUsuarios(c *fiber.Ctx) error {
	rows, err := database.GetDB().Query(context.Background(),
		`SELECT id_usuario, nombre, apellido, email, rol, mfa_enabled, created_at
		 FROM Usuario ORDER BY created_at DESC`)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al obtener usuarios"})
	}
	defer rows.Close()

	var usuarios []models.UsuarioResponse
	for rows.Next() {
		var usuario models.UsuarioResponse
		err := rows.Scan(&usuario.ID, &usuario.Nombre, &usuario.Apellido, &usuario.Email,
			&usuario.Rol, &usuario.MFAEnabled, &usuario.CreatedAt)
		if err != nil {
			continue
		}
		usuarios = append(usuarios, usuario)
	}

	return c.JSON(fiber.Map{
		"usuarios": usuarios,
		"total":    len(usuarios),
	})
}

// ObtenerUsuarioPorID obtiene un usuario específico
func ObtenerUsuarioPorID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "ID inválido"})
	}

	// Admin puede ver cualquier usuario, el resto solo su propio perfil
	userID := c.Locals("user_id").(int)
	userRol := c.Locals("user_rol").(string)
	if userRol != "admin" && userID != id {
		return c.Status(403).JSON(fiber.Map{"error": "No tienes permisos para ver este usuario"})
	}

	var usuario models.UsuarioResponse
	err = database.GetDB().QueryRow(context.Background(),
		`SELECT id_usuario, nombre, apellido, email, rol, mfa_enabled, created_at
		 FROM Usuario WHERE id_usuario = $1`, id).Scan(
		&usuario.ID, &usuario.Nombre, &usuario.Apellido, &usuario.Email,
		&usuario.Rol, &usuario.MFAEnabled, &usuario.CreatedAt)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Usuario no encontrado"})
	}

	return c.JSON(usuario)
}

// ActualizarUsuario actualiza los datos de un usuario
func ActualizarUsuario(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "ID inválido"})
	}

	userID := c.Locals("user_id").(int)
	userRol := c.Locals("user_rol").(string)
	if userRol != "admin" && userID != id {
		return c.Status(403).JSON(fiber.Map{"error": "No tienes permisos para actualizar este usuario"})
	}

	var usuario models.Usuario
	if err := c.BodyParser(&usuario); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Datos inválidos"})
	}

	tag, err := database.GetDB().Exec(context.Background(),
		"UPDATE Usuario SET nombre = $1, apellido = $2, email = $3, updated_at = $4 WHERE id_usuario = $5",
		usuario.Nombre, usuario.Apellido, usuario.Email, time.Now(), id)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al actualizar usuario"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Usuario no encontrado"})
	}

	return c.JSON(fiber.Map{"mensaje": "Usuario actualizado exitosamente"})
}

// EliminarUsuario elimina un usuario (solo admin)
func EliminarUsuario(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "ID inválido"})
	}

	tag, err := database.GetDB().Exec(context.Background(),
		"DELETE FROM Usuario WHERE id_usuario = $1", id)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Error al eliminar usuario"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Usuario no encontrado"})
	}

	return c.JSON(fiber.Map{"mensaje": "Usuario eliminado exitosamente"})
}

// ObtenerPerfil obtiene el perfil del usuario autenticado
func ObtenerPerfil(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int)

	var usuario models.UsuarioResponse
	err := database.GetDB().QueryRow(context.Background(),
		`SELECT id_usuario, nombre, apellido, email, rol, mfa_enabled, created_at
		 FROM Usuario WHERE id_usuario = $1`, userID).Scan(
		&usuario.ID, &usuario.Nombre, &usuario.Apellido, &usuario.Email,
		&usuario.Rol, &usuario.MFAEnabled, &usuario.CreatedAt)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Usuario no encontrado"})
	}

	return c.JSON(usuario)
}

func emitirRefreshToken(userID int) (string, error) {
	token := uuid.New().String()
	_, err := database.GetDB().Exec(context.Background(),
		`INSERT INTO RefreshToken (user_id, token, expires_at) VALUES ($1, $2, $3)`,
		userID, token, time.Now().Add(RefreshTokenTTL))
	if err != nil {
		return "", err
	}
	return token, nil
}
