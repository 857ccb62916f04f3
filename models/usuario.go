package models

import (
	"time"
)

// Usuario representa la tabla Usuario en la base de datos
type Usuario struct {
	ID         int       `json:"id_usuario" db:"id_usuario"`
	Nombre     string    `json:"nombre" db:"nombre"`
	Apellido   string    `json:"apellido" db:"apellido"`
	Email      string    `json:"email" db:"email"`
	Password   string    `json:"password,omitempty" db:"password"`
	Rol        string    `json:"rol" db:"rol" validate:"oneof=admin medico secretaria"`
	MFAEnabled bool      `json:"mfa_enabled" db:"mfa_enabled"`
	MFASecret  string    `json:"-" db:"mfa_secret"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// UsuarioResponse representa la respuesta sin datos sensibles
type UsuarioResponse struct {
	ID         int       `json:"id_usuario"`
	Nombre     string    `json:"nombre"`
	Apellido   string    `json:"apellido"`
	Email      string    `json:"email"`
	Rol        string    `json:"rol"`
	MFAEnabled bool      `json:"mfa_enabled"`
	CreatedAt  time.Time `json:"created_at"`
}

// LoginRequest representa la solicitud de login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	MFACode  string `json:"mfa_code,omitempty"` // requerido solo si el usuario tiene MFA activo
}

// RefreshToken representa un token de actualización persistido
type RefreshToken struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	IsRevoked bool      `json:"is_revoked" db:"is_revoked"`
}

// LoginResponse representa la respuesta del login con tokens
type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresIn    int             `json:"expires_in"` // segundos
	Usuario      UsuarioResponse `json:"usuario"`
}

// RefreshRequest para solicitar nuevo token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// MFASetupRequest solicita la activación de MFA
type MFASetupRequest struct {
	Password string `json:"password" validate:"required"`
}

// MFASetupResponse devuelve el secreto y la URL para el código QR
type MFASetupResponse struct {
	Secret    string `json:"secret"`
	QRCodeURL string `json:"qr_code_url"`
}

// MFAVerifyRequest verifica un código TOTP
type MFAVerifyRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}
