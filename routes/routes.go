package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/ncastro/clinica-backend/handlers"
	"github.com/ncastro/clinica-backend/middleware"
)

// SetupRoutes configura todas las rutas de la aplicación
func SetupRoutes(app *fiber.App) {
	// Middleware global
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.MetricsMiddleware())
	app.Use(middleware.LoggingMiddleware())

	// Ruta de salud del sistema
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Clinica Management API",
			"version": "1.0.0",
		})
	})

	app.Get("/metrics", middleware.MetricsHandler())

	// Grupo de API
	api := app.Group("/api/v1", middleware.DefaultRateLimiter())

	// === RUTAS PÚBLICAS (Sin autenticación) ===
	auth := api.Group("/auth", middleware.AuthRateLimiter())
	auth.Post("/register", handlers.RegistrarUsuario)
	auth.Post("/login", handlers.Login)
	auth.Post("/refresh", handlers.RefreshToken)
	auth.Post("/logout", middleware.JWTMiddleware(), handlers.Logout)

	// === RUTAS PROTEGIDAS (Requieren autenticación) ===
	protected := api.Group("/", middleware.JWTMiddleware())

	// --- RUTAS DE USUARIOS ---
	usuarios := protected.Group("/usuarios")
	usuarios.Get("/", middleware.RequireRole("admin"), handlers.ObtenerUsuarios)
	usuarios.Get("/perfil", handlers.ObtenerPerfil)
	usuarios.Get("/:id", handlers.ObtenerUsuarioPorID)
	usuarios.Put("/:id", handlers.ActualizarUsuario)
	usuarios.Delete("/:id", middleware.RequireRole("admin"), handlers.EliminarUsuario)

	// --- RUTAS MFA ---
	mfa := protected.Group("/mfa")
	mfa.Post("/setup", handlers.SetupMFA)
	mfa.Post("/verify", handlers.VerifyMFA)
	mfa.Post("/disable", handlers.DisableMFA)

	// --- RUTAS DE PACIENTES ---
	pacientes := protected.Group("/pacientes")
	pacientes.Post("/", handlers.CrearPaciente)
	pacientes.Get("/", handlers.ObtenerPacientes)
	pacientes.Get("/:id", handlers.ObtenerPacientePorID)
	pacientes.Put("/:id", handlers.ActualizarPaciente)
	pacientes.Delete("/:id", middleware.RequireRole("admin"), handlers.EliminarPaciente)

	// --- RUTAS DE CONSULTAS ---
	// El alta y el historial cuelgan del paciente; el resto opera por ID
	pacientes.Post("/:paciente_id/consultas", handlers.CrearConsulta)
	pacientes.Get("/:paciente_id/consultas", handlers.ObtenerHistorialPaciente)

	consultas := protected.Group("/consultas")
	consultas.Get("/:id", handlers.ObtenerConsultaPorID)
	consultas.Put("/:id", handlers.ActualizarConsulta)
	consultas.Delete("/:id", middleware.RequireRole("admin", "medico"), handlers.EliminarConsulta)

	// --- RUTAS DE OBRAS SOCIALES ---
	obrasSociales := protected.Group("/obras-sociales")
	obrasSociales.Post("/", middleware.RequireRole("admin"), handlers.CrearObraSocial)
	obrasSociales.Get("/", handlers.ObtenerObrasSociales)
	obrasSociales.Get("/:id", handlers.ObtenerObraSocialPorID)
	obrasSociales.Put("/:id", middleware.RequireRole("admin"), handlers.ActualizarObraSocial)
	obrasSociales.Delete("/:id", middleware.RequireRole("admin"), handlers.EliminarObraSocial)

	// --- RUTAS DE COSEGUROS ---
	coseguros := protected.Group("/coseguros")
	coseguros.Post("/", middleware.RequireRole("admin"), handlers.CrearCoseguro)
	coseguros.Get("/", handlers.ObtenerCoseguros)
	coseguros.Get("/:id", handlers.ObtenerCoseguroPorID)
	coseguros.Put("/:id", middleware.RequireRole("admin"), handlers.ActualizarCoseguro)
	coseguros.Delete("/:id", middleware.RequireRole("admin"), handlers.EliminarCoseguro)

	// --- RUTAS DE REPORTES ---
	reportes := protected.Group("/reportes", middleware.RequireRole("admin", "medico"))
	reportes.Get("/consultas", handlers.GenerarReporteConsultas)
	reportes.Get("/consultas-por-mes", handlers.ObtenerConsultasPorMes)
	reportes.Get("/consultas-por-obra-social", handlers.ObtenerConsultasPorObraSocial)
	reportes.Get("/consultas-por-clasificacion", handlers.ObtenerConsultasPorClasificacion)

	// --- RUTAS DE LOGS ---
	logs := protected.Group("/logs", middleware.RequireRole("admin"))
	logs.Get("/", handlers.ObtenerLogs)
	logs.Get("/estadisticas", handlers.ObtenerEstadisticasLogs)
	logs.Delete("/", handlers.LimpiarLogs)
}
