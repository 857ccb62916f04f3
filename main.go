package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/ncastro/clinica-backend/consultas"
	"github.com/ncastro/clinica-backend/database"
	"github.com/ncastro/clinica-backend/handlers"
	"github.com/ncastro/clinica-backend/routes"
)

func main() {
	// Cargar variables de entorno
	if err := godotenv.Load(); err != nil {
		log.Println("Advertencia: No se pudo cargar el archivo .env")
	}

	// Conectar a la base de datos
	database.ConnectDB()
	defer database.CloseDB()
	log.Println("Conexión a la base de datos establecida")

	// Aplicar migraciones pendientes
	database.RunMigrations()

	// Armar el servicio de consultas sobre los repositorios de Postgres
	pool := database.GetDB()
	servicio := consultas.NewServicio(
		consultas.NewPostgresPacienteRepository(pool),
		consultas.NewPostgresObraSocialRepository(pool),
		consultas.NewPostgresCoseguroRepository(pool),
		consultas.NewPostgresConsultaRepository(pool),
	)
	handlers.InitConsultas(servicio)

	// Crear instancia de Fiber con configuración
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
		AppName: "Clinica Management API v1.0.0",
	})

	// Configurar rutas
	routes.SetupRoutes(app)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).JSON(fiber.Map{
			"error":  "Ruta no encontrada",
			"path":   c.Path(),
			"method": c.Method(),
		})
	})

	// Obtener puerto del entorno o usar 3000 por defecto
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("Servidor iniciado en puerto %s", port)
	log.Fatal(app.Listen(":" + port))
}
