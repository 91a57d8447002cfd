package mockstore

import (
	"log"
	"net"
	"time"

	"etalase/internal/models"
	"etalase/internal/repositories"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// Server is an embedded stand-in for the external record store. It exposes
// the same json-server style API the storefront client consumes, backed by
// the in-memory repositories, for development and integration tests.
type Server struct {
	app      *fiber.App
	users    *repositories.MemoryUserRepository
	products *repositories.MemoryProductRepository
}

// New creates a Server over the given repositories.
func New(users *repositories.MemoryUserRepository, products *repositories.MemoryProductRepository) *Server {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(logger.New())

	s := &Server{
		app:      app,
		users:    users,
		products: products,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	s.app.Get("/users", s.handleQueryUsers)
	s.app.Get("/users/:id", s.handleGetUser)
	s.app.Post("/users", s.handleCreateUser)
	s.app.Put("/users/:id", s.handleReplaceUser)

	s.app.Get("/products", s.handleGetProducts)
	s.app.Get("/products/:id", s.handleGetProduct)
}

// handleQueryUsers serves GET /users, optionally filtered by exact email.
// An email query answers with a sequence of zero or one records.
func (s *Server) handleQueryUsers(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		users, err := s.users.GetAll()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not list users",
			})
		}
		return c.JSON(users)
	}

	user, err := s.users.FindByEmail(email)
	if err != nil {
		return c.JSON([]models.User{})
	}
	return c.JSON([]models.User{*user})
}

func (s *Server) handleGetUser(c *fiber.Ctx) error {
	user, err := s.users.GetByID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "User not found",
		})
	}
	return c.JSON(user)
}

func (s *Server) handleCreateUser(c *fiber.Ctx) error {
	var user models.User
	if err := c.BodyParser(&user); err != nil {
		log.Printf("Error parsing create user body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	created, err := s.users.Create(&user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create user",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (s *Server) handleReplaceUser(c *fiber.Ctx) error {
	var user models.User
	if err := c.BodyParser(&user); err != nil {
		log.Printf("Error parsing replace user body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	user.ID = c.Params("id")
	updated, err := s.users.Replace(&user)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "User not found",
		})
	}
	return c.JSON(updated)
}

func (s *Server) handleGetProducts(c *fiber.Ctx) error {
	products, err := s.products.GetAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not list products",
		})
	}
	return c.JSON(products)
}

func (s *Server) handleGetProduct(c *fiber.Ctx) error {
	product, err := s.products.GetByID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Product not found",
		})
	}
	return c.JSON(product)
}

// App exposes the underlying fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts serving on the given address, blocking until shutdown.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Listener serves on an existing listener; tests use this to bind port 0.
func (s *Server) Listener(ln net.Listener) error {
	return s.app.Listener(ln)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
