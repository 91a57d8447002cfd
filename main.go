package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/viper"

	"etalase/internal/checkout"
	"etalase/internal/localstore"
	"etalase/internal/mockstore"
	"etalase/internal/models"
	"etalase/internal/repositories"
	"etalase/internal/stores"
	"etalase/internal/tui"
	"etalase/pkg/notify"
)

func main() {
	// --- Configuration ---
	// Viper reads configuration from environment variables with defaults,
	// so the demo runs with zero setup against the embedded store.
	viper.SetDefault("STORE_URL", "http://127.0.0.1:5001")
	viper.SetDefault("STORE_PORT", ":5001")
	viper.SetDefault("EMBEDDED_STORE", true)
	viper.SetDefault("SESSION_FILE", defaultSessionFile())
	viper.SetDefault("SESSION_SECRET", "etalase-local-session")
	viper.AutomaticEnv()

	storeURL := viper.GetString("STORE_URL")
	storePort := viper.GetString("STORE_PORT")
	embedded := viper.GetBool("EMBEDDED_STORE")
	sessionFile := viper.GetString("SESSION_FILE")
	sessionSecret := viper.GetString("SESSION_SECRET")

	// --- Optional embedded record store ---
	// Without an external record store (json-server or equivalent), serve
	// the same API in-process with a seeded catalog.
	var server *mockstore.Server
	if embedded {
		userRepo := repositories.NewMemoryUserRepository()
		productRepo := repositories.NewMemoryProductRepository()
		seedProducts(productRepo)

		server = mockstore.New(userRepo, productRepo)
		go func() {
			if err := server.Listen(storePort); err != nil {
				log.Fatalf("Embedded record store failed to start: %v", err)
			}
		}()
		// Give the listener a moment before the client starts fetching.
		time.Sleep(100 * time.Millisecond)
	}

	// --- Record store client + stores ---
	users := repositories.NewHTTPUserRepository(storeURL)
	products := repositories.NewHTTPProductRepository(storeURL)

	bus := notify.NewBus()
	local := localstore.New(sessionFile, sessionSecret)

	session := stores.NewSessionStore(users, local, bus)
	cart := stores.NewCartStore(session, bus)
	wishlist := stores.NewWishlistStore(session, bus)
	catalog := stores.NewCatalogStore(products, bus)
	orders := checkout.NewProcessor(session, cart, bus)

	// Restore a persisted session and load the catalog before the first
	// frame; both are best-effort.
	session.Restore()
	catalog.Load()

	// --- Run the TUI ---
	app := tui.NewApp(session, cart, wishlist, catalog, orders, bus)
	program := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Fatalf("UI error: %v", err)
	}

	// --- Shutdown ---
	bus.Close()
	if server != nil {
		log.Println("Shutting down embedded record store...")
		if err := server.Shutdown(); err != nil {
			log.Printf("Error during record store shutdown: %v", err)
		}
	}
	log.Println("Goodbye")
}

// defaultSessionFile places the persisted session under the home directory.
func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".etalase-session"
	}
	return filepath.Join(home, ".etalase", "session")
}

// seedProducts populates the embedded store's catalog with demo data.
func seedProducts(repo *repositories.MemoryProductRepository) {
	now := time.Now()
	products := []models.Product{
		{Name: "Laptop", Description: "High performance laptop", Price: 1200.00, Images: []string{"https://example.com/img/laptop.jpg"}, Category: "electronics", Count: 10, CreatedAt: now.Add(-72 * time.Hour)},
		{Name: "Keyboard", Description: "Mechanical keyboard", Price: 75.00, Images: []string{"https://example.com/img/keyboard.jpg"}, Category: "electronics", Count: 25, CreatedAt: now.Add(-48 * time.Hour)},
		{Name: "Mouse", Description: "Ergonomic wireless mouse", Price: 25.00, Images: []string{"https://example.com/img/mouse.jpg"}, Category: "electronics", Count: 50, CreatedAt: now.Add(-24 * time.Hour)},
		{Name: "Desk Lamp", Description: "Warm LED desk lamp", Price: 35.00, Images: []string{"https://example.com/img/lamp.jpg"}, Category: "home", Count: 30, CreatedAt: now.Add(-12 * time.Hour)},
		{Name: "Notebook", Description: "Dotted A5 notebook", Price: 9.50, Images: []string{"https://example.com/img/notebook.jpg"}, Category: "stationery", Count: 100, CreatedAt: now},
	}

	for i := range products {
		if err := repo.Create(&products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Name, err)
		}
	}
}
