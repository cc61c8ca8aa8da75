/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Schichtplaner schedule API server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Optionally seed demo data
  4. Create API handler and router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: schichtplan.db)
           Use ":memory:" for in-memory database
  -seed    Insert a small demo dataset on startup

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/schichtplan.db"

  # Run in-memory with demo data
  ./server -db=":memory:" -seed

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mschabhuettl/openschichtplaner5-api/api"
	"github.com/mschabhuettl/openschichtplaner5-api/schedule"
	"github.com/mschabhuettl/openschichtplaner5-api/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "schichtplan.db", "SQLite database path")
	seed := flag.Bool("seed", false, "insert demo data on startup")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	if *seed {
		if err := seedDemo(context.Background(), store); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
		log.Println("Demo data seeded")
	}

	// Create router
	router := api.NewRouter(api.NewHandler(store))

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// seedDemo inserts a small ward roster: two shifts, three employees, one
// vacation week and matching entitlements for the current year.
func seedDemo(ctx context.Context, store *sqlite.Store) error {
	year := time.Now().Year()
	two := 2

	shifts := []schedule.Shift{
		{ID: "early", Code: "F", Name: "Frühdienst",
			Starts: schedule.TimeOfDay{Hour: 6}, Ends: schedule.TimeOfDay{Hour: 14},
			RequiredStaffing: &two},
		{ID: "late", Code: "S", Name: "Spätdienst",
			Starts: schedule.TimeOfDay{Hour: 14}, Ends: schedule.TimeOfDay{Hour: 22}},
	}
	employees := []schedule.Employee{
		{ID: "e1", Name: "Huber", FirstName: "Anna", GroupID: "ward-a", Active: true},
		{ID: "e2", Name: "Maier", FirstName: "Jonas", GroupID: "ward-a", Active: true},
		{ID: "e3", Name: "Schmidt", FirstName: "Lena", GroupID: "ward-a", Active: true},
	}

	for _, s := range shifts {
		if err := store.PutShift(ctx, s); err != nil {
			return err
		}
	}
	for _, e := range employees {
		if err := store.PutEmployee(ctx, e); err != nil {
			return err
		}
		if err := store.PutEntitlement(ctx, schedule.LeaveEntitlement{
			EmployeeID: e.ID,
			Year:       year,
			Days:       decimal.NewFromInt(30),
		}); err != nil {
			return err
		}
	}
	if err := store.PutGroup(ctx, schedule.Group{
		ID: "ward-a", Name: "Station A",
		Members: []schedule.EmployeeID{"e1", "e2", "e3"},
	}); err != nil {
		return err
	}
	if err := store.PutWorkplace(ctx, schedule.Workplace{ID: "w1", Name: "Station A"}); err != nil {
		return err
	}
	if err := store.PutLeaveType(ctx, schedule.LeaveType{
		ID: "vacation", Name: "Urlaub", CountsAgainstEntitlement: true,
	}); err != nil {
		return err
	}

	// One assigned week plus a vacation week for e3.
	monday := mondayOf(time.Now())
	for i := 0; i < 5; i++ {
		day := schedule.DateOf(monday.AddDate(0, 0, i))
		for _, id := range []schedule.EmployeeID{"e1", "e2"} {
			if err := store.PutAssignment(ctx, schedule.Assignment{
				EmployeeID: id, ShiftID: "early", WorkplaceID: "w1", Date: day,
			}); err != nil {
				return err
			}
		}
		if err := store.PutAbsence(ctx, schedule.Absence{
			EmployeeID: "e3", LeaveTypeID: "vacation", Date: day,
		}); err != nil {
			return err
		}
	}
	return nil
}

func mondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}
