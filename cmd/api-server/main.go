package main

import (
	"github.com/HadiHz88/medical-records-api/internal/app"
)

func main() {
	// Initialize application
	application, err := app.Initialize("")
	if err != nil {
		panic(err)
	}

	// Start server (blocks until shutdown signal)
	app.StartServer(
		application.Config,
		application.Handlers,
		application.Services,
	)
}
