package main

import (
	"log"

	"github.com/MrSnakeDoc/linkbox/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ linkbox failed to start: %v", err)
	}
}
