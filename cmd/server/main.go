// Package main is the entry point for the projectconverter API server
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/git-moss/ProjectConverter-sub000/pkg/api"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	defaultPort := 8080
	if v := os.Getenv("PC_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			defaultPort = p
		}
	}

	port := flag.Int("port", defaultPort, "Server port")
	flag.Parse()

	fmt.Printf("Starting projectconverter API server on port %d...\n", *port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", *port)

	if err := api.StartServer(*port); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
