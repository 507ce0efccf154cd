package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()

	app := Setup()
	app.Run(os.Getenv("ROOM"))
}
