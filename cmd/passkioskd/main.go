package main

import (
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

func main() {
	godotenv.Load()

	server, err := Setup()
	if err != nil {
		log.Fatalf("kiosk start failed %v", err)
		return
	}

	server.Run()
}
