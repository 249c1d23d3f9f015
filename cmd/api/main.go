package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/itfreelance/api/internal/config"
	"github.com/itfreelance/api/internal/db"
	"github.com/itfreelance/api/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal(err)
	}

	app := server.New(gdb, cfg)
	log.Fatal(app.Listen(":" + cfg.AppPort))
}
