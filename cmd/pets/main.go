package main

import (
	"pawcare/internal/pets/handler"
	"pawcare/internal/pets/repository"
	"pawcare/internal/pets/service"
	"pawcare/internal/pets/validator"
	"pawcare/pkg/app"
	"pawcare/pkg/config"
)

const ServiceName = "pets"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Pets service")
	petService := service.NewPetService(
		repository.NewMongoPetRepository(cfg),
		validator.NewPetValidator(cfg.Log),
		cfg,
	)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewPetHandler(petService, cfg.Log))
	serverApp.Run()
}
