package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Mekimak/efoyta-sub000/config"
	"github.com/Mekimak/efoyta-sub000/routes"
	"github.com/Mekimak/efoyta-sub000/store"
	"github.com/Mekimak/efoyta-sub000/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	config.ConnectDB()
	defer config.DisconnectDB()

	if err := config.EnsureIndexes(); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	utils.InitRedis()
	logger := utils.NewLogger()

	propertiesName := os.Getenv("MONGODB_COLLECTION_PROPERTIES")
	if propertiesName == "" {
		propertiesName = "properties"
	}
	savedName := os.Getenv("MONGODB_COLLECTION_SAVED")
	if savedName == "" {
		savedName = "saved_properties"
	}

	feed := store.NewRedisFeed(utils.RedisClient, logger)
	propertyStore := store.NewMongoStore(
		config.GetCollection(propertiesName),
		config.GetCollection(savedName),
		feed,
		logger,
	)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	routes.RegisterRoutes(e, propertyStore, feed, logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("Server starting on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
