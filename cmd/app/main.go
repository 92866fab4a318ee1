package main

import (
	"github.com/humanbelnik/movienight/internal/app"
	"github.com/humanbelnik/movienight/internal/config"
)

// @title movienight API
// @version 1.0
// @description Household movie nights: preferences, suggestion rounds, votes, picks and ratings.
// @BasePath /api/v1
// @securityDefinitions.apikey UserToken
// @in header
// @name X-user-token
func main() {
	app.Go(config.Load())
}
