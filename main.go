package main

import (
	"log"

	_ "pokeproxy/docs"
	"pokeproxy/internal/app"
)

// @title Pokeproxy API
// @version 1.0
// @description Verifying forwarding proxy for signed Pokemon records.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description HS256 token signed with STATS_JWT_SECRET, as "Bearer <token>"
func main() {
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
