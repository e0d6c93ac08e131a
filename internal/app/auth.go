package app

import (
	"pokeproxy/internal/auth"
)

// initializeAuth guards /stats only when STATS_JWT_SECRET is set
func (app *App) initializeAuth() error {
	if app.Config.StatsJWTSecret == "" {
		return nil
	}

	authInstance, err := auth.New(app.Config.StatsJWTSecret, app.Logger)
	if err != nil {
		return err
	}
	app.Auth = authInstance
	app.Logger.Info("Stats endpoint requires a bearer token")
	return nil
}
