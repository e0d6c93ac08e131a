package app

import (
	"pokeproxy/internal/common/logging"
	"pokeproxy/internal/redis"
)

func (app *App) initializeRedis() error {
	if !app.Config.UsesRedis() {
		return nil
	}

	redisClient, err := redis.NewClient(app.Config.Redis())
	if err != nil {
		return err
	}

	app.RedisClient = redisClient
	app.Logger.Info("Redis: Connected", logging.String("address", app.Config.RedisAddress))
	return nil
}
