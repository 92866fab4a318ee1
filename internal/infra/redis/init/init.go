package infra_redis_init

import (
	"log"
	"net"
	"time"

	"github.com/go-redis/redis"
	"github.com/humanbelnik/movienight/internal/config"
)

const (
	pingAttempts = 5
	pingBackoff  = time.Second
)

// MustEstablishConn dials redis and waits for it to answer, so the service can
// start alongside its cache container.
func MustEstablishConn(cfg config.RedisCache) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:        net.JoinHostPort(cfg.Host, cfg.Port),
		Password:    cfg.Password,
		DialTimeout: 5 * time.Second,
	})

	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		if err = client.Ping().Err(); err == nil {
			return client
		}
		log.Printf("[redis] ping %d/%d failed: %v", attempt, pingAttempts, err)
		time.Sleep(pingBackoff * time.Duration(attempt))
	}

	log.Fatalf("[redis] unreachable at %s: %v", net.JoinHostPort(cfg.Host, cfg.Port), err)
	return nil
}
