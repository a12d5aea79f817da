package config

import (
	"os"
	"strconv"
)

type Config struct {
	AppPort       string
	DBDSN         string
	RedisAddr     string
	RedisPassword string
	JWTSecret     string
	JWTExpiresMin int

	// StoreNamespace keys the persisted {jobs, proposals} snapshot.
	StoreNamespace string
	// MirrorBackend selects where snapshots go: "redis" or "postgres".
	MirrorBackend string

	MaxJobPosts          int
	MaxProposals         int
	RateLimitWindowHours int

	// ChangeRequestRole restricts who may open a change request on a
	// milestone: "client", "freelancer" or "any".
	ChangeRequestRole string
}

func Load() Config {
	expires, _ := strconv.Atoi(get("JWT_EXPIRES_MIN", "10080"))
	maxJobs, _ := strconv.Atoi(get("MAX_JOB_POSTS", "5"))
	maxProposals, _ := strconv.Atoi(get("MAX_PROPOSALS", "10"))
	window, _ := strconv.Atoi(get("RATE_LIMIT_WINDOW_HOURS", "24"))

	return Config{
		AppPort:              get("APP_PORT", "8080"),
		DBDSN:                must("DB_DSN"),
		RedisAddr:            get("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        get("REDIS_PASSWORD", ""),
		JWTSecret:            must("JWT_SECRET"),
		JWTExpiresMin:        expires,
		StoreNamespace:       get("STORE_NAMESPACE", "jobs-storage"),
		MirrorBackend:        get("MIRROR_BACKEND", "redis"),
		MaxJobPosts:          maxJobs,
		MaxProposals:         maxProposals,
		RateLimitWindowHours: window,
		ChangeRequestRole:    get("CHANGE_REQUEST_ROLE", "client"),
	}
}

func get(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
