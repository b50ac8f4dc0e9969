// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds everything the serve command needs.
type Config struct {
	// Port the HTTP server listens on.
	Port int

	// LogMode selects the logger encoder ("development" or "production").
	LogMode string

	// AWSRegion for the DynamoDB client.
	AWSRegion string

	// DynamoEndpoint overrides the DynamoDB endpoint (local development).
	DynamoEndpoint string

	// VesselTable, CargoTable and CounterTable name the backing tables.
	VesselTable  string
	CargoTable   string
	CounterTable string

	// JWTSecret is the HMAC key the identity middleware verifies with.
	JWTSecret string

	// PageSize is the listing page size.
	PageSize int
}

// Load reads configuration from the environment, applying defaults.
func Load() Config {
	return Config{
		Port:           envInt("PORT", 8080),
		LogMode:        envString("LOG_MODE", "development"),
		AWSRegion:      envString("AWS_REGION", "us-west-2"),
		DynamoEndpoint: envString("DYNAMODB_ENDPOINT", ""),
		VesselTable:    envString("VESSEL_TABLE", "vessels"),
		CargoTable:     envString("CARGO_TABLE", "cargo_items"),
		CounterTable:   envString("COUNTER_TABLE", "stevedore_counters"),
		JWTSecret:      envString("JWT_SECRET", "development-secret"),
		PageSize:       envInt("PAGE_SIZE", 5),
	}
}

func envString(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func envInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
