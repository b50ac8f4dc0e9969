package store

// Config holds configuration for the Store.
type Config struct {
	// Tables maps an entity kind to the DynamoDB table holding it.
	// Default: {"vessel": "vessels", "cargo_item": "cargo_items"}
	Tables map[string]string

	// CounterTable is the table holding per-kind id counters.
	// Default: "stevedore_counters"
	CounterTable string
}

// DefaultConfig returns the standard table layout.
func DefaultConfig() Config {
	return Config{
		Tables: map[string]string{
			"vessel":     "vessels",
			"cargo_item": "cargo_items",
		},
		CounterTable: "stevedore_counters",
	}
}

// validate ensures config values are usable.
func (c *Config) validate() {
	if c.Tables == nil {
		c.Tables = DefaultConfig().Tables
	}
	if c.CounterTable == "" {
		c.CounterTable = "stevedore_counters"
	}
}
