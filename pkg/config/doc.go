// Package config loads typed configuration from environment variables with
// github.com/caarlos0/env/v11, optionally seeded from dotenv files through
// github.com/joho/godotenv.
//
// Load caches one parsed value per struct type for the lifetime of the
// process. Parse is the uncached variant used by tests and tools that need
// explicit files, prefixes or overrides.
package config
