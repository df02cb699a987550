// Package config provides configuration management for unkani.
//
// Configuration is resolved in three layers, later layers winning:
//
//   - Built-in defaults
//   - The YAML file unkani.yml in UNKANI_CONFIG_PATH (default /etc/unkani)
//   - Environment variables
//
// Every attribute can be set with UNKANI_<NAME>, for example
// UNKANI_RATE_LIMIT_REQUESTS. A few attributes also accept conventional
// names: DATABASE_URL, REDIS_URL, PORT, SECRET_KEY and RESEND_API_KEY.
// A .env file can be loaded into the environment first with LoadEnvFile.
//
// The source of every attribute is tracked and reported by
// "unkanictl configuration show".
package config
