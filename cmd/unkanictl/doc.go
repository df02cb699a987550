// Command unkanictl runs and administers the unkani FHIR service.
//
// unkani serves FHIR ValueSets and user accounts over a JSON REST API
// backed by PostgreSQL. Redis holds rate limit counters and the outbound
// email queue.
//
// # Quick Start
//
//	# Create the schema and the built-in roles and app groups
//	unkanictl db migrate
//	unkanictl seed
//
//	# Load ValueSets and create a user
//	unkanictl valueset load administrative-gender.json
//	unkanictl user create --username admin --email admin@example.com --role Admin
//
//	# Start the server
//	unkanictl server
//
// # Environment Variables
//
//   - UNKANI_SECRET_KEY: key signing confirmation and reset links
//   - DATABASE_URL: PostgreSQL connection string
//   - REDIS_URL: Redis connection string
//   - UNKANI_RESEND_API_KEY: Resend API key; without it emails are only logged
//   - UNKANI_LOG_LEVEL: Log level (debug, info, warn, error)
//   - UNKANI_CONFIG_PATH: directory holding unkani.yml
//
// A .env file in the working directory is loaded before the environment is read.
package main
