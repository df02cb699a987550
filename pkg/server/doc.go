// Package server provides the HTTP server for the unkani API.
//
// It uses gorilla/mux for routing. Every route passes through the metrics
// and request logging middleware; the whole router is wrapped with the
// gorilla/handlers access log, CORS and panic recovery.
//
// # Server Setup
//
//	stores := server.GormStores(db, cfg)
//	accounts := account.NewService(stores.Users, stores.Roles, stores.AppGroups, signer, mailer, opts)
//	srv := server.NewServer(cfg, stores, accounts, limiter, logger)
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Endpoints
//
// API endpoints are registered via the endpoints subpackage under /api/v1:
//
//   - /fhir/ValueSet and /fhir/ValueSet/{resource_id} - FHIR ValueSets
//   - /tokens - API token issue and revoke
//   - /users and /users/{userid} - registration and user lookup
//   - /auth/... - confirmation, password reset and email change
//   - /whoami - identity of the token holder
//
// Status, health and /metrics are served at the root.
package server
