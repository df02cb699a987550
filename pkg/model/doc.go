// Package model defines the database models for unkani.
//
// The models are GORM structs mapped onto the schema in db/migrations.
// Users carry convenience accessors derived from their relationships:
//
//   - Email: the primary, active EmailAddress
//   - PhoneNumber: the primary, active PhoneNumber
//   - Address: the primary, active Address
//
// # Tables
//
//   - roles, app_groups: account classification, each with exactly one default row
//   - users, user_app_groups: account holders
//   - email_addresses, phone_numbers, addresses: user contact details
//   - value_sets, value_set_concepts: FHIR ValueSet resources
//
// ValueSet.FHIR renders a stored value set as a FHIR JSON resource and
// ParseFHIRValueSet performs the reverse conversion.
package model
