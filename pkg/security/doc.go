// Package security provides the credential primitives used by unkani.
//
// # Passwords
//
// Passwords are stored as salted bcrypt hashes:
//
//	hash, err := security.HashPassword("s3cret")
//	ok := security.CheckPassword(hash, "s3cret")
//
// # Account flow tokens
//
// Confirmation, password reset and email change links carry HS256 JWTs
// scoped to a purpose and bound to a user id:
//
//	signer, _ := security.NewSigner(cfg.SecretKey)
//	token, _ := signer.Generate(security.PurposeConfirm, user.ID, time.Hour)
//	claims, ok := signer.VerifyFor(security.PurposeConfirm, token, user.ID)
//
// # API tokens
//
// Bearer tokens are random hex strings. Only their SHA256 hash is stored.
package security
