// Package identity carries the authenticated user through a request.
//
// The authentication middleware builds an Identity from the user record a
// bearer token or password resolved to, adds request context and stores it
// in the request context. Handlers retrieve it with Get.
//
//	id := identity.FromUser(user, identity.MethodToken).
//	    WithRemoteIP(clientIP).
//	    WithRequestID(requestID)
//	ctx = identity.Set(ctx, id)
//
//	id, ok := identity.Get(r.Context())
package identity
