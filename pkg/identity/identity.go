package identity

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/unkani/unkani/pkg/model"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Authentication methods
const (
	MethodToken    = "token"
	MethodPassword = "password"
)

// Identity represents the authenticated user of a request.
type Identity struct {
	UserID      uint
	Username    string
	Role        string
	Permissions model.Permission
	Method      string
	ExpiresAt   time.Time

	// Request context
	RemoteIP  net.IP
	RequestID string

	// The loaded user record
	User *model.User
}

// FromUser creates an Identity for an authenticated user.
func FromUser(u *model.User, method string) *Identity {
	id := &Identity{
		UserID:   u.ID,
		Username: u.Username,
		Method:   method,
		User:     u,
	}
	if u.Role != nil {
		id.Role = u.Role.Name
		id.Permissions = u.Role.Permissions
	}
	if method == MethodToken && u.TokenExpiration != nil {
		id.ExpiresAt = *u.TokenExpiration
	}
	return id
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// WithRequestID sets the request id.
func (i *Identity) WithRequestID(requestID string) *Identity {
	i.RequestID = requestID
	return i
}

// Can reports whether the identity's role grants perm.
func (i *Identity) Can(perm model.Permission) bool {
	return i.Permissions&perm == perm
}

// IsAdministrator reports whether the identity holds the administrator permission.
func (i *Identity) IsAdministrator() bool {
	return i.Can(model.PermissionAdministrator)
}

// Key returns the value used to key per-user state such as rate limits.
func (i *Identity) Key() string {
	return "user:" + strconv.FormatUint(uint64(i.UserID), 10)
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}
