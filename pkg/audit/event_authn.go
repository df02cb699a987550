package audit

import "fmt"

// AuthenticateEvent records a bearer token or password authentication attempt
type AuthenticateEvent struct {
	User         string
	ClientIP     string
	Method       string
	Success      bool
	ErrorMessage string
}

func (e AuthenticateEvent) MessageID() string {
	return "authn"
}

func (e AuthenticateEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s successfully authenticated with %s", e.User, e.Method)
	}
	msg := fmt.Sprintf("%s failed to authenticate with %s", e.User, e.Method)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e AuthenticateEvent) Severity() Severity {
	return severity(e.Success)
}

func (e AuthenticateEvent) Facility() int {
	return FacilityAuthPriv
}

func (e AuthenticateEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"method": e.Method,
			"user":   e.User,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "authenticate",
			"result":    result(e.Success),
		},
	}
}

// TokenEvent records issuing or revoking an API token
type TokenEvent struct {
	User      string
	ClientIP  string
	Operation string
	Success   bool
}

func (e TokenEvent) MessageID() string {
	return "token"
}

func (e TokenEvent) Message() string {
	verb := "issued"
	if e.Operation == "revoke" {
		verb = "revoked"
	}
	if e.Success {
		return fmt.Sprintf("%s %s an API token", e.User, verb)
	}
	return fmt.Sprintf("%s failed to %s an API token", e.User, e.Operation)
}

func (e TokenEvent) Severity() Severity {
	return severity(e.Success)
}

func (e TokenEvent) Facility() int {
	return FacilityAuthPriv
}

func (e TokenEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.User,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": e.Operation,
			"result":    result(e.Success),
		},
	}
}
