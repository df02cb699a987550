package audit

import "fmt"

// PasswordEvent records a password change or reset
type PasswordEvent struct {
	User         string
	ClientIP     string
	Operation    string
	Success      bool
	ErrorMessage string
}

const (
	OperationChangePassword = "change-password"
	OperationResetPassword  = "reset-password"
)

func (e PasswordEvent) MessageID() string {
	return "password"
}

func (e PasswordEvent) Message() string {
	what := "changed their password"
	if e.Operation == OperationResetPassword {
		what = "reset their password"
	}
	if e.Success {
		return fmt.Sprintf("%s successfully %s", e.User, what)
	}
	msg := fmt.Sprintf("%s failed to %s", e.User, e.Operation)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e PasswordEvent) Severity() Severity {
	return severity(e.Success)
}

func (e PasswordEvent) Facility() int {
	return FacilityAuthPriv
}

func (e PasswordEvent) StructuredData() map[string]map[string]string {
	op := e.Operation
	if op == "" {
		op = OperationChangePassword
	}
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.User,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": op,
			"result":    result(e.Success),
		},
	}
}

// AccountEvent records registration, confirmation and email changes
type AccountEvent struct {
	User         string
	ClientIP     string
	Operation    string
	Success      bool
	ErrorMessage string
}

const (
	OperationRegister     = "register"
	OperationConfirm      = "confirm"
	OperationChangeEmail  = "change-email"
	OperationRequestReset = "request-reset"
)

func (e AccountEvent) MessageID() string {
	return "account"
}

func (e AccountEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s completed %s", e.User, e.Operation)
	}
	msg := fmt.Sprintf("%s failed %s", e.User, e.Operation)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e AccountEvent) Severity() Severity {
	return severity(e.Success)
}

func (e AccountEvent) Facility() int {
	return FacilityAuth
}

func (e AccountEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDSubject: {
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
