package audit

import "fmt"

// FetchEvent records a read of a FHIR resource
type FetchEvent struct {
	User         string
	ClientIP     string
	ResourceType string
	ResourceID   string
	Success      bool
	ErrorMessage string
}

func (e FetchEvent) MessageID() string {
	return "fetch"
}

func (e FetchEvent) resource() string {
	if e.ResourceID == "" {
		return e.ResourceType
	}
	return e.ResourceType + "/" + e.ResourceID
}

func (e FetchEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s fetched %s", e.User, e.resource())
	}
	msg := fmt.Sprintf("%s tried to fetch %s", e.User, e.resource())
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e FetchEvent) Severity() Severity {
	return severity(e.Success)
}

func (e FetchEvent) Facility() int {
	return FacilityAuthPriv
}

func (e FetchEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.User,
		},
		SDIDSubject: {
			"resource": e.resource(),
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "fetch",
			"result":    result(e.Success),
		},
	}
}

// RateLimitEvent records a request rejected by the rate limiter
type RateLimitEvent struct {
	Key      string
	ClientIP string
	Route    string
	Limit    int
}

func (e RateLimitEvent) MessageID() string {
	return "rate-limit"
}

func (e RateLimitEvent) Message() string {
	return fmt.Sprintf("%s exceeded %d requests on %s", e.Key, e.Limit, e.Route)
}

func (e RateLimitEvent) Severity() Severity {
	return SeverityNotice
}

func (e RateLimitEvent) Facility() int {
	return FacilityAuth
}

func (e RateLimitEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDClient: {
			"ip":  e.ClientIP,
			"key": e.Key,
		},
		SDIDSubject: {
			"route": e.Route,
		},
	}
}
