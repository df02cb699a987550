package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cucumber/godog"

	"github.com/unkani/unkani/pkg/account"
	"github.com/unkani/unkani/pkg/model"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte
	token        string
	currentUser  *model.User
	lastETag     string
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.tc.Reset()
	})

	// Background steps
	sc.Step(`^the roles and app groups are seeded$`, s.theRolesAndAppGroupsAreSeeded)
	sc.Step(`^a user "([^"]*)" exists with password "([^"]*)"$`, s.aUserExistsWithPassword)
	sc.Step(`^a ValueSet "([^"]*)" exists with (\d+) concepts$`, s.aValueSetExistsWithConcepts)

	// Request steps
	sc.Step(`^I request a token as "([^"]*)" with password "([^"]*)"$`, s.iRequestATokenAs)
	sc.Step(`^I am authenticated as "([^"]*)" with password "([^"]*)"$`, s.iAmAuthenticatedAs)
	sc.Step(`^I GET "([^"]*)"$`, s.iGET)
	sc.Step(`^I GET "([^"]*)" (\d+) times$`, s.iGETTimes)
	sc.Step(`^I GET "([^"]*)" with the last ETag$`, s.iGETWithTheLastETag)
	sc.Step(`^I POST to "([^"]*)" with:$`, s.iPOSTWith)
	sc.Step(`^I confirm my account with a token for "([^"]*)"$`, s.iConfirmMyAccountWithATokenFor)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, s.theResponseHeaderShouldBe)
	sc.Step(`^the response JSON "([^"]*)" should be "([^"]*)"$`, s.theResponseJSONShouldBe)

	// Database steps
	sc.Step(`^user "([^"]*)" should have role "([^"]*)" and app group "([^"]*)"$`, s.userShouldHaveRoleAndAppGroup)
	sc.Step(`^user "([^"]*)" should be confirmed$`, s.userShouldBeConfirmed)
	sc.Step(`^user "([^"]*)" should not be confirmed$`, s.userShouldNotBeConfirmed)
}

// Background steps

func (s *StepsContext) theRolesAndAppGroupsAreSeeded() error {
	ctx := context.Background()
	if err := s.tc.Accounts.InitializeRoles(ctx); err != nil {
		return err
	}
	return s.tc.Accounts.InitializeAppGroups(ctx)
}

func (s *StepsContext) aUserExistsWithPassword(username, password string) error {
	_, err := s.tc.Accounts.CreateUser(context.Background(), account.NewUser{
		Username: username,
		Password: password,
		Email:    username + "@example.com",
	})
	return err
}

func (s *StepsContext) aValueSetExistsWithConcepts(resourceID string, concepts int) error {
	vs := &model.ValueSet{
		ResourceID: resourceID,
		URL:        "http://hl7.org/fhir/ValueSet/" + resourceID,
		Status:     "active",
	}
	for i := 0; i < concepts; i++ {
		vs.Concepts = append(vs.Concepts, model.ValueSetConcept{
			System:   "http://example.org/" + resourceID,
			Code:     fmt.Sprintf("code-%d", i),
			Display:  fmt.Sprintf("Code %d", i),
			Position: i,
		})
	}
	return s.tc.Stores.ValueSets.Upsert(context.Background(), vs)
}

// Request steps

func (s *StepsContext) do(req *http.Request) error {
	if s.token != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	var err error
	s.response, err = s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}

	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	if err != nil {
		return err
	}

	if etag := s.response.Header.Get("ETag"); etag != "" {
		s.lastETag = etag
	}
	return nil
}

func (s *StepsContext) iRequestATokenAs(username, password string) error {
	req, err := http.NewRequest("POST", s.tc.ServerURL+"/api/v1/tokens", nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(username, password)
	if err := s.do(req); err != nil {
		return err
	}

	if s.response.StatusCode == http.StatusOK {
		var body struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(s.responseBody, &body); err != nil {
			return fmt.Errorf("failed to parse token response: %w", err)
		}
		s.token = body.Token
	}
	return nil
}

func (s *StepsContext) iAmAuthenticatedAs(username, password string) error {
	if err := s.iRequestATokenAs(username, password); err != nil {
		return err
	}
	if s.token == "" {
		return fmt.Errorf("authentication failed with status %d: %s", s.response.StatusCode, s.responseBody)
	}

	u, err := s.tc.Stores.Users.FindByLogin(context.Background(), username)
	if err != nil {
		return err
	}
	s.currentUser = u
	return nil
}

func (s *StepsContext) iGET(path string) error {
	req, err := http.NewRequest("GET", s.tc.ServerURL+path, nil)
	if err != nil {
		return err
	}
	return s.do(req)
}

func (s *StepsContext) iGETTimes(path string, times int) error {
	for i := 0; i < times; i++ {
		if err := s.iGET(path); err != nil {
			return err
		}
	}
	return nil
}

func (s *StepsContext) iGETWithTheLastETag(path string) error {
	if s.lastETag == "" {
		return fmt.Errorf("no ETag has been received")
	}
	req, err := http.NewRequest("GET", s.tc.ServerURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("If-None-Match", s.lastETag)
	return s.do(req)
}

func (s *StepsContext) iPOSTWith(path string, body *godog.DocString) error {
	req, err := http.NewRequest("POST", s.tc.ServerURL+path, bytes.NewBufferString(body.Content))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func (s *StepsContext) iConfirmMyAccountWithATokenFor(username string) error {
	u, err := s.tc.Stores.Users.FindByLogin(context.Background(), username)
	if err != nil {
		return err
	}
	token, err := u.GenerateConfirmationToken(s.tc.Signer, 0)
	if err != nil {
		return err
	}
	return s.iGET("/api/v1/auth/confirm/" + token)
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(expectedStatus int) error {
	if s.response.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d: %s", expectedStatus, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theResponseHeaderShouldBe(name, expected string) error {
	if actual := s.response.Header.Get(name); actual != expected {
		return fmt.Errorf("expected header %s %q, got %q", name, expected, actual)
	}
	return nil
}

func (s *StepsContext) theResponseJSONShouldBe(key, expected string) error {
	var body map[string]interface{}
	if err := json.Unmarshal(s.responseBody, &body); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	var value interface{} = body
	for _, part := range strings.Split(key, ".") {
		m, ok := value.(map[string]interface{})
		if !ok {
			return fmt.Errorf("%s is not an object in %s", part, s.responseBody)
		}
		value = m[part]
	}

	if actual := fmt.Sprint(value); actual != expected {
		return fmt.Errorf("expected %s to be %q, got %q", key, expected, actual)
	}
	return nil
}

// Database steps

func (s *StepsContext) userShouldHaveRoleAndAppGroup(username, role, appGroup string) error {
	u, err := s.tc.Stores.Users.FindByLogin(context.Background(), username)
	if err != nil {
		return err
	}
	if u.Role == nil || u.Role.Name != role {
		return fmt.Errorf("expected role %q, got %+v", role, u.Role)
	}
	if names := u.AppGroupNames(); len(names) != 1 || names[0] != appGroup {
		return fmt.Errorf("expected app group %q, got %v", appGroup, names)
	}
	return nil
}

func (s *StepsContext) userConfirmed(username string) (bool, error) {
	u, err := s.tc.Stores.Users.FindByLogin(context.Background(), username)
	if err != nil {
		return false, err
	}
	return u.Confirmed, nil
}

func (s *StepsContext) userShouldBeConfirmed(username string) error {
	confirmed, err := s.userConfirmed(username)
	if err != nil {
		return err
	}
	if !confirmed {
		return fmt.Errorf("user %s is not confirmed", username)
	}
	return nil
}

func (s *StepsContext) userShouldNotBeConfirmed(username string) error {
	confirmed, err := s.userConfirmed(username)
	if err != nil {
		return err
	}
	if confirmed {
		return fmt.Errorf("user %s is confirmed", username)
	}
	return nil
}
