package endpoints

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/unkani/unkani/pkg/account"
	"github.com/unkani/unkani/pkg/audit"
	"github.com/unkani/unkani/pkg/model"
	"github.com/unkani/unkani/pkg/server"
	"github.com/unkani/unkani/pkg/server/middleware"
	"github.com/unkani/unkani/pkg/server/store"
)

// UserResponse is the JSON representation of a user
type UserResponse struct {
	ID          uint         `json:"id"`
	URL         string       `json:"url"`
	Username    string       `json:"username"`
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	DOB         string       `json:"dob,omitempty"`
	Email       string       `json:"email,omitempty"`
	Phone       *PhoneJSON   `json:"phone,omitempty"`
	Address     *AddressJSON `json:"address,omitempty"`
	Confirmed   bool         `json:"confirmed"`
	Active      bool         `json:"active"`
	Role        string       `json:"role"`
	AppGroups   []string     `json:"app_groups"`
	MemberSince time.Time    `json:"member_since"`
}

// PhoneJSON is the primary phone number of a user
type PhoneJSON struct {
	Number string          `json:"number"`
	Type   model.PhoneType `json:"type"`
}

// AddressJSON is the primary address of a user
type AddressJSON struct {
	Address1   string `json:"address1"`
	Address2   string `json:"address2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func newUserResponse(u *model.User, baseURL string) UserResponse {
	resp := UserResponse{
		ID:          u.ID,
		URL:         u.URL(baseURL),
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Confirmed:   u.Confirmed,
		Active:      u.Active,
		AppGroups:   u.AppGroupNames(),
		MemberSince: u.MemberSince,
	}
	if u.DOB != nil {
		resp.DOB = u.DOB.Format("2006-01-02")
	}
	if u.Role != nil {
		resp.Role = u.Role.Name
	}
	if e := u.Email(); e != nil {
		resp.Email = e.Email
	}
	if p := u.PhoneNumber(); p != nil {
		resp.Phone = &PhoneJSON{Number: p.Number, Type: p.Type}
	}
	if a := u.Address(); a != nil {
		resp.Address = &AddressJSON{
			Address1:   a.Address1,
			Address2:   a.Address2,
			City:       a.City,
			State:      a.State,
			PostalCode: a.PostalCode,
			Country:    a.Country,
		}
	}
	return resp
}

// RegisterRequest is the body of POST /users
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,max=64"`
	Password  string `json:"password" validate:"required,min=8"`
	Email     string `json:"email" validate:"required,max=128,email"`
	FirstName string `json:"first_name" validate:"max=64"`
	LastName  string `json:"last_name" validate:"max=64"`
	Phone     string `json:"phone" validate:"max=32"`
	DOB       string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
}

// RegisterUsersEndpoints registers registration and user lookup
func RegisterUsersEndpoints(s *server.Server) {
	api := apiRouter(s)
	baseURL := s.Config.BaseURL

	api.Path("/users").Methods("POST").HandlerFunc(handleRegister(s.Accounts, baseURL, s.TrustedProxy))

	usersRouter := api.PathPrefix("/users").Subrouter()
	usersRouter.Use(tokenAuth(s), middleware.ETag)
	usersRouter.HandleFunc("/{userid:[0-9]+}", handleGetUser(s.Accounts, baseURL)).Methods("GET", "HEAD")
}

func handleRegister(accounts *account.Service, baseURL string, trusted middleware.TrustFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			respondWithError(w, http.StatusBadRequest, validationMessage(err))
			return
		}

		nu := account.NewUser{
			Username:  req.Username,
			Password:  req.Password,
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
		}
		if req.DOB != "" {
			dob, _ := time.Parse("2006-01-02", req.DOB)
			nu.DOB = &dob
		}

		u, err := accounts.Register(r.Context(), nu)
		event := audit.AccountEvent{
			User:      req.Username,
			ClientIP:  clientIP(r, trusted),
			Operation: audit.OperationRegister,
			Success:   err == nil,
		}
		if err != nil {
			event.ErrorMessage = err.Error()
		}
		audit.Log(event)

		switch {
		case err == nil:
		case errors.Is(err, account.ErrEmailInUse), errors.Is(err, store.ErrConflict):
			respondWithError(w, http.StatusConflict, "Username or email already registered")
			return
		case errors.Is(err, account.ErrInvalidUser):
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to register user")
			return
		}

		w.Header().Set("Location", u.URL(baseURL))
		respondWithJSON(w, http.StatusCreated, newUserResponse(u, baseURL))
	}
}

func handleGetUser(accounts *account.Service, baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := currentIdentity(w, r)
		if !ok {
			return
		}

		userID, err := strconv.ParseUint(mux.Vars(r)["userid"], 10, 32)
		if err != nil {
			respondWithError(w, http.StatusNotFound, "User not found")
			return
		}

		if uint(userID) != id.UserID && !id.Can(model.PermissionViewUsers) {
			respondWithError(w, http.StatusForbidden, "Forbidden")
			return
		}

		u, err := accounts.LoadUser(r.Context(), uint(userID))
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to load user")
			return
		}

		w.Header().Set("Location", u.URL(baseURL))
		respondWithJSON(w, http.StatusOK, newUserResponse(u, baseURL))
	}
}
