package endpoints

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/unkani/unkani/pkg/account"
	"github.com/unkani/unkani/pkg/audit"
	"github.com/unkani/unkani/pkg/security"
	"github.com/unkani/unkani/pkg/server"
	"github.com/unkani/unkani/pkg/server/middleware"
)

// MessageResponse is returned by account flow endpoints
type MessageResponse struct {
	Message string `json:"message"`
}

// ResetRequest is the body of POST /auth/reset
type ResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the body of POST /auth/reset/{token}
type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// ChangePasswordRequest is the body of POST /auth/change-password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	Password    string `json:"password" validate:"required,min=8"`
}

// ChangeEmailRequest is the body of POST /auth/change-email
type ChangeEmailRequest struct {
	Email    string `json:"email" validate:"required,max=128,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterAuthEndpoints registers confirmation, password and email flows
func RegisterAuthEndpoints(s *server.Server) {
	accounts := s.Accounts
	trusted := s.TrustedProxy
	authRouter := apiRouter(s).PathPrefix("/auth").Subrouter()

	// Anonymous password reset
	authRouter.HandleFunc("/reset", handleRequestReset(accounts, trusted)).Methods("POST")
	authRouter.HandleFunc("/reset/{token}", handleResetPassword(accounts, trusted)).Methods("POST")

	// Everything else acts on the token holder
	userRouter := authRouter.NewRoute().Subrouter()
	userRouter.Use(tokenAuth(s))
	userRouter.HandleFunc("/confirm", handleResendConfirmation(accounts)).Methods("POST")
	userRouter.HandleFunc("/confirm/{token}", handleConfirm(accounts, trusted)).Methods("GET")
	userRouter.HandleFunc("/change-password", handleChangePassword(accounts, trusted)).Methods("POST")
	userRouter.HandleFunc("/change-email", handleRequestEmailChange(accounts)).Methods("POST")
	userRouter.HandleFunc("/change-email/{token}", handleChangeEmail(accounts, trusted)).Methods("GET")
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := decodeJSON(w, r, v); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(v); err != nil {
		respondWithError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func logAccountEvent(r *http.Request, trusted middleware.TrustFunc, user, operation string, err error) {
	event := audit.AccountEvent{
		User:      user,
		ClientIP:  clientIP(r, trusted),
		Operation: operation,
		Success:   err == nil,
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	audit.Log(event)
}

func logPasswordEvent(r *http.Request, trusted middleware.TrustFunc, user, operation string, err error) {
	event := audit.PasswordEvent{
		User:      user,
		ClientIP:  clientIP(r, trusted),
		Operation: operation,
		Success:   err == nil,
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	audit.Log(event)
}

func handleConfirm(accounts *account.Service, trusted middleware.TrustFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := currentIdentity(w, r)
		if !ok {
			return
		}

		err := accounts.Confirm(r.Context(), id.User, mux.Vars(r)["token"])
		logAccountEvent(r, trusted, id.Username, audit.OperationConfirm, err)

		switch {
		case err == nil:
			respondWithJSON(w, http.StatusOK, MessageResponse{Message: "You have confirmed your account."})
		case errors.Is(err, account.ErrInvalidToken):
			respondWithError(w, http.StatusBadRequest, "The confirmation link is invalid or has expired.")
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to confirm account")
		}
	}
}

func handleResendConfirmation(accounts *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := currentIdentity(w, r)
		if !ok {
			return
		}

		err := accounts.ResendConfirmation(r.Context(), id.User)
		switch {
		case err == nil:
			respondWithJSON(w, http.StatusAccepted, MessageResponse{Message: "A new confirmation email has been sent."})
		case errors.Is(err, account.ErrAlreadyConfirmed):
			respondWithError(w, http.StatusConflict, "Account already confirmed")
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to send confirmation email")
		}
	}
}

func handleRequestReset(accounts *account.Service, trusted middleware.TrustFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ResetRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		err := accounts.RequestPasswordReset(r.Context(), req.Email)
		logAccountEvent(r, trusted, req.Email, audit.OperationRequestReset, err)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to send reset email")
			return
		}

		respondWithJSON(w, http.StatusAccepted, MessageResponse{
			Message: "If the address belongs to an account, an email with instructions has been sent.",
		})
	}
}

func handleResetPassword(accounts *account.Service, trusted middleware.TrustFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ResetPasswordRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		u, err := accounts.ResetPassword(r.Context(), req.Email, mux.Vars(r)["token"], req.Password)
		user := req.Email
		if u != nil {
			user = u.Username
		}
		logPasswordEvent(r, trusted, user, audit.OperationResetPassword, err)

		switch {
		case err == nil:
			respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Your password has been updated."})
		case errors.Is(err, account.ErrInvalidToken), errors.Is(err, security.ErrEmptyPassword):
			respondWithError(w, http.StatusBadRequest, "The reset link is invalid or has expired.")
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to reset password")
		}
	}
}

func handleChangePassword(accounts *account.Service, trusted middleware.TrustFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := currentIdentity(w, r)
		if !ok {
			return
		}

		var req ChangePasswordRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		err := accounts.ChangePassword(r.Context(), id.User, req.OldPassword, req.Password)
		logPasswordEvent(r, trusted, id.Username, audit.OperationChangePassword, err)

		switch {
		case err == nil:
			respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Your password has been updated."})
		case errors.Is(err, account.ErrInvalidCredentials):
			respondWithError(w, http.StatusUnauthorized, "Invalid password")
		case errors.Is(err, account.ErrPasswordReuse):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to change password")
		}
	}
}

func handleRequestEmailChange(accounts *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := currentIdentity(w, r)
		if !ok {
			return
		}

		var req ChangeEmailRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		err := accounts.RequestEmailChange(r.Context(), id.User, req.Email, req.Password)
		switch {
		case err == nil:
			respondWithJSON(w, http.StatusAccepted, MessageResponse{
				Message: "An email with instructions to confirm your new email address has been sent.",
			})
		case errors.Is(err, account.ErrInvalidCredentials):
			respondWithError(w, http.StatusUnauthorized, "Invalid password")
		case errors.Is(err, account.ErrEmailInUse):
			respondWithError(w, http.StatusConflict, "Email already registered")
		case errors.Is(err, account.ErrInvalidUser):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to send confirmation email")
		}
	}
}

func handleChangeEmail(accounts *account.Service, trusted middleware.TrustFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := currentIdentity(w, r)
		if !ok {
			return
		}

		err := accounts.ChangeEmail(r.Context(), id.User, mux.Vars(r)["token"])
		logAccountEvent(r, trusted, id.Username, audit.OperationChangeEmail, err)

		switch {
		case err == nil:
			respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Your email address has been updated."})
		case errors.Is(err, account.ErrInvalidToken):
			respondWithError(w, http.StatusBadRequest, "The confirmation link is invalid or has expired.")
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to change email address")
		}
	}
}
