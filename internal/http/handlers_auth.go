package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/voicedesk/console-go/internal/domain/auth"
	apperrors "github.com/voicedesk/console-go/internal/errors"
	"github.com/voicedesk/console-go/internal/ports"
	"github.com/voicedesk/console-go/internal/service"
)

// SessionManagerAPI is the slice of the session manager the auth
// handlers drive.
type SessionManagerAPI interface {
	Login(ctx context.Context, creds ports.Credentials) (*domainauth.Session, error)
	Register(ctx context.Context, reg ports.Registration) (*domainauth.Session, error)
	Logout(ctx context.Context)
	RefreshUser(ctx context.Context) error
	Current() *domainauth.User
	State() service.State
	Token() string
}

// AuthHandlers exposes the session lifecycle over HTTP.
type AuthHandlers struct {
	Sessions SessionManagerAPI
	Logger   *slog.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type sessionResponse struct {
	User        *domainauth.User        `json:"user"`
	Permissions []domainauth.Permission `json:"permissions"`
	ExpiresAt   *time.Time              `json:"expires_at,omitempty"`
}

// Login handles POST /auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "validation",
			Err:     apperrors.Validation("email and password are required"),
		})
		return
	}

	sess, err := h.Sessions.Login(r.Context(), ports.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		h.logger().InfoContext(r.Context(), "login rejected", "email", req.Email)
		writeAuthError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sessionPayload(sess))
}

// Register handles POST /auth/register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Username == "" || req.Password == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "validation",
			Err:     apperrors.Validation("email, username and password are required"),
		})
		return
	}

	sess, err := h.Sessions.Register(r.Context(), ports.Registration{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		h.logger().InfoContext(r.Context(), "registration rejected", "email", req.Email)
		writeAuthError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, sessionPayload(sess))
}

// Logout handles POST /auth/logout. Local state is always cleared and
// the response is always 204; remote teardown failures never surface.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// Refresh handles POST /auth/refresh: a forced profile re-fetch.
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.RefreshUser(r.Context()); err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: string(apperrors.CodeOf(err)),
			Err:     err,
		})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /auth/session, the console's "who am I" probe.
func (h *AuthHandlers) Session(w http.ResponseWriter, r *http.Request) {
	switch h.Sessions.State() {
	case service.StateRestoring:
		w.Header().Set("Retry-After", "1")
		WriteError(w, ErrorParams{
			Code:    http.StatusServiceUnavailable,
			ErrCode: "session_restoring",
			Err:     apperrors.SessionExpired("session restore in progress"),
		})
		return
	case service.StateUnauthenticated:
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     apperrors.SessionExpired("no active session"),
		})
		return
	}

	user := h.Sessions.Current()
	if user == nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     apperrors.SessionExpired("no active session"),
		})
		return
	}
	WriteJSON(w, http.StatusOK, sessionResponse{
		User:        user,
		Permissions: user.Role.Permissions(),
	})
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// writeAuthError maps a login/registration failure to a response. The
// backend's rejection message is the only one passed through verbatim.
func writeAuthError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	status := http.StatusUnauthorized
	if code != apperrors.ErrCodeAuthFailed {
		status = http.StatusBadGateway
	}
	WriteError(w, ErrorParams{
		Code:    status,
		ErrCode: string(code),
		Err:     userFacing(err),
	})
}

type plainError string

func (e plainError) Error() string { return string(e) }

func userFacing(err error) error {
	return plainError(apperrors.UserMessage(err))
}

func sessionPayload(sess *domainauth.Session) sessionResponse {
	u := sess.User
	resp := sessionResponse{
		User:        &u,
		Permissions: u.Role.Permissions(),
	}
	if !sess.ExpiresAt.IsZero() {
		exp := sess.ExpiresAt
		resp.ExpiresAt = &exp
	}
	return resp
}
