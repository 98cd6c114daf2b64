package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/services"
	"github.com/gorilla/mux"
)

const (
	msgResetInvalid  = "The request to reset your password was invalid. Please enter your email again to start over."
	msgSignupInvalid = "The request to complete the registration was invalid. Please enter your email again to start over."
	msgResetSent     = "If an account was linked to the provided email address, an email with reset instructions has been sent. Please check your inbox."
	msgSignupSent    = "Email sent for verification purposes. Please check your mailbox."
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type newPasswordRequest struct {
	Name           string `json:"name"`
	Password       string `json:"password"`
	PasswordRepeat string `json:"password_repeat"`
}

type manageRequest struct {
	CurrentPassword string `json:"current_password"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	NewPassword     string `json:"new_password"`
	PasswordRepeat  string `json:"password_repeat"`
}

type roleRequest struct {
	Role models.Role `json:"role"`
}

type roleView struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// localPath accepts only same-origin absolute paths, so the login return
// target cannot send the client elsewhere.
func localPath(next string) bool {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return false
	}
	u, err := url.Parse(next)
	return err == nil && u.Scheme == "" && u.Host == ""
}

// pathVars returns the route variables decoded. The router matches on the
// escaped path so an escaped "/" stays inside one segment; a malformed escape
// yields an empty value.
func pathVars(r *http.Request) map[string]string {
	raw := mux.Vars(r)
	vars := make(map[string]string, len(raw))
	for k, v := range raw {
		if dec, err := url.PathUnescape(v); err == nil {
			vars[k] = dec
		} else {
			vars[k] = ""
		}
	}
	return vars
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, user *models.User) bool {
	token, err := s.accounts.StartSession(r.Context(), user)
	if err != nil {
		s.fail(w, err)
		return false
	}
	s.setSessionCookie(w, token)
	return true
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, err)
		return
	}
	if !s.startSession(w, r, user) {
		return
	}
	if next := r.URL.Query().Get("next"); localPath(next) {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, user.View())
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		if err := s.accounts.EndSession(r.Context(), c.Value); err != nil {
			s.fail(w, err)
			return
		}
	}
	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, messageResponse{Message: "You have been logged out"})
}

func (s *Server) requestReset(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.accounts.RequestReset(r.Context(), req.Email); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, messageResponse{Message: msgResetSent})
}

func (s *Server) checkReset(w http.ResponseWriter, r *http.Request) {
	v := pathVars(r)
	user, err := s.accounts.CheckReset(r.Context(), v["uid"], v["expires"], v["mac"])
	if err != nil {
		s.failLink(w, err, msgResetInvalid)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"uid": user.ID, "expires": v["expires"]})
}

func (s *Server) completeReset(w http.ResponseWriter, r *http.Request) {
	v := pathVars(r)
	var req newPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := s.accounts.CompleteReset(r.Context(), v["uid"], v["expires"], v["mac"], req.Password, req.PasswordRepeat)
	if err != nil {
		s.failLink(w, err, msgResetInvalid)
		return
	}
	if !s.startSession(w, r, user) {
		return
	}
	writeJSON(w, http.StatusOK, user.View())
}

func (s *Server) requestSignup(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.accounts.RequestSignup(r.Context(), req.Email); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, messageResponse{Message: msgSignupSent})
}

func (s *Server) checkSignup(w http.ResponseWriter, r *http.Request) {
	v := pathVars(r)
	if err := s.accounts.CheckSignup(r.Context(), v["email"], v["expires"], v["mac"]); err != nil {
		s.failLink(w, err, msgSignupInvalid)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": v["email"], "expires": v["expires"]})
}

func (s *Server) completeSignup(w http.ResponseWriter, r *http.Request) {
	v := pathVars(r)
	var req newPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := s.accounts.CompleteSignup(r.Context(), v["email"], v["expires"], v["mac"], req.Name, req.Password, req.PasswordRepeat)
	if err != nil {
		s.failLink(w, err, msgSignupInvalid)
		return
	}
	if !s.startSession(w, r, user) {
		return
	}
	writeJSON(w, http.StatusCreated, user.View())
}

// failLink answers invalid links with one fixed message per flow.
func (s *Server) failLink(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, common.ErrInvalidLink) {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	s.fail(w, err)
}

func (s *Server) showAccount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, identity(r).View())
}

func (s *Server) updateAccount(w http.ResponseWriter, r *http.Request) {
	var req manageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := s.accounts.UpdateAccount(r.Context(), identity(r), services.AccountUpdate{
		CurrentPassword: req.CurrentPassword,
		Email:           req.Email,
		Name:            req.Name,
		NewPassword:     req.NewPassword,
		RepeatPassword:  req.PasswordRepeat,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.View())
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := s.accounts.ListUsers(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	views := make([]models.UserView, 0, len(list))
	for _, u := range list {
		views = append(views, u.View())
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.accounts.GetUser(r.Context(), pathVars(r)["uid"])
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.View())
}

func (s *Server) resetUser(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.SendResetFor(r.Context(), pathVars(r)["uid"]); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, messageResponse{Message: "Reset instructions sent"})
}

func (s *Server) showRole(w http.ResponseWriter, r *http.Request) {
	user, err := s.accounts.GetUser(r.Context(), pathVars(r)["uid"])
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user.View(), "roles": roleViews()})
}

func (s *Server) changeRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := s.accounts.ChangeRole(r.Context(), pathVars(r)["uid"], req.Role)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.View())
}

func (s *Server) deactivate(w http.ResponseWriter, r *http.Request) {
	uid := pathVars(r)["uid"]
	user, err := s.accounts.Deactivate(r.Context(), uid)
	if err != nil {
		s.fail(w, err)
		return
	}
	if identity(r).ID == uid {
		s.clearSessionCookie(w)
	}
	writeJSON(w, http.StatusOK, user.View())
}

func roleViews() []roleView {
	roles := models.Roles()
	out := make([]roleView, 0, len(roles))
	for _, role := range roles {
		out = append(out, roleView{Name: role.String(), Description: role.Description()})
	}
	return out
}

func (s *Server) listRoles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, roleViews())
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
