package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/classiccarrry/classic-carrry-admin/internal/models"
	"github.com/classiccarrry/classic-carrry-admin/internal/session"
)

// State is everything the shell needs to decide what to render.
type State struct {
	Gate         session.Snapshot     `json:"gate"`
	Notification *models.Notification `json:"notification"`
	Mounted      []string             `json:"mounted"`
}

func (s *Server) state() State {
	st := State{Gate: s.Gate.Snapshot(), Mounted: s.Views.Mounted()}
	if n, ok := s.Notifications.Current(); ok {
		st.Notification = &n
	}
	return st
}

func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state())
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := s.Gate.Login(r.Context(), req.Email, req.Password, req.Remember)
	if err != nil {
		s.Logger.Info("sign-in refused", zap.String("email", req.Email), zap.Error(err))
		writeFailure(w, err, "Invalid email or password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":  user,
		"state": s.state(),
	})
}

// Logout drops the credential and every mounted view.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	s.Gate.Logout()
	for _, name := range s.Views.Mounted() {
		s.Views.Unmount(name)
	}
	writeJSON(w, http.StatusOK, s.state())
}

type resetPasswordRequest struct {
	Email           string `json:"email"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (s *Server) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.Gate.ResetPassword(r.Context(), req.Email, req.NewPassword, req.ConfirmPassword); err != nil {
		writeFailure(w, err, "Failed to reset password")
		return
	}
	n := s.Notifications.Success("Password reset successfully")
	writeJSON(w, http.StatusOK, n)
}

// RetryHealth probes the backend immediately. The answer is the resulting
// gate state whether or not the backend came back.
func (s *Server) RetryHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.Gate.Retry(r.Context()); err != nil {
		s.Logger.Debug("manual health check failed", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, s.Gate.Snapshot())
}

func (s *Server) GetNotification(w http.ResponseWriter, r *http.Request) {
	n, ok := s.Notifications.Current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) DismissNotification(w http.ResponseWriter, r *http.Request) {
	s.Notifications.Dismiss()
	w.WriteHeader(http.StatusNoContent)
}
