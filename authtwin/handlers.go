package authtwin

import (
	"errors"
	"net/http"
	"time"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotRequest struct {
	Email string `json:"email"`
}

type resetRequest struct {
	UserID   string `json:"userId"`
	Secret   string `json:"secret"`
	Password string `json:"password"`
}

func userJSON(u *User) map[string]any {
	return map[string]any{
		"id":    u.ID,
		"email": u.Email,
		"name":  u.Name,
	}
}

func (t *Twin) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "OK",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": "twin",
	})
}

func (t *Twin) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	readJSON(r, &req)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, MsgRegisterRequired)
		return
	}

	u, err := t.store.Create(req.Name, req.Email, req.Password)
	if errors.Is(err, errEmailTaken) {
		writeError(w, http.StatusConflict, MsgEmailTaken)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	token, err := t.issueToken(u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": userJSON(u), "token": token})
}

func (t *Twin) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	readJSON(r, &req)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, MsgLoginRequired)
		return
	}

	u, err := t.store.Authenticate(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, MsgInvalidLogin)
		return
	}

	token, err := t.issueToken(u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to login")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": userJSON(u)})
}

func (t *Twin) me(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value(ctxKey{}).(*User)
	writeJSON(w, http.StatusOK, map[string]any{"user": userJSON(u)})
}

func (t *Twin) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	readJSON(r, &req)
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, MsgEmailRequired)
		return
	}

	_, _, known := t.store.StartReset(req.Email)
	msg := MsgForgotPassword
	if !known && t.opts.LeakAccountExistence {
		msg += " (no account found)"
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": msg})
}

func (t *Twin) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	readJSON(r, &req)
	if req.UserID == "" || req.Secret == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, MsgResetRequired)
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, MsgResetShort)
		return
	}

	if err := t.store.CompleteReset(req.UserID, req.Secret, req.Password); err != nil {
		writeError(w, http.StatusBadRequest, MsgResetInvalid)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": MsgResetDone})
}
