package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/thirdeyegames/coinflip/internal/repos/users"
	"github.com/thirdeyegames/coinflip/internal/services/accounts"
)

const maxBodyBytes = 1 << 20 // 1MB cap

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(v)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}

		return errors.New("invalid JSON")
	}

	return nil
}

func validEmail(s string) bool {
	_, err := mail.ParseAddress(s)
	return err == nil
}

// normalizeEmail keeps one canonical form so lookups and the unique
// index agree.
func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
}

// SignupHandler handles POST /api/signup
func (h *HandlerProvider) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req signupRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req.Email = normalizeEmail(req.Email)

	if !validEmail(req.Email) {
		writeRejection(w, "a valid email address is required")
		return
	}
	if len(req.Password) < 8 {
		writeRejection(w, "password must be at least 8 characters")
		return
	}
	if strings.TrimSpace(req.FullName) == "" {
		writeRejection(w, "full name is required")
		return
	}

	_, err = h.accounts.Register(r.Context(), accounts.Registration{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    strings.TrimSpace(req.FullName),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
	})
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			writeRejection(w, "email already registered")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "check your email for the verification code",
	})
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// VerifyHandler handles POST /api/verify
func (h *HandlerProvider) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.accounts.Verify(r.Context(), normalizeEmail(req.Email), strings.TrimSpace(req.Code))
	if err != nil {
		switch {
		case errors.Is(err, users.ErrUserNotFound):
			writeRejection(w, "no account for that email")
		case errors.Is(err, accounts.ErrAlreadyVerified):
			writeRejection(w, "account already verified")
		case errors.Is(err, accounts.ErrInvalidCode):
			writeRejection(w, "invalid verification code")
		case errors.Is(err, accounts.ErrCodeExpired):
			writeRejection(w, "verification code expired")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "account verified",
	})
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninHandler handles POST /api/signin
func (h *HandlerProvider) SigninHandler(w http.ResponseWriter, r *http.Request) {
	var req signinRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, pair, err := h.accounts.SignIn(r.Context(), normalizeEmail(req.Email), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrInvalidCredentials):
			writeRejection(w, "invalid email or password")
		case errors.Is(err, accounts.ErrNotVerified):
			writeRejection(w, "account not verified")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    pair.RefreshToken,
		Path:     "/",
		Expires:  time.Now().Add(30 * 24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"accessToken": pair.AccessToken,
		"fullName":    u.FullName,
		"credits":     u.Credits,
	})
}
