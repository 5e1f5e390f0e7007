package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model/auth"
	"github.com/secmon-lab/shelfcheck/pkg/usecase"
	"github.com/secmon-lab/shelfcheck/pkg/utils/errutil"
)

type AuthUseCase = usecase.AuthUseCaseInterface

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password" masq:"secret"`
}

type userMeResponse struct {
	Sub    string `json:"sub"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	NoAuth bool   `json:"noAuth"`
}

func sessionCookie(r *http.Request, name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
}

// authLoginHandler checks admin credentials and sets the session cookies
func authLoginHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(r.Context(), w, goerr.Wrap(errBadRequest, "invalid login request", goerr.V("error", err.Error())))
			return
		}

		token, err := authUC.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}

		if !authUC.IsNoAuthn() {
			idCookie := sessionCookie(r, tokenIDCookie, token.ID.String())
			idCookie.Expires = token.ExpiresAt
			secretCookie := sessionCookie(r, tokenSecretCookie, token.Secret.String())
			secretCookie.Expires = token.ExpiresAt
			http.SetCookie(w, idCookie)
			http.SetCookie(w, secretCookie)
		}

		writeJSON(r.Context(), w, http.StatusOK, userMeResponse{
			Sub:    token.Sub,
			Email:  token.Email,
			Name:   token.Name,
			NoAuth: authUC.IsNoAuthn(),
		})
	}
}

// authLogoutHandler handles user logout
func authLogoutHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(tokenIDCookie); err == nil {
			if err := authUC.Logout(r.Context(), auth.TokenID(c.Value)); err != nil {
				errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to logout"), http.StatusInternalServerError)
				return
			}
		}

		for _, name := range []string{tokenIDCookie, tokenSecretCookie} {
			c := sessionCookie(r, name, "")
			c.MaxAge = -1
			http.SetCookie(w, c)
		}

		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}

// authMeHandler returns current user information
func authMeHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var token *auth.Token
		if authUC.IsNoAuthn() {
			t, err := authUC.ValidateToken(r.Context(), "", "")
			if err != nil {
				errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
				return
			}
			token = t
		} else {
			t, ok := tokenFromCookies(r, authUC)
			if !ok {
				writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Error: "Authentication required"})
				return
			}
			token = t
		}

		writeJSON(r.Context(), w, http.StatusOK, userMeResponse{
			Sub:    token.Sub,
			Email:  token.Email,
			Name:   token.Name,
			NoAuth: authUC.IsNoAuthn(),
		})
	}
}
