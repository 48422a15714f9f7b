package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"

	"lotto-office/internal/db"
	"lotto-office/internal/models"
)

type TelegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID     int64
	TelegramID int64
	Name       string
	Role       string
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// UserLookup resolves Telegram accounts to stored users.
type UserLookup interface {
	UserByTelegramID(ctx context.Context, telegramID int64) (models.User, error)
}

// Auth authenticates requests by Telegram WebApp initData or BasicAuth.
type Auth struct {
	BotToken      string
	AdminPassword string
	IsAdminID     func(int64) bool
	Users         UserLookup
	Log           *zap.Logger
}

// Authenticate puts a Principal in the request context or answers 401.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Método 1: BasicAuth (acceso web normal del admin)
		if a.checkBasicAuth(r) {
			p := Principal{Name: "admin", Role: models.RoleAdmin}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
			return
		}

		// Método 2: Telegram initData
		if initData := initDataFrom(r); initData != "" {
			user, valid := ValidateInitData(initData, a.BotToken)
			if !valid {
				a.Log.Warn("invalid telegram initData")
			} else if p, err := a.principalFor(r.Context(), user); err == nil {
				next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
				return
			} else {
				a.Log.Info("telegram user not registered", zap.Int64("telegram_id", user.ID), zap.Error(err))
			}
		}

		w.Header().Set("WWW-Authenticate", `Basic realm="Lotto Office"`)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}

// RequireAdmin answers 403 unless the principal is an admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := FromContext(r.Context())
		if !ok || !p.IsAdmin() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Auth) principalFor(ctx context.Context, tu *TelegramUser) (Principal, error) {
	p := Principal{TelegramID: tu.ID, Name: strings.TrimSpace(tu.FirstName + " " + tu.LastName)}

	u, err := a.Users.UserByTelegramID(ctx, tu.ID)
	switch {
	case err == nil:
		p.UserID = u.ID
		p.Name = u.Name
		p.Role = u.Role
	case !errors.Is(err, db.ErrNotFound):
		return p, err
	}

	if a.IsAdminID != nil && a.IsAdminID(tu.ID) {
		p.Role = models.RoleAdmin
	}
	if p.Role == "" {
		return p, db.ErrNotFound
	}
	return p, nil
}

func initDataFrom(r *http.Request) string {
	if v := r.Header.Get("X-Telegram-Init-Data"); v != "" {
		return v
	}
	if v := r.URL.Query().Get("tg_init_data"); v != "" {
		return v
	}
	if cookie, err := r.Cookie("tg_init_data"); err == nil {
		if decoded, err := url.QueryUnescape(cookie.Value); err == nil {
			return decoded
		}
	}
	return ""
}

func (a *Auth) checkBasicAuth(r *http.Request) bool {
	user, pass, ok := r.BasicAuth()
	if !ok || a.AdminPassword == "" {
		return false
	}
	return user == "admin" && subtle.ConstantTimeCompare([]byte(pass), []byte(a.AdminPassword)) == 1
}

// ValidateInitData checks the WebApp initData signature and returns the user.
func ValidateInitData(initData, botToken string) (*TelegramUser, bool) {
	if botToken == "" {
		return nil, false
	}

	params, err := url.ParseQuery(initData)
	if err != nil {
		return nil, false
	}
	hash := params.Get("hash")
	if hash == "" {
		return nil, false
	}

	if !hmac.Equal([]byte(SignInitData(params, botToken)), []byte(hash)) {
		return nil, false
	}

	userJSON := params.Get("user")
	if userJSON == "" {
		return nil, false
	}
	var user TelegramUser
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return nil, false
	}
	return &user, true
}

// SignInitData computes the hash Telegram attaches to initData: the sorted
// key=value lines (without hash) signed with HMAC-SHA256("WebAppData", token).
func SignInitData(params url.Values, botToken string) string {
	var keys []string
	for k := range params {
		if k != "hash" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params.Get(k))
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	h := hmac.New(sha256.New, secret.Sum(nil))
	h.Write([]byte(strings.Join(parts, "\n")))
	return hex.EncodeToString(h.Sum(nil))
}
