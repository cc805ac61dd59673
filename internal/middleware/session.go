package middleware

import (
	"net/http"
	"onlinecourse_backend/internal/config"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/util"
	"onlinecourse_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	sessionUserID   = "user_id"
	sessionUsername = "username"
	sessionRole     = "role"
)

// SessionStore keeps the logged in user of the HTML pages in a signed cookie.
type SessionStore struct {
	store *sessions.CookieStore
	name  string
}

func NewSessionStore(cfg *config.SessionConfig, secure bool) *SessionStore {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		// Sessions do not survive a restart without a configured secret.
		logger.Log.Warn("session.secret not set, using a random key", zap.String("cookie", cfg.Name))
		secret = securecookie.GenerateRandomKey(32)
	}

	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionStore{store: store, name: cfg.Name}
}

func (s *SessionStore) Login(c *gin.Context, user *model.User) error {
	session, _ := s.store.Get(c.Request, s.name)
	session.Values[sessionUserID] = user.ID
	session.Values[sessionUsername] = user.Username
	session.Values[sessionRole] = string(user.Role)
	return session.Save(c.Request, c.Writer)
}

func (s *SessionStore) Logout(c *gin.Context) error {
	session, _ := s.store.Get(c.Request, s.name)
	session.Values = make(map[interface{}]interface{})
	session.Options.MaxAge = -1
	return session.Save(c.Request, c.Writer)
}

// Current returns the session user, or nil for anonymous requests.
func (s *SessionStore) Current(c *gin.Context) *util.Claims {
	session, err := s.store.Get(c.Request, s.name)
	if err != nil {
		return nil
	}
	id, ok := session.Values[sessionUserID].(uint)
	if !ok || id == 0 {
		return nil
	}
	username, _ := session.Values[sessionUsername].(string)
	role, _ := session.Values[sessionRole].(string)
	return &util.Claims{UserID: id, Username: username, Role: model.UserRole(role)}
}

// Middleware exposes the session user through util.GetUserFromContext.
func (s *SessionStore) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := s.Current(c); claims != nil {
			c.Set(util.ContextUserKey, claims)
		}
		c.Next()
	}
}

// RequireLogin redirects anonymous users to the login page.
func RequireLogin(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if util.GetUserFromContext(c) == nil {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}
