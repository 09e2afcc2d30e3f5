package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/inventory/internal/hash"
	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/mykafka"
	"github.com/Skotchmaster/inventory/internal/repo"
	"github.com/Skotchmaster/inventory/internal/tokens"
)

type AuthService struct {
	Repo          *repo.GormRepo
	Publisher     EventPublisher
	SessionSecret []byte
	SessionTTL    time.Duration
}

type LoginResult struct {
	Username     string
	SessionToken string
	SessionExp   time.Time
}

// VerifyCredentials reports whether a user with exactly this username and
// password exists. Unknown users and wrong passwords are indistinguishable.
func (s *AuthService) VerifyCredentials(ctx context.Context, username, password string) (bool, error) {
	user, err := s.Repo.FindUser(ctx, username)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil
	}
	return hash.CheckPassword(user.Password, password), nil
}

// Login verifies the credentials and issues a session token. ok is false on
// rejected credentials; err is only set on store or signing failures.
func (s *AuthService) Login(ctx context.Context, username, password string) (res *LoginResult, ok bool, err error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	ok, err = s.VerifyCredentials(ctx, username, password)
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot read users", "error", err)
		return nil, false, err
	}
	if !ok {
		l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
		return nil, false, nil
	}

	exp := time.Now().Add(s.SessionTTL)
	token, err := tokens.SignSession(username, s.SessionSecret, exp)
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot sign session", "error", err)
		return nil, false, err
	}

	if s.Publisher != nil {
		if err := s.Publisher.PublishEvent(ctx, mykafka.TopicUserEvents, username, map[string]any{
			"type":     "user_logged_in",
			"username": username,
		}); err != nil {
			l.Error("kafka_publish_error", "topic", mykafka.TopicUserEvents, "error", err)
		}
	}

	return &LoginResult{Username: username, SessionToken: token, SessionExp: exp}, true, nil
}
