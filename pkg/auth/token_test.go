package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/coachdesk/coachdesk/pkg/domain"
)

func newTestTokenService() *TokenService {
	return NewTokenService(TokenConfig{
		Secret: []byte("test-secret-at-least-32-bytes-long!"),
		Issuer: "coachdesk-test",
		TTL:    time.Hour,
	})
}

func TestIssueAndValidateWithoutTeam(t *testing.T) {
	svc := newTestTokenService()
	user := &domain.User{ID: 7, Username: "coach"}

	token, err := svc.Issue(user, nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	p, err := claims.Principal()
	if err != nil {
		t.Fatalf("Principal: %v", err)
	}
	if p.UserID != 7 || p.Username != "coach" {
		t.Errorf("unexpected principal: %+v", p)
	}
	if p.TeamID != nil {
		t.Errorf("expected no team claim, got %d", *p.TeamID)
	}
}

func TestIssueWithTeamClaim(t *testing.T) {
	svc := newTestTokenService()
	user := &domain.User{ID: 7, Username: "coach"}
	teamID := int64(42)

	token, err := svc.Issue(user, &teamID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.TeamID != "42" {
		t.Errorf("expected string-encoded team claim \"42\", got %q", claims.TeamID)
	}

	p, err := claims.Principal()
	if err != nil {
		t.Fatalf("Principal: %v", err)
	}
	if p.TeamID == nil || *p.TeamID != 42 {
		t.Errorf("unexpected team in principal: %+v", p.TeamID)
	}
}

func TestValidateRejectsBadTokens(t *testing.T) {
	svc := newTestTokenService()
	user := &domain.User{ID: 7, Username: "coach"}

	token, err := svc.Issue(user, nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other := NewTokenService(TokenConfig{
		Secret: []byte("a-completely-different-secret-key!!"),
		Issuer: "coachdesk-test",
	})
	if _, err := other.Validate(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
	if _, err := svc.Validate("not-a-jwt"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewTokenService(TokenConfig{
		Secret: []byte("test-secret-at-least-32-bytes-long!"),
		Issuer: "coachdesk-test",
		TTL:    -time.Minute,
	})
	token, err := svc.Issue(&domain.User{ID: 1, Username: "x"}, nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Validate(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}
