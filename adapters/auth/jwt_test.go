package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/preedep/MQUsageViewer/adapters/auth"
	"github.com/preedep/MQUsageViewer/adapters/clock"
	"github.com/preedep/MQUsageViewer/adapters/hasher"
)

const (
	testUser = "admin"
	testPass = "changeme"
	testSalt = "pepper"
)

func newService(t *testing.T, clk *clock.Fake) *auth.TokenService {
	t.Helper()

	h := hasher.NewBcrypt(4)
	passwordHash, err := h.Hash(testPass + testSalt)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	return auth.NewTokenService(auth.Config{
		Secret:       "test-secret",
		Username:     testUser,
		PasswordHash: passwordHash,
		Salt:         testSalt,
		Hasher:       h,
		Clock:        clk,
	})
}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC))
	svc := newService(t, clk)

	token, expiresAt, err := svc.Issue(testUser, testPass)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if want := clk.Now().Add(24 * time.Hour); !expiresAt.Equal(want) {
		t.Errorf("expiresAt = %v, want %v", expiresAt, want)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != testUser {
		t.Errorf("subject = %q, want %q", claims.Subject, testUser)
	}
}

func TestIssue_InvalidCredentials(t *testing.T) {
	clk := clock.NewFake(time.Now())
	svc := newService(t, clk)

	cases := map[string][2]string{
		"wrong password":         {testUser, "nope"},
		"wrong username":         {"root", testPass},
		"both wrong":             {"root", "nope"},
		"both empty":             {"", ""},
		"salt presented by user": {testUser, testPass + testSalt},
	}
	for name, creds := range cases {
		_, _, err := svc.Issue(creds[0], creds[1])
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Errorf("%s: err = %v, want ErrInvalidCredentials", name, err)
		}
	}
}

func TestVerify_Expired(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC))
	svc := newService(t, clk)

	token, _, err := svc.Issue(testUser, testPass)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Signature is still correct, only the clock moved.
	clk.Advance(24*time.Hour + time.Second)

	if _, err := svc.Verify(token); !errors.Is(err, auth.ErrUnauthorized) {
		t.Errorf("verify expired token: err = %v, want ErrUnauthorized", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	clk := clock.NewFake(time.Now())
	svc := newService(t, clk)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := svc.Verify(token); !errors.Is(err, auth.ErrUnauthorized) {
			t.Errorf("verify(%q): err = %v, want ErrUnauthorized", token, err)
		}
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	clk := clock.NewFake(time.Now())
	svc := newService(t, clk)

	token, _, err := svc.Issue(testUser, testPass)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	h := hasher.NewBcrypt(4)
	passwordHash, _ := h.Hash(testPass + testSalt)
	other := auth.NewTokenService(auth.Config{
		Secret:       "different-secret",
		Username:     testUser,
		PasswordHash: passwordHash,
		Salt:         testSalt,
		Hasher:       h,
		Clock:        clk,
	})

	if _, err := other.Verify(token); !errors.Is(err, auth.ErrUnauthorized) {
		t.Errorf("verify with wrong secret: err = %v, want ErrUnauthorized", err)
	}
}
