package user

import (
	"testing"
	"time"

	"github.com/trezcool/darasa/core"
)

func TestMakeToken(t *testing.T) {
	usr := User{ID: 1, Name: "Hero", Email: "hero@test.cd", UpdatedAt: time.Now().UTC()}
	if err := usr.SetPassword("LordOfTheRings"); err != nil {
		t.Fatalf("SetPassword() failed, %v", err)
	}

	token, err := MakeToken(usr)
	if err != nil {
		t.Fatalf("MakeToken() failed, %v", err)
	}

	t.Run("valid token", func(t *testing.T) {
		if err := verifyToken(usr, token); err != nil {
			t.Errorf("verifyToken() failed, %v", err)
		}
	})

	t.Run("empty token", func(t *testing.T) {
		if err := verifyToken(usr, ""); err != errInvalidToken {
			t.Errorf("verifyToken() expected error %v; got %v", errInvalidToken, err)
		}
	})

	t.Run("tampered token", func(t *testing.T) {
		if err := verifyToken(usr, token+"lol"); err != errInvalidToken {
			t.Errorf("verifyToken() expected error %v; got %v", errInvalidToken, err)
		}
	})

	t.Run("password change invalidates token", func(t *testing.T) {
		changed := usr
		if err := changed.SetPassword("TheHobbit"); err != nil {
			t.Fatalf("SetPassword() failed, %v", err)
		}
		if err := verifyToken(changed, token); err != errInvalidToken {
			t.Errorf("verifyToken() expected error %v; got %v", errInvalidToken, err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		defer func() { NowFunc = time.Now }()
		NowFunc = func() time.Time {
			return time.Now().Add(-(core.Conf.PasswordResetTimeoutDelta + 48*time.Hour))
		}
		oldToken, err := MakeToken(usr)
		if err != nil {
			t.Fatalf("MakeToken() failed, %v", err)
		}
		if err := verifyToken(usr, oldToken); err != errTokenExpired {
			t.Errorf("verifyToken() expected error %v; got %v", errTokenExpired, err)
		}
	})
}
