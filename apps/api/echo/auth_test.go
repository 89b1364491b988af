package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"regexp"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
)

func Test_authApi_login(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "Hero", "hero@test.cd", "LolC@t123", user.RoleUser)

	reqMsg := "this field is required"
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echo.Map{"error": echo.Map{"email": reqMsg, "password": reqMsg}}),
		},
		{
			name: "invalid email", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, LoginRequest{Email: "lol", Password: "lol"}),
			wantData: marchallObj(t, echo.Map{"error": echo.Map{"email": "email must be a valid email address"}}),
		},
		{
			name: "unknown email", wantCode: http.StatusUnauthorized,
			body:     marchallObj(t, LoginRequest{Email: "lol@test.cd", Password: "lol"}),
			wantData: marchallObj(t, httpErr{Error: "Invalid credentials"}),
		},
		{
			name: "wrong password", wantCode: http.StatusUnauthorized,
			body:     marchallObj(t, LoginRequest{Email: usr.Email, Password: "lol"}),
			wantData: marchallObj(t, httpErr{Error: "Invalid credentials"}),
		},
		{
			name: "logged in", wantCode: http.StatusOK,
			body: marchallObj(t, LoginRequest{Email: usr.Email, Password: "LolC@t123"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/auth/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			// cannot guess tokens.. just check that they are not empty
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData AuthResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if respData.User.ID != usr.ID {
					t.Errorf("failed! user ID = %d; want %d", respData.User.ID, usr.ID)
				}
				if respData.AccessToken == "" || respData.RefreshToken == "" {
					t.Error("failed! empty token pair")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_authApi_register(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "Hero", "hero@test.cd", "LolC@t123", user.RoleUser)

	tests := []httpTest{
		{
			name: "duplicate email", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.NewUser{Name: "Copycat", Email: usr.Email, Password: "LolC@t123"}),
			wantData: marchallObj(t, echo.Map{"error": echo.Map{"email": "a user with this email already exists"}}),
		},
		{
			name: "registered", wantCode: http.StatusCreated,
			body: marchallObj(t, user.NewUser{Name: "Awe", Email: "awe@test.cd", Password: "LolC@t123"}),
		},
		{
			name: "signup alias", path: "/api/auth/signup", wantCode: http.StatusCreated,
			body: marchallObj(t, user.NewUser{Name: "King", Email: "king@test.cd", Password: "LolC@t123"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		if tt.path == "" {
			tt.path = "/api/auth/register"
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData AuthResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if respData.User.Role != user.RoleUser {
					t.Errorf("failed! role = %s; want %s", respData.User.Role, user.RoleUser)
				}
				if !respData.User.IsProfileComplete {
					t.Error("failed! self-registered profile should be complete")
				}
				if respData.AccessToken == "" || respData.RefreshToken == "" {
					t.Error("failed! empty token pair")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_authApi_google(t *testing.T) {
	app := setup(t)

	existing := createUser(t, "Hero", "hero@test.cd", "LolC@t123", user.RoleUser)
	googleVerifier.Profiles["new-cred"] = user.GoogleProfile{
		GoogleID: "g-123", Email: "gee@test.cd", Name: "Gee", Picture: "https://lh3.test/gee.png",
	}
	googleVerifier.Profiles["existing-cred"] = user.GoogleProfile{
		GoogleID: "g-456", Email: existing.Email, Name: existing.Name,
	}

	type extraTest struct {
		isNewUser                 bool
		requiresProfileCompletion bool
	}
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echo.Map{"error": echo.Map{"credential": "this field is required"}}),
		},
		{
			name: "invalid credential", wantCode: http.StatusUnauthorized,
			body:     marchallObj(t, GoogleAuthRequest{Credential: "lol"}),
			wantData: marchallObj(t, httpErr{Error: "Invalid Google token"}),
		},
		{
			name: "first sign-in creates account", wantCode: http.StatusCreated,
			body:  marchallObj(t, GoogleAuthRequest{Credential: "new-cred"}),
			extra: extraTest{isNewUser: true, requiresProfileCompletion: true},
		},
		{
			name: "existing account signs in", wantCode: http.StatusOK,
			body:  marchallObj(t, GoogleAuthRequest{Credential: "existing-cred"}),
			extra: extraTest{},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/auth/google"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if extra, ok := tt.extra.(extraTest); ok {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData GoogleAuthResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if respData.IsNewUser != extra.isNewUser {
					t.Errorf("failed! isNewUser = %v; want %v", respData.IsNewUser, extra.isNewUser)
				}
				if respData.RequiresProfileCompletion != extra.requiresProfileCompletion {
					t.Errorf("failed! requiresProfileCompletion = %v; want %v",
						respData.RequiresProfileCompletion, extra.requiresProfileCompletion)
				}
				if respData.AccessToken == "" || respData.RefreshToken == "" {
					t.Error("failed! empty token pair")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_authApi_refresh(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "Hero", "hero@test.cd", "LolC@t123", user.RoleUser)
	goner := createUser(t, "Goner", "goner@test.cd", "LolC@t123", user.RoleUser)

	pair, err := GenerateTokenPair(usr)
	if err != nil {
		t.Fatalf("GenerateTokenPair(): %v", err)
	}
	gonerPair, err := GenerateTokenPair(goner)
	if err != nil {
		t.Fatalf("GenerateTokenPair(): %v", err)
	}
	if err := usrRepo.DeleteUserByID(context.Background(), goner.ID); err != nil {
		t.Fatalf("DeleteUserByID(): %v", err)
	}

	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echo.Map{"error": echo.Map{"refreshToken": "this field is required"}}),
		},
		{
			name: "garbage token", wantCode: http.StatusUnauthorized,
			body:     marchallObj(t, RefreshRequest{RefreshToken: "lol"}),
			wantData: marchallObj(t, httpErr{Error: "Invalid refresh token"}),
		},
		{
			name: "access token is not a refresh token", wantCode: http.StatusUnauthorized,
			body:     marchallObj(t, RefreshRequest{RefreshToken: pair.AccessToken}),
			wantData: marchallObj(t, httpErr{Error: "Invalid refresh token"}),
		},
		{
			name: "deleted account", wantCode: http.StatusUnauthorized,
			body:     marchallObj(t, RefreshRequest{RefreshToken: gonerPair.RefreshToken}),
			wantData: marchallObj(t, httpErr{Error: "Invalid refresh token"}),
		},
		{
			name: "refreshed", wantCode: http.StatusOK,
			body: marchallObj(t, RefreshRequest{RefreshToken: pair.RefreshToken}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/auth/refresh"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData TokenPair
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if respData.AccessToken == "" || respData.RefreshToken == "" {
					t.Error("failed! empty token pair")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_authApi_me(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "Hero", "hero@test.cd", "LolC@t123", user.RoleUser)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Me", token: getToken(t, usr), wantCode: http.StatusOK, wantData: marchallObj(t, usr)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/api/auth/me"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_authApi_logout(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "Hero", "hero@test.cd", "LolC@t123", user.RoleUser)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Logged out", token: getToken(t, usr), wantCode: http.StatusOK,
			wantData: marchallObj(t, MessageResponse{Message: "Logged out successfully"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/auth/logout"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_authApi_completeProfile(t *testing.T) {
	app := setup(t)

	googleVerifier.Profiles["new-cred"] = user.GoogleProfile{
		GoogleID: "g-123", Email: "gee@test.cd", Name: "Gee",
	}
	usr, created, err := usrSvc.GoogleSignIn(context.Background(), googleVerifier.Profiles["new-cred"])
	if err != nil || !created {
		t.Fatalf("GoogleSignIn(): created=%v, err=%v", created, err)
	}
	token := getToken(t, usr)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "required fields", token: token, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echo.Map{"error": echo.Map{"name": "this field is required", "password": "this field is required"}}),
		},
		{
			name: "completed", token: token, wantCode: http.StatusOK,
			body: marchallObj(t, user.CompleteProfile{Name: "Gee Whiz", Password: "LolC@t123"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/auth/complete-profile"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData struct {
					User    user.User `json:"user"`
					Message string    `json:"message"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if respData.Message != "Profile completed successfully" {
					t.Errorf("failed! message = %s", respData.Message)
				}
				if !respData.User.IsProfileComplete {
					t.Error("failed! profile should be complete")
				}
				if respData.User.Name != "Gee Whiz" {
					t.Errorf("failed! name = %s", respData.User.Name)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_authApi_forgotPassword(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "Hero", "hero@test.cd", "LolC@t123", user.RoleUser)
	successData := marchallObj(t, MessageResponse{
		Message: "If this email exists in our system, you will receive a password reset link.",
	})

	linkRegex, err := regexp.Compile(`/reset-password\?uid=.+&token=.+`)
	if err != nil {
		t.Fatalf("regexp.Compile(): %v", err)
	}

	type extraTest struct {
		emailSent bool
		to        mail.Address
	}
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echo.Map{"error": echo.Map{"email": "this field is required"}}),
		},
		{
			name: "invalid email", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, PasswordResetRequest{Email: "lol"}),
			wantData: marchallObj(t, echo.Map{"error": echo.Map{"email": "email must be a valid email address"}}),
		},
		{
			name: "unknown email", wantCode: http.StatusOK,
			body:     marchallObj(t, PasswordResetRequest{Email: "lol@test.cd"}),
			wantData: successData, extra: extraTest{emailSent: false},
		},
		{
			name: "known email", wantCode: http.StatusOK,
			body:     marchallObj(t, PasswordResetRequest{Email: usr.Email}),
			wantData: successData, extra: extraTest{emailSent: true, to: mail.Address{Name: usr.Name, Address: usr.Email}},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/auth/forgot-password"

		t.Run(tt.name, func(t *testing.T) {
			emailsvc.SentMessages = nil // reset

			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if extra, ok := tt.extra.(extraTest); ok {
				if extra.emailSent {
					if len(emailsvc.SentMessages) != 1 {
						t.Fatalf("failed! len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
					}
					msg := emailsvc.SentMessages[0]
					if msg.To[0] != extra.to {
						t.Errorf("failed! To = %v; want %v", msg.To[0], extra.to)
					}
					if !linkRegex.MatchString(msg.Body) {
						t.Errorf("failed! body does not match linkRegex %v", linkRegex)
					}
				} else {
					if len(emailsvc.SentMessages) > 0 {
						t.Errorf("failed! len(SentMessages) = %d; want 0", len(emailsvc.SentMessages))
					}
				}
			}
		})
	}
}

func Test_authApi_resetPassword(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "Hero", "hero@test.cd", "LolC@t123", user.RoleUser)
	validUID := user.EncodeUID(usr)
	validToken, err := user.MakeToken(usr)
	if err != nil {
		t.Fatalf("MakeToken(): %v", err)
	}

	reqMsg := "this field is required"
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echo.Map{"error": echo.Map{"uid": reqMsg, "token": reqMsg, "password": reqMsg}}),
		},
		{
			name: "invalid uid", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{UID: "bG9s", Token: validToken, Password: "NewC@t123"}),
			wantData: marchallObj(t, httpErr{Error: "invalid token"}),
		},
		{
			name: "invalid token", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{UID: validUID, Token: "HE4TS-sigsig-sig", Password: "NewC@t123"}),
			wantData: marchallObj(t, httpErr{Error: "invalid token"}),
		},
		{
			name: "reset", wantCode: http.StatusOK,
			body:     marchallObj(t, user.ResetUserPassword{UID: validUID, Token: validToken, Password: "NewC@t123"}),
			wantData: marchallObj(t, MessageResponse{Message: "Password has been reset successfully"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/auth/reset-password"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				refreshed, err := usrRepo.GetUserByID(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID(): %v", err)
				}
				if refreshed.CheckPassword("NewC@t123") != nil {
					t.Error("failed to update new password")
				}
				if strings.EqualFold(string(refreshed.PasswordHash), string(usr.PasswordHash)) {
					t.Error("password hash unchanged")
				}
			}
		})
	}
}
