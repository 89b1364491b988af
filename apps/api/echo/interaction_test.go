package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/darasa/core/interaction"
	"github.com/trezcool/darasa/core/session"
	"github.com/trezcool/darasa/core/user"
)

func Test_interactionApi_query(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "Hero", "hero@test.cd", "", user.RoleUser)
	presenter := createUser(t, "Presenter", "presenter@test.cd", "", user.RoleUser)
	tpc := createTopic(t, "Distributed Systems", presenter.ID)
	sess := createSession(t, tpc.ID, presenter.ID, "Consensus")
	itr := createInteraction(t, sess.ID, usr.ID, interaction.KindQuestion, "What about partitions?")

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Any authed user", token: getToken(t, usr), wantCode: http.StatusOK, wantData: marchallList(t, itr)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/api/interactions"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_interactionApi_create(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "Hero", "hero@test.cd", "", user.RoleUser)
	presenter := createUser(t, "Presenter", "presenter@test.cd", "", user.RoleUser)
	tpc := createTopic(t, "Distributed Systems", presenter.ID)
	sess := createSession(t, tpc.ID, presenter.ID, "Consensus")
	token := getToken(t, usr)

	reqMsg := "this field is required"
	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "required fields", token: token, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echo.Map{"error": echo.Map{"type": reqMsg, "sessionId": reqMsg, "content": reqMsg}}),
		},
		{
			name: "content kind needs content", token: token, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, interaction.NewInteraction{Kind: interaction.KindQuestion, SessionID: sess.ID}),
			wantData: marchallObj(t, echo.Map{"error": echo.Map{"content": reqMsg}}),
		},
		{
			name: "link kind needs label, description and url", token: token, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, interaction.NewInteraction{Kind: interaction.KindNoteLink, SessionID: sess.ID}),
			wantData: marchallObj(t, echo.Map{"error": echo.Map{"label": reqMsg, "description": reqMsg, "url": reqMsg}}),
		},
		{
			name: "reference kind needs a category too", token: token, wantCode: http.StatusBadRequest,
			body: marchallObj(t, interaction.NewInteraction{
				Kind: interaction.KindReference, SessionID: sess.ID,
				Label: "Raft", Description: "The Raft paper", URL: "https://raft.github.io",
			}),
			wantData: marchallObj(t, echo.Map{"error": echo.Map{"category": reqMsg}}),
		},
		{
			name: "unknown session", token: token, wantCode: http.StatusNotFound,
			body: marchallObj(t, interaction.NewInteraction{
				Kind: interaction.KindQuestion, SessionID: 999, Content: "Hello?",
			}),
			wantData: marchallObj(t, httpErr{Error: "session not found"}),
		},
		{
			name: "created", token: token, wantCode: http.StatusCreated,
			body: marchallObj(t, interaction.NewInteraction{
				Kind: interaction.KindQuestion, SessionID: sess.ID, Content: "What about partitions?",
			}),
		},
		{
			name: "reference created", token: token, wantCode: http.StatusCreated,
			body: marchallObj(t, interaction.NewInteraction{
				Kind: interaction.KindReference, SessionID: sess.ID,
				Label: "Raft", Description: "The Raft paper", URL: "https://raft.github.io", Category: session.CategoryPaper,
			}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/interactions"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData interaction.Interaction
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if respData.AuthorID != usr.ID {
					t.Errorf("failed! authorId = %d; want %d", respData.AuthorID, usr.ID)
				}
				if respData.SessionID != sess.ID {
					t.Errorf("failed! sessionId = %d; want %d", respData.SessionID, sess.ID)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_interactionApi_update(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "Hero", "hero@test.cd", "", user.RoleUser)
	author := createUser(t, "Author", "author@test.cd", "", user.RoleUser)
	admin := createUser(t, "Admin", "admin@test.cd", "", user.RoleAdmin)
	tpc := createTopic(t, "Distributed Systems", author.ID)
	sess := createSession(t, tpc.ID, author.ID, "Consensus")
	itr := createInteraction(t, sess.ID, author.ID, interaction.KindQuestion, "What about partitions?")
	path := fmt.Sprintf("/api/interactions/%d", itr.ID)

	tests := []httpTest{
		{name: "Auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Not found beats forbidden", path: "/api/interactions/999", token: getToken(t, usr),
			body:     marchallObj(t, interaction.UpdateInteraction{Content: "Nope"}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "interaction not found"}),
		},
		{
			name: "Only the author may edit", path: path, token: getToken(t, usr),
			body:     marchallObj(t, interaction.UpdateInteraction{Content: "Hijacked"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Author edits", path: path, token: getToken(t, author),
			body:     marchallObj(t, interaction.UpdateInteraction{Content: "What about network partitions?"}),
			wantCode: http.StatusOK, extra: "What about network partitions?",
		},
		{
			name: "Admin edits", path: path, token: getToken(t, admin),
			body:     marchallObj(t, interaction.UpdateInteraction{Content: "Partitions?"}),
			wantCode: http.StatusOK, extra: "Partitions?",
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData interaction.Interaction
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if want, ok := tt.extra.(string); ok && respData.Content != want {
					t.Errorf("failed! content = %s; want %s", respData.Content, want)
				}
				if respData.AuthorID != author.ID {
					t.Errorf("failed! authorId changed to %d", respData.AuthorID)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_interactionApi_destroy(t *testing.T) {
	app := setup(t)

	author := createUser(t, "Author", "author@test.cd", "", user.RoleUser)
	admin := createUser(t, "Admin", "admin@test.cd", "", user.RoleAdmin)
	tpc := createTopic(t, "Distributed Systems", author.ID)
	sess := createSession(t, tpc.ID, author.ID, "Consensus")
	itr := createInteraction(t, sess.ID, author.ID, interaction.KindQuestion, "What about partitions?")
	path := fmt.Sprintf("/api/interactions/%d", itr.ID)

	tests := []httpTest{
		{name: "Auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Authors cannot delete their own", path: path, token: getToken(t, author),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Admin deletes", path: path, token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallObj(t, MessageResponse{Message: "Interaction deleted successfully"}),
		},
		{
			name: "Gone", path: path, token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "interaction not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodDelete

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_interactionApi_queryBySession(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "Hero", "hero@test.cd", "", user.RoleUser)
	presenter := createUser(t, "Presenter", "presenter@test.cd", "", user.RoleUser)
	tpc := createTopic(t, "Distributed Systems", presenter.ID)
	sess := createSession(t, tpc.ID, presenter.ID, "Consensus")
	other := createSession(t, tpc.ID, presenter.ID, "Replication")
	itr := createInteraction(t, sess.ID, usr.ID, interaction.KindQuestion, "What about partitions?")
	createInteraction(t, other.ID, usr.ID, interaction.KindQuestion, "Sync or async?")
	token := getToken(t, usr)

	tests := []httpTest{
		{
			name: "Auth required", path: fmt.Sprintf("/api/sessions/%d/interactions", sess.ID),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Unknown session", path: "/api/sessions/999/interactions", token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "session not found"}),
		},
		{
			name: "Only the session's interactions", path: fmt.Sprintf("/api/sessions/%d/interactions", sess.ID), token: token,
			wantCode: http.StatusOK, wantData: marchallList(t, itr),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
