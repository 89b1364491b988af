package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/interaction"
	"github.com/trezcool/darasa/core/session"
	"github.com/trezcool/darasa/core/topic"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	googleauthsvc "github.com/trezcool/darasa/services/googleauth"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
)

var (
	usrRepo         user.Repository
	topicRepo       topic.Repository
	sessionRepo     session.Repository
	interactionRepo interaction.Repository

	usrSvc         *user.Service
	topicSvc       *topic.Service
	sessionSvc     *session.Service
	interactionSvc *interaction.Service

	googleVerifier *googleauthsvc.Mock

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errNotAuthed    = httpErr{Error: "Not authenticated"}
	errForbidden    = httpErr{Error: "Insufficient permissions"}
	errAdminOnly    = httpErr{Error: "Admin access required"}
)

func setup(t *testing.T) Server {
	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)
	topicRepo = dummydb.NewTopicRepository(db)
	sessionRepo = dummydb.NewSessionRepository(db)
	interactionRepo = dummydb.NewInteractionRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock()
	usrSvc = user.NewService(usrRepo, mailSvc)
	topicSvc = topic.NewService(topicRepo)
	sessionSvc = session.NewService(sessionRepo)
	interactionSvc = interaction.NewService(interactionRepo)
	googleVerifier = &googleauthsvc.Mock{Profiles: make(map[string]user.GoogleProfile)}

	// set up server
	return NewServer(
		&Options{
			DisableReqLogs: true,
			UserSvc:        usrSvc,
			TopicSvc:       topicSvc,
			SessionSvc:     sessionSvc,
			InteractionSvc: interactionSvc,
			GoogleVerifier: googleVerifier,
		},
	)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func createUser(t *testing.T, name, email, pwd, role string) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		Name:              name,
		Email:             email,
		Role:              role,
		IsProfileComplete: true,
		CreatedAt:         core.NewDate(now),
		UpdatedAt:         now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser(): %v", err)
		}
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser(): %v", err)
	}
	return usr
}

func createTopic(t *testing.T, title string, createdBy int, attendees ...int) topic.Topic {
	t.Helper()
	now := time.Now()
	tpc, err := topicSvc.Create(context.Background(), topic.NewTopic{
		Title:        title,
		StartDate:    core.NewDate(now),
		EndDate:      core.NewDate(now.AddDate(0, 3, 0)),
		IntervalType: topic.IntervalWeekly,
		Attendees:    attendees,
	}, createdBy)
	if err != nil {
		t.Fatalf("createTopic(): %v", err)
	}
	return tpc
}

func createSession(t *testing.T, topicID, presenterID int, scope string) session.Session {
	t.Helper()
	sess, err := sessionSvc.Create(context.Background(), session.NewSession{
		TopicID:       topicID,
		PresenterID:   presenterID,
		StartDateTime: core.NewDateTime(time.Now().AddDate(0, 0, 7)),
		Scope:         scope,
	})
	if err != nil {
		t.Fatalf("createSession(): %v", err)
	}
	return sess
}

func createInteraction(t *testing.T, sessionID, authorID int, kind interaction.Kind, content string) interaction.Interaction {
	t.Helper()
	itr, err := interactionSvc.Create(context.Background(), interaction.NewInteraction{
		Kind:      kind,
		SessionID: sessionID,
		Content:   content,
	}, authorID)
	if err != nil {
		t.Fatalf("createInteraction(): %v", err)
	}
	return itr
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
