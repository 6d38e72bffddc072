package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpapi "github.com/shist-app/shist/internal/shist/http"
	"github.com/shist-app/shist/internal/shist/service"
	"github.com/shist-app/shist/internal/shist/store/drivers/sqlite"
	"github.com/shist-app/shist/internal/shist/ws"
	"github.com/shist-app/shist/pkg/idemx"
	"github.com/shist-app/shist/pkg/invitex"
	"github.com/shist-app/shist/pkg/jwtx"
	"github.com/shist-app/shist/pkg/slogx"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

type env struct {
	srv *httptest.Server
	hub *ws.Hub
}

func newEnv(t *testing.T) *env {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	logger := slogx.New(slogx.Config{
		Service: "shist",
		Version: "test",
		Env:     "test",
		Level:   "error",
		Format:  "text",
	})

	secret := []byte("e2e-test-secret")
	jwt := jwtx.NewHS256(secret, "shist-test")
	hub := ws.NewHub()

	access := &service.AccessService{Store: st}
	router := httpapi.NewRouter(jwt, "test", st, logger)
	router.AccessService = access
	router.UserService = &service.UserService{Store: st, Signer: jwt, Issuer: "shist-test"}
	router.ListService = &service.ListService{Store: st, Access: access}
	router.ItemService = &service.ItemService{Store: st, Access: access, Hub: hub}
	router.InvitationService = &service.InvitationService{
		Store:  st,
		Access: access,
		Codec:  invitex.NewCodec(secret),
		Idem:   idemx.New(time.Hour),
	}
	router.ConnectionService = &service.ConnectionService{Store: st}
	router.WS = &httpapi.WSHandler{Hub: hub, AccessService: access}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &env{srv: srv, hub: hub}
}

// do sends a JSON request and decodes the JSON response into out (when out
// is non-nil and the response has a body).
func (e *env) do(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(out)
	}
	return resp.StatusCode
}

func (e *env) register(t *testing.T, username, password string) httpapi.UserResponse {
	t.Helper()

	var user httpapi.UserResponse
	status := e.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"username": username,
		"password": password,
	}, &user)
	require.Equal(t, http.StatusCreated, status)
	return user
}

func (e *env) login(t *testing.T, username, password string) string {
	t.Helper()

	var resp httpapi.LoginResponse
	status := e.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func (e *env) dialWS(t *testing.T, token string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/v1/ws"
	cfg, err := websocket.NewConfig(wsURL, e.srv.URL)
	require.NoError(t, err)
	cfg.Header.Set("Authorization", "Bearer "+token)

	conn, err := websocket.DialConfig(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestRegisterLoginAndListFlow(t *testing.T) {
	e := newEnv(t)

	e.register(t, "alice", "correct horse battery")
	aliceToken := e.login(t, "alice", "correct horse battery")

	e.register(t, "bob", "hunter2 but longer")
	bobToken := e.login(t, "bob", "hunter2 but longer")

	// duplicate username
	status := e.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"username": "alice",
		"password": "whatever this is",
	}, nil)
	require.Equal(t, http.StatusConflict, status)

	// wrong password
	status = e.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "not it",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, status)

	// alice creates a private list
	var list httpapi.ListResponse
	status = e.do(t, http.MethodPost, "/v1/lists", aliceToken, map[string]any{
		"name": "groceries",
	}, &list)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "private", list.Visibility)
	require.Equal(t, "owner", list.Role)

	// bob can't see it
	status = e.do(t, http.MethodGet, "/v1/lists/"+list.ID, bobToken, nil, nil)
	require.Equal(t, http.StatusForbidden, status)

	// and a missing list is a 404, not a 403
	status = e.do(t, http.MethodGet, "/v1/lists/does-not-exist", bobToken, nil, nil)
	require.Equal(t, http.StatusNotFound, status)

	// unauthenticated requests bounce at the middleware
	status = e.do(t, http.MethodGet, "/v1/lists", "", nil, nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestInvitationAcceptEndToEnd(t *testing.T) {
	e := newEnv(t)

	e.register(t, "alice", "correct horse battery")
	aliceToken := e.login(t, "alice", "correct horse battery")
	e.register(t, "bob", "hunter2 but longer")
	bobToken := e.login(t, "bob", "hunter2 but longer")

	var list httpapi.ListResponse
	status := e.do(t, http.MethodPost, "/v1/lists", aliceToken, map[string]any{"name": "trip"}, &list)
	require.Equal(t, http.StatusCreated, status)

	// alice invites an editor
	var inv httpapi.InvitationResponse
	status = e.do(t, http.MethodPost, "/v1/invitations", aliceToken, map[string]string{
		"type":    "list",
		"list_id": list.ID,
		"role":    "editor",
	}, &inv)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, inv.Token)

	// a tampered token is rejected with the uniform message
	var errResp struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	status = e.do(t, http.MethodPost, "/v1/invitations/accept", bobToken, map[string]string{
		"token": inv.Token + "x",
	}, &errResp)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "invitation link invalid or expired", errResp.ErrorDescription)

	// the real token works
	status = e.do(t, http.MethodPost, "/v1/invitations/accept", bobToken, map[string]string{
		"token": inv.Token,
	}, nil)
	require.Equal(t, http.StatusOK, status)

	// bob is now an editor and can rename the list
	status = e.do(t, http.MethodPatch, "/v1/lists/"+list.ID, bobToken, map[string]any{
		"name": "road trip", "public": false,
	}, nil)
	require.Equal(t, http.StatusOK, status)

	// replaying the token conflicts
	status = e.do(t, http.MethodPost, "/v1/invitations/accept", bobToken, map[string]string{
		"token": inv.Token,
	}, nil)
	require.Equal(t, http.StatusConflict, status)
}

func TestConnectionInvitationEndToEnd(t *testing.T) {
	e := newEnv(t)

	e.register(t, "alice", "correct horse battery")
	aliceToken := e.login(t, "alice", "correct horse battery")
	e.register(t, "bob", "hunter2 but longer")
	bobToken := e.login(t, "bob", "hunter2 but longer")

	var inv httpapi.InvitationResponse
	status := e.do(t, http.MethodPost, "/v1/invitations", aliceToken, map[string]string{
		"type": "connection",
	}, &inv)
	require.Equal(t, http.StatusCreated, status)

	status = e.do(t, http.MethodPost, "/v1/invitations/accept", bobToken, map[string]string{
		"token": inv.Token,
	}, nil)
	require.Equal(t, http.StatusOK, status)

	var conns []httpapi.ConnectionResponse
	status = e.do(t, http.MethodGet, "/v1/connections", bobToken, nil, &conns)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, conns, 1)

	// either side can sever it
	status = e.do(t, http.MethodDelete, "/v1/connections/"+conns[0].ID, aliceToken, nil, nil)
	require.Equal(t, http.StatusNoContent, status)

	status = e.do(t, http.MethodGet, "/v1/connections", aliceToken, nil, &conns)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, conns)
}

func TestItemFanOutOverWebsocket(t *testing.T) {
	e := newEnv(t)

	e.register(t, "alice", "correct horse battery")
	aliceToken := e.login(t, "alice", "correct horse battery")

	var list httpapi.ListResponse
	status := e.do(t, http.MethodPost, "/v1/lists", aliceToken, map[string]any{"name": "groceries"}, &list)
	require.Equal(t, http.StatusCreated, status)

	conn := e.dialWS(t, aliceToken)
	require.NoError(t, websocket.JSON.Send(conn, ws.Frame{Type: "subscribe_list", ListID: list.ID}))

	// wait until the hub registered the subscription before mutating
	require.Eventually(t, func() bool {
		return e.hub.Subscribers(list.ID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	var item httpapi.ItemResponse
	status = e.do(t, http.MethodPost, fmt.Sprintf("/v1/lists/%s/items", list.ID), aliceToken, map[string]string{
		"name": "milk", "category": "dairy",
	}, &item)
	require.Equal(t, http.StatusCreated, status)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var ev ws.Event
	require.NoError(t, websocket.JSON.Receive(conn, &ev))
	require.Equal(t, ws.EventItemAdded, ev.Type)
	require.Equal(t, list.ID, ev.ListID)
	require.NotNil(t, ev.Item)
	require.Equal(t, "milk", ev.Item.Name)

	// toggling done fans out an update
	status = e.do(t, http.MethodPatch, "/v1/items/"+item.ID, aliceToken, map[string]any{
		"name": "milk", "category": "dairy", "done": true,
	}, nil)
	require.Equal(t, http.StatusOK, status)

	require.NoError(t, websocket.JSON.Receive(conn, &ev))
	require.Equal(t, ws.EventItemUpdated, ev.Type)
	require.True(t, ev.Item.Done)

	// deleting fans out only the id
	status = e.do(t, http.MethodDelete, "/v1/items/"+item.ID, aliceToken, nil, nil)
	require.Equal(t, http.StatusNoContent, status)

	require.NoError(t, websocket.JSON.Receive(conn, &ev))
	require.Equal(t, ws.EventItemDeleted, ev.Type)
	require.Equal(t, item.ID, ev.ItemID)
	require.Nil(t, ev.Item)
}

func TestUnauthorizedSubscribeGetsErrorFrame(t *testing.T) {
	e := newEnv(t)

	e.register(t, "alice", "correct horse battery")
	aliceToken := e.login(t, "alice", "correct horse battery")
	e.register(t, "mallory", "definitely evil pw")
	malloryToken := e.login(t, "mallory", "definitely evil pw")

	var list httpapi.ListResponse
	status := e.do(t, http.MethodPost, "/v1/lists", aliceToken, map[string]any{"name": "secret"}, &list)
	require.Equal(t, http.StatusCreated, status)

	conn := e.dialWS(t, malloryToken)
	require.NoError(t, websocket.JSON.Send(conn, ws.Frame{Type: "subscribe_list", ListID: list.ID}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var ev ws.Event
	require.NoError(t, websocket.JSON.Receive(conn, &ev))
	require.Equal(t, ws.EventError, ev.Type)
	require.Equal(t, "FORBIDDEN", ev.Code)
	require.Zero(t, e.hub.Subscribers(list.ID))
}

func TestRegistrationRateLimited(t *testing.T) {
	e := newEnv(t)

	var lastStatus int
	for i := 0; i < 6; i++ {
		lastStatus = e.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
			"username": fmt.Sprintf("user%d", i),
			"password": "long enough password",
		}, nil)
	}
	require.Equal(t, http.StatusTooManyRequests, lastStatus)
}
