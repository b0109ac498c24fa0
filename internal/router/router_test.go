package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/biolink/backend/internal/live"
	"github.com/anonto42/biolink/backend/internal/metrics"
	"github.com/anonto42/biolink/backend/internal/models"
	"github.com/anonto42/biolink/backend/internal/repositories/memory"
	"github.com/anonto42/biolink/backend/internal/router"
	"github.com/anonto42/biolink/backend/internal/services"
	"github.com/anonto42/biolink/backend/validators"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

type RouterSuite struct {
	suite.Suite
	store    *memory.Store
	registry *live.Registry
	server   *httptest.Server
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	opts := []services.Option{services.WithLogger(logger), services.WithMetrics(m)}

	s.store = memory.New()
	repos := s.store.Set()
	snapshots := live.NewSnapshotBuilder(repos)
	s.registry = live.NewRegistry(snapshots, repos.Pages, logger, m)
	notifications := services.NewNotificationService(repos, opts...)
	pages := services.NewPageService(repos, s.registry, opts...)

	e := echo.New()
	e.Validator = validators.NewValidator()
	router.SetupRoutes(e, router.Dependencies{
		Logger:         logger,
		Repos:          repos,
		Registry:       s.registry,
		Snapshots:      snapshots,
		Pages:          pages,
		Verification:   services.NewVerificationService(repos, notifications, s.registry, opts...),
		Notifications:  notifications,
		Accounts:       services.NewAccountService(repos, pages, s.registry, opts...),
		Gatherer:       reg,
		JWTSecret:      "test-secret",
		JWTTTL:         time.Hour,
		CORSOrigins:    []string{"*"},
		WSWriteTimeout: time.Second,
	})
	s.server = httptest.NewServer(e)
}

func (s *RouterSuite) TearDownTest() {
	// A viewer may already have closed its socket; only the teardown matters here.
	_ = s.registry.Close()
	s.server.Close()
}

func (s *RouterSuite) do(method, path, token string, body any) (*http.Response, map[string]any) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	if len(raw) > 0 && raw[0] == '{' {
		s.Require().NoError(json.Unmarshal(raw, &out))
	}
	return resp, out
}

func (s *RouterSuite) register(email, username string) (string, map[string]any) {
	resp, body := s.do(http.MethodPost, "/api/auth/register", "", models.RegisterRequest{
		Email:    email,
		Password: "s3cret-pass",
		Username: username,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	token, _ := body["token"].(string)
	s.Require().NotEmpty(token)
	return token, body
}

func (s *RouterSuite) TestHealthAndMetrics() {
	resp, body := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("healthy", body["status"])

	resp, _ = s.do(http.MethodGet, "/metrics", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *RouterSuite) TestRegisterAndPublicPage() {
	token, body := s.register("alice@example.com", "Alice")
	page, _ := body["page"].(map[string]any)
	s.Require().NotNil(page)
	s.Equal("alice", page["username"])
	s.Equal(true, page["is_main_page"])

	resp, snap := s.do(http.MethodGet, "/api/public/pages/ALICE", "", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("alice", snap["page"].(map[string]any)["username"])

	resp, _ = s.do(http.MethodGet, "/api/public/pages/nobody-here", "", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: "alice@example.com", Password: "wrong-pass"})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(http.MethodGet, "/api/pages", token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *RouterSuite) TestDomainErrorsMapToStatus() {
	token, _ := s.register("alice@example.com", "alice")

	resp, body := s.do(http.MethodPost, "/api/pages", token, models.CreatePageRequest{Username: "alice", Name: "Alice"})
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal("conflict", body["code"])

	resp, body = s.do(http.MethodPost, "/api/verification", token, models.SubmitVerificationRequest{ReqType: models.RequestBrand})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("validation_error", body["code"])

	resp, _ = s.do(http.MethodPost, "/api/verification", token, map[string]string{"req_type": "celebrity"})
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(http.MethodGet, "/api/pages", "", nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *RouterSuite) TestAdminRoutesRequireStaff() {
	userToken, _ := s.register("alice@example.com", "alice")
	adminToken, adminBody := s.register("admin@example.com", "")
	adminID := adminBody["user"].(map[string]any)["id"].(string)

	resp, _ := s.do(http.MethodGet, "/api/admin/verification", userToken, nil)
	s.Equal(http.StatusForbidden, resp.StatusCode)

	s.Require().NoError(s.store.Users.SetRole(s.T().Context(), adminID, models.RoleAdmin))

	resp, ticket := s.do(http.MethodPost, "/api/verification", userToken, models.SubmitVerificationRequest{ReqType: models.RequestPersonal})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	resp, _ = s.do(http.MethodGet, "/api/admin/verification?status=pending", adminToken, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, approved := s.do(http.MethodPost, "/api/admin/verification/"+ticket["id"].(string)+"/approve", adminToken, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("approved", approved["status"])

	_, snap := s.do(http.MethodGet, "/api/public/pages/alice", "", nil)
	s.Equal(true, snap["page"].(map[string]any)["is_verified"])

	resp, _ = s.do(http.MethodPut, "/api/admin/users/"+adminID+"/role", adminToken, models.SetRoleRequest{Role: models.RoleOwner})
	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *RouterSuite) TestLiveViewerReceivesUpdates() {
	token, body := s.register("alice@example.com", "alice")
	pageID := body["page"].(map[string]any)["id"].(string)

	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/api/public/pages/alice/live"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	defer ws.Close()
	s.Require().NoError(ws.SetReadDeadline(time.Now().Add(5 * time.Second)))

	var first live.Message
	s.Require().NoError(ws.ReadJSON(&first))
	s.Equal(live.MessagePageUpdate, first.Type)
	s.Require().NotNil(first.Snapshot)
	s.Equal(pageID, first.Snapshot.Page.ID)

	bio := "now live"
	resp, _ := s.do(http.MethodPatch, "/api/pages/"+pageID, token, models.PageAttributes{Bio: &bio})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var update live.Message
	s.Require().NoError(ws.ReadJSON(&update))
	s.Equal(live.MessagePageUpdate, update.Type)
	s.Equal(bio, update.Snapshot.Page.Bio)

	resp, _ = s.do(http.MethodPut, "/api/pages/"+pageID+"/username", token, models.RenamePageRequest{Username: "alice-new"})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var renamed live.Message
	s.Require().NoError(ws.ReadJSON(&renamed))
	s.Equal(live.MessagePageRenamed, renamed.Type)
	s.Equal("alice-new", renamed.RenamedTo)
}
