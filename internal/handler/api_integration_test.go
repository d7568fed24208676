package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Baaaki/message-board/internal/database"
	"github.com/Baaaki/message-board/internal/handler"
	"github.com/Baaaki/message-board/internal/models"
	"github.com/Baaaki/message-board/internal/repository"
	"github.com/Baaaki/message-board/internal/service"
	"github.com/Baaaki/message-board/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type APIIntegrationTestSuite struct {
	suite.Suite
	testDB *testutil.TestDatabase
	router *gin.Engine
}

func (s *APIIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	s.testDB = testutil.SetupTestDatabase(s.T())

	store := repository.NewStore(s.testDB.DB)
	accounts := service.NewAccountService(store, nil)
	messages := service.NewMessageService(store, accounts)

	s.router = gin.New()
	handler.RegisterRoutes(s.router,
		handler.NewHealthHandler(func(ctx context.Context) error { return database.Ping(ctx, s.testDB.DB) }),
		handler.NewAccountHandler(accounts, handler.ListLimits{Default: 100, Max: 1000}),
		handler.NewMessageHandler(messages),
	)
}

func (s *APIIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *APIIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
}

func (s *APIIntegrationTestSuite) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(s.T(), json.NewEncoder(&buf).Encode(b))
		}
	}

	req, err := http.NewRequest(method, path, &buf)
	require.NoError(s.T(), err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *APIIntegrationTestSuite) createAccount(name, email string) handler.AccountResponse {
	w := s.do(http.MethodPost, "/api/accounts", gin.H{"name": name, "email": email})
	require.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())
	return decode[handler.AccountResponse](s.T(), w)
}

func (s *APIIntegrationTestSuite) TestRootAndHealth() {
	w := s.do(http.MethodGet, "/api/", nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.JSONEq(s.T(), `{"Hello":"World"}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/health", nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.JSONEq(s.T(), `{"status":"ok"}`, w.Body.String())
}

func (s *APIIntegrationTestSuite) TestCreateAndFetchAccount() {
	created := s.createAccount("User 1", "user1@test.com")
	assert.NotEqual(s.T(), uuid.Nil, created.ID)
	assert.Equal(s.T(), "User 1", created.Name)

	w := s.do(http.MethodGet, "/api/accounts/"+created.ID.String(), nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(), created, decode[handler.AccountResponse](s.T(), w))

	w = s.do(http.MethodGet, "/api/accounts/by-email/user1@test.com", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(), created, decode[handler.AccountResponse](s.T(), w))
}

func (s *APIIntegrationTestSuite) TestCreateAccountDuplicateEmail() {
	s.createAccount("User 1", "same@test.com")

	w := s.do(http.MethodPost, "/api/accounts", gin.H{"name": "User 2", "email": "same@test.com"})
	assert.Equal(s.T(), http.StatusConflict, w.Code)
	assert.JSONEq(s.T(), `{"message":"email already exists"}`, w.Body.String())
}

func (s *APIIntegrationTestSuite) TestCreateAccountInvalidInput() {
	testCases := []struct {
		name     string
		body     interface{}
		expected string
	}{
		{
			name:     "Missing name",
			body:     gin.H{"email": "user1@test.com"},
			expected: "body -> name: Field required",
		},
		{
			name:     "Empty name",
			body:     gin.H{"name": "", "email": "user1@test.com"},
			expected: "body -> name: Field required",
		},
		{
			name:     "Invalid email",
			body:     gin.H{"name": "User 1", "email": "not-an-email"},
			expected: "body -> email: value is not a valid email address",
		},
		{
			name:     "Name too long",
			body:     gin.H{"name": strings.Repeat("a", 256), "email": "user1@test.com"},
			expected: "body -> name: String should have at most 255 characters",
		},
		{
			name:     "Wrong type",
			body:     `{"name": 42, "email": "user1@test.com"}`,
			expected: "body -> name: Input should be a valid string",
		},
		{
			name:     "Malformed JSON",
			body:     `{"name":`,
			expected: "body: invalid JSON",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			w := s.do(http.MethodPost, "/api/accounts", tc.body)
			assert.Equal(s.T(), http.StatusBadRequest, w.Code)

			resp := decode[map[string][]string](s.T(), w)
			assert.Contains(s.T(), resp["detail"], tc.expected)
		})
	}

	assert.Equal(s.T(), int64(0), testutil.CountRows(s.T(), s.testDB.DB, &models.Account{}, ""))
}

func (s *APIIntegrationTestSuite) TestGetAccountErrors() {
	w := s.do(http.MethodGet, "/api/accounts/"+uuid.NewString(), nil)
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
	assert.JSONEq(s.T(), `{"message":"account not found"}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/accounts/not-a-uuid", nil)
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	resp := decode[map[string][]string](s.T(), w)
	require.Len(s.T(), resp["detail"], 1)
	assert.True(s.T(), strings.HasPrefix(resp["detail"][0], "path -> account_id: Input should be a valid UUID"))

	w = s.do(http.MethodGet, "/api/accounts/by-email/nobody@test.com", nil)
	assert.Equal(s.T(), http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/accounts/by-email/nobody", nil)
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *APIIntegrationTestSuite) TestListAccounts() {
	first := s.createAccount("User 1", "user1@test.com")
	second := s.createAccount("User 2", "user2@test.com")
	s.createAccount("User 3", "user3@test.com")

	w := s.do(http.MethodGet, "/api/accounts", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.Len(s.T(), decode[[]handler.AccountResponse](s.T(), w), 3)

	w = s.do(http.MethodGet, "/api/accounts?limit=2", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(),
		[]uuid.UUID{first.ID, second.ID},
		lo.Map(decode[[]handler.AccountResponse](s.T(), w), func(a handler.AccountResponse, _ int) uuid.UUID { return a.ID }),
	)
}

func (s *APIIntegrationTestSuite) TestListAccountsEmpty() {
	w := s.do(http.MethodGet, "/api/accounts", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.JSONEq(s.T(), `[]`, w.Body.String())
}

func (s *APIIntegrationTestSuite) TestUpdateAccount() {
	created := s.createAccount("User 1", "user1@test.com")
	path := "/api/accounts/" + created.ID.String()

	w := s.do(http.MethodPatch, path, gin.H{"name": "Renamed"})
	require.Equal(s.T(), http.StatusOK, w.Code)
	updated := decode[handler.AccountResponse](s.T(), w)
	assert.Equal(s.T(), "Renamed", updated.Name)
	assert.Equal(s.T(), "user1@test.com", updated.Email)

	w = s.do(http.MethodPatch, path, gin.H{})
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(), updated, decode[handler.AccountResponse](s.T(), w))

	w = s.do(http.MethodPatch, path, gin.H{"name": ""})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.Contains(s.T(), decode[map[string][]string](s.T(), w)["detail"], "body -> name: String should have at least 1 characters")

	s.createAccount("User 2", "user2@test.com")
	w = s.do(http.MethodPatch, path, gin.H{"email": "user2@test.com"})
	assert.Equal(s.T(), http.StatusConflict, w.Code)

	w = s.do(http.MethodPatch, "/api/accounts/"+uuid.NewString(), gin.H{"name": "Ghost"})
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *APIIntegrationTestSuite) TestMessageLifecycle() {
	account := s.createAccount("User 1", "user1@test.com")
	base := "/api/accounts/" + account.ID.String() + "/messages"

	w := s.do(http.MethodPost, base, gin.H{"content": "Hey there!"})
	require.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())
	msg := decode[handler.MessageResponse](s.T(), w)
	assert.Equal(s.T(), account.ID, msg.SenderID)
	assert.Equal(s.T(), "Hey there!", msg.Content)
	assert.False(s.T(), msg.Timestamp.IsZero())

	w = s.do(http.MethodGet, base, nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	listed := decode[[]handler.MessageResponse](s.T(), w)
	require.Len(s.T(), listed, 1)
	assert.Equal(s.T(), msg.ID, listed[0].ID)

	w = s.do(http.MethodGet, base+"/"+msg.ID.String(), nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(), msg.ID, decode[handler.MessageResponse](s.T(), w).ID)

	w = s.do(http.MethodDelete, base+"/"+msg.ID.String(), nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.JSONEq(s.T(), `{"message":"Message deleted successfully."}`, w.Body.String())

	w = s.do(http.MethodGet, base+"/"+msg.ID.String(), nil)
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
	assert.JSONEq(s.T(), `{"message":"message not found"}`, w.Body.String())
}

func (s *APIIntegrationTestSuite) TestMessageErrors() {
	account := s.createAccount("User 1", "user1@test.com")
	base := "/api/accounts/" + account.ID.String() + "/messages"

	w := s.do(http.MethodPost, base, gin.H{"content": strings.Repeat("x", 1001)})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.Contains(s.T(), decode[map[string][]string](s.T(), w)["detail"], "body -> content: String should have at most 1000 characters")

	w = s.do(http.MethodPost, base, gin.H{})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, base, gin.H{"content": ""})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.Contains(s.T(), decode[map[string][]string](s.T(), w)["detail"], "body -> content: Field required")

	w = s.do(http.MethodPost, "/api/accounts/"+uuid.NewString()+"/messages", gin.H{"content": "orphan"})
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
	assert.JSONEq(s.T(), `{"message":"account not found"}`, w.Body.String())

	w = s.do(http.MethodGet, base+"/not-a-uuid", nil)
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, base+"/"+uuid.NewString(), nil)
	assert.Equal(s.T(), http.StatusNotFound, w.Code)

	assert.Equal(s.T(), int64(0), testutil.CountRows(s.T(), s.testDB.DB, &models.Message{}, ""))
}

func (s *APIIntegrationTestSuite) TestDeleteAccountCascades() {
	account := s.createAccount("User 1", "user1@test.com")
	other := s.createAccount("User 2", "user2@test.com")
	for _, id := range []uuid.UUID{account.ID, account.ID, other.ID} {
		w := s.do(http.MethodPost, "/api/accounts/"+id.String()+"/messages", gin.H{"content": "hi"})
		require.Equal(s.T(), http.StatusCreated, w.Code)
	}

	w := s.do(http.MethodDelete, "/api/accounts/"+account.ID.String(), nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.JSONEq(s.T(), `{"message":"Account deleted successfully."}`, w.Body.String())

	assert.Equal(s.T(), int64(1), testutil.CountRows(s.T(), s.testDB.DB, &models.Message{}, ""))

	w = s.do(http.MethodGet, "/api/accounts/"+account.ID.String()+"/messages", nil)
	assert.Equal(s.T(), http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, "/api/accounts/"+account.ID.String(), nil)
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func TestAPIIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(APIIntegrationTestSuite))
}
