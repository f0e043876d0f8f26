package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wartahukum/newsroom/internal/auth"
	"github.com/wartahukum/newsroom/internal/news"
)

// --- fakes ---

type fakeArticles struct {
	listFn    func(news.ArticleQuery) (news.ArticlePage, error)
	getFn     func(string) (news.Article, error)
	createFn  func(news.Article) (news.Article, error)
	updateFn  func(news.Article) (news.Article, error)
	deleteFn  func(string) error
	relatedFn func(string, int) ([]news.Article, error)
}

func (f *fakeArticles) Upsert(context.Context, news.Article) (bool, error) { return false, nil }

func (f *fakeArticles) Create(_ context.Context, a news.Article) (news.Article, error) {
	if f.createFn != nil {
		return f.createFn(a)
	}
	return a, nil
}

func (f *fakeArticles) Get(_ context.Context, id string) (news.Article, error) {
	if f.getFn != nil {
		return f.getFn(id)
	}
	return news.Article{}, news.ErrNotFound
}

func (f *fakeArticles) List(_ context.Context, q news.ArticleQuery) (news.ArticlePage, error) {
	if f.listFn != nil {
		return f.listFn(q)
	}
	return news.ArticlePage{Data: []news.Article{}, CurrentPage: q.Page}, nil
}

func (f *fakeArticles) Update(_ context.Context, a news.Article) (news.Article, error) {
	if f.updateFn != nil {
		return f.updateFn(a)
	}
	return news.Article{}, news.ErrNotFound
}

func (f *fakeArticles) Delete(_ context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(id)
	}
	return news.ErrNotFound
}

func (f *fakeArticles) Related(_ context.Context, id string, limit int) ([]news.Article, error) {
	if f.relatedFn != nil {
		return f.relatedFn(id, limit)
	}
	return nil, news.ErrNotFound
}

type fakeCategories struct {
	getFn    func(string) (news.Category, error)
	createFn func(string) (news.Category, error)
	updateFn func(string, string) (news.Category, error)
	deleteFn func(string) error
	listFn   func(news.CategoryQuery) (news.CategoryPage, error)
}

func (f *fakeCategories) Upsert(_ context.Context, name string) (news.Category, error) {
	return news.Category{ID: "cat-1", Name: name}, nil
}

func (f *fakeCategories) Create(_ context.Context, name string) (news.Category, error) {
	if f.createFn != nil {
		return f.createFn(name)
	}
	return news.Category{ID: "cat-1", Name: name}, nil
}

func (f *fakeCategories) Get(_ context.Context, id string) (news.Category, error) {
	if f.getFn != nil {
		return f.getFn(id)
	}
	return news.Category{}, news.ErrNotFound
}

func (f *fakeCategories) List(_ context.Context, q news.CategoryQuery) (news.CategoryPage, error) {
	if f.listFn != nil {
		return f.listFn(q)
	}
	return news.CategoryPage{Data: []news.Category{}, CurrentPage: q.Page}, nil
}

func (f *fakeCategories) Update(_ context.Context, id, name string) (news.Category, error) {
	if f.updateFn != nil {
		return f.updateFn(id, name)
	}
	return news.Category{}, news.ErrNotFound
}

func (f *fakeCategories) Delete(_ context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(id)
	}
	return news.ErrNotFound
}

type fakeUsers struct {
	byEmail  map[string]news.User
	createFn func(news.User) (news.User, error)
}

func (f *fakeUsers) Create(_ context.Context, u news.User) (news.User, error) {
	if f.createFn != nil {
		return f.createFn(u)
	}
	u.ID = "user-new"
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (news.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return news.User{}, news.ErrNotFound
}

func (f *fakeUsers) FindFirstByRole(context.Context, string) (news.User, error) {
	return news.User{}, news.ErrNotFound
}

type fixedClock struct{ now time.Time }

func (f fixedClock) Now() time.Time { return f.now }

// --- helpers ---

type serverFixture struct {
	server     *Server
	articles   *fakeArticles
	categories *fakeCategories
	users      *fakeUsers
	tokens     *auth.Manager
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	clk := fixedClock{now: time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC)}
	tokens, err := auth.NewManager("test-secret", time.Hour, clk)
	require.NoError(t, err)

	articles := &fakeArticles{}
	categories := &fakeCategories{}
	users := &fakeUsers{byEmail: map[string]news.User{}}
	return &serverFixture{
		server:     NewServer(articles, categories, users, tokens, clk, nil),
		articles:   articles,
		categories: categories,
		users:      users,
		tokens:     tokens,
	}
}

func (f *serverFixture) tokenFor(t *testing.T, role string) string {
	t.Helper()
	token, err := f.tokens.Issue(news.User{ID: "user-1", Username: "u", Role: role})
	require.NoError(t, err)
	return token
}

func (f *serverFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

// --- tests ---

func TestHealthz(t *testing.T) {
	t.Parallel()

	f := newServerFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "ok")
}

func TestListArticlesRejectsBadPagination(t *testing.T) {
	t.Parallel()

	f := newServerFixture(t)
	for _, target := range []string{
		"/v1/articles?page=0",
		"/v1/articles?limit=0",
		"/v1/articles?limit=101",
	} {
		rec := f.do(httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestListArticlesEnvelope(t *testing.T) {
	t.Parallel()

	f := newServerFixture(t)
	f.articles.listFn = func(q news.ArticleQuery) (news.ArticlePage, error) {
		require.Equal(t, 2, q.Page)
		require.Equal(t, "cat-1", q.CategoryID)
		require.Equal(t, "hukum", q.Search)
		return news.ArticlePage{
			Data:        []news.Article{{ID: "art-1", Title: "T"}},
			TotalItems:  31,
			TotalPages:  4,
			CurrentPage: 2,
		}, nil
	}

	rec := f.do(httptest.NewRequest(http.MethodGet,
		"/v1/articles?page=2&limit=10&categoryId=cat-1&search=hukum&sortBy=title&sortOrder=asc", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, float64(31), body["totalItems"])
	require.Equal(t, float64(4), body["totalPages"])
	require.Equal(t, true, body["hasNextPage"])
	require.Equal(t, true, body["hasPrevPage"])
	filters := body["filters"].(map[string]any)
	require.Equal(t, "cat-1", filters["categoryId"])
	require.Equal(t, "title", filters["sortBy"])
	require.Equal(t, "asc", filters["sortOrder"])
}

func TestGetArticleNotFound(t *testing.T) {
	t.Parallel()

	f := newServerFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/v1/articles/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRelatedArticlesDefaultLimit(t *testing.T) {
	t.Parallel()

	f := newServerFixture(t)
	var gotLimit int
	f.articles.relatedFn = func(_ string, limit int) ([]news.Article, error) {
		gotLimit = limit
		return []news.Article{{ID: "art-2"}}, nil
	}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/v1/articles/art-1/related", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 6, gotLimit)
}

func TestCreateArticleRequiresAdmin(t *testing.T) {
	t.Parallel()

	f := newServerFixture(t)
	payload := map[string]string{"title": "T"}

	rec := f.do(httptest.NewRequest(http.MethodPost, "/v1/articles", jsonBody(t, payload)))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/articles", jsonBody(t, payload))
	req.Header.Set("Authorization", "Bearer "+f.tokenFor(t, news.RoleUser))
	rec = f.do(req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateArticleHappyPath(t *testing.T) {
	t.Parallel()

	f := newServerFixture(t)
	f.categories.getFn = func(id string) (news.Category, error) {
		require.Equal(t, "cat-1", id)
		return news.Category{ID: "cat-1", Name: "hukum"}, nil
	}
	f.articles.createFn = func(a news.Article) (news.Article, error) {
		require.Equal(t, "https://example.com/a", a.SourceURL)
		require.NotNil(t, a.Author)
		a.ID = "art-new"
		return a, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/articles", jsonBody(t, map[string]string{
		"title":       "Putusan baru",
		"content":     "isi",
		"author":      "penulis",
		"sourceUrl":   "https://example.com/a",
		"publishedAt": "2024-05-07T10:00:00Z",
		"categoryId":  "cat-1",
	}))
	req.Header.Set("Authorization", "Bearer "+f.tokenFor(t, news.RoleAdmin))
	rec := f.do(req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), "art-new")
}

func TestCreateArticleMissingFields(t *testing.T) {
	t.Parallel()

	f := newServerFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/articles", jsonBody(t, map[string]string{
		"title": "only a title",
	}))
	req.Header.Set("Authorization", "Bearer "+f.tokenFor(t, news.RoleAdmin))
	rec := f.do(req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateArticleDuplicateSourceURL(t *testing.T) {
	t.Parallel()

	f := newServerFixture(t)
	f.categories.getFn = func(string) (news.Category, error) {
		return news.Category{ID: "cat-1"}, nil
	}
	f.articles.createFn = func(news.Article) (news.Article, error) {
		return news.Article{}, news.ErrDuplicate
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/articles", jsonBody(t, map[string]string{
		"title":      "T",
		"content":    "c",
		"author":     "a",
		"sourceUrl":  "https://example.com/dup",
		"categoryId": "cat-1",
	}))
	req.Header.Set("Authorization", "Bearer "+f.tokenFor(t, news.RoleAdmin))
	rec := f.do(req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "already exists")
}

func TestCreateCategoryDuplicate(t *testing.T) {
	t.Parallel()

	f := newServerFixture(t)
	f.categories.createFn = func(string) (news.Category, error) {
		return news.Category{}, news.ErrDuplicate
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/categories", jsonBody(t, map[string]string{"name": "Hukum"}))
	req.Header.Set("Authorization", "Bearer "+f.tokenFor(t, news.RoleAdmin))
	rec := f.do(req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "already exists")
}

func TestDeleteCategoryStillInUse(t *testing.T) {
	t.Parallel()

	f := newServerFixture(t)
	f.categories.deleteFn = func(string) error { return news.ErrCategoryInUse }

	req := httptest.NewRequest(http.MethodDelete, "/v1/categories/cat-1", nil)
	req.Header.Set("Authorization", "Bearer "+f.tokenFor(t, news.RoleAdmin))
	rec := f.do(req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "still has articles")
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	f := newServerFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodPost, "/v1/auth/register", jsonBody(t, map[string]string{
		"username": "ab",
		"email":    "not-an-email",
		"password": "asd",
	})))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterSuccessOmitsPassword(t *testing.T) {
	t.Parallel()

	f := newServerFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodPost, "/v1/auth/register", jsonBody(t, map[string]string{
		"username": "budi",
		"email":    "budi@example.com",
		"password": "asd",
	})))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), "budi@example.com")
	require.NotContains(t, rec.Body.String(), "password")
	require.NotContains(t, rec.Body.String(), "asd")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	f := newServerFixture(t)
	f.users.createFn = func(news.User) (news.User, error) {
		return news.User{}, news.ErrDuplicate
	}
	rec := f.do(httptest.NewRequest(http.MethodPost, "/v1/auth/register", jsonBody(t, map[string]string{
		"username": "budi",
		"email":    "budi@example.com",
		"password": "asd",
	})))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "already registered")
}

func TestLoginFlow(t *testing.T) {
	t.Parallel()

	f := newServerFixture(t)
	hash, err := auth.HashPassword("asd")
	require.NoError(t, err)
	f.users.byEmail["admin@example.com"] = news.User{
		ID:           "user-1",
		Username:     "admin",
		Email:        "admin@example.com",
		PasswordHash: hash,
		Role:         news.RoleAdmin,
	}

	rec := f.do(httptest.NewRequest(http.MethodPost, "/v1/auth/login", jsonBody(t, map[string]string{
		"email":    "admin@example.com",
		"password": "asd",
	})))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	claims, err := f.tokens.Parse(token)
	require.NoError(t, err)
	require.Equal(t, news.RoleAdmin, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()

	f := newServerFixture(t)
	hash, err := auth.HashPassword("asd")
	require.NoError(t, err)
	f.users.byEmail["admin@example.com"] = news.User{Email: "admin@example.com", PasswordHash: hash}

	rec := f.do(httptest.NewRequest(http.MethodPost, "/v1/auth/login", jsonBody(t, map[string]string{
		"email":    "admin@example.com",
		"password": "wrong",
	})))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	t.Parallel()

	f := newServerFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodPost, "/v1/auth/login", jsonBody(t, map[string]string{
		"email":    "ghost@example.com",
		"password": "asd",
	})))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
