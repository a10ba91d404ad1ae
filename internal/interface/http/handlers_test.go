package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/andriansp/gocommerce/internal/application"
	"github.com/andriansp/gocommerce/internal/domain/entity"
	repo "github.com/andriansp/gocommerce/internal/domain/repository"
	"github.com/andriansp/gocommerce/pkg/helpers"
	"github.com/andriansp/gocommerce/pkg/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.Init()
	m.Run()
}

// envelope mirrors the response.APIResponse wire shape for assertions.
// Data stays raw because some endpoints return an object and some a list.
type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
	Error   any             `json:"error"`
}

func (e envelope) dataMap(t *testing.T) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(e.Data, &m))
	return m
}

func (e envelope) dataList(t *testing.T) []map[string]any {
	t.Helper()
	var l []map[string]any
	require.NoError(t, json.Unmarshal(e.Data, &l))
	return l
}

func (e envelope) errorMap(t *testing.T) map[string]any {
	t.Helper()
	m, ok := e.Error.(map[string]any)
	require.True(t, ok, "error is not an object: %v", e.Error)
	return m
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

// asUser injects the authenticated user the way the auth middleware does.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

type memUserRepo struct {
	usersByEmail map[string]*entity.User
	usersByID    map[string]*entity.User
	usernames    map[string]bool
	profiles     map[string]*entity.Profile
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		usersByEmail: map[string]*entity.User{},
		usersByID:    map[string]*entity.User{},
		usernames:    map[string]bool{},
		profiles:     map[string]*entity.Profile{},
	}
}

func (f *memUserRepo) add(u *entity.User) {
	f.usersByEmail[u.Email] = u
	f.usersByID[u.ID] = u
	f.usernames[u.Username] = true
}

func (f *memUserRepo) CreateWithProfile(_ context.Context, u *entity.User) error {
	u.ID = "user-" + u.Username
	u.CreatedAt = time.Now()
	f.add(u)
	f.profiles[u.ID] = &entity.Profile{UserID: u.ID, EmailNotifications: true}
	return nil
}

func (f *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	if u, ok := f.usersByID[id]; ok {
		return u, nil
	}
	return nil, repo.ErrNotFound
}

func (f *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	if u, ok := f.usersByEmail[email]; ok {
		return u, nil
	}
	return nil, repo.ErrNotFound
}

func (f *memUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	_, ok := f.usersByEmail[email]
	return ok, nil
}

func (f *memUserRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	return f.usernames[username], nil
}

func (f *memUserRepo) Update(_ context.Context, u *entity.User) error {
	f.usersByID[u.ID] = u
	return nil
}

func (f *memUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := f.usersByID[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *memUserRepo) SetActive(_ context.Context, id string, active bool) error {
	u, ok := f.usersByID[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.IsActive = active
	return nil
}

func (f *memUserRepo) EnsureProfile(_ context.Context, userID string) (*entity.Profile, error) {
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	p := &entity.Profile{UserID: userID, EmailNotifications: true}
	f.profiles[userID] = p
	return p, nil
}

func (f *memUserRepo) UpdateProfile(_ context.Context, p *entity.Profile) error {
	f.profiles[p.UserID] = p
	return nil
}

type memAddressRepo struct {
	byUser map[string][]entity.Address
	nextID int
}

func newMemAddressRepo() *memAddressRepo {
	return &memAddressRepo{byUser: map[string][]entity.Address{}}
}

func (f *memAddressRepo) ListByUser(_ context.Context, userID string) ([]entity.Address, error) {
	return f.byUser[userID], nil
}

func (f *memAddressRepo) GetByID(_ context.Context, id, userID string) (*entity.Address, error) {
	for i := range f.byUser[userID] {
		if f.byUser[userID][i].ID == id {
			return &f.byUser[userID][i], nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *memAddressRepo) Create(_ context.Context, a *entity.Address) error {
	f.nextID++
	a.ID = fmt.Sprintf("addr-%d", f.nextID)
	if a.Country == "" {
		a.Country = "United States"
	}
	if a.IsDefault {
		for i := range f.byUser[a.UserID] {
			if f.byUser[a.UserID][i].AddressType == a.AddressType {
				f.byUser[a.UserID][i].IsDefault = false
			}
		}
	}
	f.byUser[a.UserID] = append(f.byUser[a.UserID], *a)
	return nil
}

func (f *memAddressRepo) Update(_ context.Context, a *entity.Address) error {
	for i := range f.byUser[a.UserID] {
		if f.byUser[a.UserID][i].ID == a.ID {
			if a.IsDefault {
				for j := range f.byUser[a.UserID] {
					if j != i && f.byUser[a.UserID][j].AddressType == a.AddressType {
						f.byUser[a.UserID][j].IsDefault = false
					}
				}
			}
			f.byUser[a.UserID][i] = *a
			return nil
		}
	}
	return repo.ErrNotFound
}

func (f *memAddressRepo) Delete(_ context.Context, id, userID string) error {
	for i := range f.byUser[userID] {
		if f.byUser[userID][i].ID == id {
			f.byUser[userID] = append(f.byUser[userID][:i], f.byUser[userID][i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

type memProductRepo struct {
	products   map[string]*entity.Product
	suggestion []string
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: map[string]*entity.Product{}}
}

func (f *memProductRepo) List(_ context.Context, filter repo.ProductFilter) ([]entity.Product, error) {
	out := []entity.Product{}
	for _, p := range f.products {
		if !p.IsActive {
			continue
		}
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *memProductRepo) GetActiveByID(_ context.Context, id string) (*entity.Product, error) {
	if p, ok := f.products[id]; ok && p.IsActive {
		return p, nil
	}
	return nil, repo.ErrNotFound
}

func (f *memProductRepo) Create(_ context.Context, p *entity.Product) error {
	p.ID = "prod-" + p.Name
	f.products[p.ID] = p
	return nil
}

func (f *memProductRepo) Update(_ context.Context, p *entity.Product) error {
	if _, ok := f.products[p.ID]; !ok {
		return repo.ErrNotFound
	}
	f.products[p.ID] = p
	return nil
}

func (f *memProductRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.products[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *memProductRepo) Related(_ context.Context, categoryID, excludeID string, limit int) ([]entity.Product, error) {
	out := []entity.Product{}
	for _, p := range f.products {
		if p.IsActive && p.CategoryID == categoryID && p.ID != excludeID && len(out) < limit {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *memProductRepo) SimilarByPrice(_ context.Context, categoryID, excludeID string, priceMin, priceMax float64, limit int) ([]entity.Product, error) {
	out := []entity.Product{}
	for _, p := range f.products {
		if p.IsActive && p.CategoryID == categoryID && p.ID != excludeID &&
			p.Price >= priceMin && p.Price <= priceMax && len(out) < limit {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *memProductRepo) Featured(_ context.Context, limit int) ([]entity.Product, error) {
	out := []entity.Product{}
	for _, p := range f.products {
		if p.IsActive && len(out) < limit {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *memProductRepo) NameSuggestions(_ context.Context, _ string, limit int) ([]string, error) {
	if len(f.suggestion) > limit {
		return f.suggestion[:limit], nil
	}
	return f.suggestion, nil
}

type memCategoryRepo struct {
	categories map[string]*entity.Category
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{categories: map[string]*entity.Category{}}
}

func (f *memCategoryRepo) List(_ context.Context) ([]entity.Category, error) {
	out := []entity.Category{}
	for _, c := range f.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (f *memCategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	if c, ok := f.categories[id]; ok {
		return c, nil
	}
	return nil, repo.ErrNotFound
}

type accountFixture struct {
	users     *memUserRepo
	addresses *memAddressRepo
	svc       *application.AccountService
	engine    *gin.Engine
}

// newAccountFixture wires the account and address handlers onto a test
// engine, with the protected routes seeing "user-1" as the caller.
func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()
	users := newMemUserRepo()
	addresses := newMemAddressRepo()
	svc := application.NewAccountService(
		users, addresses,
		helpers.NewTokenManager("test-secret", time.Hour),
		nil, nil, nil, nil, "",
	)
	h := NewAccountHandler(svc, nil, "localhost", false)
	ah := NewAddressHandler(svc, nil)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.POST("/check-email", h.CheckEmail)
	api.POST("/check-username", h.CheckUsername)

	auth := api.Group("/", asUser("user-1"))
	auth.POST("/logout", h.Logout)
	auth.GET("/profile", h.GetProfile)
	auth.PUT("/profile", h.UpdateProfile)
	auth.GET("/dashboard", h.Dashboard)
	auth.GET("/user-info", h.UserInfo)
	auth.POST("/change-password", h.ChangePassword)
	auth.POST("/deactivate", h.Deactivate)
	auth.GET("/addresses", ah.List)
	auth.POST("/addresses", ah.Create)
	auth.GET("/addresses/:id", ah.Get)
	auth.PUT("/addresses/:id", ah.Update)
	auth.DELETE("/addresses/:id", ah.Delete)

	return &accountFixture{users: users, addresses: addresses, svc: svc, engine: r}
}

func (fx *accountFixture) seedUser(t *testing.T, email, username, password string) *entity.User {
	t.Helper()
	hash, err := helpers.HashPassword(password)
	require.NoError(t, err)
	u := &entity.User{
		ID:           "user-1",
		Email:        email,
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: hash,
		IsActive:     true,
	}
	fx.users.add(u)
	fx.users.profiles[u.ID] = &entity.Profile{UserID: u.ID, EmailNotifications: true}
	return u
}

type catalogFixture struct {
	products   *memProductRepo
	categories *memCategoryRepo
	engine     *gin.Engine
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	products := newMemProductRepo()
	categories := newMemCategoryRepo()
	svc := application.NewCatalogService(products, categories, nil, nil, nil, "")
	h := NewCatalogHandler(svc, nil)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/categories", h.ListCategories)
	api.GET("/categories/:id", h.GetCategory)
	api.GET("/products", h.ListProducts)
	api.GET("/products/by_category", h.ByCategory)
	api.GET("/products/featured", h.Featured)
	api.GET("/products/search_suggestions", h.SearchSuggestions)
	api.GET("/products/:id", h.GetProduct)
	api.GET("/products/:id/similar", h.Similar)
	api.POST("/products", h.CreateProduct)
	api.PUT("/products/:id", h.UpdateProduct)
	api.DELETE("/products/:id", h.DeleteProduct)

	return &catalogFixture{products: products, categories: categories, engine: r}
}
