package handlers

import (
	"context"
	"net/http"
	"sync"

	"kupipodariday/internal/models"
	"kupipodariday/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	registerUser  *models.User
	registerErr   error
	issueToken    string
	issueErr      error
	genTokenToken string
	genTokenErr   error
	parseID       int64
	parseErr      error

	lastRegister    service.RegisterInput
	lastIssueUserID int64
	lastGenUsername string
	lastGenPassword string
	lastParseToken  string
}

func (m *mockAuth) Register(ctx context.Context, in service.RegisterInput) (*models.User, error) {
	m.lastRegister = in
	return m.registerUser, m.registerErr
}
func (m *mockAuth) Authenticate(ctx context.Context, username, password string) (int64, error) {
	return m.parseID, m.genTokenErr
}
func (m *mockAuth) GenerateToken(ctx context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) IssueToken(userID int64) (string, error) {
	m.lastIssueUserID = userID
	return m.issueToken, m.issueErr
}
func (m *mockAuth) ParseToken(token string) (int64, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockUsers struct {
	me        *models.User
	public    *models.PublicUser
	found     []models.PublicUser
	err       error
	lastID    int64
	lastPatch service.UpdateUserInput
	lastQuery string
}

func (m *mockUsers) Me(ctx context.Context, id int64) (*models.User, error) {
	m.lastID = id
	return m.me, m.err
}
func (m *mockUsers) UpdateProfile(ctx context.Context, requesterID int64, in service.UpdateUserInput) (*models.User, error) {
	m.lastID = requesterID
	m.lastPatch = in
	return m.me, m.err
}
func (m *mockUsers) FindByUsername(ctx context.Context, username string) (*models.PublicUser, error) {
	m.lastQuery = username
	return m.public, m.err
}
func (m *mockUsers) Search(ctx context.Context, query string) ([]models.PublicUser, error) {
	m.lastQuery = query
	return m.found, m.err
}

type mockWishes struct {
	mu sync.Mutex

	wish  *models.Wish
	view  *models.WishView
	list  []models.Wish
	err   error
	progs []progressResult // consumed in order; the last one repeats

	lastCreate      service.CreateWishInput
	lastUpdate      service.UpdateWishInput
	lastRequesterID int64
	lastID          int64
	lastUsername    string
	progressCalls   int
}

type progressResult struct {
	p   *models.FundingProgress
	err error
}

func (m *mockWishes) Create(ctx context.Context, ownerID int64, in service.CreateWishInput) (*models.Wish, error) {
	m.lastRequesterID = ownerID
	m.lastCreate = in
	return m.wish, m.err
}
func (m *mockWishes) Read(ctx context.Context, viewerID, id int64) (*models.WishView, error) {
	m.lastRequesterID, m.lastID = viewerID, id
	return m.view, m.err
}
func (m *mockWishes) Update(ctx context.Context, requesterID, id int64, in service.UpdateWishInput) (*models.Wish, error) {
	m.lastRequesterID, m.lastID = requesterID, id
	m.lastUpdate = in
	return m.wish, m.err
}
func (m *mockWishes) Delete(ctx context.Context, requesterID, id int64) (*models.Wish, error) {
	m.lastRequesterID, m.lastID = requesterID, id
	return m.wish, m.err
}
func (m *mockWishes) Duplicate(ctx context.Context, requesterID, id int64) (*models.Wish, error) {
	m.lastRequesterID, m.lastID = requesterID, id
	return m.wish, m.err
}
func (m *mockWishes) ListRecent(ctx context.Context) ([]models.Wish, error) {
	return m.list, m.err
}
func (m *mockWishes) ListPopular(ctx context.Context) ([]models.Wish, error) {
	return m.list, m.err
}
func (m *mockWishes) ListByOwner(ctx context.Context, ownerID int64) ([]models.Wish, error) {
	m.lastRequesterID = ownerID
	return m.list, m.err
}
func (m *mockWishes) ListByUsername(ctx context.Context, username string) ([]models.Wish, error) {
	m.lastUsername = username
	return m.list, m.err
}
func (m *mockWishes) Progress(ctx context.Context, id int64) (*models.FundingProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progressCalls++
	if len(m.progs) == 0 {
		return nil, m.err
	}
	r := m.progs[0]
	if len(m.progs) > 1 {
		m.progs = m.progs[1:]
	}
	return r.p, r.err
}

type mockOffers struct {
	offer    *models.Offer
	view     *models.OfferView
	list     []models.OfferView
	err      error
	lastIn   service.ContributeInput
	lastUser int64
	lastID   int64
}

func (m *mockOffers) Contribute(ctx context.Context, contributorID int64, in service.ContributeInput) (*models.Offer, error) {
	m.lastUser = contributorID
	m.lastIn = in
	return m.offer, m.err
}
func (m *mockOffers) Get(ctx context.Context, viewerID, id int64) (*models.OfferView, error) {
	m.lastUser, m.lastID = viewerID, id
	return m.view, m.err
}
func (m *mockOffers) List(ctx context.Context, viewerID int64) ([]models.OfferView, error) {
	m.lastUser = viewerID
	return m.list, m.err
}

type mockWishlists struct {
	view       *models.WishlistView
	list       *models.Wishlist
	all        []models.Wishlist
	err        error
	lastCreate service.CreateWishlistInput
	lastUpdate service.UpdateWishlistInput
	lastUser   int64
	lastID     int64
}

func (m *mockWishlists) Create(ctx context.Context, ownerID int64, in service.CreateWishlistInput) (*models.WishlistView, error) {
	m.lastUser = ownerID
	m.lastCreate = in
	return m.view, m.err
}
func (m *mockWishlists) Read(ctx context.Context, id int64) (*models.WishlistView, error) {
	m.lastID = id
	return m.view, m.err
}
func (m *mockWishlists) Update(ctx context.Context, requesterID, id int64, in service.UpdateWishlistInput) (*models.WishlistView, error) {
	m.lastUser, m.lastID = requesterID, id
	m.lastUpdate = in
	return m.view, m.err
}
func (m *mockWishlists) Delete(ctx context.Context, requesterID, id int64) (*models.Wishlist, error) {
	m.lastUser, m.lastID = requesterID, id
	return m.list, m.err
}
func (m *mockWishlists) ListAll(ctx context.Context) ([]models.Wishlist, error) {
	return m.all, m.err
}

type mockPinger struct{ err error }

func (m mockPinger) PingContext(ctx context.Context) error { return m.err }

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service, opts ...Option) *gin.Engine {
	h := NewHandler(s, nil, opts...)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

// authedService returns a Service whose token parser accepts any token as user 7.
func authedService() *service.Service {
	return &service.Service{Authorization: &mockAuth{parseID: 7}}
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
