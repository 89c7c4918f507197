package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"dyreklinik/api/internal/auth"
	"dyreklinik/api/internal/authpw"
	"dyreklinik/api/internal/config"
	"dyreklinik/api/internal/email"
	"dyreklinik/api/internal/export"
	"dyreklinik/api/internal/order"
	"dyreklinik/api/internal/reviews"
	"dyreklinik/api/internal/session"
	"dyreklinik/api/internal/store"
)

type passwordReset struct {
	userID    string
	expiresAt time.Time
	used      bool
}

// fakeMemStore is an in-memory dataStore (and authpw.UserStore) for tests.
type fakeMemStore struct {
	users   map[string]store.User
	resets  map[string]*passwordReset
	pingErr error

	categories      []store.Category
	services        []store.Service
	priceCategories []store.PriceCategory
	priceItems      []store.PriceItem
	faqs            []store.FAQ
	team            []store.TeamMember
	instagram       []store.InstagramPost
}

func newFakeMemStore() *fakeMemStore {
	return &fakeMemStore{
		users:  map[string]store.User{},
		resets: map[string]*passwordReset{},
	}
}

func (f *fakeMemStore) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeMemStore) GetUserByID(ctx context.Context, id string) (store.User, error) {
	user, ok := f.users[id]
	if !ok {
		return store.User{}, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeMemStore) GetUserByEmail(ctx context.Context, email string) (store.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return store.User{}, sql.ErrNoRows
}

func (f *fakeMemStore) CreateUser(ctx context.Context, user store.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeMemStore) CountUsers(ctx context.Context) (int, error) {
	return len(f.users), nil
}

func (f *fakeMemStore) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	user, ok := f.users[userID]
	if !ok {
		return sql.ErrNoRows
	}
	user.PasswordHash = passwordHash
	f.users[userID] = user
	return nil
}

func (f *fakeMemStore) CreatePasswordReset(ctx context.Context, userID, token string, expiresAt time.Time) error {
	f.resets[token] = &passwordReset{userID: userID, expiresAt: expiresAt}
	return nil
}

func (f *fakeMemStore) GetPasswordReset(ctx context.Context, token string) (string, error) {
	reset, ok := f.resets[token]
	if !ok || reset.used || time.Now().After(reset.expiresAt) {
		return "", sql.ErrNoRows
	}
	return reset.userID, nil
}

func (f *fakeMemStore) MarkPasswordResetUsed(ctx context.Context, token string) error {
	if reset, ok := f.resets[token]; ok {
		reset.used = true
	}
	return nil
}

func (f *fakeMemStore) ListCategories(ctx context.Context, includeInactive bool) ([]store.Category, error) {
	out := make([]store.Category, 0, len(f.categories))
	for _, item := range f.categories {
		if includeInactive || item.IsActive {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (f *fakeMemStore) GetCategory(ctx context.Context, id string) (store.Category, error) {
	for _, item := range f.categories {
		if item.ID == id {
			return item, nil
		}
	}
	return store.Category{}, sql.ErrNoRows
}

func (f *fakeMemStore) InsertCategory(ctx context.Context, item store.Category) (store.Category, error) {
	item.SortOrder = len(f.categories) + 1
	f.categories = append(f.categories, item)
	return item, nil
}

func (f *fakeMemStore) UpdateCategory(ctx context.Context, id, name string, isActive bool) (store.Category, error) {
	for i, item := range f.categories {
		if item.ID == id {
			f.categories[i].Name = name
			f.categories[i].IsActive = isActive
			return f.categories[i], nil
		}
	}
	return store.Category{}, sql.ErrNoRows
}

func (f *fakeMemStore) DeleteCategory(ctx context.Context, id string) error {
	dependents := 0
	for _, svc := range f.services {
		if svc.CategoryID == id {
			dependents++
		}
	}
	if dependents > 0 {
		return &store.ReferencedError{Collection: "services", Dependents: dependents}
	}
	for i, item := range f.categories {
		if item.ID == id {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			for j := range f.categories {
				f.categories[j].SortOrder = j + 1
			}
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeMemStore) ListServices(ctx context.Context, includeInactive bool) ([]store.Service, error) {
	out := make([]store.Service, 0, len(f.services))
	for _, item := range f.services {
		if includeInactive || item.IsActive {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (f *fakeMemStore) InsertService(ctx context.Context, item store.Service) (store.Service, error) {
	item.SortOrder = len(f.services) + 1
	f.services = append(f.services, item)
	return item, nil
}

func (f *fakeMemStore) UpdateService(ctx context.Context, item store.Service) (store.Service, error) {
	for i, existing := range f.services {
		if existing.ID == item.ID {
			item.SortOrder = existing.SortOrder
			f.services[i] = item
			return item, nil
		}
	}
	return store.Service{}, sql.ErrNoRows
}

func (f *fakeMemStore) DeleteService(ctx context.Context, id string) error {
	for i, item := range f.services {
		if item.ID == id {
			f.services = append(f.services[:i], f.services[i+1:]...)
			for j := range f.services {
				f.services[j].SortOrder = j + 1
			}
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeMemStore) ListPriceCategories(ctx context.Context, includeInactive bool) ([]store.PriceCategory, error) {
	out := make([]store.PriceCategory, 0, len(f.priceCategories))
	for _, item := range f.priceCategories {
		if includeInactive || item.IsActive {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (f *fakeMemStore) GetPriceCategory(ctx context.Context, id string) (store.PriceCategory, error) {
	for _, item := range f.priceCategories {
		if item.ID == id {
			return item, nil
		}
	}
	return store.PriceCategory{}, sql.ErrNoRows
}

func (f *fakeMemStore) InsertPriceCategory(ctx context.Context, item store.PriceCategory) (store.PriceCategory, error) {
	item.SortOrder = len(f.priceCategories) + 1
	f.priceCategories = append(f.priceCategories, item)
	return item, nil
}

func (f *fakeMemStore) UpdatePriceCategory(ctx context.Context, id, name string, isActive bool) (store.PriceCategory, error) {
	for i, item := range f.priceCategories {
		if item.ID == id {
			f.priceCategories[i].Name = name
			f.priceCategories[i].IsActive = isActive
			return f.priceCategories[i], nil
		}
	}
	return store.PriceCategory{}, sql.ErrNoRows
}

func (f *fakeMemStore) DeletePriceCategory(ctx context.Context, id string) error {
	dependents := 0
	for _, item := range f.priceItems {
		if item.CategoryID == id {
			dependents++
		}
	}
	if dependents > 0 {
		return &store.ReferencedError{Collection: "price items", Dependents: dependents}
	}
	for i, item := range f.priceCategories {
		if item.ID == id {
			f.priceCategories = append(f.priceCategories[:i], f.priceCategories[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeMemStore) ListPriceItems(ctx context.Context, includeInactive bool) ([]store.PriceItem, error) {
	out := make([]store.PriceItem, 0, len(f.priceItems))
	for _, item := range f.priceItems {
		if includeInactive || item.IsActive {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (f *fakeMemStore) InsertPriceItem(ctx context.Context, item store.PriceItem) (store.PriceItem, error) {
	item.SortOrder = len(f.priceItems) + 1
	f.priceItems = append(f.priceItems, item)
	return item, nil
}

func (f *fakeMemStore) UpdatePriceItem(ctx context.Context, item store.PriceItem) (store.PriceItem, error) {
	for i, existing := range f.priceItems {
		if existing.ID == item.ID {
			item.SortOrder = existing.SortOrder
			f.priceItems[i] = item
			return item, nil
		}
	}
	return store.PriceItem{}, sql.ErrNoRows
}

func (f *fakeMemStore) DeletePriceItem(ctx context.Context, id string) error {
	for i, item := range f.priceItems {
		if item.ID == id {
			f.priceItems = append(f.priceItems[:i], f.priceItems[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeMemStore) ListFAQs(ctx context.Context, includeInactive bool) ([]store.FAQ, error) {
	out := make([]store.FAQ, 0, len(f.faqs))
	for _, item := range f.faqs {
		if includeInactive || item.IsActive {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (f *fakeMemStore) InsertFAQ(ctx context.Context, item store.FAQ) (store.FAQ, error) {
	item.SortOrder = len(f.faqs) + 1
	f.faqs = append(f.faqs, item)
	return item, nil
}

func (f *fakeMemStore) UpdateFAQ(ctx context.Context, item store.FAQ) (store.FAQ, error) {
	for i, existing := range f.faqs {
		if existing.ID == item.ID {
			item.SortOrder = existing.SortOrder
			f.faqs[i] = item
			return item, nil
		}
	}
	return store.FAQ{}, sql.ErrNoRows
}

func (f *fakeMemStore) DeleteFAQ(ctx context.Context, id string) error {
	for i, item := range f.faqs {
		if item.ID == id {
			f.faqs = append(f.faqs[:i], f.faqs[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeMemStore) ListTeamMembers(ctx context.Context, includeInactive bool) ([]store.TeamMember, error) {
	out := make([]store.TeamMember, 0, len(f.team))
	for _, item := range f.team {
		if includeInactive || item.IsActive {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (f *fakeMemStore) GetTeamMember(ctx context.Context, id string) (store.TeamMember, error) {
	for _, item := range f.team {
		if item.ID == id {
			return item, nil
		}
	}
	return store.TeamMember{}, sql.ErrNoRows
}

func (f *fakeMemStore) InsertTeamMember(ctx context.Context, item store.TeamMember) (store.TeamMember, error) {
	item.SortOrder = len(f.team) + 1
	f.team = append(f.team, item)
	return item, nil
}

func (f *fakeMemStore) UpdateTeamMember(ctx context.Context, item store.TeamMember) (store.TeamMember, error) {
	for i, existing := range f.team {
		if existing.ID == item.ID {
			item.SortOrder = existing.SortOrder
			f.team[i] = item
			return item, nil
		}
	}
	return store.TeamMember{}, sql.ErrNoRows
}

func (f *fakeMemStore) DeleteTeamMember(ctx context.Context, id string) error {
	for i, item := range f.team {
		if item.ID == id {
			f.team = append(f.team[:i], f.team[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeMemStore) ListInstagramPosts(ctx context.Context, includeInactive bool) ([]store.InstagramPost, error) {
	out := make([]store.InstagramPost, 0, len(f.instagram))
	for _, item := range f.instagram {
		if includeInactive || item.IsActive {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (f *fakeMemStore) GetInstagramPost(ctx context.Context, id string) (store.InstagramPost, error) {
	for _, item := range f.instagram {
		if item.ID == id {
			return item, nil
		}
	}
	return store.InstagramPost{}, sql.ErrNoRows
}

func (f *fakeMemStore) InsertInstagramPost(ctx context.Context, item store.InstagramPost) (store.InstagramPost, error) {
	item.SortOrder = len(f.instagram) + 1
	f.instagram = append(f.instagram, item)
	return item, nil
}

func (f *fakeMemStore) UpdateInstagramPost(ctx context.Context, item store.InstagramPost) (store.InstagramPost, error) {
	for i, existing := range f.instagram {
		if existing.ID == item.ID {
			item.SortOrder = existing.SortOrder
			f.instagram[i] = item
			return item, nil
		}
	}
	return store.InstagramPost{}, sql.ErrNoRows
}

func (f *fakeMemStore) DeleteInstagramPost(ctx context.Context, id string) error {
	for i, item := range f.instagram {
		if item.ID == id {
			f.instagram = append(f.instagram[:i], f.instagram[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

// fakePositions backs the reorder engine with a plain slice of ids.
type fakePositions struct {
	ids     []string
	writes  int
	listErr error
}

func (f *fakePositions) ListOrderedIDs(ctx context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]string(nil), f.ids...), nil
}

func (f *fakePositions) WritePositions(ctx context.Context, orderedIDs []string) error {
	f.ids = append([]string(nil), orderedIDs...)
	f.writes++
	return nil
}

type fakeSessions struct {
	sessions map[string]session.TokenData
	pingErr  error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]session.TokenData{}}
}

func (f *fakeSessions) SaveRefreshSession(ctx context.Context, tokenHash, userID, name string, expiresAt time.Time) error {
	f.sessions[tokenHash] = session.TokenData{UserID: userID, Name: name, CreatedAt: time.Now()}
	return nil
}

func (f *fakeSessions) LookupRefreshSession(ctx context.Context, tokenHash string) (session.TokenData, error) {
	data, ok := f.sessions[tokenHash]
	if !ok {
		return session.TokenData{}, errors.New("session not found")
	}
	return data, nil
}

func (f *fakeSessions) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	delete(f.sessions, tokenHash)
	return nil
}

func (f *fakeSessions) Ping(ctx context.Context) error { return f.pingErr }

type fakeReviews struct {
	payload reviews.Payload
}

func (f *fakeReviews) Fetch(ctx context.Context, placeID string) reviews.Payload {
	return f.payload
}

type fakeMedia struct {
	uploads map[string][]byte
	deleted []string
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{uploads: map[string][]byte{}}
}

func (f *fakeMedia) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	f.uploads[path] = data
	return nil
}

func (f *fakeMedia) PublicURL(path string) string {
	return "https://cdn.test/" + path
}

func (f *fakeMedia) Delete(ctx context.Context, path string) error {
	f.deleted = append(f.deleted, path)
	return nil
}

type fakeMailer struct {
	configured bool
	contact    []email.ContactMessage
	contactTo  []string
	resets     []string
	sendErr    error
}

func (f *fakeMailer) IsConfigured() bool { return f.configured }

func (f *fakeMailer) SendContactEmail(to string, msg email.ContactMessage) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.contactTo = append(f.contactTo, to)
	f.contact = append(f.contact, msg)
	return nil
}

func (f *fakeMailer) SendPasswordResetEmail(to, userName, resetURL string) error {
	f.resets = append(f.resets, resetURL)
	return nil
}

type fakeExporter struct {
	result *export.Result
	err    error
}

func (f *fakeExporter) ExportPriceList(ctx context.Context) (*export.Result, error) {
	return f.result, f.err
}

func testConfig() config.Config {
	return config.Config{
		TokenSecret:   "test-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		CORSOrigin:    "*",
		ContactTo:     "klinik@example.dk",
		GooglePlaceID: "place-1",
		PublicBaseURL: "https://klinik.example.dk",
		AdminName:     "Dyreklinikken",
		AdminEmail:    "admin@klinik.dk",
		AdminPassword: "klinik-dev-password",
	}
}

type testEnv struct {
	service   *Service
	store     *fakeMemStore
	sessions  *fakeSessions
	media     *fakeMedia
	mail      *fakeMailer
	positions map[string]*fakePositions
}

func newTestEnv() *testEnv {
	st := newFakeMemStore()
	sessions := newFakeSessions()
	media := newFakeMedia()
	mail := &fakeMailer{configured: true}
	positions := map[string]*fakePositions{}

	svc := &Service{
		cfg:      testConfig(),
		store:    st,
		sessions: sessions,
		authpw:   authpw.NewService(st),
		reviews: &fakeReviews{payload: reviews.Payload{
			Source:        reviews.SourceMock,
			Reviews:       []reviews.Review{{Author: "Mette H.", Rating: 5, Text: "Fantastisk klinik", TimeDescription: "i dag"}},
			AverageRating: 5,
			TotalCount:    1,
		}},
		media:    media,
		mail:     mail,
		exporter: &fakeExporter{result: &export.Result{Data: []byte("%PDF-1.4"), Filename: "prisliste.pdf", MimeType: "application/pdf"}},
		positions: func(table string) (order.PositionWriter, error) {
			writer, ok := positions[table]
			if !ok {
				return nil, fmt.Errorf("unknown table %q", table)
			}
			return writer, nil
		},
	}

	return &testEnv{service: svc, store: st, sessions: sessions, media: media, mail: mail, positions: positions}
}

func (e *testEnv) addEditor(id, name, emailAddr, password string) {
	hash, err := authpw.HashPassword(password)
	if err != nil {
		panic(err)
	}
	e.store.users[id] = store.User{ID: id, DisplayName: name, Email: emailAddr, PasswordHash: hash}
}

func (e *testEnv) token(userID string) string {
	user := e.store.users[userID]
	token, err := auth.IssueToken([]byte(e.service.cfg.TokenSecret), auth.Claims{
		Sub:  user.ID,
		Name: user.DisplayName,
		JTI:  "jti-test",
		Exp:  time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		panic(err)
	}
	return token
}
