package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"dyreklinik/api/internal/auth"
	"dyreklinik/api/internal/authpw"
	"dyreklinik/api/internal/config"
	"dyreklinik/api/internal/email"
	"dyreklinik/api/internal/export"
	"dyreklinik/api/internal/media"
	"dyreklinik/api/internal/order"
	"dyreklinik/api/internal/reviews"
	"dyreklinik/api/internal/session"
	"dyreklinik/api/internal/slug"
	"dyreklinik/api/internal/store"
	"dyreklinik/api/internal/util"
)

type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	UserName     string
	JTI          string
	ExpiresAt    time.Time
}

type dataStore interface {
	Ping(ctx context.Context) error

	GetUserByID(ctx context.Context, id string) (store.User, error)
	GetUserByEmail(ctx context.Context, email string) (store.User, error)
	CreateUser(ctx context.Context, user store.User) error
	CountUsers(ctx context.Context) (int, error)
	UpdateUserPassword(ctx context.Context, userID, passwordHash string) error
	CreatePasswordReset(ctx context.Context, userID, token string, expiresAt time.Time) error
	GetPasswordReset(ctx context.Context, token string) (string, error)
	MarkPasswordResetUsed(ctx context.Context, token string) error

	ListCategories(ctx context.Context, includeInactive bool) ([]store.Category, error)
	GetCategory(ctx context.Context, id string) (store.Category, error)
	InsertCategory(ctx context.Context, item store.Category) (store.Category, error)
	UpdateCategory(ctx context.Context, id, name string, isActive bool) (store.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListServices(ctx context.Context, includeInactive bool) ([]store.Service, error)
	InsertService(ctx context.Context, item store.Service) (store.Service, error)
	UpdateService(ctx context.Context, item store.Service) (store.Service, error)
	DeleteService(ctx context.Context, id string) error

	ListPriceCategories(ctx context.Context, includeInactive bool) ([]store.PriceCategory, error)
	GetPriceCategory(ctx context.Context, id string) (store.PriceCategory, error)
	InsertPriceCategory(ctx context.Context, item store.PriceCategory) (store.PriceCategory, error)
	UpdatePriceCategory(ctx context.Context, id, name string, isActive bool) (store.PriceCategory, error)
	DeletePriceCategory(ctx context.Context, id string) error

	ListPriceItems(ctx context.Context, includeInactive bool) ([]store.PriceItem, error)
	InsertPriceItem(ctx context.Context, item store.PriceItem) (store.PriceItem, error)
	UpdatePriceItem(ctx context.Context, item store.PriceItem) (store.PriceItem, error)
	DeletePriceItem(ctx context.Context, id string) error

	ListFAQs(ctx context.Context, includeInactive bool) ([]store.FAQ, error)
	InsertFAQ(ctx context.Context, item store.FAQ) (store.FAQ, error)
	UpdateFAQ(ctx context.Context, item store.FAQ) (store.FAQ, error)
	DeleteFAQ(ctx context.Context, id string) error

	ListTeamMembers(ctx context.Context, includeInactive bool) ([]store.TeamMember, error)
	GetTeamMember(ctx context.Context, id string) (store.TeamMember, error)
	InsertTeamMember(ctx context.Context, item store.TeamMember) (store.TeamMember, error)
	UpdateTeamMember(ctx context.Context, item store.TeamMember) (store.TeamMember, error)
	DeleteTeamMember(ctx context.Context, id string) error

	ListInstagramPosts(ctx context.Context, includeInactive bool) ([]store.InstagramPost, error)
	GetInstagramPost(ctx context.Context, id string) (store.InstagramPost, error)
	InsertInstagramPost(ctx context.Context, item store.InstagramPost) (store.InstagramPost, error)
	UpdateInstagramPost(ctx context.Context, item store.InstagramPost) (store.InstagramPost, error)
	DeleteInstagramPost(ctx context.Context, id string) error
}

type sessionStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash, userID, name string, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (session.TokenData, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
	Ping(ctx context.Context) error
}

type reviewSource interface {
	Fetch(ctx context.Context, placeID string) reviews.Payload
}

type mediaStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	PublicURL(path string) string
	Delete(ctx context.Context, path string) error
}

type mailer interface {
	IsConfigured() bool
	SendContactEmail(to string, msg email.ContactMessage) error
	SendPasswordResetEmail(to, userName, resetURL string) error
}

type pdfExporter interface {
	ExportPriceList(ctx context.Context) (*export.Result, error)
}

type Service struct {
	cfg       config.Config
	store     dataStore
	sessions  sessionStore
	authpw    *authpw.Service
	reviews   reviewSource
	media     mediaStore
	mail      mailer
	exporter  pdfExporter
	positions func(table string) (order.PositionWriter, error)
}

func New(cfg config.Config, st *store.PostgresStore, sessions *session.RedisStore, rev reviewSource, mediaSvc *media.Service, mail mailer, exporter pdfExporter) *Service {
	svc := &Service{
		cfg:      cfg,
		store:    st,
		sessions: sessions,
		authpw:   authpw.NewService(st),
		reviews:  rev,
		mail:     mail,
		exporter: exporter,
		positions: func(table string) (order.PositionWriter, error) {
			return st.Positions(table)
		},
	}
	if mediaSvc != nil {
		svc.media = mediaSvc
	}
	return svc
}

// Bootstrap seeds the initial editor account and default public content so a
// fresh install renders something.
func (s *Service) Bootstrap(ctx context.Context) error {
	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		hash, err := authpw.HashPassword(s.cfg.AdminPassword)
		if err != nil {
			return err
		}
		if err := s.store.CreateUser(ctx, store.User{
			ID:           util.NewID("usr"),
			DisplayName:  s.cfg.AdminName,
			Email:        s.cfg.AdminEmail,
			PasswordHash: hash,
		}); err != nil {
			return err
		}
		log.Printf("seeded editor account %s", s.cfg.AdminEmail)
	}

	categories, err := s.store.ListCategories(ctx, true)
	if err != nil {
		return err
	}
	if len(categories) > 0 {
		return nil
	}

	seeds := []struct {
		Name     string
		Services []struct{ Title, Content, Icon string }
	}{
		{
			Name: "Konsultation",
			Services: []struct{ Title, Content, Icon string }{
				{Title: "Sundhedstjek", Content: "Et grundigt eftersyn af dit kæledyr fra snude til hale.", Icon: "stethoscope"},
				{Title: "Vaccination", Content: "Vaccinationsprogrammer til hund, kat og kanin.", Icon: "syringe"},
			},
		},
		{
			Name: "Kirurgi",
			Services: []struct{ Title, Content, Icon string }{
				{Title: "Neutralisation", Content: "Kastration og sterilisation udført under fuld bedøvelse.", Icon: "scissors"},
			},
		},
		{
			Name: "Tandbehandling",
			Services: []struct{ Title, Content, Icon string }{
				{Title: "Tandrensning", Content: "Ultralydsrensning og polering af tænder.", Icon: "tooth"},
			},
		},
	}

	for _, seed := range seeds {
		category, err := s.store.InsertCategory(ctx, store.Category{
			ID:       util.NewID("cat"),
			Name:     seed.Name,
			Slug:     slug.Derive(seed.Name),
			IsActive: true,
		})
		if err != nil {
			return err
		}
		for _, svc := range seed.Services {
			if _, err := s.store.InsertService(ctx, store.Service{
				ID:         util.NewID("svc"),
				CategoryID: category.ID,
				Title:      svc.Title,
				Content:    svc.Content,
				Icon:       svc.Icon,
				IsActive:   true,
			}); err != nil {
				return err
			}
		}
	}

	faqSeeds := []struct{ Question, Answer string }{
		{Question: "Skal jeg bestille tid?", Answer: "Ja, vi arbejder efter tidsbestilling. Ring eller brug kontaktformularen."},
		{Question: "Hvad gør jeg ved akut sygdom udenfor åbningstid?", Answer: "Kontakt den regionale vagtklinik. Telefonnummeret fremgår af vores telefonsvarer."},
	}
	for _, f := range faqSeeds {
		if _, err := s.store.InsertFAQ(ctx, store.FAQ{
			ID:       util.NewID("faq"),
			Question: f.Question,
			Answer:   f.Answer,
			IsActive: true,
		}); err != nil {
			return err
		}
	}
	return nil
}

// ── Sessions ──

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.authpw.SignIn(ctx, authpw.SignInRequest{Email: email, Password: password})
	if err != nil {
		return Session{}, domainError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
	}
	return s.issueSession(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	data, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, err
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	user, err := s.store.GetUserByID(ctx, data.UserID)
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.TokenSecret), auth.Claims{
		Sub:  user.ID,
		Name: user.DisplayName,
		JTI:  jti,
		Exp:  expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewToken()
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), user.ID, user.DisplayName, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		UserName:     user.DisplayName,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.TokenSecret), token)
	if err != nil {
		return Session{}, err
	}
	user, err := s.store.GetUserByID(ctx, claims.Sub)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:     token,
		UserID:    user.ID,
		UserName:  user.DisplayName,
		JTI:       claims.JTI,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken != "" {
		_ = s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
	}
	return nil
}

// ── Password reset ──

func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) (string, error) {
	token, err := s.authpw.RequestPasswordReset(ctx, emailAddr)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", nil
	}
	if s.mail != nil && s.mail.IsConfigured() {
		user, err := s.store.GetUserByEmail(ctx, emailAddr)
		if err == nil {
			resetURL := strings.TrimSuffix(s.cfg.PublicBaseURL, "/") + "/admin/nulstil?token=" + token
			if err := s.mail.SendPasswordResetEmail(user.Email, user.DisplayName, resetURL); err != nil {
				log.Printf("send password reset email failed: %v", err)
			}
		}
		return "", nil
	}
	// No mail transport configured: hand the token back so the dev flow
	// can complete without an inbox.
	return token, nil
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := s.authpw.ResetPassword(ctx, authpw.ResetPasswordRequest{Token: token, NewPassword: newPassword}); err != nil {
		return domainError(http.StatusBadRequest, "RESET_FAILED", err.Error(), nil)
	}
	return nil
}

// ── Reorder ──

type ReorderInput struct {
	OrderedIDs []string `json:"orderedIds"`
	ID         string   `json:"id"`
	Direction  string   `json:"direction"`
	DraggedID  string   `json:"draggedId"`
	TargetID   string   `json:"targetId"`
}

// collectionTables maps public collection names to their tables.
var collectionTables = map[string]string{
	"categories":       "categories",
	"services":         "services",
	"price-categories": "price_categories",
	"prices":           "price_items",
	"faqs":             "faqs",
	"team":             "team_members",
	"instagram":        "instagram_posts",
}

// Reorder applies one move (or a full explicit ordering) to a collection and
// returns the resulting ordered id list.
func (s *Service) Reorder(ctx context.Context, collection string, in ReorderInput) ([]string, error) {
	table, ok := collectionTables[collection]
	if !ok {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Unknown collection", nil)
	}
	writer, err := s.positions(table)
	if err != nil {
		return nil, err
	}
	engine := order.NewEngine(writer)

	switch {
	case len(in.OrderedIDs) > 0:
		return engine.Apply(ctx, in.OrderedIDs)
	case in.ID != "" && in.Direction != "":
		if in.Direction != string(order.DirectionUp) && in.Direction != string(order.DirectionDown) {
			return nil, domainError(http.StatusBadRequest, "VALIDATION_ERROR", "direction must be 'up' or 'down'", nil)
		}
		return engine.MoveAdjacent(ctx, in.ID, order.Direction(in.Direction))
	case in.DraggedID != "" && in.TargetID != "":
		return engine.MoveToPosition(ctx, in.DraggedID, in.TargetID)
	default:
		return nil, domainError(http.StatusBadRequest, "VALIDATION_ERROR", "orderedIds, id+direction, or draggedId+targetId is required", nil)
	}
}

// ── Categories ──

type CategoryInput struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	IsActive *bool  `json:"isActive"`
}

func (s *Service) ListCategories(ctx context.Context, includeInactive bool) ([]map[string]any, error) {
	items, err := s.store.ListCategories(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, categoryJSON(item))
	}
	return out, nil
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (map[string]any, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("name", "name is required")
	}
	categorySlug := strings.TrimSpace(in.Slug)
	if categorySlug == "" {
		categorySlug = slug.Derive(name)
	}
	if categorySlug == "" {
		return nil, validationError("slug", "a slug could not be derived from the name")
	}
	item, err := s.store.InsertCategory(ctx, store.Category{
		ID:       util.NewID("cat"),
		Name:     name,
		Slug:     categorySlug,
		IsActive: activeOrDefault(in.IsActive),
	})
	if err != nil {
		return nil, err
	}
	return categoryJSON(item), nil
}

func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryInput) (map[string]any, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("name", "name is required")
	}
	// The slug is immutable after creation; an incoming slug is ignored.
	item, err := s.store.UpdateCategory(ctx, id, name, activeOrDefault(in.IsActive))
	if err != nil {
		return nil, err
	}
	return categoryJSON(item), nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.store.DeleteCategory(ctx, id)
}

// ── Services ──

type ServiceInput struct {
	CategoryID string `json:"categoryId"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Icon       string `json:"icon"`
	IsActive   *bool  `json:"isActive"`
}

func (s *Service) ListClinicServices(ctx context.Context, includeInactive bool) ([]map[string]any, error) {
	items, err := s.store.ListServices(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, serviceJSON(item))
	}
	return out, nil
}

func (s *Service) validateServiceInput(ctx context.Context, in ServiceInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return validationError("title", "title is required")
	}
	if strings.TrimSpace(in.CategoryID) == "" {
		return validationError("categoryId", "categoryId is required")
	}
	if _, err := s.store.GetCategory(ctx, in.CategoryID); err != nil {
		if store.IsNotFound(err) {
			return validationError("categoryId", "category does not exist")
		}
		return err
	}
	return nil
}

func (s *Service) CreateClinicService(ctx context.Context, in ServiceInput) (map[string]any, error) {
	if err := s.validateServiceInput(ctx, in); err != nil {
		return nil, err
	}
	item, err := s.store.InsertService(ctx, store.Service{
		ID:         util.NewID("svc"),
		CategoryID: in.CategoryID,
		Title:      strings.TrimSpace(in.Title),
		Content:    in.Content,
		Icon:       in.Icon,
		IsActive:   activeOrDefault(in.IsActive),
	})
	if err != nil {
		return nil, err
	}
	return serviceJSON(item), nil
}

func (s *Service) UpdateClinicService(ctx context.Context, id string, in ServiceInput) (map[string]any, error) {
	if err := s.validateServiceInput(ctx, in); err != nil {
		return nil, err
	}
	item, err := s.store.UpdateService(ctx, store.Service{
		ID:         id,
		CategoryID: in.CategoryID,
		Title:      strings.TrimSpace(in.Title),
		Content:    in.Content,
		Icon:       in.Icon,
		IsActive:   activeOrDefault(in.IsActive),
	})
	if err != nil {
		return nil, err
	}
	return serviceJSON(item), nil
}

func (s *Service) DeleteClinicService(ctx context.Context, id string) error {
	return s.store.DeleteService(ctx, id)
}

// ── Price categories ──

type PriceCategoryInput struct {
	Name     string `json:"name"`
	IsActive *bool  `json:"isActive"`
}

func (s *Service) ListPriceCategories(ctx context.Context, includeInactive bool) ([]map[string]any, error) {
	items, err := s.store.ListPriceCategories(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, priceCategoryJSON(item))
	}
	return out, nil
}

func (s *Service) CreatePriceCategory(ctx context.Context, in PriceCategoryInput) (map[string]any, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("name", "name is required")
	}
	item, err := s.store.InsertPriceCategory(ctx, store.PriceCategory{
		ID:       util.NewID("pc"),
		Name:     name,
		IsActive: activeOrDefault(in.IsActive),
	})
	if err != nil {
		return nil, err
	}
	return priceCategoryJSON(item), nil
}

func (s *Service) UpdatePriceCategory(ctx context.Context, id string, in PriceCategoryInput) (map[string]any, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("name", "name is required")
	}
	item, err := s.store.UpdatePriceCategory(ctx, id, name, activeOrDefault(in.IsActive))
	if err != nil {
		return nil, err
	}
	return priceCategoryJSON(item), nil
}

func (s *Service) DeletePriceCategory(ctx context.Context, id string) error {
	return s.store.DeletePriceCategory(ctx, id)
}

// ── Price items ──

type PriceItemInput struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	PriceFrom  int    `json:"priceFrom"`
	PriceTo    *int   `json:"priceTo"`
	PriceNote  string `json:"priceNote"`
	IsActive   *bool  `json:"isActive"`
}

func (s *Service) ListPriceItems(ctx context.Context, includeInactive bool) ([]map[string]any, error) {
	items, err := s.store.ListPriceItems(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, priceItemJSON(item))
	}
	return out, nil
}

func (s *Service) validatePriceItemInput(ctx context.Context, in PriceItemInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return validationError("name", "name is required")
	}
	if strings.TrimSpace(in.CategoryID) == "" {
		return validationError("categoryId", "categoryId is required")
	}
	if in.PriceFrom < 0 || (in.PriceTo != nil && *in.PriceTo < in.PriceFrom) {
		return validationError("priceFrom", "invalid price range")
	}
	if _, err := s.store.GetPriceCategory(ctx, in.CategoryID); err != nil {
		if store.IsNotFound(err) {
			return validationError("categoryId", "price category does not exist")
		}
		return err
	}
	return nil
}

func (s *Service) CreatePriceItem(ctx context.Context, in PriceItemInput) (map[string]any, error) {
	if err := s.validatePriceItemInput(ctx, in); err != nil {
		return nil, err
	}
	item, err := s.store.InsertPriceItem(ctx, store.PriceItem{
		ID:         util.NewID("pi"),
		CategoryID: in.CategoryID,
		Name:       strings.TrimSpace(in.Name),
		PriceFrom:  in.PriceFrom,
		PriceTo:    in.PriceTo,
		PriceNote:  in.PriceNote,
		IsActive:   activeOrDefault(in.IsActive),
	})
	if err != nil {
		return nil, err
	}
	return priceItemJSON(item), nil
}

func (s *Service) UpdatePriceItem(ctx context.Context, id string, in PriceItemInput) (map[string]any, error) {
	if err := s.validatePriceItemInput(ctx, in); err != nil {
		return nil, err
	}
	item, err := s.store.UpdatePriceItem(ctx, store.PriceItem{
		ID:         id,
		CategoryID: in.CategoryID,
		Name:       strings.TrimSpace(in.Name),
		PriceFrom:  in.PriceFrom,
		PriceTo:    in.PriceTo,
		PriceNote:  in.PriceNote,
		IsActive:   activeOrDefault(in.IsActive),
	})
	if err != nil {
		return nil, err
	}
	return priceItemJSON(item), nil
}

func (s *Service) DeletePriceItem(ctx context.Context, id string) error {
	return s.store.DeletePriceItem(ctx, id)
}

// ── FAQs ──

type FAQInput struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	IsActive *bool  `json:"isActive"`
}

func (s *Service) ListFAQs(ctx context.Context, includeInactive bool) ([]map[string]any, error) {
	items, err := s.store.ListFAQs(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, faqJSON(item))
	}
	return out, nil
}

func (s *Service) CreateFAQ(ctx context.Context, in FAQInput) (map[string]any, error) {
	if strings.TrimSpace(in.Question) == "" {
		return nil, validationError("question", "question is required")
	}
	if strings.TrimSpace(in.Answer) == "" {
		return nil, validationError("answer", "answer is required")
	}
	item, err := s.store.InsertFAQ(ctx, store.FAQ{
		ID:       util.NewID("faq"),
		Question: strings.TrimSpace(in.Question),
		Answer:   strings.TrimSpace(in.Answer),
		IsActive: activeOrDefault(in.IsActive),
	})
	if err != nil {
		return nil, err
	}
	return faqJSON(item), nil
}

func (s *Service) UpdateFAQ(ctx context.Context, id string, in FAQInput) (map[string]any, error) {
	if strings.TrimSpace(in.Question) == "" {
		return nil, validationError("question", "question is required")
	}
	if strings.TrimSpace(in.Answer) == "" {
		return nil, validationError("answer", "answer is required")
	}
	item, err := s.store.UpdateFAQ(ctx, store.FAQ{
		ID:       id,
		Question: strings.TrimSpace(in.Question),
		Answer:   strings.TrimSpace(in.Answer),
		IsActive: activeOrDefault(in.IsActive),
	})
	if err != nil {
		return nil, err
	}
	return faqJSON(item), nil
}

func (s *Service) DeleteFAQ(ctx context.Context, id string) error {
	return s.store.DeleteFAQ(ctx, id)
}

// ── Team members ──

type TeamMemberInput struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Bio       string `json:"bio"`
	ImagePath string `json:"imagePath"`
	IsActive  *bool  `json:"isActive"`
}

func (s *Service) ListTeamMembers(ctx context.Context, includeInactive bool) ([]map[string]any, error) {
	items, err := s.store.ListTeamMembers(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, s.teamMemberJSON(item))
	}
	return out, nil
}

func (s *Service) CreateTeamMember(ctx context.Context, in TeamMemberInput) (map[string]any, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationError("name", "name is required")
	}
	item, err := s.store.InsertTeamMember(ctx, store.TeamMember{
		ID:        util.NewID("tm"),
		Name:      strings.TrimSpace(in.Name),
		Title:     in.Title,
		Bio:       in.Bio,
		ImagePath: in.ImagePath,
		IsActive:  activeOrDefault(in.IsActive),
	})
	if err != nil {
		return nil, err
	}
	return s.teamMemberJSON(item), nil
}

func (s *Service) UpdateTeamMember(ctx context.Context, id string, in TeamMemberInput) (map[string]any, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationError("name", "name is required")
	}
	previous, err := s.store.GetTeamMember(ctx, id)
	if err != nil {
		return nil, err
	}
	item, err := s.store.UpdateTeamMember(ctx, store.TeamMember{
		ID:        id,
		Name:      strings.TrimSpace(in.Name),
		Title:     in.Title,
		Bio:       in.Bio,
		ImagePath: in.ImagePath,
		IsActive:  activeOrDefault(in.IsActive),
	})
	if err != nil {
		return nil, err
	}
	s.cleanupReplacedImage(ctx, previous.ImagePath, item.ImagePath)
	return s.teamMemberJSON(item), nil
}

func (s *Service) DeleteTeamMember(ctx context.Context, id string) error {
	previous, err := s.store.GetTeamMember(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTeamMember(ctx, id); err != nil {
		return err
	}
	s.cleanupReplacedImage(ctx, previous.ImagePath, "")
	return nil
}

// ── Instagram posts ──

type InstagramPostInput struct {
	ImagePath string `json:"imagePath"`
	Caption   string `json:"caption"`
	Permalink string `json:"permalink"`
	IsActive  *bool  `json:"isActive"`
}

func (s *Service) ListInstagramPosts(ctx context.Context, includeInactive bool) ([]map[string]any, error) {
	items, err := s.store.ListInstagramPosts(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, s.instagramPostJSON(item))
	}
	return out, nil
}

func (s *Service) CreateInstagramPost(ctx context.Context, in InstagramPostInput) (map[string]any, error) {
	if strings.TrimSpace(in.ImagePath) == "" {
		return nil, validationError("imagePath", "imagePath is required")
	}
	item, err := s.store.InsertInstagramPost(ctx, store.InstagramPost{
		ID:        util.NewID("ig"),
		ImagePath: in.ImagePath,
		Caption:   in.Caption,
		Permalink: in.Permalink,
		IsActive:  activeOrDefault(in.IsActive),
	})
	if err != nil {
		return nil, err
	}
	return s.instagramPostJSON(item), nil
}

func (s *Service) UpdateInstagramPost(ctx context.Context, id string, in InstagramPostInput) (map[string]any, error) {
	if strings.TrimSpace(in.ImagePath) == "" {
		return nil, validationError("imagePath", "imagePath is required")
	}
	previous, err := s.store.GetInstagramPost(ctx, id)
	if err != nil {
		return nil, err
	}
	item, err := s.store.UpdateInstagramPost(ctx, store.InstagramPost{
		ID:        id,
		ImagePath: in.ImagePath,
		Caption:   in.Caption,
		Permalink: in.Permalink,
		IsActive:  activeOrDefault(in.IsActive),
	})
	if err != nil {
		return nil, err
	}
	s.cleanupReplacedImage(ctx, previous.ImagePath, item.ImagePath)
	return s.instagramPostJSON(item), nil
}

func (s *Service) DeleteInstagramPost(ctx context.Context, id string) error {
	previous, err := s.store.GetInstagramPost(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteInstagramPost(ctx, id); err != nil {
		return err
	}
	s.cleanupReplacedImage(ctx, previous.ImagePath, "")
	return nil
}

// cleanupReplacedImage deletes the previous object when the image path
// changed. Best effort: the row update already succeeded.
func (s *Service) cleanupReplacedImage(ctx context.Context, oldPath, newPath string) {
	if s.media == nil || oldPath == "" || oldPath == newPath {
		return
	}
	if err := s.media.Delete(ctx, oldPath); err != nil {
		log.Printf("delete replaced image %s: %v", oldPath, err)
	}
}

// ── Reviews ──

func (s *Service) Reviews(ctx context.Context) reviews.Payload {
	return s.reviews.Fetch(ctx, s.cfg.GooglePlaceID)
}

// ── Contact ──

type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (s *Service) SubmitContact(ctx context.Context, in ContactInput) error {
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "name is required"
	}
	addr := strings.TrimSpace(in.Email)
	if addr == "" {
		fields["email"] = "email is required"
	} else if !strings.Contains(addr, "@") || strings.ContainsAny(addr, " \t") {
		fields["email"] = "email is not a valid address"
	}
	if strings.TrimSpace(in.Message) == "" {
		fields["message"] = "message is required"
	}
	if len(fields) > 0 {
		return domainError(http.StatusBadRequest, "VALIDATION_ERROR", "Udfyld venligst alle påkrævede felter", fields)
	}

	if s.mail == nil || !s.mail.IsConfigured() || s.cfg.ContactTo == "" {
		return domainError(http.StatusServiceUnavailable, "CONTACT_UNAVAILABLE", "Kontaktformularen er midlertidigt ude af drift. Ring til klinikken i stedet.", nil)
	}

	err := s.mail.SendContactEmail(s.cfg.ContactTo, email.ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Email:   addr,
		Phone:   strings.TrimSpace(in.Phone),
		Subject: strings.TrimSpace(in.Subject),
		Message: in.Message,
	})
	if err != nil {
		return fmt.Errorf("deliver contact message: %w", err)
	}
	return nil
}

// ── Media ──

func (s *Service) UploadMedia(ctx context.Context, folder, filename, contentType string, data []byte) (map[string]any, error) {
	if s.media == nil {
		return nil, domainError(http.StatusServiceUnavailable, "MEDIA_UNAVAILABLE", "Media storage is not configured", nil)
	}
	if len(data) == 0 {
		return nil, validationError("file", "file is empty")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, validationError("file", "only image uploads are accepted")
	}
	ext := ""
	if i := strings.LastIndex(filename, "."); i >= 0 {
		ext = strings.ToLower(filename[i:])
	}
	path := folder + "/" + util.NewID("img") + ext
	if err := s.media.Upload(ctx, path, data, contentType); err != nil {
		return nil, err
	}
	return map[string]any{
		"path": path,
		"url":  s.media.PublicURL(path),
	}, nil
}

func (s *Service) DeleteMedia(ctx context.Context, path string) error {
	if s.media == nil {
		return domainError(http.StatusServiceUnavailable, "MEDIA_UNAVAILABLE", "Media storage is not configured", nil)
	}
	if path == "" || strings.Contains(path, "..") {
		return validationError("path", "invalid object path")
	}
	return s.media.Delete(ctx, path)
}

// ── Price list export ──

func (s *Service) ExportPriceList(ctx context.Context) (*export.Result, error) {
	if s.exporter == nil {
		return nil, domainError(http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "PDF export is not configured", nil)
	}
	return s.exporter.ExportPriceList(ctx)
}

// ── Health ──

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) PingSessions(ctx context.Context) error {
	if s.sessions == nil {
		return nil
	}
	return s.sessions.Ping(ctx)
}

// ── Shaping ──

func activeOrDefault(active *bool) bool {
	if active == nil {
		return true
	}
	return *active
}

func validationError(field, message string) error {
	return domainError(http.StatusBadRequest, "VALIDATION_ERROR", message, map[string]string{field: message})
}

func categoryJSON(item store.Category) map[string]any {
	return map[string]any{
		"id":        item.ID,
		"name":      item.Name,
		"slug":      item.Slug,
		"sortOrder": item.SortOrder,
		"isActive":  item.IsActive,
		"updatedAt": item.UpdatedAt,
	}
}

func serviceJSON(item store.Service) map[string]any {
	return map[string]any{
		"id":         item.ID,
		"categoryId": item.CategoryID,
		"title":      item.Title,
		"content":    item.Content,
		"icon":       item.Icon,
		"sortOrder":  item.SortOrder,
		"isActive":   item.IsActive,
		"updatedAt":  item.UpdatedAt,
	}
}

func priceCategoryJSON(item store.PriceCategory) map[string]any {
	return map[string]any{
		"id":        item.ID,
		"name":      item.Name,
		"sortOrder": item.SortOrder,
		"isActive":  item.IsActive,
		"updatedAt": item.UpdatedAt,
	}
}

func priceItemJSON(item store.PriceItem) map[string]any {
	return map[string]any{
		"id":         item.ID,
		"categoryId": item.CategoryID,
		"name":       item.Name,
		"priceFrom":  item.PriceFrom,
		"priceTo":    item.PriceTo,
		"priceNote":  item.PriceNote,
		"sortOrder":  item.SortOrder,
		"isActive":   item.IsActive,
		"updatedAt":  item.UpdatedAt,
	}
}

func faqJSON(item store.FAQ) map[string]any {
	return map[string]any{
		"id":        item.ID,
		"question":  item.Question,
		"answer":    item.Answer,
		"sortOrder": item.SortOrder,
		"isActive":  item.IsActive,
		"updatedAt": item.UpdatedAt,
	}
}

func (s *Service) teamMemberJSON(item store.TeamMember) map[string]any {
	out := map[string]any{
		"id":        item.ID,
		"name":      item.Name,
		"title":     item.Title,
		"bio":       item.Bio,
		"imagePath": item.ImagePath,
		"sortOrder": item.SortOrder,
		"isActive":  item.IsActive,
		"updatedAt": item.UpdatedAt,
	}
	if item.ImagePath != "" && s.media != nil {
		out["imageUrl"] = s.media.PublicURL(item.ImagePath)
	}
	return out
}

func (s *Service) instagramPostJSON(item store.InstagramPost) map[string]any {
	out := map[string]any{
		"id":        item.ID,
		"imagePath": item.ImagePath,
		"caption":   item.Caption,
		"permalink": item.Permalink,
		"sortOrder": item.SortOrder,
		"isActive":  item.IsActive,
		"updatedAt": item.UpdatedAt,
	}
	if item.ImagePath != "" && s.media != nil {
		out["imageUrl"] = s.media.PublicURL(item.ImagePath)
	}
	return out
}
