package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ReferencedError blocks the deletion of a row other rows point at. The
// dependent count goes into the user-facing message.
type ReferencedError struct {
	Collection string
	Dependents int
}

func (e *ReferencedError) Error() string {
	return fmt.Sprintf("referenced by %d %s", e.Dependents, e.Collection)
}

// orderedTables whitelists the collections that carry a sort_order column.
var orderedTables = map[string]bool{
	"categories":       true,
	"services":         true,
	"price_categories": true,
	"price_items":      true,
	"faqs":             true,
	"team_members":     true,
	"instagram_posts":  true,
}

// CollectionPositions exposes one collection's position sequence. It
// satisfies the reorder engine's PositionWriter interface.
type CollectionPositions struct {
	s     *PostgresStore
	table string
}

func (s *PostgresStore) Positions(table string) (*CollectionPositions, error) {
	if !orderedTables[table] {
		return nil, fmt.Errorf("unknown orderable collection %q", table)
	}
	return &CollectionPositions{s: s, table: table}, nil
}

func (c *CollectionPositions) ListOrderedIDs(ctx context.Context) ([]string, error) {
	rows, err := c.s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT id FROM %s ORDER BY sort_order ASC, created_at ASC`, c.table))
	if err != nil {
		return nil, fmt.Errorf("list %s ids: %w", c.table, err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s id: %w", c.table, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s ids: %w", c.table, err)
	}
	return ids, nil
}

// WritePositions assigns sort_order = index+1 for the whole sequence in one
// transaction, so a failed batch never leaves a half-written order.
func (c *CollectionPositions) WritePositions(ctx context.Context, orderedIDs []string) error {
	tx, err := c.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder tx: %w", err)
	}
	query := fmt.Sprintf(`UPDATE %s SET sort_order=$1, updated_at=NOW() WHERE id=$2`, c.table)
	for index, id := range orderedIDs {
		if _, err := tx.ExecContext(ctx, query, index+1, id); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("write position %s[%s]: %w", c.table, id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}

// deleteAndRenumber removes one row and closes the gap it leaves, keeping
// positions dense 1..N.
func (s *PostgresStore) deleteAndRenumber(ctx context.Context, table, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	result, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id=$1`, table), id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete %s: %w", table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete %s rows affected: %w", table, err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return sql.ErrNoRows
	}
	renumber := fmt.Sprintf(`
		WITH ranked AS (
			SELECT id, ROW_NUMBER() OVER (ORDER BY sort_order ASC, created_at ASC) AS rn
			FROM %s
		)
		UPDATE %s SET sort_order = ranked.rn
		FROM ranked
		WHERE %s.id = ranked.id AND %s.sort_order <> ranked.rn
	`, table, table, table, table)
	if _, err := tx.ExecContext(ctx, renumber); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("renumber %s: %w", table, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// ── Users ──

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, password_hash, created_at, updated_at
		FROM users WHERE LOWER(email)=LOWER($1)
	`, email).Scan(&user.ID, &user.DisplayName, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, password_hash, created_at, updated_at
		FROM users WHERE id=$1
	`, userID).Scan(&user.ID, &user.DisplayName, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, display_name, email, password_hash)
		VALUES ($1, $2, $3, $4)
	`, user.ID, user.DisplayName, user.Email, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash=$2, updated_at=NOW() WHERE id=$1
	`, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreatePasswordReset(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO password_resets (token, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO NOTHING
	`, token, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("create password reset: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPasswordReset(ctx context.Context, token string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id FROM password_resets
		WHERE token=$1 AND used_at IS NULL AND expires_at > NOW()
	`, token).Scan(&userID)
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *PostgresStore) MarkPasswordResetUsed(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE password_resets SET used_at=NOW() WHERE token=$1`, token)
	if err != nil {
		return fmt.Errorf("mark password reset used: %w", err)
	}
	return nil
}

// ── Categories ──

func (s *PostgresStore) ListCategories(ctx context.Context, includeInactive bool) ([]Category, error) {
	query := `
		SELECT id, name, slug, sort_order, is_active, created_at, updated_at
		FROM categories
	`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY sort_order ASC, created_at ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := make([]Category, 0)
	for rows.Next() {
		var item Category
		if err := rows.Scan(&item.ID, &item.Name, &item.Slug, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetCategory(ctx context.Context, id string) (Category, error) {
	var item Category
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, slug, sort_order, is_active, created_at, updated_at
		FROM categories WHERE id=$1
	`, id).Scan(&item.ID, &item.Name, &item.Slug, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Category{}, err
	}
	return item, nil
}

func (s *PostgresStore) InsertCategory(ctx context.Context, item Category) (Category, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (id, name, slug, sort_order, is_active)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM categories), $4)
		RETURNING id, name, slug, sort_order, is_active, created_at, updated_at
	`, item.ID, item.Name, item.Slug, item.IsActive).
		Scan(&item.ID, &item.Name, &item.Slug, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Category{}, fmt.Errorf("insert category: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) UpdateCategory(ctx context.Context, id, name string, isActive bool) (Category, error) {
	var item Category
	err := s.db.QueryRowContext(ctx, `
		UPDATE categories SET name=$2, is_active=$3, updated_at=NOW()
		WHERE id=$1
		RETURNING id, name, slug, sort_order, is_active, created_at, updated_at
	`, id, name, isActive).
		Scan(&item.ID, &item.Name, &item.Slug, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Category{}, err
	}
	return item, nil
}

func (s *PostgresStore) DeleteCategory(ctx context.Context, id string) error {
	var dependents int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM services WHERE category_id=$1`, id).Scan(&dependents); err != nil {
		return fmt.Errorf("count category services: %w", err)
	}
	if dependents > 0 {
		return &ReferencedError{Collection: "services", Dependents: dependents}
	}
	return s.deleteAndRenumber(ctx, "categories", id)
}

// ── Services ──

func (s *PostgresStore) ListServices(ctx context.Context, includeInactive bool) ([]Service, error) {
	query := `
		SELECT id, category_id, title, content, icon, sort_order, is_active, created_at, updated_at
		FROM services
	`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY sort_order ASC, created_at ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	items := make([]Service, 0)
	for rows.Next() {
		var item Service
		if err := rows.Scan(&item.ID, &item.CategoryID, &item.Title, &item.Content, &item.Icon, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetService(ctx context.Context, id string) (Service, error) {
	var item Service
	err := s.db.QueryRowContext(ctx, `
		SELECT id, category_id, title, content, icon, sort_order, is_active, created_at, updated_at
		FROM services WHERE id=$1
	`, id).Scan(&item.ID, &item.CategoryID, &item.Title, &item.Content, &item.Icon, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Service{}, err
	}
	return item, nil
}

func (s *PostgresStore) InsertService(ctx context.Context, item Service) (Service, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO services (id, category_id, title, content, icon, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM services), $6)
		RETURNING id, category_id, title, content, icon, sort_order, is_active, created_at, updated_at
	`, item.ID, item.CategoryID, item.Title, item.Content, item.Icon, item.IsActive).
		Scan(&item.ID, &item.CategoryID, &item.Title, &item.Content, &item.Icon, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Service{}, fmt.Errorf("insert service: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) UpdateService(ctx context.Context, item Service) (Service, error) {
	err := s.db.QueryRowContext(ctx, `
		UPDATE services SET category_id=$2, title=$3, content=$4, icon=$5, is_active=$6, updated_at=NOW()
		WHERE id=$1
		RETURNING id, category_id, title, content, icon, sort_order, is_active, created_at, updated_at
	`, item.ID, item.CategoryID, item.Title, item.Content, item.Icon, item.IsActive).
		Scan(&item.ID, &item.CategoryID, &item.Title, &item.Content, &item.Icon, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Service{}, err
	}
	return item, nil
}

func (s *PostgresStore) DeleteService(ctx context.Context, id string) error {
	return s.deleteAndRenumber(ctx, "services", id)
}

// ── Price categories ──

func (s *PostgresStore) ListPriceCategories(ctx context.Context, includeInactive bool) ([]PriceCategory, error) {
	query := `
		SELECT id, name, sort_order, is_active, created_at, updated_at
		FROM price_categories
	`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY sort_order ASC, created_at ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list price categories: %w", err)
	}
	defer rows.Close()

	items := make([]PriceCategory, 0)
	for rows.Next() {
		var item PriceCategory
		if err := rows.Scan(&item.ID, &item.Name, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan price category: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price categories: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetPriceCategory(ctx context.Context, id string) (PriceCategory, error) {
	var item PriceCategory
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, sort_order, is_active, created_at, updated_at
		FROM price_categories WHERE id=$1
	`, id).Scan(&item.ID, &item.Name, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return PriceCategory{}, err
	}
	return item, nil
}

func (s *PostgresStore) InsertPriceCategory(ctx context.Context, item PriceCategory) (PriceCategory, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO price_categories (id, name, sort_order, is_active)
		VALUES ($1, $2, (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM price_categories), $3)
		RETURNING id, name, sort_order, is_active, created_at, updated_at
	`, item.ID, item.Name, item.IsActive).
		Scan(&item.ID, &item.Name, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return PriceCategory{}, fmt.Errorf("insert price category: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) UpdatePriceCategory(ctx context.Context, id, name string, isActive bool) (PriceCategory, error) {
	var item PriceCategory
	err := s.db.QueryRowContext(ctx, `
		UPDATE price_categories SET name=$2, is_active=$3, updated_at=NOW()
		WHERE id=$1
		RETURNING id, name, sort_order, is_active, created_at, updated_at
	`, id, name, isActive).
		Scan(&item.ID, &item.Name, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return PriceCategory{}, err
	}
	return item, nil
}

func (s *PostgresStore) DeletePriceCategory(ctx context.Context, id string) error {
	var dependents int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM price_items WHERE category_id=$1`, id).Scan(&dependents); err != nil {
		return fmt.Errorf("count price items: %w", err)
	}
	if dependents > 0 {
		return &ReferencedError{Collection: "price items", Dependents: dependents}
	}
	return s.deleteAndRenumber(ctx, "price_categories", id)
}

// ── Price items ──

func (s *PostgresStore) ListPriceItems(ctx context.Context, includeInactive bool) ([]PriceItem, error) {
	query := `
		SELECT id, category_id, name, price_from, price_to, price_note, sort_order, is_active, created_at, updated_at
		FROM price_items
	`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY sort_order ASC, created_at ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list price items: %w", err)
	}
	defer rows.Close()

	items := make([]PriceItem, 0)
	for rows.Next() {
		var item PriceItem
		if err := rows.Scan(&item.ID, &item.CategoryID, &item.Name, &item.PriceFrom, &item.PriceTo, &item.PriceNote, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan price item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price items: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) InsertPriceItem(ctx context.Context, item PriceItem) (PriceItem, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO price_items (id, category_id, name, price_from, price_to, price_note, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM price_items), $7)
		RETURNING id, category_id, name, price_from, price_to, price_note, sort_order, is_active, created_at, updated_at
	`, item.ID, item.CategoryID, item.Name, item.PriceFrom, item.PriceTo, item.PriceNote, item.IsActive).
		Scan(&item.ID, &item.CategoryID, &item.Name, &item.PriceFrom, &item.PriceTo, &item.PriceNote, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return PriceItem{}, fmt.Errorf("insert price item: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) UpdatePriceItem(ctx context.Context, item PriceItem) (PriceItem, error) {
	err := s.db.QueryRowContext(ctx, `
		UPDATE price_items SET category_id=$2, name=$3, price_from=$4, price_to=$5, price_note=$6, is_active=$7, updated_at=NOW()
		WHERE id=$1
		RETURNING id, category_id, name, price_from, price_to, price_note, sort_order, is_active, created_at, updated_at
	`, item.ID, item.CategoryID, item.Name, item.PriceFrom, item.PriceTo, item.PriceNote, item.IsActive).
		Scan(&item.ID, &item.CategoryID, &item.Name, &item.PriceFrom, &item.PriceTo, &item.PriceNote, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return PriceItem{}, err
	}
	return item, nil
}

func (s *PostgresStore) DeletePriceItem(ctx context.Context, id string) error {
	return s.deleteAndRenumber(ctx, "price_items", id)
}

// ── FAQs ──

func (s *PostgresStore) ListFAQs(ctx context.Context, includeInactive bool) ([]FAQ, error) {
	query := `
		SELECT id, question, answer, sort_order, is_active, created_at, updated_at
		FROM faqs
	`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY sort_order ASC, created_at ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list faqs: %w", err)
	}
	defer rows.Close()

	items := make([]FAQ, 0)
	for rows.Next() {
		var item FAQ
		if err := rows.Scan(&item.ID, &item.Question, &item.Answer, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan faq: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate faqs: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetFAQ(ctx context.Context, id string) (FAQ, error) {
	var item FAQ
	err := s.db.QueryRowContext(ctx, `
		SELECT id, question, answer, sort_order, is_active, created_at, updated_at
		FROM faqs WHERE id=$1
	`, id).Scan(&item.ID, &item.Question, &item.Answer, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return FAQ{}, err
	}
	return item, nil
}

func (s *PostgresStore) InsertFAQ(ctx context.Context, item FAQ) (FAQ, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO faqs (id, question, answer, sort_order, is_active)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM faqs), $4)
		RETURNING id, question, answer, sort_order, is_active, created_at, updated_at
	`, item.ID, item.Question, item.Answer, item.IsActive).
		Scan(&item.ID, &item.Question, &item.Answer, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return FAQ{}, fmt.Errorf("insert faq: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) UpdateFAQ(ctx context.Context, item FAQ) (FAQ, error) {
	err := s.db.QueryRowContext(ctx, `
		UPDATE faqs SET question=$2, answer=$3, is_active=$4, updated_at=NOW()
		WHERE id=$1
		RETURNING id, question, answer, sort_order, is_active, created_at, updated_at
	`, item.ID, item.Question, item.Answer, item.IsActive).
		Scan(&item.ID, &item.Question, &item.Answer, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return FAQ{}, err
	}
	return item, nil
}

func (s *PostgresStore) DeleteFAQ(ctx context.Context, id string) error {
	return s.deleteAndRenumber(ctx, "faqs", id)
}

// ── Team members ──

func (s *PostgresStore) ListTeamMembers(ctx context.Context, includeInactive bool) ([]TeamMember, error) {
	query := `
		SELECT id, name, title, bio, image_path, sort_order, is_active, created_at, updated_at
		FROM team_members
	`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY sort_order ASC, created_at ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	defer rows.Close()

	items := make([]TeamMember, 0)
	for rows.Next() {
		var item TeamMember
		if err := rows.Scan(&item.ID, &item.Name, &item.Title, &item.Bio, &item.ImagePath, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate team members: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetTeamMember(ctx context.Context, id string) (TeamMember, error) {
	var item TeamMember
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, title, bio, image_path, sort_order, is_active, created_at, updated_at
		FROM team_members WHERE id=$1
	`, id).Scan(&item.ID, &item.Name, &item.Title, &item.Bio, &item.ImagePath, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return TeamMember{}, err
	}
	return item, nil
}

func (s *PostgresStore) InsertTeamMember(ctx context.Context, item TeamMember) (TeamMember, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO team_members (id, name, title, bio, image_path, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM team_members), $6)
		RETURNING id, name, title, bio, image_path, sort_order, is_active, created_at, updated_at
	`, item.ID, item.Name, item.Title, item.Bio, item.ImagePath, item.IsActive).
		Scan(&item.ID, &item.Name, &item.Title, &item.Bio, &item.ImagePath, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return TeamMember{}, fmt.Errorf("insert team member: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) UpdateTeamMember(ctx context.Context, item TeamMember) (TeamMember, error) {
	err := s.db.QueryRowContext(ctx, `
		UPDATE team_members SET name=$2, title=$3, bio=$4, image_path=$5, is_active=$6, updated_at=NOW()
		WHERE id=$1
		RETURNING id, name, title, bio, image_path, sort_order, is_active, created_at, updated_at
	`, item.ID, item.Name, item.Title, item.Bio, item.ImagePath, item.IsActive).
		Scan(&item.ID, &item.Name, &item.Title, &item.Bio, &item.ImagePath, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return TeamMember{}, err
	}
	return item, nil
}

func (s *PostgresStore) DeleteTeamMember(ctx context.Context, id string) error {
	return s.deleteAndRenumber(ctx, "team_members", id)
}

// ── Instagram posts ──

func (s *PostgresStore) ListInstagramPosts(ctx context.Context, includeInactive bool) ([]InstagramPost, error) {
	query := `
		SELECT id, image_path, caption, permalink, sort_order, is_active, created_at, updated_at
		FROM instagram_posts
	`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY sort_order ASC, created_at ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list instagram posts: %w", err)
	}
	defer rows.Close()

	items := make([]InstagramPost, 0)
	for rows.Next() {
		var item InstagramPost
		if err := rows.Scan(&item.ID, &item.ImagePath, &item.Caption, &item.Permalink, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan instagram post: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate instagram posts: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetInstagramPost(ctx context.Context, id string) (InstagramPost, error) {
	var item InstagramPost
	err := s.db.QueryRowContext(ctx, `
		SELECT id, image_path, caption, permalink, sort_order, is_active, created_at, updated_at
		FROM instagram_posts WHERE id=$1
	`, id).Scan(&item.ID, &item.ImagePath, &item.Caption, &item.Permalink, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return InstagramPost{}, err
	}
	return item, nil
}

func (s *PostgresStore) InsertInstagramPost(ctx context.Context, item InstagramPost) (InstagramPost, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO instagram_posts (id, image_path, caption, permalink, sort_order, is_active)
		VALUES ($1, $2, $3, $4, (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM instagram_posts), $5)
		RETURNING id, image_path, caption, permalink, sort_order, is_active, created_at, updated_at
	`, item.ID, item.ImagePath, item.Caption, item.Permalink, item.IsActive).
		Scan(&item.ID, &item.ImagePath, &item.Caption, &item.Permalink, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return InstagramPost{}, fmt.Errorf("insert instagram post: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) UpdateInstagramPost(ctx context.Context, item InstagramPost) (InstagramPost, error) {
	err := s.db.QueryRowContext(ctx, `
		UPDATE instagram_posts SET image_path=$2, caption=$3, permalink=$4, is_active=$5, updated_at=NOW()
		WHERE id=$1
		RETURNING id, image_path, caption, permalink, sort_order, is_active, created_at, updated_at
	`, item.ID, item.ImagePath, item.Caption, item.Permalink, item.IsActive).
		Scan(&item.ID, &item.ImagePath, &item.Caption, &item.Permalink, &item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return InstagramPost{}, err
	}
	return item, nil
}

func (s *PostgresStore) DeleteInstagramPost(ctx context.Context, id string) error {
	return s.deleteAndRenumber(ctx, "instagram_posts", id)
}

// IsNotFound reports whether err is the store's missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
