package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/AnshRaj112/nutrameter-backend/internal/apperr"
	"github.com/AnshRaj112/nutrameter-backend/internal/database"
	"github.com/AnshRaj112/nutrameter-backend/internal/models"
)

// Postgres is the alternate durable store. Meal list and map fields are
// stored as JSONB.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Migrate(ctx context.Context) error {
	return pgErr(database.InitPostgresTables(ctx, s.db))
}

func (s *Postgres) Ping(ctx context.Context) error {
	return pgErr(s.db.PingContext(ctx))
}

const userColumns = `id, name, email, password_hash, weight, height, age, goal,
	daily_calorie_target, daily_water_target, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Weight, &u.Height,
		&u.Age, &u.Goal, &u.DailyCalorieTarget, &u.DailyWaterTarget, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Postgres) CreateUser(ctx context.Context, u *models.User) error {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, u.Name, u.Email, u.PasswordHash, u.Weight, u.Height, u.Age, u.Goal,
		u.DailyCalorieTarget, u.DailyWaterTarget, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("Email already in use")
		}
		return pgErr(err)
	}
	u.ID = id
	return nil
}

func (s *Postgres) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err != nil {
		return nil, pgErrNotFound(err, "User not found")
	}
	return u, nil
}

func (s *Postgres) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.NotFound("User not found")
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, pgErrNotFound(err, "User not found")
	}
	return u, nil
}

func (s *Postgres) UpdateUser(ctx context.Context, id string, update models.UserUpdate) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.NotFound("User not found")
	}

	var sets []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.Weight != nil {
		add("weight", *update.Weight)
	}
	if update.Height != nil {
		add("height", *update.Height)
	}
	if update.Age != nil {
		add("age", *update.Age)
	}
	if update.Goal != nil {
		add("goal", *update.Goal)
	}
	if update.DailyCalorieTarget != nil {
		add("daily_calorie_target", *update.DailyCalorieTarget)
	}
	if update.DailyWaterTarget != nil {
		add("daily_water_target", *update.DailyWaterTarget)
	}
	if len(sets) == 0 {
		return s.GetUserByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns)
	u, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, pgErrNotFound(err, "User not found")
	}
	return u, nil
}

const mealColumns = `id, user_id, name, image_url, meal_type, food_items, calories, macros,
	micronutrients, health_score, recommendations, is_ai_analyzed, created_at`

func scanMeal(row interface{ Scan(...any) error }) (models.Meal, error) {
	var (
		m                               models.Meal
		imageURL                        sql.NullString
		foodItems, macros, micros, recs []byte
	)
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &imageURL, &m.MealType, &foodItems, &m.Calories,
		&macros, &micros, &m.HealthScore, &recs, &m.IsAIAnalyzed, &m.CreatedAt)
	if err != nil {
		return m, err
	}
	m.ImageURL = imageURL.String
	if err := unmarshalJSONB(foodItems, &m.FoodItems); err != nil {
		return m, err
	}
	if err := unmarshalJSONB(macros, &m.Macros); err != nil {
		return m, err
	}
	if err := unmarshalJSONB(micros, &m.Micronutrients); err != nil {
		return m, err
	}
	if err := unmarshalJSONB(recs, &m.Recommendations); err != nil {
		return m, err
	}
	if m.FoodItems == nil {
		m.FoodItems = []string{}
	}
	if m.Recommendations == nil {
		m.Recommendations = []string{}
	}
	if m.Micronutrients == nil {
		m.Micronutrients = map[string]float64{}
	}
	return m, nil
}

func unmarshalJSONB(raw []byte, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		// Only plain slices, maps and structs are passed in.
		panic(err)
	}
	return b
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Postgres) CreateMeal(ctx context.Context, m *models.Meal) error {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meals (`+mealColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		id, m.UserID, m.Name, nullString(m.ImageURL), m.MealType, mustJSON(m.FoodItems), m.Calories,
		mustJSON(m.Macros), mustJSON(m.Micronutrients), m.HealthScore, mustJSON(m.Recommendations),
		m.IsAIAnalyzed, m.CreatedAt)
	if err != nil {
		return pgErr(err)
	}
	m.ID = id
	return nil
}

func (s *Postgres) ListMeals(ctx context.Context, userID string, filter models.MealFilter) ([]models.Meal, error) {
	meals := make([]models.Meal, 0)
	if _, err := uuid.Parse(userID); err != nil {
		return meals, nil
	}

	query := `SELECT ` + mealColumns + ` FROM meals WHERE user_id = $1`
	args := []any{userID}
	if filter.MealType != "" {
		args = append(args, filter.MealType)
		query += fmt.Sprintf(" AND meal_type = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pgErr(err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, pgErr(err)
		}
		meals = append(meals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, pgErr(err)
	}
	return meals, nil
}

// UpdateMeal reads, merges and writes the row inside one transaction with the
// row locked, so concurrent patches to the same meal do not lose fields.
func (s *Postgres) UpdateMeal(ctx context.Context, userID, mealID string, patch models.MealPatch) (*models.Meal, error) {
	if _, err := uuid.Parse(mealID); err != nil {
		return nil, apperr.NotFound("Meal not found")
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, apperr.NotFound("Meal not found")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, pgErr(err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+mealColumns+` FROM meals WHERE id = $1 AND user_id = $2 FOR UPDATE`, mealID, userID)
	m, err := scanMeal(row)
	if err != nil {
		return nil, pgErrNotFound(err, "Meal not found")
	}

	patch.Apply(&m)
	_, err = tx.ExecContext(ctx, `
		UPDATE meals SET name = $1, image_url = $2, meal_type = $3, food_items = $4, calories = $5,
			macros = $6, micronutrients = $7, health_score = $8, recommendations = $9, is_ai_analyzed = $10
		WHERE id = $11`,
		m.Name, nullString(m.ImageURL), m.MealType, mustJSON(m.FoodItems), m.Calories,
		mustJSON(m.Macros), mustJSON(m.Micronutrients), m.HealthScore, mustJSON(m.Recommendations),
		m.IsAIAnalyzed, mealID)
	if err != nil {
		return nil, pgErr(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, pgErr(err)
	}
	return &m, nil
}

func (s *Postgres) DeleteMeal(ctx context.Context, userID, mealID string) error {
	if _, err := uuid.Parse(mealID); err != nil {
		return apperr.NotFound("Meal not found")
	}
	if _, err := uuid.Parse(userID); err != nil {
		return apperr.NotFound("Meal not found")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM meals WHERE id = $1 AND user_id = $2`, mealID, userID)
	if err != nil {
		return pgErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return pgErr(err)
	}
	if n == 0 {
		return apperr.NotFound("Meal not found")
	}
	return nil
}

func (s *Postgres) CreateProgress(ctx context.Context, p *models.Progress) error {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO progress_entries (id, user_id, weight, water_intake, date, notes)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, p.UserID, p.Weight, p.WaterIntake, p.Date, nullString(p.Notes))
	if err != nil {
		return pgErr(err)
	}
	p.ID = id
	return nil
}

func (s *Postgres) ListProgress(ctx context.Context, userID string, limit int) ([]models.Progress, error) {
	entries := make([]models.Progress, 0)
	if _, err := uuid.Parse(userID); err != nil {
		return entries, nil
	}

	query := `SELECT id, user_id, weight, water_intake, date, notes
		FROM progress_entries WHERE user_id = $1 ORDER BY date DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pgErr(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p     models.Progress
			notes sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.Weight, &p.WaterIntake, &p.Date, &notes); err != nil {
			return nil, pgErr(err)
		}
		p.Notes = notes.String
		entries = append(entries, p)
	}
	if err := rows.Err(); err != nil {
		return nil, pgErr(err)
	}
	return entries, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func pgErr(err error) error {
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return apperr.Wrap(apperr.KindConflict, err, "duplicate key")
	case isPostgresUnavailable(err):
		return apperr.Unavailable(err)
	default:
		return apperr.Wrap(apperr.KindInternal, err, "postgres")
	}
}

func pgErrNotFound(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(msg)
	}
	return pgErr(err)
}

// isPostgresUnavailable covers connection failures (class 08), server
// shutdown (57P01..57P03), too many connections and driver-level broken
// connections.
func isPostgresUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		return strings.HasPrefix(code, "08") ||
			code == "57P01" || code == "57P02" || code == "57P03" || code == "53300"
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
