// Package store persists accounts, community posts, wrong-answer notes and
// support messages in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/interviewace/api/internal/interview"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

const timeLayout = "2006-01-02T15:04:05.000Z"

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

func (s *SQLiteStore) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Users.

func (s *SQLiteStore) CreateUser(ctx context.Context, name, email, passwordHash string) (interview.User, error) {
	u := interview.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
	}
	created := s.timestamp()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, u.ID, u.Name, u.Email, u.PasswordHash, created)
	if isUniqueViolation(err) {
		return interview.User{}, ErrConflict
	}
	if err != nil {
		return interview.User{}, fmt.Errorf("inserting user: %w", err)
	}
	u.CreatedAt = parseTime(created)
	return u, nil
}

func (s *SQLiteStore) UserByEmail(ctx context.Context, email string) (interview.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?
	`, strings.ToLower(strings.TrimSpace(email))))
}

func (s *SQLiteStore) UserByID(ctx context.Context, id string) (interview.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?
	`, id))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (interview.User, error) {
	var u interview.User
	var created string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return interview.User{}, ErrNotFound
	}
	if err != nil {
		return interview.User{}, fmt.Errorf("scanning user: %w", err)
	}
	u.CreatedAt = parseTime(created)
	return u, nil
}

// Posts.

// ListPosts returns posts newest first. An empty category or PostAll lists
// every category.
func (s *SQLiteStore) ListPosts(ctx context.Context, category interview.PostCategory) ([]interview.Post, error) {
	query := `SELECT id, title, content, author, category, likes, comments, tags, created_at FROM posts`
	var args []any
	if category != "" && category != interview.PostAll {
		query += ` WHERE category = ?`
		args = append(args, string(category))
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	defer rows.Close()

	posts := []interview.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (interview.Post, error) {
	var p interview.Post
	var tags, created string
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Author, &p.Category, &p.Likes, &p.Comments, &tags, &created); err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return p, fmt.Errorf("decoding tags of post %s: %w", p.ID, err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.CreatedAt = parseTime(created)
	return p, nil
}

// CreatePost stores a post built by interview.NewPost. userID may be empty.
func (s *SQLiteStore) CreatePost(ctx context.Context, p interview.Post, userID string) (interview.Post, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return p, fmt.Errorf("encoding tags: %w", err)
	}
	created := s.timestamp()
	if !p.CreatedAt.IsZero() {
		created = p.CreatedAt.UTC().Format(timeLayout)
	}

	var owner sql.NullString
	if userID != "" {
		owner = sql.NullString{String: userID, Valid: true}
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO posts (id, title, content, author, user_id, category, likes, comments, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Title, p.Content, p.Author, owner, string(p.Category), p.Likes, p.Comments, string(tags), created)
	if err != nil {
		return p, fmt.Errorf("inserting post: %w", err)
	}
	p.CreatedAt = parseTime(created)
	return p, nil
}

func (s *SQLiteStore) LikePost(ctx context.Context, id string) (interview.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE posts SET likes = likes + 1 WHERE id = ?
		RETURNING id, title, content, author, category, likes, comments, tags, created_at
	`, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, fmt.Errorf("liking post: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) PostStats(ctx context.Context) (interview.PostStats, error) {
	var st interview.PostStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(likes), 0), COALESCE(SUM(comments), 0) FROM posts
	`).Scan(&st.Posts, &st.Likes, &st.Comments)
	if err != nil {
		return st, fmt.Errorf("querying post stats: %w", err)
	}
	return st, nil
}

// Wrong answers. Every query is scoped to the owning user.

const wrongAnswerColumns = `id, question_id, question, category, difficulty, user_answer, correct_answer, explanation, date, retry_count`

func scanWrongAnswer(row scanner) (interview.WrongAnswer, error) {
	var w interview.WrongAnswer
	err := row.Scan(&w.ID, &w.QuestionID, &w.Question, &w.Category, &w.Difficulty,
		&w.UserAnswer, &w.CorrectAnswer, &w.Explanation, &w.Date, &w.RetryCount)
	return w, err
}

func (s *SQLiteStore) ListWrongAnswers(ctx context.Context, owner, category string) ([]interview.WrongAnswer, error) {
	query := `SELECT ` + wrongAnswerColumns + ` FROM wrong_answers WHERE owner = ?`
	args := []any{owner}
	if category != "" && category != string(interview.PostAll) {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying wrong answers: %w", err)
	}
	defer rows.Close()

	out := []interview.WrongAnswer{}
	for rows.Next() {
		w, err := scanWrongAnswer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning wrong answer: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// WrongAnswerCategories lists the distinct categories in the owner's notes.
func (s *SQLiteStore) WrongAnswerCategories(ctx context.Context, owner string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT category FROM wrong_answers WHERE owner = ? ORDER BY category
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("querying wrong answer categories: %w", err)
	}
	defer rows.Close()

	cats := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (s *SQLiteStore) RecordWrongAnswer(ctx context.Context, owner string, w interview.WrongAnswer) (interview.WrongAnswer, error) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.Date == "" {
		w.Date = s.now().UTC().Format(time.DateOnly)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wrong_answers (id, owner, question_id, question, category, difficulty,
			user_answer, correct_answer, explanation, date, retry_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, w.ID, owner, w.QuestionID, w.Question, w.Category, string(w.Difficulty),
		w.UserAnswer, w.CorrectAnswer, w.Explanation, w.Date, w.RetryCount, s.timestamp())
	if err != nil {
		return w, fmt.Errorf("inserting wrong answer: %w", err)
	}
	return w, nil
}

func (s *SQLiteStore) GetWrongAnswer(ctx context.Context, owner, id string) (interview.WrongAnswer, error) {
	w, err := scanWrongAnswer(s.db.QueryRowContext(ctx,
		`SELECT `+wrongAnswerColumns+` FROM wrong_answers WHERE owner = ? AND id = ?`, owner, id))
	if errors.Is(err, sql.ErrNoRows) {
		return w, ErrNotFound
	}
	if err != nil {
		return w, fmt.Errorf("querying wrong answer: %w", err)
	}
	return w, nil
}

func (s *SQLiteStore) IncrementRetry(ctx context.Context, owner, id string) (interview.WrongAnswer, error) {
	w, err := scanWrongAnswer(s.db.QueryRowContext(ctx, `
		UPDATE wrong_answers SET retry_count = retry_count + 1
		WHERE owner = ? AND id = ?
		RETURNING `+wrongAnswerColumns, owner, id))
	if errors.Is(err, sql.ErrNoRows) {
		return w, ErrNotFound
	}
	if err != nil {
		return w, fmt.Errorf("incrementing retry count: %w", err)
	}
	return w, nil
}

func (s *SQLiteStore) DeleteWrongAnswer(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM wrong_answers WHERE owner = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("deleting wrong answer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Support.

func (s *SQLiteStore) SaveContactMessage(ctx context.Context, m interview.ContactMessage) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contact_messages (id, name, email, subject, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, m.Name, m.Email, m.Subject, m.Message, s.timestamp())
	if err != nil {
		return "", fmt.Errorf("inserting contact message: %w", err)
	}
	return id, nil
}
