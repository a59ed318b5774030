package interview

import (
	"errors"
	"strings"
	"time"
)

type PostCategory string

const (
	PostFrontend PostCategory = "frontend"
	PostBackend  PostCategory = "backend"
	PostDevOps   PostCategory = "devops"
	PostCS       PostCategory = "cs"
	PostGeneral  PostCategory = "general"

	// PostAll is the list filter that matches every category.
	PostAll PostCategory = "all"
)

func (c PostCategory) Valid() bool {
	switch c {
	case PostFrontend, PostBackend, PostDevOps, PostCS, PostGeneral:
		return true
	}
	return false
}

// Post is a community feed entry.
type Post struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	Author    string       `json:"author"`
	Category  PostCategory `json:"category"`
	Likes     int          `json:"likes"`
	Comments  int          `json:"comments"`
	Tags      []string     `json:"tags"`
	CreatedAt time.Time    `json:"createdAt"`
}

var (
	ErrPostTitleRequired   = errors.New("title and content are both required")
	ErrPostCategoryInvalid = errors.New("unknown post category")
)

// NewPost normalizes an authored post. Title and content are trimmed and
// must be non-empty; tags are trimmed, blanks dropped, duplicates removed.
func NewPost(title, content, author string, category PostCategory, tags []string) (Post, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return Post{}, ErrPostTitleRequired
	}
	if category == "" {
		category = PostFrontend
	}
	if !category.Valid() {
		return Post{}, ErrPostCategoryInvalid
	}

	clean := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		clean = append(clean, t)
	}

	author = strings.TrimSpace(author)
	if author == "" {
		author = "Anonymous"
	}

	return Post{
		Title:    title,
		Content:  content,
		Author:   author,
		Category: category,
		Tags:     clean,
	}, nil
}

// PostStats summarizes the feed for the header cards.
type PostStats struct {
	Posts    int `json:"posts"`
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
}

// WrongAnswer is an entry in a user's wrong-answer notebook.
type WrongAnswer struct {
	ID            string     `json:"id"`
	QuestionID    string     `json:"questionId,omitempty"`
	Question      string     `json:"question"`
	Category      string     `json:"category"`
	Difficulty    Difficulty `json:"difficulty"`
	UserAnswer    string     `json:"userAnswer"`
	CorrectAnswer string     `json:"correctAnswer"`
	Explanation   string     `json:"explanation"`
	Date          string     `json:"date"`
	RetryCount    int        `json:"retryCount"`
}

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
