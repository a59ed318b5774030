package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/interviewace/api/internal/interview"
)

const (
	DemoUserID    = "u0000000deadbeef"
	DemoUserEmail = "demo@interviewace.dev"
)

// SeedDemo creates the demo account, community posts and wrong-answer notes
// if no posts exist yet. Idempotent: does nothing on a seeded database.
func (s *SQLiteStore) SeedDemo(ctx context.Context, logger *slog.Logger, demoPasswordHash string) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		return fmt.Errorf("counting posts: %w", err)
	}
	if n > 0 {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`, DemoUserID, "Demo User", DemoUserEmail, demoPasswordHash, s.timestamp())
	if err != nil {
		return fmt.Errorf("seeding demo user: %w", err)
	}

	now := s.now()
	for _, p := range demoPosts(now) {
		if _, err := s.CreatePost(ctx, p, ""); err != nil {
			return fmt.Errorf("seeding post %s: %w", p.ID, err)
		}
	}
	for _, w := range demoWrongAnswers() {
		if _, err := s.RecordWrongAnswer(ctx, DemoUserID, w); err != nil {
			return fmt.Errorf("seeding wrong answer %s: %w", w.ID, err)
		}
	}

	logger.Info("demo data seeded", "user", DemoUserEmail)
	return nil
}

func demoPosts(now time.Time) []interview.Post {
	return []interview.Post{
		{
			ID:        "p0000001",
			Title:     "The React questions that come up most in frontend interviews",
			Content:   "Based on my recent interviews, here is a list of the React questions I was asked most often...",
			Author:    "Kim Dev",
			Category:  interview.PostFrontend,
			Likes:     24,
			Comments:  8,
			Tags:      []string{"React", "JavaScript", "Interview review"},
			CreatedAt: now.Add(-2 * time.Hour),
		},
		{
			ID:        "p0000002",
			Title:     "Spring Boot interview questions (3 years of experience)",
			Content:   "Sharing the Java Spring questions I got in real interviews and how I approached the answers...",
			Author:    "Park Backend",
			Category:  interview.PostBackend,
			Likes:     18,
			Comments:  12,
			Tags:      []string{"Java", "Spring", "Experienced hire"},
			CreatedAt: now.Add(-5 * time.Hour),
		},
		{
			ID:        "p0000003",
			Title:     "Tips for AWS infrastructure interviews",
			Content:   "These are the AWS questions I prepared while moving into a DevOps engineering role...",
			Author:    "Lee DevOps",
			Category:  interview.PostDevOps,
			Likes:     31,
			Comments:  6,
			Tags:      []string{"AWS", "DevOps", "Job change"},
			CreatedAt: now.Add(-24 * time.Hour),
		},
		{
			ID:        "p0000004",
			Title:     "A complete guide to networking CS questions",
			Content:   "A structured summary of networking CS questions: TCP/UDP, HTTP/HTTPS, DNS and more...",
			Author:    "Choi CS Master",
			Category:  interview.PostCS,
			Likes:     45,
			Comments:  15,
			Tags:      []string{"Network", "CS", "New grad"},
			CreatedAt: now.Add(-48 * time.Hour),
		},
	}
}

func demoWrongAnswers() []interview.WrongAnswer {
	return []interview.WrongAnswer{
		{
			ID:            "w0000001",
			Question:      "What is the role of the second argument (the dependency array) of useEffect in React?",
			Category:      "React",
			Difficulty:    interview.DifficultyMedium,
			UserAnswer:    "It runs every time the component renders.",
			CorrectAnswer: "The effect runs only when one of the values in the dependency array changes.",
			Explanation:   "The second argument is the dependency array; the effect re-runs only when a value in it changes. Passing an empty array ([]) runs it only on mount and unmount.",
			Date:          "2024-01-15",
			RetryCount:    2,
		},
		{
			ID:            "w0000002",
			QuestionID:    "cs_001",
			Question:      "Explain the main differences between TCP and UDP.",
			Category:      "Network",
			Difficulty:    interview.DifficultyMedium,
			UserAnswer:    "TCP is fast and UDP is slow.",
			CorrectAnswer: "TCP is connection-oriented and guarantees reliability; UDP is connectionless and focuses on fast delivery.",
			Explanation:   "TCP sets up a connection with a 3-way handshake and guarantees order and correctness of delivery. UDP sends data without a connection and does not guarantee reliability.",
			Date:          "2024-01-14",
			RetryCount:    1,
		},
		{
			ID:            "w0000003",
			Question:      "What does the @Autowired annotation do in Spring Boot?",
			Category:      "Spring",
			Difficulty:    interview.DifficultyEasy,
			UserAnswer:    "It creates the class automatically.",
			CorrectAnswer: "It performs dependency injection automatically.",
			Explanation:   "@Autowired finds a bean of the matching type in the Spring container and injects it. It can be used on constructors, fields and methods.",
			Date:          "2024-01-13",
			RetryCount:    0,
		},
	}
}
