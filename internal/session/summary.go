package session

import (
	"math"
	"strings"

	"github.com/interviewace/api/internal/interview"
)

// NotAnswered stands in for an empty answer on the summary.
const NotAnswered = "Not answered"

// Snapshot is a read-only view of a session.
type Snapshot struct {
	ID              string              `json:"id"`
	State           State               `json:"state"`
	Config          interview.Config    `json:"config"`
	Index           int                 `json:"index"`
	Total           int                 `json:"total"`
	Question        *interview.Question `json:"question,omitempty"`
	DifficultyLabel string              `json:"difficultyLabel,omitempty"`
	Draft           string              `json:"draft"`
	Remaining       int                 `json:"remaining"`
	Paused          bool                `json:"paused"`
	Progress        float64             `json:"progress"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:        s.id,
		State:     s.state,
		Config:    s.cfg,
		Index:     s.index,
		Total:     len(s.questions),
		Draft:     s.draft,
		Remaining: s.remaining,
		Paused:    s.paused,
	}
	if len(s.questions) > 0 {
		q := s.questions[s.index]
		snap.Question = &q
		snap.DifficultyLabel = q.Difficulty.Label()
		snap.Progress = float64(s.index+1) / float64(len(s.questions)) * 100
	}
	return snap
}

type SummaryItem struct {
	Number          int                  `json:"number"`
	QuestionID      string               `json:"questionId"`
	Question        string               `json:"question"`
	Category        string               `json:"category"`
	Difficulty      interview.Difficulty `json:"difficulty"`
	DifficultyLabel string               `json:"difficultyLabel"`
	Answer          string               `json:"answer"`
	Answered        bool                 `json:"answered"`
}

type Summary struct {
	Total      int           `json:"total"`
	Answered   int           `json:"answered"`
	Completion int           `json:"completion"`
	Items      []SummaryItem `json:"items"`
}

// Summary reports the answers once the interview is complete. An answer
// counts when it has any non-whitespace text.
func (s *Session) Summary() (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReviewing {
		return Summary{}, ErrNotReviewing
	}

	sum := Summary{
		Total: len(s.questions),
		Items: make([]SummaryItem, len(s.questions)),
	}
	for i, q := range s.questions {
		item := SummaryItem{
			Number:          i + 1,
			QuestionID:      q.ID,
			Question:        q.Question,
			Category:        q.Category,
			Difficulty:      q.Difficulty,
			DifficultyLabel: q.Difficulty.Label(),
			Answer:          NotAnswered,
		}
		if strings.TrimSpace(s.answers[i]) != "" {
			item.Answer = s.answers[i]
			item.Answered = true
			sum.Answered++
		}
		sum.Items[i] = item
	}
	if sum.Total > 0 {
		sum.Completion = int(math.Round(100 * float64(sum.Answered) / float64(sum.Total)))
	}
	return sum, nil
}
