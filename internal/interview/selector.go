package interview

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

// ShuffleMode picks how the candidate pool is randomized.
type ShuffleMode string

const (
	// ShuffleUniform is a Fisher-Yates shuffle; every order is equally likely.
	ShuffleUniform ShuffleMode = "uniform"
	// ShuffleComparator reorders with a coin-flip comparator. Orders are
	// biased towards the catalog order.
	ShuffleComparator ShuffleMode = "comparator"
)

func ParseShuffleMode(s string) (ShuffleMode, error) {
	switch m := ShuffleMode(s); m {
	case ShuffleUniform, ShuffleComparator:
		return m, nil
	}
	return "", fmt.Errorf("unknown shuffle mode %q", s)
}

// Selector draws practice questions from a catalog. It is safe for
// concurrent use.
type Selector struct {
	catalog         Catalog
	applyCategories bool
	mode            ShuffleMode

	mu  sync.Mutex
	rng *rand.Rand
}

type SelectorOption func(*Selector)

// WithCategoryFilter makes Select honour Config.Categories. Off by default:
// categories are then informational only.
func WithCategoryFilter(on bool) SelectorOption {
	return func(s *Selector) { s.applyCategories = on }
}

func WithShuffle(mode ShuffleMode) SelectorOption {
	return func(s *Selector) { s.mode = mode }
}

// WithRand injects the random source, mainly for tests.
func WithRand(r *rand.Rand) SelectorOption {
	return func(s *Selector) { s.rng = r }
}

func NewSelector(catalog Catalog, opts ...SelectorOption) *Selector {
	s := &Selector{
		catalog: catalog,
		mode:    ShuffleUniform,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s
}

// Select returns at most cfg.QuestionCount questions with distinct ids.
//
// Questions matching field, experience and company type come first. When
// there are fewer of those than requested, every other question of the
// same field joins the pool. The pool is shuffled and truncated.
func (s *Selector) Select(cfg Config) []Question {
	if cfg.QuestionCount <= 0 {
		return []Question{}
	}

	inTopics := func(Question) bool { return true }
	if s.applyCategories && len(cfg.Categories) > 0 {
		topics := topicSet(cfg.Categories)
		inTopics = func(q Question) bool {
			_, ok := topics[strings.ToLower(q.Category)]
			return ok
		}
	}

	pool := make([]Question, 0, len(s.catalog))
	picked := make(map[string]struct{}, len(s.catalog))
	for _, q := range s.catalog {
		if q.Matches(cfg) && inTopics(q) {
			pool = append(pool, q)
			picked[q.ID] = struct{}{}
		}
	}

	if len(pool) < cfg.QuestionCount {
		for _, q := range s.catalog {
			if _, dup := picked[q.ID]; dup {
				continue
			}
			if q.HasField(cfg.Field) && inTopics(q) {
				pool = append(pool, q)
				picked[q.ID] = struct{}{}
			}
		}
	}

	s.shuffle(pool)

	if len(pool) > cfg.QuestionCount {
		pool = pool[:cfg.QuestionCount]
	}
	return pool
}

func (s *Selector) shuffle(qs []Question) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.mode {
	case ShuffleComparator:
		// Insertion sort whose comparator is a coin flip.
		for i := 1; i < len(qs); i++ {
			for j := i; j > 0 && s.rng.IntN(2) == 0; j-- {
				qs[j], qs[j-1] = qs[j-1], qs[j]
			}
		}
	default:
		s.rng.Shuffle(len(qs), func(i, j int) {
			qs[i], qs[j] = qs[j], qs[i]
		})
	}
}
