package trivia

import (
	"math/rand/v2"
	"strings"

	"github.com/hunterjsb/k9/internal/dataset"
	"github.com/hunterjsb/k9/internal/logger"
)

// Question is one trivia prompt and its expected answer. The question text is its identity.
type Question struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// QuestionStore is an immutable, ordered set of questions. It is safe for concurrent use.
type QuestionStore struct {
	questions []Question
	byText    map[string]int
}

// NewQuestionStore builds a store from questions. When two entries share the same
// text the first one wins lookups.
func NewQuestionStore(questions []Question) *QuestionStore {
	s := &QuestionStore{
		questions: make([]Question, len(questions)),
		byText:    make(map[string]int, len(questions)),
	}
	copy(s.questions, questions)
	for i, q := range s.questions {
		if _, ok := s.byText[q.Question]; !ok {
			s.byText[q.Question] = i
		}
	}
	return s
}

// LoadQuestions reads the question set from path. A missing or malformed file yields
// an empty store rather than an error.
func LoadQuestions(path string) *QuestionStore {
	questions, err := dataset.Load[Question](path)
	if err != nil {
		logger.Warn("Failed to load trivia questions, continuing with an empty set", "path", path, "error", err)
		return NewQuestionStore(nil)
	}

	valid := questions[:0]
	for _, q := range questions {
		// posted messages come back trimmed
		q.Question = strings.TrimSpace(q.Question)
		if q.Question == "" || NormalizeAnswer(q.Answer) == "" {
			logger.Warn("Skipping incomplete trivia question", "question", q.Question)
			continue
		}
		valid = append(valid, q)
	}

	logger.Info("Loaded trivia questions", "count", len(valid), "path", path)
	return NewQuestionStore(valid)
}

// PickRandom returns a uniformly random question.
func (s *QuestionStore) PickRandom() (Question, error) {
	if len(s.questions) == 0 {
		return Question{}, ErrEmptySet
	}
	return s.questions[rand.IntN(len(s.questions))], nil
}

// FindByText returns the question whose text equals text exactly.
func (s *QuestionStore) FindByText(text string) (Question, bool) {
	i, ok := s.byText[text]
	if !ok {
		return Question{}, false
	}
	return s.questions[i], true
}

// Len returns the number of loaded questions.
func (s *QuestionStore) Len() int {
	return len(s.questions)
}

// All returns a copy of the loaded questions in load order.
func (s *QuestionStore) All() []Question {
	out := make([]Question, len(s.questions))
	copy(out, s.questions)
	return out
}
