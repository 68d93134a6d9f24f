package scoring

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
)

const (
	// MaxQuestionScore is the most a single free-text answer can earn
	MaxQuestionScore = 2
	// MinDetailedAnswerLength is exclusive: the trimmed answer must be longer
	MinDetailedAnswerLength = 50
)

// BatteryQuestion is one free-text question of the automatic interview
type BatteryQuestion struct {
	ID       string   `json:"id" mapstructure:"id"`
	Prompt   string   `json:"prompt" mapstructure:"prompt"`
	Keywords []string `json:"keywords" mapstructure:"keywords"`
}

// DefaultBattery is the standard eight-question developer interview
func DefaultBattery() []BatteryQuestion {
	return []BatteryQuestion{
		{ID: "1", Prompt: "Cuéntame un poco sobre ti.", Keywords: []string{"desarrollador", "tecnologías", "compromiso"}},
		{ID: "2", Prompt: "¿Por qué te interesa este puesto de desarrollador?", Keywords: []string{"motivación", "creciendo", "aprendiendo"}},
		{ID: "3", Prompt: "¿Cuál consideras que ha sido tu mayor logro profesional?", Keywords: []string{"logro", "liderar", "gestión", "proyecto"}},
		{ID: "4", Prompt: "¿Cómo manejas situaciones de presión en el trabajo?", Keywords: []string{"presión", "calma", "priorizar", "planificación"}},
		{ID: "5", Prompt: "¿Prefieres trabajar solo o en equipo? ¿Por qué?", Keywords: []string{"colaboración", "equipo", "soluciones"}},
		{ID: "6", Prompt: "¿Dónde te ves profesionalmente dentro de 5 años?", Keywords: []string{"objetivo", "liderazgo", "creciendo"}},
		{ID: "7", Prompt: "¿Por qué deberíamos contratarte para este puesto?", Keywords: []string{"responsabilidad", "experiencia", "adapto", "confiable"}},
		{ID: "8", Prompt: "¿Tienes experiencia previa relacionada con este tipo de trabajo?", Keywords: []string{"frameworks", "trabajado", "desarrolló"}},
	}
}

// BatteryFromKeywords builds a battery from a question id -> keywords
// mapping. Numeric ids are ordered numerically, the rest lexically after them.
func BatteryFromKeywords(sets map[string][]string) []BatteryQuestion {
	ids := make([]string, 0, len(sets))
	for id := range sets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ni, errI := strconv.Atoi(ids[i])
		nj, errJ := strconv.Atoi(ids[j])
		switch {
		case errI == nil && errJ == nil:
			return ni < nj
		case errI == nil:
			return true
		case errJ == nil:
			return false
		}
		return ids[i] < ids[j]
	})

	battery := make([]BatteryQuestion, 0, len(ids))
	for _, id := range ids {
		battery = append(battery, BatteryQuestion{ID: id, Keywords: sets[id]})
	}
	return battery
}

// KeywordScorer scores free-text answers against per-question keyword sets
type KeywordScorer struct {
	battery  []BatteryQuestion
	keywords map[string][]string
}

// NewKeywordScorer normalizes the battery's keywords. Questions need unique,
// non-empty ids.
func NewKeywordScorer(battery []BatteryQuestion) (*KeywordScorer, error) {
	if len(battery) == 0 {
		return nil, apperrors.NewConfigurationError("keyword battery is empty", nil)
	}

	s := &KeywordScorer{
		battery:  make([]BatteryQuestion, 0, len(battery)),
		keywords: make(map[string][]string, len(battery)),
	}

	for _, q := range battery {
		id := strings.TrimSpace(q.ID)
		if id == "" {
			return nil, apperrors.NewConfigurationError("keyword battery question without id", nil)
		}
		if _, dup := s.keywords[id]; dup {
			return nil, apperrors.NewConfigurationError(fmt.Sprintf("duplicate keyword battery question %q", id), nil)
		}

		kws := make([]string, 0, len(q.Keywords))
		for _, kw := range q.Keywords {
			// a blank keyword would match every answer
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				kws = append(kws, kw)
			}
		}

		s.keywords[id] = kws
		s.battery = append(s.battery, BatteryQuestion{ID: id, Prompt: q.Prompt, Keywords: kws})
	}

	return s, nil
}

// Battery returns the normalized questions in battery order
func (s *KeywordScorer) Battery() []BatteryQuestion {
	return append([]BatteryQuestion(nil), s.battery...)
}

// MaxTotal is the best attainable battery total
func (s *KeywordScorer) MaxTotal() int {
	return MaxQuestionScore * len(s.battery)
}

// Classify classifies a total of this scorer's battery
func (s *KeywordScorer) Classify(total int) (Classification, error) {
	return ClassifyTotal(total, s.MaxTotal())
}

// ScoreText awards one point for a detailed answer and one for mentioning any
// keyword. Blank answers score 0; callers reject them before scoring.
func ScoreText(answer string, keywords []string) int {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return 0
	}

	score := 0
	if utf8.RuneCountInString(trimmed) > MinDetailedAnswerLength {
		score++
	}

	lowered := strings.ToLower(answer)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lowered, strings.ToLower(kw)) {
			score++
			break
		}
	}

	return score
}

// Score scores an answer to the question with the given id
func (s *KeywordScorer) Score(questionID, answer string) (int, error) {
	keywords, ok := s.keywords[questionID]
	if !ok {
		return 0, apperrors.NewValidationError("unknown battery question", questionID)
	}
	if strings.TrimSpace(answer) == "" {
		return 0, apperrors.NewValidationError("answer is empty", questionID)
	}
	return ScoreText(answer, keywords), nil
}

// ScoreAt scores an answer to the question at a zero-based battery position
func (s *KeywordScorer) ScoreAt(index int, answer string) (int, error) {
	if index < 0 || index >= len(s.battery) {
		return 0, apperrors.NewValidationError("question index out of range", index)
	}
	return s.Score(s.battery[index].ID, answer)
}

// Answer is a free-text answer to one battery question
type Answer struct {
	QuestionID string `json:"question_id" validate:"required"`
	Text       string `json:"text"`
}

// QuestionScore is the automatic score of one battery answer
type QuestionScore struct {
	QuestionID string `json:"question_id"`
	Score      int    `json:"score"`
}

// BatteryResult is the automatic evaluation of a whole battery
type BatteryResult struct {
	Scores         []QuestionScore `json:"scores"`
	Total          int             `json:"total"`
	MaxTotal       int             `json:"max_total"`
	Classification Classification  `json:"classification"`
}

// ScoreBattery scores one answer per battery question. The battery is
// rejected as incomplete when any question is unanswered or blank.
func (s *KeywordScorer) ScoreBattery(answers []Answer) (BatteryResult, error) {
	byID := make(map[string]string, len(answers))
	for _, a := range answers {
		if _, ok := s.keywords[a.QuestionID]; !ok {
			return BatteryResult{}, apperrors.NewValidationError("unknown battery question", a.QuestionID)
		}
		if _, dup := byID[a.QuestionID]; dup {
			return BatteryResult{}, apperrors.NewValidationError("duplicate answer", a.QuestionID)
		}
		byID[a.QuestionID] = a.Text
	}

	missing := make(map[string]string)
	for _, q := range s.battery {
		if strings.TrimSpace(byID[q.ID]) == "" {
			missing["question_"+q.ID] = "answer is required"
		}
	}
	if len(missing) > 0 {
		return BatteryResult{}, apperrors.NewValidationErrorWithMap(missing)
	}

	result := BatteryResult{
		Scores:   make([]QuestionScore, 0, len(s.battery)),
		MaxTotal: s.MaxTotal(),
	}
	for _, q := range s.battery {
		score := ScoreText(byID[q.ID], q.Keywords)
		result.Scores = append(result.Scores, QuestionScore{QuestionID: q.ID, Score: score})
		result.Total += score
	}
	result.Classification = classify(result.Total)

	return result, nil
}

var defaultScorer = func() *KeywordScorer {
	s, err := NewKeywordScorer(DefaultBattery())
	if err != nil {
		panic(err)
	}
	return s
}()

// DefaultScorer returns the scorer for the standard battery
func DefaultScorer() *KeywordScorer {
	return defaultScorer
}

// ScoreFreeTextAnswer scores text against the standard battery question at
// the zero-based questionIndex
func ScoreFreeTextAnswer(text string, questionIndex int) (int, error) {
	return defaultScorer.ScoreAt(questionIndex, text)
}

func (s *KeywordScorer) has(questionID string) bool {
	_, ok := s.keywords[questionID]
	return ok
}
