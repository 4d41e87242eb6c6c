package question

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dsamate/dsamate/internal/identity"
	httperrors "github.com/dsamate/dsamate/pkg/http/errors"
)

type questionStore interface {
	List(ctx context.Context, q ListQuery) ([]Question, error)
	Get(ctx context.Context, id uuid.UUID) (Question, error)
	Insert(ctx context.Context, q Question) (Question, error)
	InsertMany(ctx context.Context, qs []Question) ([]Question, error)
	TitleExists(ctx context.Context, title string) (bool, error)
	ExistingTitles(ctx context.Context, normalized []string) ([]string, error)
	CountByTopic(ctx context.Context) (map[string]int, error)
}

type statusStore interface {
	ForUser(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]*time.Time, error)
	UpsertSolved(ctx context.Context, userID, questionID uuid.UUID, solvedAt time.Time) error
	SolvedQuestions(ctx context.Context, userID uuid.UUID) ([]Question, error)
	SolvedCountByTopic(ctx context.Context, userID uuid.UUID) (map[string]int, error)
}

// Service implements the question catalog operations: listing with the
// per-caller solved overlay, creation, mark-solved, and progress aggregation.
// It holds no state beyond the injected store handles.
type Service struct {
	questions questionStore
	statuses  statusStore
	logger    zerolog.Logger
	now       func() time.Time
}

// NewService creates the question service.
func NewService(questions questionStore, statuses statusStore, logger zerolog.Logger) *Service {
	return &Service{
		questions: questions,
		statuses:  statuses,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns a filtered, sorted, paginated page of question views. The
// caller's status rows are materialized up front so the solved filter and
// the overlay both work from the same snapshot.
func (s *Service) List(ctx context.Context, rc *identity.RequestContext, p ListParams) ([]View, error) {
	statuses, err := s.statusesFor(ctx, rc)
	if err != nil {
		return nil, err
	}

	q := ListQuery{
		Ascending: p.Ascending,
		Offset:    (p.PageNumber - 1) * p.PageSize,
		Limit:     p.PageSize,
	}

	if p.Column != "" && strings.TrimSpace(p.Query) != "" {
		switch strings.ToLower(p.Column) {
		case "title":
			q.TitleContains = strings.ToLower(p.Query)
		case "difficulty":
			d, ok := ParseDifficulty(p.Query)
			if !ok {
				return []View{}, nil
			}
			q.Difficulty = d
		case "topic":
			t, ok := ParseTopic(p.Query)
			if !ok {
				return []View{}, nil
			}
			q.Topic = t
		case "solved":
			if strings.ToLower(p.Query) == "true" {
				q.Solved = SolvedOnly
			} else {
				q.Solved = UnsolvedOnly
			}
			q.SolvedIDs = statusIDs(statuses)
		}
	}

	// Only title sorting is supported; anything else passes through unsorted.
	if strings.ToLower(p.SortBy) == "title" {
		q.SortByTitle = true
	}

	rows, err := s.questions.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	views := make([]View, 0, len(rows))
	for _, row := range rows {
		views = append(views, toView(row, statuses))
	}
	return views, nil
}

// Get returns a single question view with the caller's solved overlay.
func (s *Service) Get(ctx context.Context, rc *identity.RequestContext, id uuid.UUID) (View, error) {
	row, err := s.questions.Get(ctx, id)
	if err != nil {
		return View{}, err
	}

	statuses, err := s.statusesFor(ctx, rc)
	if err != nil {
		return View{}, err
	}
	return toView(row, statuses), nil
}

// Create inserts a single question, rejecting duplicate titles.
func (s *Service) Create(ctx context.Context, input CreateInput) (View, error) {
	q, err := fromInput(input)
	if err != nil {
		return View{}, err
	}

	exists, err := s.questions.TitleExists(ctx, q.Title)
	if err != nil {
		return View{}, fmt.Errorf("check title: %w", err)
	}
	if exists {
		return View{}, fmt.Errorf("question %q: %w", q.Title, httperrors.ErrAlreadyExists)
	}

	created, err := s.questions.Insert(ctx, q)
	if err != nil {
		return View{}, fmt.Errorf("insert question: %w", err)
	}

	s.logger.Info().Str("question_id", created.ID.String()).Str("title", created.Title).Msg("question created")
	return toView(created, nil), nil
}

// CreateBulk inserts a batch of questions all-or-nothing. Both duplicate
// checks run before any write: in-batch duplicates compare trimmed lowercase
// titles, then the whole batch is checked against stored titles.
func (s *Service) CreateBulk(ctx context.Context, inputs []CreateInput) ([]View, error) {
	qs := make([]Question, 0, len(inputs))
	normalized := make([]string, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	var dups []string

	for _, input := range inputs {
		q, err := fromInput(input)
		if err != nil {
			return nil, err
		}

		key := strings.ToLower(strings.TrimSpace(q.Title))
		if _, ok := seen[key]; ok {
			dups = append(dups, key)
		}
		seen[key] = struct{}{}

		qs = append(qs, q)
		normalized = append(normalized, key)
	}

	if len(dups) > 0 {
		return nil, fmt.Errorf("duplicate title(s) in request: %s: %w",
			strings.Join(dups, ", "), httperrors.ErrAlreadyExists)
	}

	existing, err := s.questions.ExistingTitles(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("check titles: %w", err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("title(s) already exist: %s: %w",
			strings.Join(existing, ", "), httperrors.ErrAlreadyExists)
	}

	created, err := s.questions.InsertMany(ctx, qs)
	if err != nil {
		return nil, fmt.Errorf("insert questions: %w", err)
	}

	s.logger.Info().Int("count", len(created)).Msg("questions bulk created")

	views := make([]View, 0, len(created))
	for _, q := range created {
		views = append(views, toView(q, nil))
	}
	return views, nil
}

// MarkSolved records that the caller solved a question. Repeated calls keep
// a single status row and refresh its timestamp.
func (s *Service) MarkSolved(ctx context.Context, rc *identity.RequestContext, questionID uuid.UUID) error {
	if rc == nil {
		return fmt.Errorf("no caller identity: %w", httperrors.ErrUnauthorized)
	}

	if _, err := s.questions.Get(ctx, questionID); err != nil {
		return fmt.Errorf("question %s: %w", questionID, err)
	}

	if err := s.statuses.UpsertSolved(ctx, rc.UserID, questionID, s.now().UTC()); err != nil {
		return fmt.Errorf("mark solved: %w", err)
	}

	s.logger.Info().
		Str("user_id", rc.UserID.String()).
		Str("question_id", questionID.String()).
		Msg("question marked solved")
	return nil
}

// SolvedByUser lists the questions behind the caller's status rows.
func (s *Service) SolvedByUser(ctx context.Context, rc *identity.RequestContext) ([]View, error) {
	if rc == nil {
		return nil, fmt.Errorf("no caller identity: %w", httperrors.ErrUnauthorized)
	}

	statuses, err := s.statuses.ForUser(ctx, rc.UserID)
	if err != nil {
		return nil, fmt.Errorf("load statuses: %w", err)
	}

	rows, err := s.statuses.SolvedQuestions(ctx, rc.UserID)
	if err != nil {
		return nil, fmt.Errorf("load solved questions: %w", err)
	}

	views := make([]View, 0, len(rows))
	for _, row := range rows {
		views = append(views, toView(row, statuses))
	}
	return views, nil
}

// Progress aggregates per-topic solved/total counts for the caller. Totals
// count every stored question; topics without questions are absent.
func (s *Service) Progress(ctx context.Context, rc *identity.RequestContext) (map[string]TopicProgress, error) {
	if rc == nil {
		return nil, fmt.Errorf("no caller identity: %w", httperrors.ErrUnauthorized)
	}

	totals, err := s.questions.CountByTopic(ctx)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}

	solved, err := s.statuses.SolvedCountByTopic(ctx, rc.UserID)
	if err != nil {
		return nil, fmt.Errorf("count solved: %w", err)
	}

	progress := make(map[string]TopicProgress, len(totals))
	for topic, total := range totals {
		progress[topic] = TopicProgress{Solved: solved[topic], Total: total}
	}
	return progress, nil
}

func (s *Service) statusesFor(ctx context.Context, rc *identity.RequestContext) (map[uuid.UUID]*time.Time, error) {
	if rc == nil {
		return nil, nil
	}
	statuses, err := s.statuses.ForUser(ctx, rc.UserID)
	if err != nil {
		return nil, fmt.Errorf("load statuses: %w", err)
	}
	return statuses, nil
}

func statusIDs(statuses map[uuid.UUID]*time.Time) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(statuses))
	for id := range statuses {
		ids = append(ids, id)
	}
	return ids
}

func toView(q Question, statuses map[uuid.UUID]*time.Time) View {
	v := View{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		Difficulty:  string(q.Difficulty),
		Topic:       string(q.Topic),
		Hint:        q.Hint,
	}
	if solvedAt, ok := statuses[q.ID]; ok {
		v.Solved = true
		v.SolvedAt = solvedAt
	}
	return v
}

const maxHintLength = 100

func fromInput(input CreateInput) (Question, error) {
	if strings.TrimSpace(input.Title) == "" {
		return Question{}, httperrors.NewValidation("title", "title is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return Question{}, httperrors.NewValidation("description", "description is required")
	}

	difficulty, ok := ParseDifficulty(input.Difficulty)
	if !ok {
		return Question{}, httperrors.NewValidation("difficulty", "must be one of Easy, Medium, Hard")
	}

	topic, ok := ParseTopic(input.Topic)
	if !ok {
		return Question{}, httperrors.NewValidation("topic", "unknown topic")
	}

	if len(input.Hint) > maxHintLength {
		return Question{}, httperrors.NewValidation("hint", "must be at most 100 characters")
	}

	return Question{
		Title:       input.Title,
		Description: input.Description,
		Difficulty:  difficulty,
		Topic:       topic,
		Hint:        input.Hint,
	}, nil
}
