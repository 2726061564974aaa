package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultLogoTimeout = 5 * time.Second
	maxNicknameLength  = 32
	maxCommitAttempts  = 3
)

type Config struct {
	Pool     PoolSource
	Logos    LogoSource
	Sessions SessionRepository
	Results  ResultRecorder
	Notifier Notifier

	// Rand drives player selection and stat picks. It is only used while
	// the service lock is held.
	Rand        *rand.Rand
	Now         func() time.Time
	NewID       func() string
	LogoTimeout time.Duration
}

type StartInput struct {
	Nickname          string `json:"nickname,omitempty"`
	PreviousSessionID string `json:"previous_session_id,omitempty"`
}

type SubmitOutcome struct {
	Graded    bool     `json:"graded"`
	FocusStat StatCode `json:"focus_stat,omitempty"`
	Correct   int      `json:"correct"`
	View      View     `json:"view"`
}

// Service hosts quiz sessions. Every transition loads the session, applies
// one of the pure transition functions and stores the result while holding
// a single lock, so each transition is one indivisible update.
type Service struct {
	pool     PoolSource
	logos    LogoSource
	sessions SessionRepository
	results  ResultRecorder
	notifier Notifier

	mu          sync.Mutex
	rng         *rand.Rand
	now         func() time.Time
	newID       func() string
	logoTimeout time.Duration
	tasks       *logoTasks
}

func NewService(cfg Config) *Service {
	service := &Service{
		pool:        cfg.Pool,
		logos:       cfg.Logos,
		sessions:    cfg.Sessions,
		results:     cfg.Results,
		notifier:    cfg.Notifier,
		rng:         cfg.Rand,
		now:         cfg.Now,
		newID:       cfg.NewID,
		logoTimeout: cfg.LogoTimeout,
		tasks:       newLogoTasks(),
	}
	if service.sessions == nil {
		service.sessions = NewMemoryStore()
	}
	if service.rng == nil {
		service.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if service.now == nil {
		service.now = func() time.Time { return time.Now().UTC() }
	}
	if service.newID == nil {
		service.newID = uuid.NewString
	}
	if service.logoTimeout <= 0 {
		service.logoTimeout = defaultLogoTimeout
	}
	return service
}

// StartSession fetches the player pool and opens a session in the intro
// phase. When PreviousSessionID is set, players already shown in that
// session are avoided.
func (s *Service) StartSession(ctx context.Context, input StartInput) (View, error) {
	if s.pool == nil {
		return View{}, errors.New("player pool source is not configured")
	}

	used := UsedPlayers{}
	if previousID := strings.TrimSpace(input.PreviousSessionID); previousID != "" {
		previous, err := s.sessions.GetSession(ctx, previousID)
		if err != nil {
			return View{}, err
		}
		used = previous.Used
	}

	pool, err := s.pool.FetchPool(ctx)
	if err != nil {
		log.Printf("fetch player pool: %v", err)
		return View{}, fmt.Errorf("%w: %v", ErrPoolUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	players, used, err := SelectRound(pool, used, s.rng)
	if err != nil {
		return View{}, err
	}
	session, err := NewSession(s.newID(), players, used, PickStats(s.rng))
	if err != nil {
		return View{}, err
	}
	session.Nickname = normalizeNickname(input.Nickname)
	session.CreatedAt = s.now()

	session, err = s.commit(ctx, Session{}, session)
	if err != nil {
		return View{}, err
	}
	return session.View(), nil
}

func (s *Service) GetSession(ctx context.Context, sessionID string) (View, error) {
	session, err := s.sessions.GetSession(ctx, strings.TrimSpace(sessionID))
	if err != nil {
		return View{}, err
	}
	return session.View(), nil
}

func (s *Service) Begin(ctx context.Context, sessionID string) (View, error) {
	session, err := s.apply(ctx, sessionID, func(current Session) (Session, bool, error) {
		return Begin(current), current.Phase == PhaseIntro, nil
	})
	if err != nil {
		return View{}, err
	}
	return session.View(), nil
}

func (s *Service) SetAnswer(ctx context.Context, sessionID string, stat StatCode, value string) (View, error) {
	session, err := s.apply(ctx, sessionID, func(current Session) (Session, bool, error) {
		next, err := SetAnswer(current, stat, value)
		return next, err == nil, err
	})
	if err != nil {
		return View{}, err
	}
	return session.View(), nil
}

// Submit stores the given answers and grades the round. When a field is
// still empty nothing is stored and the outcome names the field to focus.
func (s *Service) Submit(ctx context.Context, sessionID string, answers map[StatCode]string) (SubmitOutcome, error) {
	var result SubmitResult
	session, err := s.apply(ctx, sessionID, func(current Session) (Session, bool, error) {
		next := current
		if current.Phase == PhaseAnswering {
			for _, stat := range sortedStats(answers) {
				var err error
				if next, err = SetAnswer(next, stat, answers[stat]); err != nil {
					return current, false, err
				}
			}
		}

		graded, res, err := Submit(next)
		if err != nil {
			return current, false, err
		}
		if res.MissingData {
			log.Printf("session %s round %d: %v", current.ID, current.Round.Index, ErrMissingPlayerData)
		}
		result = res
		if !res.Graded {
			return current, false, nil
		}
		return graded, !res.NoOp, nil
	})
	if err != nil {
		return SubmitOutcome{}, err
	}

	return SubmitOutcome{
		Graded:    result.Graded,
		FocusStat: result.FocusStat,
		Correct:   result.Correct,
		View:      session.View(),
	}, nil
}

// Advance moves a graded session to its next round, or finishes it.
// Advancing a finished session changes nothing.
func (s *Service) Advance(ctx context.Context, sessionID string) (View, error) {
	session, err := s.apply(ctx, sessionID, func(current Session) (Session, bool, error) {
		if current.IsDone() {
			return current, false, nil
		}
		next, err := Advance(current, PickStats(s.rng))
		return next, err == nil, err
	})
	if err != nil {
		return View{}, err
	}
	return session.View(), nil
}

// Wait blocks until in-flight team logo lookups have settled.
func (s *Service) Wait() {
	s.tasks.wait()
}

// Close cancels in-flight team logo lookups and waits for them to exit.
func (s *Service) Close() {
	s.tasks.cancelAll()
	s.tasks.wait()
}

func (s *Service) apply(ctx context.Context, sessionID string, transition func(Session) (Session, bool, error)) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessionID = strings.TrimSpace(sessionID)
	for attempt := 1; ; attempt++ {
		current, err := s.sessions.GetSession(ctx, sessionID)
		if err != nil {
			return Session{}, err
		}

		next, changed, err := transition(current)
		if err != nil {
			return current, err
		}
		if !changed {
			return current, nil
		}

		// Another replica may have stored a newer version in between.
		saved, err := s.commit(ctx, current, next)
		if errors.Is(err, ErrSessionConflict) && attempt < maxCommitAttempts {
			continue
		}
		return saved, err
	}
}

// commit stores next and runs the side effects of moving from previous to
// next. Callers hold s.mu.
func (s *Service) commit(ctx context.Context, previous, next Session) (Session, error) {
	next.UpdatedAt = s.now()
	next.Version = previous.Version + 1
	if err := s.sessions.SaveSession(ctx, next); err != nil {
		return previous, err
	}

	if next.IsDone() && !previous.IsDone() {
		s.recordResults(ctx, next)
	}
	if next.RoundKey() != previous.RoundKey() {
		s.startLogoFetch(next)
	}
	if s.notifier != nil {
		s.notifier.Publish(next.View())
	}
	return next, nil
}

func (s *Service) recordResults(ctx context.Context, session Session) {
	if s.results == nil {
		return
	}
	if err := s.results.RecordSession(ctx, session); err != nil {
		log.Printf("record results for session %s: %v", session.ID, err)
	}
}

func normalizeNickname(nickname string) string {
	nickname = strings.TrimSpace(nickname)
	runes := []rune(nickname)
	if len(runes) > maxNicknameLength {
		nickname = string(runes[:maxNicknameLength])
	}
	return nickname
}

func sortedStats(answers map[StatCode]string) []StatCode {
	stats := make([]StatCode, 0, len(answers))
	for stat := range answers {
		stats = append(stats, stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i] < stats[j] })
	return stats
}
