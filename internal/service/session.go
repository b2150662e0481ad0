package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/informed/internal/domain"
	"github.com/Harshitk-cp/informed/internal/inference"
	"github.com/Harshitk-cp/informed/internal/store"
)

var (
	ErrSessionNotFound = errors.New("diagnostic session not found")
	ErrAlreadyAsked    = errors.New("symptom already asked in this session")
)

// Recorder receives session lifecycle events. The metrics package provides
// the production implementation.
type Recorder interface {
	SessionStarted()
	AnswerRecorded(yes bool)
	SessionCompleted(reason domain.CompletionReason, questions int)
}

type nopRecorder struct{}

func (nopRecorder) SessionStarted()                                {}
func (nopRecorder) AnswerRecorded(bool)                            {}
func (nopRecorder) SessionCompleted(domain.CompletionReason, int) {}

// Status summarises a session from the engine outputs alone.
type Status struct {
	Turn       int                     `json:"turn"`
	Entropy    float64                 `json:"entropy"`
	Leading    domain.Diagnosis        `json:"leading"`
	Confidence float64                 `json:"confidence"`
	Remaining  int                     `json:"remaining"`
	Complete   bool                    `json:"complete"`
	Reason     domain.CompletionReason `json:"reason,omitempty"`
}

// Turn is what a front-end needs to render the next step of a session.
// Question is nil once every symptom has been asked.
type Turn struct {
	Status   Status               `json:"status"`
	Question *inference.Candidate `json:"question"`
}

// sessionLockStripes is the number of mutexes session writes are spread
// over. Two sessions may share a stripe; one session always maps to one.
const sessionLockStripes = 64

// SessionService drives diagnostic sessions: it owns the posterior and the
// asked set of each session and calls the stateless engine to advance them.
// Writes to one session are serialised, so concurrent answers never lose an
// update or accept a symptom twice.
type SessionService struct {
	store    domain.SessionStore
	engine   *inference.Engine
	policy   Policy
	recorder Recorder
	logger   *zap.Logger
	locks    [sessionLockStripes]sync.Mutex
}

func NewSessionService(sessionStore domain.SessionStore, engine *inference.Engine, policy Policy, logger *zap.Logger) *SessionService {
	return &SessionService{
		store:    sessionStore,
		engine:   engine,
		policy:   policy,
		recorder: nopRecorder{},
		logger:   logger,
	}
}

// SetRecorder wires a lifecycle recorder into the service.
func (s *SessionService) SetRecorder(r Recorder) {
	if r != nil {
		s.recorder = r
	}
}

// Policy returns the stopping policy the service applies.
func (s *SessionService) Policy() Policy {
	return s.policy
}

func (s *SessionService) Start(ctx context.Context) (*domain.Session, Status, error) {
	prior := s.engine.Prior()
	h, err := inference.Entropy(prior)
	if err != nil {
		return nil, Status{}, err
	}

	sess := &domain.Session{
		Posterior:      prior,
		Answers:        []domain.Answer{},
		EntropyHistory: []float64{h},
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, Status{}, fmt.Errorf("create session: %w", err)
	}
	s.recorder.SessionStarted()

	s.logger.Debug("diagnostic session started",
		zap.String("session_id", sess.ID.String()),
		zap.Float64("entropy", h))

	status, err := s.Status(sess)
	return sess, status, err
}

func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (*domain.Session, Status, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, Status{}, err
	}
	status, err := s.Status(sess)
	return sess, status, err
}

// Next returns the most informative unasked question. Sessions past the
// confidence threshold still get a question so a caller can keep going.
func (s *SessionService) Next(ctx context.Context, id uuid.UUID) (*Turn, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	status, err := s.Status(sess)
	if err != nil {
		return nil, err
	}

	c, ok, err := s.engine.NextQuestion(sess.Posterior, sess.AskedSet())
	if err != nil {
		return nil, err
	}
	turn := &Turn{Status: status}
	if ok {
		turn.Question = &c
	}
	return turn, nil
}

// Answer folds a yes/no answer for symptomID into the session posterior.
func (s *SessionService) Answer(ctx context.Context, id uuid.UUID, symptomID string, yes bool) (*domain.Session, Status, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, Status{}, err
	}
	if sess.HasAsked(symptomID) {
		return nil, Status{}, fmt.Errorf("%w: %s", ErrAlreadyAsked, symptomID)
	}
	before, err := s.Status(sess)
	if err != nil {
		return nil, Status{}, err
	}

	gain, err := s.engine.InformationGain(sess.Posterior, symptomID)
	if err != nil {
		return nil, Status{}, err
	}
	posterior, err := s.engine.Update(sess.Posterior, symptomID, yes)
	if err != nil {
		return nil, Status{}, err
	}
	h, err := inference.Entropy(posterior)
	if err != nil {
		return nil, Status{}, err
	}

	idx, _ := s.engine.Knowledge().SymptomIndex(symptomID)
	sess.Posterior = posterior
	sess.EntropyHistory = append(sess.EntropyHistory, h)
	sess.Answers = append(sess.Answers, domain.Answer{
		SymptomID:    symptomID,
		Question:     s.engine.Knowledge().Symptom(idx).Question,
		Yes:          yes,
		Gain:         gain,
		EntropyAfter: h,
		AnsweredAt:   time.Now().UTC(),
	})

	if err := s.store.Update(ctx, sess); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, Status{}, ErrSessionNotFound
		}
		return nil, Status{}, fmt.Errorf("update session: %w", err)
	}
	s.recorder.AnswerRecorded(yes)

	after, err := s.Status(sess)
	if err != nil {
		return nil, Status{}, err
	}

	s.logger.Debug("answer recorded",
		zap.String("session_id", sess.ID.String()),
		zap.String("symptom_id", symptomID),
		zap.Bool("answer", yes),
		zap.Float64("gain", gain),
		zap.Float64("entropy", h),
		zap.String("leading", after.Leading.ID),
		zap.Float64("confidence", after.Confidence))

	if !before.Complete && after.Complete {
		s.recorder.SessionCompleted(after.Reason, after.Turn)
		s.logger.Info("diagnostic session complete",
			zap.String("session_id", sess.ID.String()),
			zap.String("reason", string(after.Reason)),
			zap.String("diagnosis", after.Leading.ID),
			zap.Float64("confidence", after.Confidence),
			zap.Int("questions", after.Turn))
	}

	return sess, after, nil
}

// Reset returns a session to the uniform prior with an empty history.
func (s *SessionService) Reset(ctx context.Context, id uuid.UUID) (*domain.Session, Status, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, Status{}, err
	}

	prior := s.engine.Prior()
	h, err := inference.Entropy(prior)
	if err != nil {
		return nil, Status{}, err
	}
	sess.Posterior = prior
	sess.Answers = []domain.Answer{}
	sess.EntropyHistory = []float64{h}

	if err := s.store.Update(ctx, sess); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, Status{}, ErrSessionNotFound
		}
		return nil, Status{}, fmt.Errorf("reset session: %w", err)
	}

	status, err := s.Status(sess)
	return sess, status, err
}

func (s *SessionService) End(ctx context.Context, id uuid.UUID) error {
	unlock := s.lock(id)
	defer unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Debug("diagnostic session ended", zap.String("session_id", id.String()))
	return nil
}

// Status evaluates a session against the stopping policy.
func (s *SessionService) Status(sess *domain.Session) (Status, error) {
	posterior := inference.Distribution(sess.Posterior)
	h, err := inference.Entropy(posterior)
	if err != nil {
		return Status{}, err
	}

	kb := s.engine.Knowledge()
	leader, confidence := posterior.Max()
	asked := sess.Turn()
	reason := s.policy.Evaluate(posterior, asked, kb.NumSymptoms())

	return Status{
		Turn:       asked,
		Entropy:    h,
		Leading:    kb.Diagnosis(leader),
		Confidence: confidence,
		Remaining:  kb.NumSymptoms() - asked,
		Complete:   reason != domain.CompletionNone,
		Reason:     reason,
	}, nil
}

// lock holds the write lock for session id until the returned func is called.
func (s *SessionService) lock(id uuid.UUID) func() {
	mu := &s.locks[int(id[15])%sessionLockStripes]
	mu.Lock()
	return mu.Unlock
}

func (s *SessionService) load(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	sess, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}
