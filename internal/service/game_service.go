package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"livequiz/internal/cache"
	"livequiz/internal/model"
	"livequiz/internal/repository"
)

// sessionState is the live, authoritative state of one session. Every
// mutation happens under mu, so host commands and expiring timers are
// serialized and broadcasts always reflect post-transition state.
type sessionState struct {
	mu sync.Mutex

	session   *model.Session
	questions []*model.Question // ordered by orderIndex, loaded at start_game

	questionIdx int // index into questions, -1 before the first question
	current     *model.Question
	expired     bool // current question's countdown has fired

	deadline  time.Time
	remaining time.Duration // captured on pause, re-armed on resume
	timer     *time.Timer
	timerGen  uint64 // bumped on every arm/cancel so stale fires are ignored

	answered map[string]bool // playerID + "|" + questionID
}

func (st *sessionState) answeredKey(playerID, questionID string) string {
	return playerID + "|" + questionID
}

// stopTimer cancels any pending countdown and invalidates in-flight fires.
func (st *sessionState) stopTimer() {
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
	st.timerGen++
	st.remaining = 0
}

// GameService drives the per-session state machine: lifecycle transitions,
// question delivery with server-side countdowns, and answer scoring.
type GameService struct {
	mu     sync.Mutex
	states map[string]*sessionState // keyed by session URL

	sessionRepo    repository.SessionRepo
	questionRepo   repository.QuestionRepo
	submissionRepo repository.SubmissionRepo
	sessionCache   cache.SessionCache
	leaderboard    cache.LeaderboardCache
	broadcaster    Broadcaster
}

// NewGameService creates a new game service
func NewGameService(
	sessionRepo repository.SessionRepo,
	questionRepo repository.QuestionRepo,
	submissionRepo repository.SubmissionRepo,
	sessionCache cache.SessionCache,
	leaderboard cache.LeaderboardCache,
) *GameService {
	return &GameService{
		states:         make(map[string]*sessionState),
		sessionRepo:    sessionRepo,
		questionRepo:   questionRepo,
		submissionRepo: submissionRepo,
		sessionCache:   sessionCache,
		leaderboard:    leaderboard,
	}
}

// SetBroadcaster injects the WebSocket hub (implements Broadcaster)
func (s *GameService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// state returns the live state for a slug, loading it from storage on first
// touch. Ended sessions are not resurrected.
func (s *GameService) state(ctx context.Context, url string) (*sessionState, error) {
	s.mu.Lock()
	if st, ok := s.states[url]; ok {
		s.mu.Unlock()
		return st, nil
	}
	s.mu.Unlock()

	session, err := s.sessionRepo.GetByURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", url, ErrNotFound)
	}
	if session.Status == model.SessionEnded {
		return nil, fmt.Errorf("session %s has ended: %w", url, ErrInvalidState)
	}

	st := &sessionState{
		session:     session,
		questionIdx: -1,
		answered:    make(map[string]bool),
	}

	// A session found mid-game means the process restarted: restore the
	// question position. The old countdown is gone, so the current question
	// is treated as expired rather than granting unlimited time.
	if session.Status != model.SessionWaiting {
		questions, err := s.questionRepo.ListByQuiz(ctx, session.QuizID)
		if err != nil {
			return nil, fmt.Errorf("failed to load questions: %w", err)
		}
		st.questions = questions
		if session.CurrentQuestionID != "" {
			for i, q := range questions {
				if q.ID == session.CurrentQuestionID {
					st.questionIdx = i
					st.current = q
					st.expired = q.TimeLimit > 0
					break
				}
			}
		}
	}

	// Rebuild the duplicate-submission guard after a restart.
	subs, err := s.submissionRepo.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load submissions: %w", err)
	}
	for _, sub := range subs {
		st.answered[st.answeredKey(sub.PlayerID, sub.QuestionID)] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.states[url]; ok {
		return existing, nil
	}
	s.states[url] = st
	return st, nil
}

// persist writes the session document and refreshes the snapshot cache.
func (s *GameService) persist(ctx context.Context, st *sessionState) error {
	if err := s.sessionRepo.Update(ctx, st.session); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	if err := s.sessionCache.Set(ctx, st.session); err != nil {
		log.Printf("game: failed to refresh cache for %s: %v", st.session.URL, err)
	}
	return nil
}

func (st *sessionState) playersCopy() []model.Player {
	players := make([]model.Player, len(st.session.Players))
	copy(players, st.session.Players)
	return players
}

func (st *sessionState) findPlayer(playerID string) *model.Player {
	for i := range st.session.Players {
		if st.session.Players[i].ID == playerID {
			return &st.session.Players[i]
		}
	}
	return nil
}

// Admit registers an identity with a session and returns the session_joined
// snapshot. It is idempotent: re-admitting the same player never duplicates
// the roster entry and keeps the accumulated score.
func (s *GameService) Admit(ctx context.Context, url string, identity *model.Identity) (*model.ServerMessage, bool, error) {
	st, err := s.state(ctx, url)
	if err != nil {
		return nil, false, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	isHost := identity.Registered && identity.ID == st.session.HostID

	score := 0
	if !isHost {
		player := st.findPlayer(identity.ID)
		if player == nil {
			st.session.Players = append(st.session.Players, model.Player{
				ID:       identity.ID,
				Nickname: identity.Nickname,
				JoinedAt: time.Now(),
			})
			if err := s.persist(ctx, st); err != nil {
				return nil, false, err
			}
			s.broadcaster.ToSession(url, &model.ServerMessage{
				Type:    model.MsgPlayersUpdated,
				Players: st.playersCopy(),
			})
		} else {
			score = player.Score
		}
	}

	snapshot := &model.ServerMessage{
		Type:      model.MsgSessionJoined,
		SessionID: st.session.ID,
		Status:    st.session.Status,
		PlayerID:  identity.ID,
		Score:     &score,
	}
	if st.session.Status == model.SessionActive && st.current != nil {
		snapshot.CurrentQuestionID = st.current.ID
	}
	return snapshot, isHost, nil
}

func (st *sessionState) requireHost(actorID string) error {
	if actorID != st.session.HostID {
		return fmt.Errorf("only the host may control the session: %w", ErrUnauthorized)
	}
	return nil
}

// StartGame moves a waiting session to active and loads the quiz's ordered
// question list.
func (s *GameService) StartGame(ctx context.Context, url, actorID string) error {
	st, err := s.state(ctx, url)
	if err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.requireHost(actorID); err != nil {
		return err
	}
	if st.session.Status != model.SessionWaiting {
		return fmt.Errorf("session is %s, not waiting: %w", st.session.Status, ErrInvalidState)
	}

	questions, err := s.questionRepo.ListByQuiz(ctx, st.session.QuizID)
	if err != nil {
		return fmt.Errorf("failed to load questions: %w", err)
	}
	st.questions = questions
	st.questionIdx = -1

	now := time.Now()
	st.session.Status = model.SessionActive
	st.session.StartedAt = &now
	if err := s.persist(ctx, st); err != nil {
		return err
	}

	s.broadcaster.ToSession(url, &model.ServerMessage{Type: model.MsgGameStarted})
	s.broadcaster.ToSession(url, &model.ServerMessage{
		Type:   model.MsgStatusUpdated,
		Status: model.SessionActive,
	})
	log.Printf("game: session %s started by host %s", url, actorID)
	return nil
}

// NextQuestion advances to the next question by order index. Reaching the
// end does not end the session; the host is told and decides what to do.
func (s *GameService) NextQuestion(ctx context.Context, url, actorID string) error {
	st, err := s.state(ctx, url)
	if err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.requireHost(actorID); err != nil {
		return err
	}
	if st.session.Status != model.SessionActive {
		return fmt.Errorf("session is %s, not active: %w", st.session.Status, ErrInvalidState)
	}

	if st.questionIdx+1 >= len(st.questions) {
		return ErrNoMoreQuestions
	}

	// A fresh question supersedes any countdown still in flight.
	st.stopTimer()

	st.questionIdx++
	st.current = st.questions[st.questionIdx]
	st.expired = false
	st.session.CurrentQuestionID = st.current.ID

	if st.current.TimeLimit > 0 {
		s.armTimer(st, url, time.Duration(st.current.TimeLimit)*time.Second)
	}

	if err := s.persist(ctx, st); err != nil {
		return err
	}

	s.broadcaster.ToPlayers(url, &model.ServerMessage{
		Type:       model.MsgQuestionAvailable,
		QuestionID: st.current.ID,
		TimeLimit:  st.current.TimeLimit,
	})
	s.broadcaster.ToHost(url, &model.ServerMessage{
		Type:       model.MsgQuestionSent,
		QuestionID: st.current.ID,
	})
	return nil
}

// armTimer starts the countdown for the current question. Callers hold st.mu.
func (s *GameService) armTimer(st *sessionState, url string, d time.Duration) {
	st.timerGen++
	gen := st.timerGen
	questionID := st.current.ID
	st.deadline = time.Now().Add(d)
	st.timer = time.AfterFunc(d, func() {
		s.handleTimeUp(url, questionID, gen)
	})
}

// handleTimeUp fires once per armed countdown. The generation guard drops
// fires that lost a race with next_question, pause or end_game.
func (s *GameService) handleTimeUp(url, questionID string, gen uint64) {
	s.mu.Lock()
	st, ok := s.states[url]
	s.mu.Unlock()
	if !ok {
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.timerGen != gen || st.session.Status != model.SessionActive {
		return
	}
	if st.current == nil || st.current.ID != questionID {
		return
	}

	st.expired = true
	st.timer = nil
	s.broadcaster.ToPlayers(url, &model.ServerMessage{
		Type:       model.MsgTimeUp,
		QuestionID: questionID,
	})
	log.Printf("game: session %s question %s timed out", url, questionID)
}

// PauseGame suspends an active session, freezing the remaining countdown.
func (s *GameService) PauseGame(ctx context.Context, url, actorID string) error {
	st, err := s.state(ctx, url)
	if err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.requireHost(actorID); err != nil {
		return err
	}
	if st.session.Status != model.SessionActive {
		return fmt.Errorf("session is %s, not active: %w", st.session.Status, ErrInvalidState)
	}

	var remaining time.Duration
	if st.timer != nil && !st.expired {
		remaining = time.Until(st.deadline)
		if remaining < 0 {
			remaining = 0
		}
	}
	st.stopTimer()
	st.remaining = remaining

	st.session.Status = model.SessionPaused
	if err := s.persist(ctx, st); err != nil {
		return err
	}

	s.broadcaster.ToSession(url, &model.ServerMessage{Type: model.MsgGamePaused})
	s.broadcaster.ToSession(url, &model.ServerMessage{
		Type:   model.MsgStatusUpdated,
		Status: model.SessionPaused,
	})
	return nil
}

// ResumeGame re-activates a paused session. A frozen countdown continues
// from where it stopped, it does not restart.
func (s *GameService) ResumeGame(ctx context.Context, url, actorID string) error {
	st, err := s.state(ctx, url)
	if err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.requireHost(actorID); err != nil {
		return err
	}
	if st.session.Status != model.SessionPaused {
		return fmt.Errorf("session is %s, not paused: %w", st.session.Status, ErrInvalidState)
	}

	st.session.Status = model.SessionActive
	if st.current != nil && !st.expired && st.remaining > 0 {
		s.armTimer(st, url, st.remaining)
		st.remaining = 0
	}
	if err := s.persist(ctx, st); err != nil {
		return err
	}

	s.broadcaster.ToSession(url, &model.ServerMessage{Type: model.MsgGameResumed})
	s.broadcaster.ToSession(url, &model.ServerMessage{
		Type:   model.MsgStatusUpdated,
		Status: model.SessionActive,
	})
	return nil
}

// EndGame moves the session to its terminal state. EndedAt is set exactly
// once and the session becomes read-only afterwards.
func (s *GameService) EndGame(ctx context.Context, url, actorID string) error {
	st, err := s.state(ctx, url)
	if err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.requireHost(actorID); err != nil {
		return err
	}
	if st.session.Status == model.SessionEnded {
		return fmt.Errorf("session already ended: %w", ErrInvalidState)
	}

	st.stopTimer()
	st.current = nil
	st.session.CurrentQuestionID = ""
	st.session.Status = model.SessionEnded
	if st.session.EndedAt == nil {
		now := time.Now()
		st.session.EndedAt = &now
	}
	if err := s.persist(ctx, st); err != nil {
		return err
	}

	s.broadcaster.ToSession(url, &model.ServerMessage{Type: model.MsgGameEnded})

	s.mu.Lock()
	delete(s.states, url)
	s.mu.Unlock()

	log.Printf("game: session %s ended", url)
	return nil
}

// SubmitAnswer grades a player's answer for the current question. Exactly
// one submission per (player, question) is accepted; the result goes back
// to the submitter only.
func (s *GameService) SubmitAnswer(ctx context.Context, url, playerID string, msg *model.ClientMessage) (*model.SubmissionResult, error) {
	st, err := s.state(ctx, url)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.session.Status != model.SessionActive {
		return nil, fmt.Errorf("session is %s, not active: %w", st.session.Status, ErrInvalidState)
	}
	if st.current == nil || msg.QuestionID != st.current.ID {
		return nil, ErrStaleQuestion
	}
	if st.expired {
		return nil, ErrTimeExpired
	}
	if st.answered[st.answeredKey(playerID, msg.QuestionID)] {
		return nil, ErrAlreadyAnswered
	}

	player := st.findPlayer(playerID)
	if player == nil {
		return nil, fmt.Errorf("not a session player: %w", ErrUnauthorized)
	}

	isCorrect, err := gradeAnswer(st.current, msg)
	if err != nil {
		return nil, err
	}

	points := 0
	if isCorrect {
		points = st.current.Score
	}

	sub := &model.Submission{
		SessionID:     st.session.ID,
		PlayerID:      playerID,
		QuestionID:    msg.QuestionID,
		AnswerID:      msg.AnswerID,
		TextAnswer:    strings.TrimSpace(msg.TextAnswer),
		IsCorrect:     &isCorrect,
		PointsAwarded: points,
	}
	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to store submission: %w", err)
	}

	st.answered[st.answeredKey(playerID, msg.QuestionID)] = true
	player.Score += points
	if err := s.persist(ctx, st); err != nil {
		return nil, err
	}
	if err := s.leaderboard.UpdateScore(ctx, st.session.ID, playerID, player.Score); err != nil {
		log.Printf("game: failed to update leaderboard for %s: %v", url, err)
	}

	s.broadcaster.ToHost(url, &model.ServerMessage{
		Type:       model.MsgAnswerReceived,
		PlayerID:   playerID,
		QuestionID: msg.QuestionID,
	})
	s.broadcaster.ToSession(url, &model.ServerMessage{
		Type:    model.MsgPlayersUpdated,
		Players: st.playersCopy(),
	})

	return &model.SubmissionResult{
		IsCorrect:     &isCorrect,
		PointsAwarded: points,
		TotalScore:    player.Score,
	}, nil
}

// gradeAnswer judges correctness. Test questions score by the selected
// option's isCorrect flag; more than one option may be marked correct.
// Open questions match trimmed, case-insensitive text against every stored
// correct answer.
func gradeAnswer(q *model.Question, msg *model.ClientMessage) (bool, error) {
	switch q.Type {
	case model.QuestionTypeTest:
		if msg.AnswerID == "" {
			return false, fmt.Errorf("answer_id is required: %w", ErrValidation)
		}
		for _, opt := range q.Answers {
			if opt.ID == msg.AnswerID {
				return opt.IsCorrect, nil
			}
		}
		return false, fmt.Errorf("unknown answer %s: %w", msg.AnswerID, ErrValidation)

	case model.QuestionTypeOpen:
		text := strings.TrimSpace(msg.TextAnswer)
		if text == "" {
			return false, fmt.Errorf("text_answer is required: %w", ErrValidation)
		}
		for _, opt := range q.Answers {
			if opt.IsCorrect && strings.EqualFold(strings.TrimSpace(opt.Text), text) {
				return true, nil
			}
		}
		return false, nil

	default:
		return false, fmt.Errorf("unsupported question type %s: %w", q.Type, ErrValidation)
	}
}

// SessionInfo returns the session_info snapshot for any connection.
func (s *GameService) SessionInfo(ctx context.Context, url string) (*model.ServerMessage, error) {
	st, err := s.state(ctx, url)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	info := &model.ServerMessage{
		Type:      model.MsgSessionInfo,
		SessionID: st.session.ID,
		QuizID:    st.session.QuizID,
		Status:    st.session.Status,
		Players:   st.playersCopy(),
	}
	if st.current != nil && st.session.Status == model.SessionActive {
		info.CurrentQuestionID = st.current.ID
	}
	return info, nil
}

// PlayersList returns the roster in join order.
func (s *GameService) PlayersList(ctx context.Context, url string) (*model.ServerMessage, error) {
	st, err := s.state(ctx, url)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	return &model.ServerMessage{
		Type:    model.MsgPlayersList,
		Players: st.playersCopy(),
	}, nil
}

// CurrentQuestion returns the presented question stripped of grading data,
// for the REST fetch the client does after question_available.
func (s *GameService) CurrentQuestion(ctx context.Context, url string) (*model.PlayerQuestion, error) {
	st, err := s.state(ctx, url)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.current == nil || st.session.Status != model.SessionActive {
		return nil, fmt.Errorf("no question is being presented: %w", ErrNotFound)
	}
	return st.current.ForPlayer(), nil
}
