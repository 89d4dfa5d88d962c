package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"livequiz/internal/cache"
	"livequiz/internal/model"
)

// In-memory fakes for the repository and cache interfaces.

type fakeSessionRepo struct {
	mu       sync.Mutex
	seq      int
	sessions map[string]*model.Session // by id
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*model.Session)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.ID == "" {
		r.seq++
		session.ID = fmt.Sprintf("sess-%d", r.seq)
	}
	if session.Players == nil {
		session.Players = []model.Player{}
	}
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) GetByURL(ctx context.Context, url string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.URL == url {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.ID]; !ok {
		return fmt.Errorf("session %s not found", session.ID)
	}
	cp := *session
	cp.Players = append([]model.Player(nil), session.Players...)
	r.sessions[session.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) List(ctx context.Context) ([]*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeSessionRepo) ListEnded(ctx context.Context) ([]*model.Session, error) {
	all, _ := r.List(ctx)
	out := all[:0]
	for _, s := range all {
		if s.Status == model.SessionEnded {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) URLExists(ctx context.Context, url string) (bool, error) {
	s, _ := r.GetByURL(ctx, url)
	return s != nil, nil
}

func (r *fakeSessionRepo) EnsureIndexes(ctx context.Context) error { return nil }

type fakeQuizRepo struct {
	mu      sync.Mutex
	quizzes map[string]*model.Quiz
}

func newFakeQuizRepo() *fakeQuizRepo {
	return &fakeQuizRepo{quizzes: make(map[string]*model.Quiz)}
}

func (r *fakeQuizRepo) Create(ctx context.Context, quiz *model.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if quiz.ID == "" {
		quiz.ID = fmt.Sprintf("quiz-%d", len(r.quizzes)+1)
	}
	r.quizzes[quiz.ID] = quiz
	return nil
}

func (r *fakeQuizRepo) GetByID(ctx context.Context, id string) (*model.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quizzes[id], nil
}

func (r *fakeQuizRepo) ListByAuthor(ctx context.Context, authorID string) ([]*model.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Quiz
	for _, q := range r.quizzes {
		if q.AuthorID == authorID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *fakeQuizRepo) ListPublic(ctx context.Context) ([]*model.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Quiz
	for _, q := range r.quizzes {
		if q.IsPublic {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *fakeQuizRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.quizzes, id)
	return nil
}

type fakeQuestionRepo struct {
	mu        sync.Mutex
	questions []*model.Question
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{}
}

func (r *fakeQuestionRepo) Create(ctx context.Context, question *model.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if question.ID == "" {
		question.ID = fmt.Sprintf("q-%d", len(r.questions)+1)
	}
	r.questions = append(r.questions, question)
	return nil
}

func (r *fakeQuestionRepo) GetByID(ctx context.Context, id string) (*model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, nil
}

func (r *fakeQuestionRepo) ListByQuiz(ctx context.Context, quizID string) ([]*model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Question
	for _, q := range r.questions {
		if q.QuizID == quizID {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (r *fakeQuestionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, q := range r.questions {
		if q.ID == id {
			r.questions = append(r.questions[:i], r.questions[i+1:]...)
			break
		}
	}
	return nil
}

type fakeSubmissionRepo struct {
	mu   sync.Mutex
	subs []*model.Submission
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{}
}

func (r *fakeSubmissionRepo) Create(ctx context.Context, sub *model.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.SessionID == sub.SessionID && s.PlayerID == sub.PlayerID && s.QuestionID == sub.QuestionID {
			return fmt.Errorf("duplicate submission")
		}
	}
	if sub.ID == "" {
		sub.ID = fmt.Sprintf("sub-%d", len(r.subs)+1)
	}
	r.subs = append(r.subs, sub)
	return nil
}

func (r *fakeSubmissionRepo) Exists(ctx context.Context, sessionID, playerID, questionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.SessionID == sessionID && s.PlayerID == playerID && s.QuestionID == questionID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSubmissionRepo) ListBySession(ctx context.Context, sessionID string) ([]*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Submission
	for _, s := range r.subs {
		if s.SessionID == sessionID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) DeleteBySession(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.subs[:0]
	for _, s := range r.subs {
		if s.SessionID != sessionID {
			kept = append(kept, s)
		}
	}
	r.subs = kept
	return nil
}

func (r *fakeSubmissionRepo) EnsureIndexes(ctx context.Context) error { return nil }

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

type fakeSessionCache struct {
	mu       sync.Mutex
	sessions map[string]*model.Session // by url
}

func newFakeSessionCache() *fakeSessionCache {
	return &fakeSessionCache{sessions: make(map[string]*model.Session)}
}

func (c *fakeSessionCache) Set(ctx context.Context, session *model.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *session
	c.sessions[session.URL] = &cp
	return nil
}

func (c *fakeSessionCache) GetByURL(ctx context.Context, url string) (*model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[url]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (c *fakeSessionCache) Delete(ctx context.Context, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, url)
	return nil
}

type fakeLeaderboard struct {
	mu     sync.Mutex
	scores map[string]map[string]int // sessionID -> playerID -> score
}

func newFakeLeaderboard() *fakeLeaderboard {
	return &fakeLeaderboard{scores: make(map[string]map[string]int)}
}

func (c *fakeLeaderboard) UpdateScore(ctx context.Context, sessionID, playerID string, score int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scores[sessionID] == nil {
		c.scores[sessionID] = make(map[string]int)
	}
	c.scores[sessionID][playerID] = score
	return nil
}

func (c *fakeLeaderboard) GetTop(ctx context.Context, sessionID string, limit int) ([]cache.LeaderboardEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := make([]cache.LeaderboardEntry, 0, len(c.scores[sessionID]))
	for id, score := range c.scores[sessionID] {
		entries = append(entries, cache.LeaderboardEntry{PlayerID: id, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (c *fakeLeaderboard) GetRank(ctx context.Context, sessionID, playerID string) (int64, error) {
	entries, _ := c.GetTop(ctx, sessionID, 1<<30)
	for _, e := range entries {
		if e.PlayerID == playerID {
			return int64(e.Rank), nil
		}
	}
	return -1, nil
}

func (c *fakeLeaderboard) Delete(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.scores, sessionID)
	return nil
}

// recordingBroadcaster captures fan-out calls for assertions.

type sentMessage struct {
	target   string // "session", "host", "player", "players"
	playerID string
	msg      *model.ServerMessage
}

type recordingBroadcaster struct {
	mu   sync.Mutex
	sent []sentMessage
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{}
}

func (b *recordingBroadcaster) record(target, playerID string, msg *model.ServerMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, sentMessage{target: target, playerID: playerID, msg: msg})
}

func (b *recordingBroadcaster) ToSession(sessionURL string, msg *model.ServerMessage) {
	b.record("session", "", msg)
}

func (b *recordingBroadcaster) ToHost(sessionURL string, msg *model.ServerMessage) {
	b.record("host", "", msg)
}

func (b *recordingBroadcaster) ToPlayer(sessionURL, playerID string, msg *model.ServerMessage) {
	b.record("player", playerID, msg)
}

func (b *recordingBroadcaster) ToPlayers(sessionURL string, msg *model.ServerMessage) {
	b.record("players", "", msg)
}

func (b *recordingBroadcaster) ofType(msgType string) []sentMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []sentMessage
	for _, s := range b.sent {
		if s.msg.Type == msgType {
			out = append(out, s)
		}
	}
	return out
}
