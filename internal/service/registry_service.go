package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"

	"livequiz/internal/cache"
	"livequiz/internal/model"
	"livequiz/internal/repository"
)

// RegistryService holds the set of sessions: creation with a unique join
// slug, lookup for WebSocket admission, deletion and listing.
type RegistryService struct {
	sessionRepo    repository.SessionRepo
	quizRepo       repository.QuizRepo
	submissionRepo repository.SubmissionRepo
	sessionCache   cache.SessionCache
	leaderboard    cache.LeaderboardCache
}

// NewRegistryService creates a new session registry
func NewRegistryService(
	sessionRepo repository.SessionRepo,
	quizRepo repository.QuizRepo,
	submissionRepo repository.SubmissionRepo,
	sessionCache cache.SessionCache,
	leaderboard cache.LeaderboardCache,
) *RegistryService {
	return &RegistryService{
		sessionRepo:    sessionRepo,
		quizRepo:       quizRepo,
		submissionRepo: submissionRepo,
		sessionCache:   sessionCache,
		leaderboard:    leaderboard,
	}
}

// CreateSession creates a waiting session for a quiz with a fresh unique slug.
func (s *RegistryService) CreateSession(ctx context.Context, quizID, hostID string) (*model.Session, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if quiz == nil {
		return nil, fmt.Errorf("quiz %s: %w", quizID, ErrNotFound)
	}

	slug, err := s.generateSlug(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session url: %w", err)
	}

	session := &model.Session{
		URL:    slug,
		QuizID: quizID,
		HostID: hostID,
		Status: model.SessionWaiting,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := s.sessionCache.Set(ctx, session); err != nil {
		log.Printf("registry: failed to cache session %s: %v", slug, err)
	}

	return session, nil
}

// GetSessionByURL resolves a join slug. Lookup goes through the Redis
// snapshot first, then Mongo.
func (s *RegistryService) GetSessionByURL(ctx context.Context, url string) (*model.Session, error) {
	if cached, err := s.sessionCache.GetByURL(ctx, url); err == nil && cached != nil {
		return cached, nil
	}
	session, err := s.sessionRepo.GetByURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", url, ErrNotFound)
	}
	return session, nil
}

// DeleteSession removes a session and everything keyed to it.
func (s *RegistryService) DeleteSession(ctx context.Context, id, hostID string) error {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to look up session: %w", err)
	}
	if session == nil {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if session.HostID != hostID {
		return fmt.Errorf("not session host: %w", ErrUnauthorized)
	}

	if err := s.sessionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if err := s.submissionRepo.DeleteBySession(ctx, id); err != nil {
		log.Printf("registry: failed to delete submissions for %s: %v", id, err)
	}
	if err := s.sessionCache.Delete(ctx, session.URL); err != nil {
		log.Printf("registry: failed to drop cache for %s: %v", session.URL, err)
	}
	if err := s.leaderboard.Delete(ctx, id); err != nil {
		log.Printf("registry: failed to drop leaderboard for %s: %v", id, err)
	}
	return nil
}

// ListSessions returns all sessions, newest first.
func (s *RegistryService) ListSessions(ctx context.Context) ([]*model.Session, error) {
	return s.sessionRepo.List(ctx)
}

// ListEndedSessions returns ended sessions for the statistics page.
func (s *RegistryService) ListEndedSessions(ctx context.Context) ([]*model.Session, error) {
	return s.sessionRepo.ListEnded(ctx)
}

// Results aggregates per-player totals from accepted submissions.
func (s *RegistryService) Results(ctx context.Context, url string) ([]model.PlayerResult, error) {
	session, err := s.GetSessionByURL(ctx, url)
	if err != nil {
		return nil, err
	}

	subs, err := s.submissionRepo.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	answered := make(map[string]int)
	correct := make(map[string]int)
	for _, sub := range subs {
		answered[sub.PlayerID]++
		if sub.IsCorrect != nil && *sub.IsCorrect {
			correct[sub.PlayerID]++
		}
	}

	results := make([]model.PlayerResult, 0, len(session.Players))
	for _, p := range session.Players {
		results = append(results, model.PlayerResult{
			PlayerID: p.ID,
			Nickname: p.Nickname,
			Score:    p.Score,
			Answered: answered[p.ID],
			Correct:  correct[p.ID],
		})
	}
	return results, nil
}

// generateSlug creates an 8-char lowercase alphanumeric join slug, retrying
// on the (unlikely) collision. Ambiguous characters are excluded since the
// slug ends up typed from a projector screen.
func (s *RegistryService) generateSlug(ctx context.Context) (string, error) {
	const chars = "abcdefghjkmnpqrstuvwxyz23456789"
	const slugLen = 8

	for attempts := 0; attempts < 10; attempts++ {
		b := make([]byte, slugLen)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}

		slug := make([]byte, slugLen)
		for i := range slug {
			slug[i] = chars[int(b[i])%len(chars)]
		}
		slugStr := string(slug)

		exists, err := s.sessionRepo.URLExists(ctx, slugStr)
		if err != nil {
			return "", err
		}
		if !exists {
			return slugStr, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique session url")
}
