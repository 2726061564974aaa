package quiz

import (
	"context"
	"errors"
	"log"
	"sync"
)

// Team logo lookups run in the background, one per session. Each lookup is
// tagged with the round key it was started for; starting a new lookup cancels
// the previous one, and a result that arrives after the round moved on is
// dropped.

type logoTask struct {
	key    string
	cancel context.CancelFunc
}

type logoTasks struct {
	mu     sync.Mutex
	active map[string]logoTask
	wg     sync.WaitGroup
}

func newLogoTasks() *logoTasks {
	return &logoTasks{active: make(map[string]logoTask)}
}

func (t *logoTasks) replace(sessionID string, task logoTask) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if previous, ok := t.active[sessionID]; ok {
		previous.cancel()
	}
	t.active[sessionID] = task
}

func (t *logoTasks) cancel(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if previous, ok := t.active[sessionID]; ok {
		previous.cancel()
		delete(t.active, sessionID)
	}
}

func (t *logoTasks) finish(sessionID, key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if current, ok := t.active[sessionID]; ok && current.key == key {
		delete(t.active, sessionID)
	}
}

func (t *logoTasks) cancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for sessionID, task := range t.active {
		task.cancel()
		delete(t.active, sessionID)
	}
}

func (t *logoTasks) wait() {
	t.wg.Wait()
}

func (s *Service) startLogoFetch(session Session) {
	key := session.RoundKey()
	player, ok := session.CurrentPlayer()
	if s.logos == nil || key == "" || !ok || player.GameID == "" {
		s.tasks.cancel(session.ID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.logoTimeout)
	s.tasks.replace(session.ID, logoTask{key: key, cancel: cancel})
	s.tasks.wg.Add(1)

	go func(sessionID, gameID string) {
		defer s.tasks.wg.Done()
		defer cancel()

		logos, err := s.logos.FetchTeamLogos(ctx, gameID)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("fetch team logos for game %s: %v", gameID, err)
			}
			s.tasks.finish(sessionID, key)
			return
		}
		s.applyLogos(sessionID, key, logos)
	}(session.ID, player.GameID)
}

func (s *Service) applyLogos(sessionID, key string, logos TeamLogos) {
	defer s.tasks.finish(sessionID, key)

	_, err := s.apply(context.Background(), sessionID, func(current Session) (Session, bool, error) {
		if current.RoundKey() != key {
			return current, false, nil
		}
		next := current.clone()
		next.Logos = logos
		next.LogosKey = key
		return next, true, nil
	})
	if err != nil {
		log.Printf("store team logos for session %s: %v", sessionID, err)
	}
}
