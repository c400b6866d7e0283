package engine

import (
	"context"

	"github.com/AssQ222/PDRPG/internal/storage"
)

func (s *Service) ListTasks(ctx context.Context) ([]storage.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tasks.ListAll(ctx)
}

func (s *Service) GetTask(ctx context.Context, id int64) (*storage.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, NotFoundError{Kind: "task", ID: id}
	}
	return t, nil
}

// DeleteTask removes a task. Experience already granted for it is kept.
func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.tasks.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return NotFoundError{Kind: "task", ID: id}
	}
	return nil
}
