package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/yukikurage/task-dashboard/internal/constants"
	"github.com/yukikurage/task-dashboard/internal/listview"
	"github.com/yukikurage/task-dashboard/internal/models"
)

var (
	ErrViewIDRequired    = errors.New("view id is required")
	ErrSweeperRunning    = errors.New("view sweeper already running")
	ErrViewServiceClosed = errors.New("view service is closed")
)

// ViewConfig tunes every controller the registry creates
type ViewConfig struct {
	PageSize       int
	SearchDebounce time.Duration
	IdleTimeout    time.Duration
}

type viewEntry struct {
	ctrl     *listview.Controller
	lastSeen time.Time
}

// ViewService owns one list view controller per dashboard session
type ViewService struct {
	tasks  *TaskService
	users  *UserService
	cfg    ViewConfig
	logger zerolog.Logger

	mu     sync.RWMutex
	views  map[string]*viewEntry
	closed bool
	cron   *cron.Cron

	now func() time.Time
}

// NewViewService creates a new ViewService
func NewViewService(tasks *TaskService, users *UserService, cfg ViewConfig, logger zerolog.Logger) *ViewService {
	if cfg.PageSize < 1 {
		cfg.PageSize = constants.DefaultPageSize
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = constants.DefaultViewIdleTimeout
	}

	return &ViewService{
		tasks:  tasks,
		users:  users,
		cfg:    cfg,
		logger: logger.With().Str("component", "views").Logger(),
		views:  make(map[string]*viewEntry),
		now:    time.Now,
	}
}

// NewViewID returns a fresh identifier for a dashboard session
func (s *ViewService) NewViewID() string {
	return uuid.NewString()
}

// Acquire returns the controller for id, creating and loading it on first use
func (s *ViewService) Acquire(ctx context.Context, id string) (*listview.Controller, error) {
	if id == "" {
		return nil, ErrViewIDRequired
	}

	if ctrl, ok := s.touch(id); ok {
		return ctrl, nil
	}

	ctrl := listview.New(s.tasks, userBackend{svc: s.users},
		listview.WithPageSize(s.cfg.PageSize),
		listview.WithSearchDebounce(s.cfg.SearchDebounce),
		listview.WithLogger(s.logger.With().Str("view_id", id).Logger()),
	)
	if err := ctrl.Load(ctx); err != nil {
		ctrl.Close()
		return nil, fmt.Errorf("failed to load view: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		ctrl.Close()
		return nil, ErrViewServiceClosed
	}

	// another request for the same session may have won the race
	if entry, ok := s.views[id]; ok {
		ctrl.Close()
		entry.lastSeen = s.now()
		return entry.ctrl, nil
	}

	s.views[id] = &viewEntry{ctrl: ctrl, lastSeen: s.now()}
	s.logger.Debug().Str("view_id", id).Msg("view created")
	return ctrl, nil
}

func (s *ViewService) touch(id string) (*listview.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.views[id]
	if !ok {
		return nil, false
	}
	entry.lastSeen = s.now()
	return entry.ctrl, true
}

// Release drops the view and stops its pending timers
func (s *ViewService) Release(id string) bool {
	s.mu.Lock()
	entry, ok := s.views[id]
	delete(s.views, id)
	s.mu.Unlock()

	if ok {
		entry.ctrl.Close()
	}
	return ok
}

// Sweep releases views idle for longer than the configured timeout. A view
// with an open event stream is never idle.
func (s *ViewService) Sweep() int {
	now := s.now()
	cutoff := now.Add(-s.cfg.IdleTimeout)

	s.mu.Lock()
	var stale []*listview.Controller
	for id, entry := range s.views {
		if entry.ctrl.Subscribers() > 0 {
			entry.lastSeen = now
			continue
		}
		if entry.lastSeen.Before(cutoff) {
			stale = append(stale, entry.ctrl)
			delete(s.views, id)
		}
	}
	s.mu.Unlock()

	for _, ctrl := range stale {
		ctrl.Close()
	}
	return len(stale)
}

// Count returns the number of live views
func (s *ViewService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.views)
}

// StartSweeper schedules Sweep on a cron schedule such as "@every 1m"
func (s *ViewService) StartSweeper(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return ErrSweeperRunning
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if n := s.Sweep(); n > 0 {
			s.logger.Info().Int("released", n).Int("live", s.Count()).Msg("idle views swept")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	c.Start()
	s.cron = c
	return nil
}

// Stop halts the sweeper and releases every view
func (s *ViewService) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.closed = true
	views := s.views
	s.views = make(map[string]*viewEntry)
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	for _, entry := range views {
		entry.ctrl.Close()
	}
}

// userBackend adapts UserService to the controller's user store
type userBackend struct {
	svc *UserService
}

func (b userBackend) ListUsers(ctx context.Context) ([]models.User, error) {
	return b.svc.ListUsers(ctx)
}

func (b userBackend) CreateUser(ctx context.Context, input listview.NewUser) (*models.User, error) {
	return b.svc.CreateUser(ctx, CreateUserInput{
		Name:  input.Name,
		Email: input.Email,
		Role:  models.UserRole(input.Role),
	})
}
