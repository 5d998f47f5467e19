package listview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yukikurage/task-dashboard/internal/constants"
	"github.com/yukikurage/task-dashboard/internal/models"
)

var (
	ErrTaskNotFound        = errors.New("task not found in view")
	ErrUnknownAction       = errors.New("unknown row action")
	ErrNoPendingAssignment = errors.New("no task assignment in progress")
	ErrUserNotAssignable   = errors.New("user is not offered for this assignment")
)

// Row actions registered by default
const (
	ActionView   = "view"
	ActionEdit   = "edit"
	ActionAssign = "assign"
)

// TaskStore is the data source and assignment sink of a Controller
type TaskStore interface {
	AllTasks(ctx context.Context) ([]models.Task, error)
	AssignTask(ctx context.Context, taskID, userID string) (*models.Task, error)
}

// UserStore provides users for assignee names and the assignment modal
type UserStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, input NewUser) (*models.User, error)
}

// ActionHandler handles a row action for the given task
type ActionHandler func(ctx context.Context, task models.Task) error

// Listener receives every snapshot the controller publishes. Deliveries to
// one listener are serialized and never go back in version; a listener must
// not call mutating methods of the controller that publishes to it.
type Listener func(Snapshot)

type subscriber struct {
	mu   sync.Mutex
	last uint64
	fn   Listener
}

// deliver drops snapshots older than the last one this subscriber saw
func (s *subscriber) deliver(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Version <= s.last {
		return
	}
	s.last = snap.Version
	s.fn(snap)
}

// Option configures a Controller
type Option func(*Controller)

// WithPageSize sets the number of rows per page. Values below one are ignored.
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n >= constants.MinPageSize {
			c.pageSize = n
		}
	}
}

// WithSearchDebounce sets the quiet interval of SearchDebounced
func WithSearchDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.debounce = d
		}
	}
}

// WithLogger sets the logger used for background failures
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// Controller owns a working view over the task set. It is safe for
// concurrent use; listeners run outside the internal lock.
type Controller struct {
	mu sync.Mutex

	tasks TaskStore
	users UserStore

	all      []models.Task
	people   []models.User
	names    map[string]string
	filtered []models.Task

	filter   Filter
	search   string
	page     int
	pageSize int
	modal    Modal

	actions     map[string]ActionHandler
	actionOrder []string

	version      uint64
	listeners    map[int]*subscriber
	nextListener int
	done         chan struct{}
	closed       bool

	debounce  time.Duration
	debouncer *Debouncer
	logger    zerolog.Logger
}

// New creates an empty controller. Call Load to fill it.
func New(tasks TaskStore, users UserStore, opts ...Option) *Controller {
	c := &Controller{
		tasks:     tasks,
		users:     users,
		names:     map[string]string{},
		page:      1,
		pageSize:  constants.DefaultPageSize,
		actions:   map[string]ActionHandler{},
		listeners: map[int]*subscriber{},
		done:      make(chan struct{}),
		debounce:  constants.DefaultSearchDebounce,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.debouncer = NewDebouncer(c.debounce)

	c.Handle(ActionView, func(_ context.Context, task models.Task) error {
		c.showTask(ModalTaskDetail, task)
		return nil
	})
	c.Handle(ActionEdit, func(_ context.Context, task models.Task) error {
		c.showTask(ModalTaskEdit, task)
		return nil
	})
	c.Handle(ActionAssign, func(_ context.Context, task models.Task) error {
		_, err := c.OpenAssignment(task.ID)
		return err
	})

	return c
}

// Load replaces the working set with fresh records from the stores.
// Filter and search survive; the page is clamped to the new page count.
func (c *Controller) Load(ctx context.Context) error {
	tasks, err := c.tasks.AllTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	users, err := c.users.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	c.mu.Lock()
	c.all = tasks
	c.setUsersLocked(users)
	c.recomputeLocked()
	c.clampPageLocked()
	snap, ls := c.commitLocked()
	c.mu.Unlock()

	notify(snap, ls)
	return nil
}

// ApplyFilters replaces the filter, resets to page one and re-renders
func (c *Controller) ApplyFilters(f Filter) View {
	c.mu.Lock()
	c.filter = f
	c.recomputeLocked()
	c.page = 1
	snap, ls := c.commitLocked()
	c.mu.Unlock()

	notify(snap, ls)
	return snap.View
}

// Search replaces the search term, resets to page one and re-renders
func (c *Controller) Search(term string) View {
	c.mu.Lock()
	c.search = NormalizeSearch(term)
	c.recomputeLocked()
	c.page = 1
	snap, ls := c.commitLocked()
	c.mu.Unlock()

	notify(snap, ls)
	return snap.View
}

// SearchDebounced runs Search with the last term received once input has
// paused for the debounce interval
func (c *Controller) SearchDebounced(term string) {
	c.debouncer.Trigger(func() {
		c.Search(term)
	})
}

// SearchPending reports whether a debounced search is waiting to run
func (c *Controller) SearchPending() bool {
	return c.debouncer.Pending()
}

// ChangePage moves to page n. It returns false and leaves the state
// untouched when n is outside [1, TotalPages].
func (c *Controller) ChangePage(n int) bool {
	c.mu.Lock()
	if n < 1 || n > TotalPages(len(c.filtered), c.pageSize) {
		c.mu.Unlock()
		return false
	}
	c.page = n
	snap, ls := c.commitLocked()
	c.mu.Unlock()

	notify(snap, ls)
	return true
}

// Render returns the rows of the current page. It does not change state.
func (c *Controller) Render() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderLocked()
}

// Snapshot returns the current view together with the open modal
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{Version: c.version, View: c.renderLocked(), Modal: c.modalLocked()}
}

// CurrentPage returns the 1-based current page
func (c *Controller) CurrentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// TotalPages returns the page count of the filtered sequence
func (c *Controller) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return TotalPages(len(c.filtered), c.pageSize)
}

// PageSize returns the number of rows per page
func (c *Controller) PageSize() int {
	return c.pageSize
}

// Filtered returns a copy of the filtered sequence
func (c *Controller) Filtered() []models.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Task(nil), c.filtered...)
}

// Task looks a task up in the working set
func (c *Controller) Task(id string) (models.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	task, ok := c.findLocked(id)
	if !ok {
		return models.Task{}, ErrTaskNotFound
	}
	return task, nil
}

// Handle registers or replaces the handler of a row action. New actions are
// appended to the action list of every row.
func (c *Controller) Handle(action string, h ActionHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.actions[action]; !exists {
		c.actionOrder = append(c.actionOrder, action)
	}
	c.actions[action] = h
}

// Dispatch runs the handler registered for action on the task with taskID
func (c *Controller) Dispatch(ctx context.Context, action, taskID string) error {
	c.mu.Lock()
	h, ok := c.actions[action]
	task, found := c.findLocked(taskID)
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	if !found {
		return ErrTaskNotFound
	}
	return h(ctx, task)
}

// OpenAssignment opens the assignment modal for a task, offering every
// active user with role user
func (c *Controller) OpenAssignment(taskID string) (Modal, error) {
	c.mu.Lock()
	task, ok := c.findLocked(taskID)
	if !ok {
		c.mu.Unlock()
		return Modal{}, ErrTaskNotFound
	}
	c.modal = Modal{
		Kind:       ModalTaskAssignment,
		Task:       &task,
		Candidates: candidatesFrom(c.people),
	}
	snap, ls := c.commitLocked()
	c.mu.Unlock()

	notify(snap, ls)
	return snap.Modal, nil
}

// SelectAssignee completes the open assignment with the chosen user, then
// refreshes the working copy and closes the modal
func (c *Controller) SelectAssignee(ctx context.Context, userID string) (*models.Task, error) {
	c.mu.Lock()
	if c.modal.Kind != ModalTaskAssignment || c.modal.Task == nil {
		c.mu.Unlock()
		return nil, ErrNoPendingAssignment
	}
	if !hasCandidate(c.modal.Candidates, userID) {
		c.mu.Unlock()
		return nil, ErrUserNotAssignable
	}
	taskID := c.modal.Task.ID
	c.mu.Unlock()

	updated, err := c.tasks.AssignTask(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	users, err := c.users.ListUsers(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Str("task_id", taskID).Msg("failed to refresh users after assignment")
	}

	c.mu.Lock()
	c.replaceTaskLocked(*updated)
	if users != nil {
		c.setUsersLocked(users)
	}
	c.recomputeLocked()
	c.clampPageLocked()
	c.modal = Modal{}
	snap, ls := c.commitLocked()
	c.mu.Unlock()

	notify(snap, ls)
	return updated, nil
}

// OpenCreateUser shows the create-user form
func (c *Controller) OpenCreateUser() Modal {
	c.mu.Lock()
	c.modal = Modal{Kind: ModalCreateUser}
	snap, ls := c.commitLocked()
	c.mu.Unlock()

	notify(snap, ls)
	return snap.Modal
}

// CreateUser submits the create-user form and closes the modal on success
func (c *Controller) CreateUser(ctx context.Context, input NewUser) (*models.User, error) {
	user, err := c.users.CreateUser(ctx, input)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.setUsersLocked(append(append([]models.User(nil), c.people...), *user))
	if c.modal.Kind == ModalCreateUser {
		c.modal = Modal{}
	}
	snap, ls := c.commitLocked()
	c.mu.Unlock()

	notify(snap, ls)
	return user, nil
}

// CloseModal hides whichever modal is shown
func (c *Controller) CloseModal() {
	c.mu.Lock()
	c.modal = Modal{}
	snap, ls := c.commitLocked()
	c.mu.Unlock()

	notify(snap, ls)
}

// Modal returns the modal currently shown
func (c *Controller) Modal() Modal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modalLocked()
}

// Subscribe registers a listener and returns a function that removes it
func (c *Controller) Subscribe(l Listener) func() {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = &subscriber{fn: l}
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

// Subscribers returns the number of registered listeners
func (c *Controller) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}

// Done is closed once the controller is closed
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Close cancels a pending debounced search, drops all listeners and closes
// Done. It is safe to call more than once.
func (c *Controller) Close() {
	c.debouncer.Stop()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = map[int]*subscriber{}
	if !c.closed {
		c.closed = true
		close(c.done)
	}
}

func (c *Controller) showTask(kind ModalKind, task models.Task) {
	c.mu.Lock()
	c.modal = Modal{Kind: kind, Task: &task}
	snap, ls := c.commitLocked()
	c.mu.Unlock()

	notify(snap, ls)
}

func (c *Controller) setUsersLocked(users []models.User) {
	c.people = users
	c.names = make(map[string]string, len(users))
	for _, u := range users {
		c.names[u.ID] = u.Name
	}
}

func (c *Controller) recomputeLocked() {
	c.filtered = apply(c.all, c.filter, c.search)
}

func (c *Controller) clampPageLocked() {
	total := TotalPages(len(c.filtered), c.pageSize)
	if c.page > total {
		c.page = total
	}
	if c.page < 1 {
		c.page = 1
	}
}

func (c *Controller) findLocked(id string) (models.Task, bool) {
	for _, t := range c.all {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

func (c *Controller) replaceTaskLocked(task models.Task) {
	for i := range c.all {
		if c.all[i].ID == task.ID {
			next := append([]models.Task(nil), c.all...)
			next[i] = task
			c.all = next
			return
		}
	}
	c.all = append(append([]models.Task(nil), c.all...), task)
}

func (c *Controller) renderLocked() View {
	return render(renderInput{
		filtered: c.filtered,
		names:    c.names,
		page:     c.page,
		pageSize: c.pageSize,
		filter:   c.filter,
		search:   c.search,
		actions:  c.actionOrder,
	})
}

func (c *Controller) modalLocked() Modal {
	m := c.modal
	if m.Task != nil {
		task := *m.Task
		m.Task = &task
	}
	if m.Candidates != nil {
		m.Candidates = append([]Candidate(nil), m.Candidates...)
	}
	return m
}

// commitLocked bumps the version, renders a snapshot and copies the
// subscriber set for notify
func (c *Controller) commitLocked() (Snapshot, []*subscriber) {
	c.version++
	snap := Snapshot{Version: c.version, View: c.renderLocked(), Modal: c.modalLocked()}
	ls := make([]*subscriber, 0, len(c.listeners))
	for _, l := range c.listeners {
		ls = append(ls, l)
	}
	return snap, ls
}

func notify(snap Snapshot, ls []*subscriber) {
	for _, l := range ls {
		l.deliver(snap)
	}
}
