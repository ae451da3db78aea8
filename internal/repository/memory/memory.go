// Package memory implements the storage contract in process memory. It
// backs the engine's tests and local development. A single mutex stands
// in for the row-level locking of the postgres store: InTx holds it for
// the whole read-check-write sequence, so transactions are serializable
// and roll back by restoring a snapshot.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"eventum/internal/apperr"
	"eventum/internal/model"
	"eventum/internal/repository"
)

type state struct {
	users      []model.User
	categories []model.Category
	events     []model.Event
	requests   []model.Request
	comments   []model.Comment
	hits       []model.Hit
}

func (st *state) clone() *state {
	return &state{
		users:      slices.Clone(st.users),
		categories: slices.Clone(st.categories),
		events:     slices.Clone(st.events),
		requests:   slices.Clone(st.requests),
		comments:   slices.Clone(st.comments),
		hits:       slices.Clone(st.hits),
	}
}

// Store is the in-memory repository.Store.
type Store struct {
	mu    *sync.Mutex
	state *state
	inTx  bool
}

// New constructs an empty Store.
func New() *Store {
	return &Store{mu: &sync.Mutex{}, state: &state{}}
}

func (s *Store) lock() {
	if !s.inTx {
		s.mu.Lock()
	}
}

func (s *Store) unlock() {
	if !s.inTx {
		s.mu.Unlock()
	}
}

// InTx serializes fn against every other transaction and restores the
// pre-transaction state when fn fails.
func (s *Store) InTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.state.clone()
	tx := &Store{mu: s.mu, state: s.state, inTx: true}
	if err := fn(tx); err != nil {
		*s.state = *snap
		return err
	}
	return nil
}

func (s *Store) Users() repository.UserRepository          { return &userRepo{s} }
func (s *Store) Categories() repository.CategoryRepository { return &categoryRepo{s} }
func (s *Store) Events() repository.EventRepository        { return &eventRepo{s} }
func (s *Store) Requests() repository.RequestRepository    { return &requestRepo{s} }
func (s *Store) Comments() repository.CommentRepository    { return &commentRepo{s} }
func (s *Store) Hits() repository.HitRepository            { return &hitRepo{s} }

func page[T any](items []T, from, size int) []T {
	if from >= len(items) {
		return nil
	}
	end := from + size
	if end > len(items) {
		end = len(items)
	}
	return slices.Clone(items[from:end])
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	r.s.lock()
	defer r.s.unlock()
	r.s.state.users = append(r.s.state.users, *u)
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	r.s.lock()
	defer r.s.unlock()
	for _, u := range r.s.state.users {
		if u.ID == id {
			out := u
			return &out, nil
		}
	}
	return nil, apperr.NotFound("user with id=%s was not found", id)
}

func (r *userRepo) Exists(ctx context.Context, id string) (bool, error) {
	r.s.lock()
	defer r.s.unlock()
	for _, u := range r.s.state.users {
		if u.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *userRepo) List(ctx context.Context, from, size int) ([]model.User, error) {
	r.s.lock()
	defer r.s.unlock()
	out := slices.Clone(r.s.state.users)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, from, size), nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	r.s.lock()
	defer r.s.unlock()
	for i, u := range r.s.state.users {
		if u.ID == id {
			r.s.state.users = slices.Delete(r.s.state.users, i, i+1)
			return nil
		}
	}
	return apperr.NotFound("user with id=%s was not found", id)
}

type categoryRepo struct{ s *Store }

func (r *categoryRepo) Create(ctx context.Context, c *model.Category) error {
	r.s.lock()
	defer r.s.unlock()
	r.s.state.categories = append(r.s.state.categories, *c)
	return nil
}

func (r *categoryRepo) GetByID(ctx context.Context, id string) (*model.Category, error) {
	r.s.lock()
	defer r.s.unlock()
	for _, c := range r.s.state.categories {
		if c.ID == id {
			out := c
			return &out, nil
		}
	}
	return nil, apperr.NotFound("category with id=%s was not found", id)
}

func (r *categoryRepo) Exists(ctx context.Context, id string) (bool, error) {
	r.s.lock()
	defer r.s.unlock()
	for _, c := range r.s.state.categories {
		if c.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *categoryRepo) List(ctx context.Context, from, size int) ([]model.Category, error) {
	r.s.lock()
	defer r.s.unlock()
	out := slices.Clone(r.s.state.categories)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, from, size), nil
}

func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	r.s.lock()
	defer r.s.unlock()
	for i, c := range r.s.state.categories {
		if c.ID == id {
			r.s.state.categories = slices.Delete(r.s.state.categories, i, i+1)
			return nil
		}
	}
	return apperr.NotFound("category with id=%s was not found", id)
}

type eventRepo struct{ s *Store }

func (r *eventRepo) Create(ctx context.Context, e *model.Event) error {
	r.s.lock()
	defer r.s.unlock()
	r.s.state.events = append(r.s.state.events, *e)
	return nil
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	r.s.lock()
	defer r.s.unlock()
	return r.find(id)
}

// GetForUpdate is identical to GetByID here: InTx already holds the
// store mutex for the whole transaction.
func (r *eventRepo) GetForUpdate(ctx context.Context, id string) (*model.Event, error) {
	r.s.lock()
	defer r.s.unlock()
	return r.find(id)
}

func (r *eventRepo) find(id string) (*model.Event, error) {
	for _, e := range r.s.state.events {
		if e.ID == id {
			out := e
			return &out, nil
		}
	}
	return nil, apperr.NotFound("event with id=%s was not found", id)
}

func (r *eventRepo) Exists(ctx context.Context, id string) (bool, error) {
	r.s.lock()
	defer r.s.unlock()
	for _, e := range r.s.state.events {
		if e.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *eventRepo) Update(ctx context.Context, e *model.Event) error {
	r.s.lock()
	defer r.s.unlock()
	for i := range r.s.state.events {
		if r.s.state.events[i].ID == e.ID {
			r.s.state.events[i] = *e
			return nil
		}
	}
	return apperr.NotFound("event with id=%s was not found", e.ID)
}

func (r *eventRepo) ListByInitiator(ctx context.Context, initiatorID string, from, size int) ([]model.Event, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []model.Event
	for _, e := range r.s.state.events {
		if e.InitiatorID == initiatorID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedOn.After(out[j].CreatedOn) })
	return page(out, from, size), nil
}

type requestRepo struct{ s *Store }

func (r *requestRepo) Create(ctx context.Context, req *model.Request) error {
	r.s.lock()
	defer r.s.unlock()
	r.s.state.requests = append(r.s.state.requests, *req)
	return nil
}

func (r *requestRepo) GetByID(ctx context.Context, id string) (*model.Request, error) {
	r.s.lock()
	defer r.s.unlock()
	for _, req := range r.s.state.requests {
		if req.ID == id {
			out := req
			return &out, nil
		}
	}
	return nil, apperr.NotFound("request with id=%s was not found", id)
}

func (r *requestRepo) ExistsActive(ctx context.Context, eventID, requesterID string) (bool, error) {
	r.s.lock()
	defer r.s.unlock()
	for _, req := range r.s.state.requests {
		if req.EventID == eventID && req.RequesterID == requesterID && req.Status != model.RequestCanceled {
			return true, nil
		}
	}
	return false, nil
}

func (r *requestRepo) GetByIDs(ctx context.Context, ids []string) ([]model.Request, error) {
	r.s.lock()
	defer r.s.unlock()
	byID := make(map[string]model.Request, len(r.s.state.requests))
	for _, req := range r.s.state.requests {
		byID[req.ID] = req
	}
	out := make([]model.Request, 0, len(ids))
	for _, id := range ids {
		if req, ok := byID[id]; ok {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *requestRepo) Update(ctx context.Context, req *model.Request) error {
	r.s.lock()
	defer r.s.unlock()
	return r.update(req)
}

func (r *requestRepo) update(req *model.Request) error {
	for i := range r.s.state.requests {
		if r.s.state.requests[i].ID == req.ID {
			r.s.state.requests[i] = *req
			return nil
		}
	}
	return apperr.NotFound("request with id=%s was not found", req.ID)
}

func (r *requestRepo) UpdateAll(ctx context.Context, rs []model.Request) error {
	r.s.lock()
	defer r.s.unlock()
	for i := range rs {
		if err := r.update(&rs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *requestRepo) ListByRequester(ctx context.Context, requesterID string) ([]model.Request, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []model.Request
	for _, req := range r.s.state.requests {
		if req.RequesterID == requesterID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *requestRepo) ListByEvent(ctx context.Context, eventID string) ([]model.Request, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []model.Request
	for _, req := range r.s.state.requests {
		if req.EventID == eventID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *requestRepo) CountConfirmed(ctx context.Context, eventID string) (int, error) {
	r.s.lock()
	defer r.s.unlock()
	n := 0
	for _, req := range r.s.state.requests {
		if req.EventID == eventID && req.Status == model.RequestConfirmed {
			n++
		}
	}
	return n, nil
}

type commentRepo struct{ s *Store }

func (r *commentRepo) Create(ctx context.Context, c *model.Comment) error {
	r.s.lock()
	defer r.s.unlock()
	r.s.state.comments = append(r.s.state.comments, *c)
	return nil
}

func (r *commentRepo) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	r.s.lock()
	defer r.s.unlock()
	for _, c := range r.s.state.comments {
		if c.ID == id {
			out := c
			return &out, nil
		}
	}
	return nil, apperr.NotFound("comment with id=%s was not found", id)
}

func (r *commentRepo) ChildrenOf(ctx context.Context, parentID string) ([]model.Comment, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []model.Comment
	for _, c := range r.s.state.comments {
		if c.ParentID == parentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *commentRepo) Update(ctx context.Context, c *model.Comment) error {
	r.s.lock()
	defer r.s.unlock()
	return r.update(c)
}

func (r *commentRepo) update(c *model.Comment) error {
	for i := range r.s.state.comments {
		if r.s.state.comments[i].ID == c.ID {
			r.s.state.comments[i] = *c
			return nil
		}
	}
	return apperr.NotFound("comment with id=%s was not found", c.ID)
}

func (r *commentRepo) UpdateAll(ctx context.Context, cs []model.Comment) error {
	r.s.lock()
	defer r.s.unlock()
	for i := range cs {
		if err := r.update(&cs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *commentRepo) ListByEvent(ctx context.Context, eventID string, from, size int) ([]model.Comment, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []model.Comment
	for _, c := range r.s.state.comments {
		if c.EventID == eventID && !c.Deleted {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreationDate.After(out[j].CreationDate) })
	return page(out, from, size), nil
}

func (r *commentRepo) ListByAuthor(ctx context.Context, authorID string, scope model.CommentScope, from, size int) ([]model.Comment, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []model.Comment
	for _, c := range r.s.state.comments {
		if c.AuthorID != authorID {
			continue
		}
		switch scope {
		case model.ShowActive:
			if c.Deleted {
				continue
			}
		case model.ShowDeleted:
			if !c.Deleted {
				continue
			}
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreationDate.After(out[j].CreationDate) })
	return page(out, from, size), nil
}

type hitRepo struct{ s *Store }

func (r *hitRepo) Create(ctx context.Context, h *model.Hit) error {
	r.s.lock()
	defer r.s.unlock()
	r.s.state.hits = append(r.s.state.hits, *h)
	return nil
}

func (r *hitRepo) Stats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]model.ViewStats, error) {
	r.s.lock()
	defer r.s.unlock()

	type key struct{ app, uri string }
	counts := make(map[key]int64)
	seen := make(map[key]map[string]bool)

	for _, h := range r.s.state.hits {
		if h.Timestamp.Before(start) || h.Timestamp.After(end) {
			continue
		}
		if len(uris) > 0 && !slices.Contains(uris, h.URI) {
			continue
		}
		k := key{h.App, h.URI}
		if unique {
			if seen[k] == nil {
				seen[k] = make(map[string]bool)
			}
			if seen[k][h.IP] {
				continue
			}
			seen[k][h.IP] = true
		}
		counts[k]++
	}

	out := make([]model.ViewStats, 0, len(counts))
	for k, n := range counts {
		out = append(out, model.ViewStats{App: k.app, URI: k.uri, Hits: n})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Hits != out[j].Hits {
			return out[i].Hits > out[j].Hits
		}
		return out[i].URI < out[j].URI
	})
	return out, nil
}
