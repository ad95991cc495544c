// Package memory provides in-memory stores with the same behaviour as the
// Postgres repositories, including transactions and foreign-key checks.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"remindly-backend/internal/apperrors"
	"remindly-backend/internal/models"
)

// Store holds every table. Use the accessor methods to get per-entity repositories.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users      map[string]models.User
	profiles   map[string]models.Profile
	reminders  map[string]models.Reminder
	favourites map[string]models.Favourite

	failures map[string]error
}

func NewStore() *Store {
	return &Store{
		users:      map[string]models.User{},
		profiles:   map[string]models.Profile{},
		reminders:  map[string]models.Reminder{},
		favourites: map[string]models.Favourite{},
		failures:   map[string]error{},
	}
}

// FailOn makes the named operation (for example "reminders.DeleteByProfileID")
// return err until cleared with a nil err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) failure(op string) error {
	if err, ok := s.failures[op]; ok {
		return fmt.Errorf("memory %s: %w", op, err)
	}
	return nil
}

// WithinTx restores every table to its prior state when fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	users, profiles := cloneMap(s.users), cloneMap(s.profiles)
	reminders, favourites := cloneMap(s.reminders), cloneMap(s.favourites)
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.users, s.profiles, s.reminders, s.favourites = users, profiles, reminders, favourites
		s.mu.Unlock()
		return err
	}
	return nil
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *Store) Users() *Users           { return &Users{s: s} }
func (s *Store) Profiles() *Profiles     { return &Profiles{s: s} }
func (s *Store) Reminders() *Reminders   { return &Reminders{s: s} }
func (s *Store) Favourites() *Favourites { return &Favourites{s: s} }

// Counts returns the number of reminders and favourites that reference a profile.
func (s *Store) Counts(profileID string) (reminders, favourites int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reminders {
		if r.ProfileID != nil && *r.ProfileID == profileID {
			reminders++
		}
	}
	for _, f := range s.favourites {
		if f.ProfileID == profileID {
			favourites++
		}
	}
	return reminders, favourites
}

type Users struct{ s *Store }

func (u *Users) Create(_ context.Context, user *models.User) (bool, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if err := u.s.failure("users.Create"); err != nil {
		return false, err
	}
	if _, ok := u.s.users[user.ID]; ok {
		return false, nil
	}
	u.s.users[user.ID] = *user
	return true, nil
}

func (u *Users) GetByID(_ context.Context, id string) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.users[id]
	if !ok {
		return nil, apperrors.NotFound("user")
	}
	return &user, nil
}

func (u *Users) Update(_ context.Context, user *models.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	existing, ok := u.s.users[user.ID]
	if !ok {
		return apperrors.NotFound("user")
	}
	existing.Email, existing.Name, existing.PhoneNumber = user.Email, user.Name, user.PhoneNumber
	existing.UpdatedAt = user.UpdatedAt
	u.s.users[user.ID] = existing
	return nil
}

type Profiles struct{ s *Store }

func (p *Profiles) Create(_ context.Context, profile *models.Profile) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if err := p.s.failure("profiles.Create"); err != nil {
		return err
	}
	if _, ok := p.s.users[profile.UserID]; !ok {
		return apperrors.NotFound("user")
	}
	p.s.profiles[profile.ID] = *profile
	return nil
}

func (p *Profiles) GetByID(_ context.Context, id string) (*models.Profile, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	profile, ok := p.s.profiles[id]
	if !ok {
		return nil, apperrors.NotFound("profile")
	}
	return &profile, nil
}

func (p *Profiles) ListByUserID(_ context.Context, userID string) ([]*models.Profile, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	out := []*models.Profile{}
	for _, profile := range p.s.profiles {
		if profile.UserID == userID {
			profile := profile
			out = append(out, &profile)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (p *Profiles) Update(_ context.Context, profile *models.Profile) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if err := p.s.failure("profiles.Update"); err != nil {
		return err
	}
	existing, ok := p.s.profiles[profile.ID]
	if !ok {
		return apperrors.NotFound("profile")
	}
	existing.Name = profile.Name
	existing.Description = profile.Description
	existing.UpdatedAt = profile.UpdatedAt
	p.s.profiles[profile.ID] = existing
	return nil
}

func (p *Profiles) SetImageURL(_ context.Context, id string, from, to *string, updatedAt time.Time) (bool, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if err := p.s.failure("profiles.SetImageURL"); err != nil {
		return false, err
	}
	existing, ok := p.s.profiles[id]
	if !ok {
		return false, apperrors.NotFound("profile")
	}
	if !sameURL(existing.ProfileImgURL, from) {
		return false, nil
	}
	if to != nil {
		url := *to
		to = &url
	}
	existing.ProfileImgURL = to
	existing.UpdatedAt = updatedAt
	p.s.profiles[id] = existing
	return true, nil
}

func sameURL(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (p *Profiles) Delete(_ context.Context, id string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if err := p.s.failure("profiles.Delete"); err != nil {
		return err
	}
	if _, ok := p.s.profiles[id]; !ok {
		return apperrors.NotFound("profile")
	}
	for _, r := range p.s.reminders {
		if r.ProfileID != nil && *r.ProfileID == id {
			return fmt.Errorf("memory profiles.Delete: reminder %s still references profile", r.ID)
		}
	}
	for _, f := range p.s.favourites {
		if f.ProfileID == id {
			return fmt.Errorf("memory profiles.Delete: favourite %s still references profile", f.ID)
		}
	}
	delete(p.s.profiles, id)
	return nil
}

type Reminders struct{ s *Store }

func (r *Reminders) checkRefs(reminder *models.Reminder) error {
	if _, ok := r.s.users[reminder.UserID]; !ok {
		return apperrors.NotFound("user")
	}
	if reminder.ProfileID != nil {
		if _, ok := r.s.profiles[*reminder.ProfileID]; !ok {
			return apperrors.NotFound("profile")
		}
	}
	return nil
}

func (r *Reminders) Create(_ context.Context, reminder *models.Reminder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("reminders.Create"); err != nil {
		return err
	}
	if err := r.checkRefs(reminder); err != nil {
		return err
	}
	r.s.reminders[reminder.ID] = *reminder
	return nil
}

func (r *Reminders) GetByID(_ context.Context, id string) (*models.Reminder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reminder, ok := r.s.reminders[id]
	if !ok {
		return nil, apperrors.NotFound("reminder")
	}
	return &reminder, nil
}

func (r *Reminders) list(match func(models.Reminder) bool) []*models.Reminder {
	out := []*models.Reminder{}
	for _, reminder := range r.s.reminders {
		if match(reminder) {
			reminder := reminder
			out = append(out, &reminder)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DateToRemember.Equal(out[j].DateToRemember.Time) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].DateToRemember.Before(out[j].DateToRemember.Time)
	})
	return out
}

func (r *Reminders) ListByUserID(_ context.Context, userID string) ([]*models.ReminderWithProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reminders := r.list(func(m models.Reminder) bool { return m.UserID == userID })
	out := make([]*models.ReminderWithProfile, 0, len(reminders))
	for _, reminder := range reminders {
		item := &models.ReminderWithProfile{Reminder: *reminder}
		if reminder.ProfileID != nil {
			if profile, ok := r.s.profiles[*reminder.ProfileID]; ok {
				name := profile.Name
				item.ProfileName = &name
				item.ProfileImgURL = profile.ProfileImgURL
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *Reminders) ListPersonal(_ context.Context, userID string) ([]*models.Reminder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(func(m models.Reminder) bool { return m.UserID == userID && m.ProfileID == nil }), nil
}

func (r *Reminders) ListByProfile(_ context.Context, userID, profileID string) ([]*models.Reminder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(func(m models.Reminder) bool {
		return m.UserID == userID && m.ProfileID != nil && *m.ProfileID == profileID
	}), nil
}

func (r *Reminders) Update(_ context.Context, reminder *models.Reminder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("reminders.Update"); err != nil {
		return err
	}
	if _, ok := r.s.reminders[reminder.ID]; !ok {
		return apperrors.NotFound("reminder")
	}
	if err := r.checkRefs(reminder); err != nil {
		return err
	}
	r.s.reminders[reminder.ID] = *reminder
	return nil
}

func (r *Reminders) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reminders[id]; !ok {
		return apperrors.NotFound("reminder")
	}
	delete(r.s.reminders, id)
	return nil
}

func (r *Reminders) DeleteByProfileID(_ context.Context, profileID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("reminders.DeleteByProfileID"); err != nil {
		return 0, err
	}
	var n int64
	for id, reminder := range r.s.reminders {
		if reminder.ProfileID != nil && *reminder.ProfileID == profileID {
			delete(r.s.reminders, id)
			n++
		}
	}
	return n, nil
}

type Favourites struct{ s *Store }

func (f *Favourites) checkRefs(favourite *models.Favourite) error {
	if _, ok := f.s.users[favourite.UserID]; !ok {
		return apperrors.NotFound("user")
	}
	if _, ok := f.s.profiles[favourite.ProfileID]; !ok {
		return apperrors.NotFound("profile")
	}
	return nil
}

func (f *Favourites) Create(_ context.Context, favourite *models.Favourite) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.failure("favourites.Create"); err != nil {
		return err
	}
	if err := f.checkRefs(favourite); err != nil {
		return err
	}
	f.s.favourites[favourite.ID] = *favourite
	return nil
}

func (f *Favourites) GetByID(_ context.Context, id string) (*models.Favourite, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	favourite, ok := f.s.favourites[id]
	if !ok {
		return nil, apperrors.NotFound("favourite")
	}
	return &favourite, nil
}

func (f *Favourites) list(match func(models.Favourite) bool) []*models.Favourite {
	out := []*models.Favourite{}
	for _, favourite := range f.s.favourites {
		if match(favourite) {
			favourite := favourite
			out = append(out, &favourite)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *Favourites) ListByUserID(_ context.Context, userID string) ([]*models.FavouriteWithProfile, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	favourites := f.list(func(m models.Favourite) bool { return m.UserID == userID })
	out := make([]*models.FavouriteWithProfile, 0, len(favourites))
	for _, favourite := range favourites {
		item := &models.FavouriteWithProfile{Favourite: *favourite}
		if profile, ok := f.s.profiles[favourite.ProfileID]; ok {
			item.ProfileName = profile.Name
			item.ProfileImgURL = profile.ProfileImgURL
		}
		out = append(out, item)
	}
	return out, nil
}

func (f *Favourites) ListByProfile(_ context.Context, userID, profileID string) ([]*models.Favourite, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.list(func(m models.Favourite) bool { return m.UserID == userID && m.ProfileID == profileID }), nil
}

func (f *Favourites) Update(_ context.Context, favourite *models.Favourite) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.favourites[favourite.ID]; !ok {
		return apperrors.NotFound("favourite")
	}
	if err := f.checkRefs(favourite); err != nil {
		return err
	}
	f.s.favourites[favourite.ID] = *favourite
	return nil
}

func (f *Favourites) Delete(_ context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.favourites[id]; !ok {
		return apperrors.NotFound("favourite")
	}
	delete(f.s.favourites, id)
	return nil
}

func (f *Favourites) DeleteByProfileID(_ context.Context, profileID string) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.failure("favourites.DeleteByProfileID"); err != nil {
		return 0, err
	}
	var n int64
	for id, favourite := range f.s.favourites {
		if favourite.ProfileID == profileID {
			delete(f.s.favourites, id)
			n++
		}
	}
	return n, nil
}
