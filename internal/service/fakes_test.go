package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/gamy-transporte/reportes/internal/domain/model"
	"github.com/gamy-transporte/reportes/internal/domain/status"
	"github.com/gamy-transporte/reportes/internal/repository"
)

// Минимальные сигнатуры изображений для mimetype.
var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	textBytes = []byte("esto no es una imagen")
)

var errDBDown = errors.New("connection refused")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- admin_users ---

type fakeAdminRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*model.AdminUser
	err    error
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{byID: map[int64]*model.AdminUser{}}
}

func (f *fakeAdminRepo) findEmail(email string) *model.AdminUser {
	for _, u := range f.byID {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (f *fakeAdminRepo) Create(_ context.Context, u *model.AdminUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.findEmail(u.Email) != nil {
		return repository.ErrConflict
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeAdminRepo) CreateIfAbsent(ctx context.Context, email, hash string) (bool, error) {
	err := f.Create(ctx, &model.AdminUser{Email: email, PasswordHash: hash})
	if errors.Is(err, repository.ErrConflict) {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeAdminRepo) GetByID(_ context.Context, id int64) (*model.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeAdminRepo) GetByEmail(_ context.Context, email string) (*model.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u := f.findEmail(email)
	if u == nil {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeAdminRepo) List(_ context.Context) ([]*model.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.AdminUser
	for _, u := range f.byID {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, f.err
}

func (f *fakeAdminRepo) Update(_ context.Context, u *model.AdminUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[u.ID]; !ok {
		return repository.ErrNotFound
	}
	if other := f.findEmail(u.Email); other != nil && other.ID != u.ID {
		return repository.ErrConflict
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeAdminRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// --- end_users ---

type fakeEndUserRepo struct {
	mu    sync.Mutex
	users []*model.EndUser
}

func (f *fakeEndUserRepo) Upsert(_ context.Context, externalID, name, email string) (*model.EndUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ExternalID == externalID {
			cp := *u
			return &cp, nil
		}
	}
	u := &model.EndUser{
		ID: int64(len(f.users) + 1), ExternalID: externalID,
		DisplayName: name, Email: email, CreatedAt: time.Now(),
	}
	f.users = append(f.users, u)
	cp := *u
	return &cp, nil
}

func (f *fakeEndUserRepo) GetByID(_ context.Context, id int64) (*model.EndUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// --- stop_reports ---

type fakeStopRepo struct {
	mu         sync.Mutex
	nextID     int64
	reports    map[int64]*model.StopReport
	images     map[int64][]byte
	imageReads int
	err        error
}

func newFakeStopRepo() *fakeStopRepo {
	return &fakeStopRepo{reports: map[int64]*model.StopReport{}, images: map[int64][]byte{}}
}

func (f *fakeStopRepo) Create(_ context.Context, r *model.StopReport, image []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nextID++
	r.ID = f.nextID
	r.CreatedAt = time.Now().Add(time.Duration(f.nextID) * time.Second)
	r.HasImage = image != nil
	cp := *r
	f.reports[r.ID] = &cp
	f.images[r.ID] = image
	return nil
}

func (f *fakeStopRepo) list(match func(*model.StopReport) bool) []*model.StopReport {
	var out []*model.StopReport
	for _, r := range f.reports {
		if match(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeStopRepo) List(_ context.Context, filter *status.StopStatus) ([]*model.StopReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.list(func(r *model.StopReport) bool { return filter == nil || r.Status == *filter }), nil
}

func (f *fakeStopRepo) ListByOwner(_ context.Context, ownerID int64) ([]*model.StopReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.list(func(r *model.StopReport) bool { return r.OwnerID != nil && *r.OwnerID == ownerID }), nil
}

func (f *fakeStopRepo) GetByID(_ context.Context, id int64) (*model.StopReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStopRepo) GetImage(_ context.Context, id int64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imageReads++
	img, ok := f.images[id]
	if !ok || img == nil {
		return nil, repository.ErrNotFound
	}
	return img, nil
}

func (f *fakeStopRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.reports[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.reports, id)
	delete(f.images, id)
	return nil
}

func (f *fakeStopRepo) TransitionStatus(_ context.Context, id int64, from, to status.StopStatus) (*model.StopReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if r.Status != from {
		return nil, &repository.StatusMismatchError{Current: r.Status}
	}
	r.Status = to
	cp := *r
	return &cp, nil
}

// --- bus_reports ---

type fakeBusRepo struct {
	mu      sync.Mutex
	nextID  int64
	reports map[int64]*model.BusReport
	photos  map[int64][]byte
	err     error
}

func newFakeBusRepo() *fakeBusRepo {
	return &fakeBusRepo{reports: map[int64]*model.BusReport{}, photos: map[int64][]byte{}}
}

func (f *fakeBusRepo) Create(_ context.Context, r *model.BusReport, photo []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nextID++
	r.ID = f.nextID
	r.Status = "Enviado"
	r.CreatedAt = time.Now().Add(time.Duration(f.nextID) * time.Second)
	r.HasPhoto = photo != nil
	cp := *r
	f.reports[r.ID] = &cp
	f.photos[r.ID] = photo
	return nil
}

func (f *fakeBusRepo) list(match func(*model.BusReport) bool) []*model.BusReport {
	var out []*model.BusReport
	for _, r := range f.reports {
		if match(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeBusRepo) List(_ context.Context) ([]*model.BusReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list(func(*model.BusReport) bool { return true }), f.err
}

func (f *fakeBusRepo) ListByUnit(_ context.Context, unit string) ([]*model.BusReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list(func(r *model.BusReport) bool { return r.Unit == unit }), f.err
}

func (f *fakeBusRepo) ListByOwner(_ context.Context, ownerID int64) ([]*model.BusReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.list(func(r *model.BusReport) bool { return r.OwnerID != nil && *r.OwnerID == ownerID }), nil
}

func (f *fakeBusRepo) GroupByUnit(_ context.Context) ([]*model.BusUnitSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byUnit := map[string]*model.BusUnitSummary{}
	for _, r := range f.reports {
		s, ok := byUnit[r.Unit]
		if !ok {
			s = &model.BusUnitSummary{Unit: r.Unit}
			byUnit[r.Unit] = s
		}
		s.ReportCount++
		if r.CreatedAt.After(s.LastReported) {
			s.LastReported = r.CreatedAt
		}
	}
	var out []*model.BusUnitSummary
	for _, s := range byUnit {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReportCount != out[j].ReportCount {
			return out[i].ReportCount > out[j].ReportCount
		}
		return out[i].LastReported.After(out[j].LastReported)
	})
	return out, f.err
}

func (f *fakeBusRepo) GetByID(_ context.Context, id int64) (*model.BusReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeBusRepo) GetPhoto(_ context.Context, id int64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.photos[id]
	if !ok || p == nil {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakeBusRepo) UpdateStatus(_ context.Context, id int64, st string) (*model.BusReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r.Status = st
	cp := *r
	return &cp, nil
}

func (f *fakeBusRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reports[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.reports, id)
	delete(f.photos, id)
	return nil
}

// --- news_posts ---

type fakeNewsRepo struct {
	mu     sync.Mutex
	nextID int64
	posts  map[int64]*model.NewsPost
	images map[int64][]byte
}

func newFakeNewsRepo() *fakeNewsRepo {
	return &fakeNewsRepo{posts: map[int64]*model.NewsPost{}, images: map[int64][]byte{}}
}

func (f *fakeNewsRepo) Create(_ context.Context, n *model.NewsPost, image []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	n.ID = f.nextID
	n.CreatedAt = time.Now().Add(time.Duration(f.nextID) * time.Second)
	n.HasImage = image != nil
	cp := *n
	f.posts[n.ID] = &cp
	f.images[n.ID] = image
	return nil
}

func (f *fakeNewsRepo) List(_ context.Context) ([]*model.NewsPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.NewsPost
	for _, p := range f.posts {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeNewsRepo) GetByID(_ context.Context, id int64) (*model.NewsPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeNewsRepo) GetImage(_ context.Context, id int64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	img, ok := f.images[id]
	if !ok || img == nil {
		return nil, repository.ErrNotFound
	}
	return img, nil
}

func (f *fakeNewsRepo) Update(_ context.Context, id int64, title, body string) (*model.NewsPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Title, p.Body = title, body
	cp := *p
	return &cp, nil
}

func (f *fakeNewsRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.posts, id)
	delete(f.images, id)
	return nil
}
