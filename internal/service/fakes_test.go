package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"memestash/api/internal/cache"
	"memestash/api/internal/models"
	"memestash/api/internal/repository"
	"memestash/api/internal/storage"
)

// In-memory fakes backing the service tests. They mirror the behavior of
// the pgx repositories and the object store closely enough for the
// orchestration logic to be exercised without a database.

type fakeMemeCatalog struct {
	memes    []models.Meme
	memeCats map[string][]string
	memeTags map[string][]string
	cats     map[string]models.Category
	tags     map[string]models.Tag

	createErr error
	createdAt time.Time
}

func newFakeMemeCatalog() *fakeMemeCatalog {
	return &fakeMemeCatalog{
		memeCats:  make(map[string][]string),
		memeTags:  make(map[string][]string),
		cats:      make(map[string]models.Category),
		tags:      make(map[string]models.Tag),
		createdAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeMemeCatalog) Create(_ context.Context, meme models.Meme) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.createdAt = f.createdAt.Add(time.Minute)
	meme.CreatedAt = f.createdAt
	meme.UpdatedAt = f.createdAt
	f.memes = append(f.memes, meme)
	return nil
}

func (f *fakeMemeCatalog) GetByID(_ context.Context, id string) (models.Meme, error) {
	for _, m := range f.memes {
		if m.ID == id {
			return m, nil
		}
	}
	return models.Meme{}, repository.ErrMemeNotFound
}

func (f *fakeMemeCatalog) GetByOwner(_ context.Context, id string, userID string) (models.Meme, error) {
	for _, m := range f.memes {
		if m.ID == id && m.UserID == userID {
			return m, nil
		}
	}
	return models.Meme{}, repository.ErrMemeNotFound
}

func (f *fakeMemeCatalog) Update(_ context.Context, meme models.Meme) error {
	for i, m := range f.memes {
		if m.ID == meme.ID {
			meme.CreatedAt = m.CreatedAt
			f.memes[i] = meme
			return nil
		}
	}
	return repository.ErrMemeNotFound
}

func (f *fakeMemeCatalog) Delete(_ context.Context, id string, userID string) error {
	for i, m := range f.memes {
		if m.ID == id && m.UserID == userID {
			f.memes = append(f.memes[:i], f.memes[i+1:]...)
			return nil
		}
	}
	return repository.ErrMemeNotFound
}

func (f *fakeMemeCatalog) List(_ context.Context, userID string, q repository.MemeListQuery) ([]models.Meme, int, error) {
	var filtered []models.Meme
	for _, m := range f.memes {
		if m.UserID != userID {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(m.Title), strings.ToLower(q.Search)) {
			continue
		}
		if q.CategoryID != "" && !contains(f.memeCats[m.ID], q.CategoryID) {
			continue
		}
		if q.TagID != "" && !contains(f.memeTags[m.ID], q.TagID) {
			continue
		}
		filtered = append(filtered, m)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if q.SortDesc {
			a, b = b, a
		}
		switch q.SortColumn {
		case "title":
			return a.Title < b.Title
		case "size_bytes":
			return a.SizeBytes < b.SizeBytes
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})

	total := len(filtered)
	if q.Offset >= total {
		return nil, total, nil
	}
	end := q.Offset + q.Limit
	if end > total {
		end = total
	}
	return filtered[q.Offset:end], total, nil
}

func (f *fakeMemeCatalog) ReplaceCategories(_ context.Context, memeID string, categoryIDs []string) error {
	f.memeCats[memeID] = append([]string(nil), categoryIDs...)
	return nil
}

func (f *fakeMemeCatalog) ReplaceTags(_ context.Context, memeID string, tagIDs []string) error {
	f.memeTags[memeID] = append([]string(nil), tagIDs...)
	return nil
}

func (f *fakeMemeCatalog) LoadAssociations(_ context.Context, memes []models.Meme) ([]models.Meme, error) {
	out := make([]models.Meme, len(memes))
	for i, m := range memes {
		m.Categories = []models.Category{}
		m.Tags = []models.Tag{}
		for _, id := range f.memeCats[m.ID] {
			if c, ok := f.cats[id]; ok {
				m.Categories = append(m.Categories, c)
			}
		}
		for _, id := range f.memeTags[m.ID] {
			if t, ok := f.tags[id]; ok {
				m.Tags = append(m.Tags, t)
			}
		}
		out[i] = m
	}
	return out, nil
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

type fakeCategoryCatalog struct {
	cats map[string]models.Category
}

func newFakeCategoryCatalog() *fakeCategoryCatalog {
	return &fakeCategoryCatalog{cats: make(map[string]models.Category)}
}

func (f *fakeCategoryCatalog) Create(_ context.Context, category models.Category) error {
	for _, c := range f.cats {
		if c.UserID == category.UserID && c.Name == category.Name {
			return repository.ErrCategoryNameTaken
		}
	}
	f.cats[category.ID] = category
	return nil
}

func (f *fakeCategoryCatalog) GetByOwner(_ context.Context, id string, userID string) (models.Category, error) {
	c, ok := f.cats[id]
	if !ok || c.UserID != userID {
		return models.Category{}, repository.ErrCategoryNotFound
	}
	return c, nil
}

func (f *fakeCategoryCatalog) Update(_ context.Context, category models.Category) error {
	if _, ok := f.cats[category.ID]; !ok {
		return repository.ErrCategoryNotFound
	}
	f.cats[category.ID] = category
	return nil
}

func (f *fakeCategoryCatalog) Delete(_ context.Context, id string, userID string) error {
	c, ok := f.cats[id]
	if !ok || c.UserID != userID {
		return repository.ErrCategoryNotFound
	}
	delete(f.cats, id)
	return nil
}

func (f *fakeCategoryCatalog) List(_ context.Context, userID string, search string) ([]models.Category, error) {
	var out []models.Category
	for _, c := range f.cats {
		if c.UserID != userID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeCategoryCatalog) ResolveOwned(_ context.Context, userID string, ids []string) ([]models.Category, error) {
	var out []models.Category
	for _, id := range ids {
		if c, ok := f.cats[id]; ok && c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategoryCatalog) NameExists(_ context.Context, userID string, name string, excludeID string) (bool, error) {
	for _, c := range f.cats {
		if c.UserID == userID && c.Name == name && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

type fakeTagCatalog struct {
	tags    map[string]models.Tag
	created int
}

func newFakeTagCatalog() *fakeTagCatalog {
	return &fakeTagCatalog{tags: make(map[string]models.Tag)}
}

func (f *fakeTagCatalog) Create(_ context.Context, tag models.Tag) error {
	for _, t := range f.tags {
		if t.UserID == tag.UserID && t.Name == tag.Name {
			return repository.ErrTagNameTaken
		}
	}
	f.tags[tag.ID] = tag
	return nil
}

func (f *fakeTagCatalog) FindOrCreate(_ context.Context, userID string, name string, id string) (models.Tag, error) {
	for _, t := range f.tags {
		if t.UserID == userID && t.Name == name {
			return t, nil
		}
	}
	tag := models.Tag{ID: id, UserID: userID, Name: name}
	f.tags[id] = tag
	f.created++
	return tag, nil
}

func (f *fakeTagCatalog) GetByOwner(_ context.Context, id string, userID string) (models.Tag, error) {
	t, ok := f.tags[id]
	if !ok || t.UserID != userID {
		return models.Tag{}, repository.ErrTagNotFound
	}
	return t, nil
}

func (f *fakeTagCatalog) Update(_ context.Context, tag models.Tag) error {
	if _, ok := f.tags[tag.ID]; !ok {
		return repository.ErrTagNotFound
	}
	f.tags[tag.ID] = tag
	return nil
}

func (f *fakeTagCatalog) Delete(_ context.Context, id string, userID string) error {
	t, ok := f.tags[id]
	if !ok || t.UserID != userID {
		return repository.ErrTagNotFound
	}
	delete(f.tags, id)
	return nil
}

func (f *fakeTagCatalog) List(_ context.Context, userID string, search string) ([]models.Tag, error) {
	var out []models.Tag
	for _, t := range f.tags {
		if t.UserID != userID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(search)) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeStore struct {
	objects   map[string][]byte
	putErr    error
	deleteErr error
	puts      int
	deletes   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Put(_ context.Context, key string, data []byte, _ string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.puts++
	f.objects[key] = append([]byte(nil), data...)
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrObjectMissing
	}
	return data, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes++
	delete(f.objects, key)
	return nil
}

type fakeLinkCatalog struct {
	links map[string]models.ShareableLink
}

func newFakeLinkCatalog() *fakeLinkCatalog {
	return &fakeLinkCatalog{links: make(map[string]models.ShareableLink)}
}

func (f *fakeLinkCatalog) Create(_ context.Context, link models.ShareableLink) error {
	f.links[link.Token] = link
	return nil
}

func (f *fakeLinkCatalog) GetByToken(_ context.Context, token string) (models.ShareableLink, error) {
	link, ok := f.links[token]
	if !ok {
		return models.ShareableLink{}, repository.ErrLinkNotFound
	}
	return link, nil
}

func (f *fakeLinkCatalog) DeleteByToken(_ context.Context, token string, userID string) error {
	link, ok := f.links[token]
	if !ok || link.UserID != userID {
		return repository.ErrLinkNotFound
	}
	delete(f.links, token)
	return nil
}

func (f *fakeLinkCatalog) ListByMeme(_ context.Context, memeID string, userID string) ([]models.ShareableLink, error) {
	var out []models.ShareableLink
	for _, link := range f.links {
		if link.MemeID == memeID && link.UserID == userID {
			out = append(out, link)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeUserCatalog struct {
	users []models.User
}

func (f *fakeUserCatalog) Create(_ context.Context, user models.User) error {
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrUserExists
		}
	}
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserCatalog) FindByUsername(_ context.Context, username string) (models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUserCatalog) FindByUsernameOrEmail(_ context.Context, username string, email string) (models.User, error) {
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUserCatalog) GetByID(_ context.Context, id string) (models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

type testKV struct {
	values map[string]string
}

func newTestKV() *testKV {
	return &testKV{values: make(map[string]string)}
}

func (m *testKV) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *testKV) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.values[key] = value
	return nil
}

func (m *testKV) Del(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

type memeServiceFixture struct {
	svc        *MemeService
	memes      *fakeMemeCatalog
	categories *fakeCategoryCatalog
	tags       *fakeTagCatalog
	store      *fakeStore
	metadata   *cache.MetadataCache
	kv         *testKV
}

func newMemeServiceFixture() *memeServiceFixture {
	memes := newFakeMemeCatalog()
	categories := newFakeCategoryCatalog()
	tags := newFakeTagCatalog()
	store := newFakeStore()
	kv := newTestKV()
	metadata := cache.NewMetadataCache(kv, 5*time.Minute)

	// Tag and category lookups for association hydration go through the
	// same backing maps the catalogs use.
	memes.cats = categories.cats
	memes.tags = tags.tags

	svc := NewMemeService(memes, categories, tags, store, metadata, 10*1024*1024, zerolog.Nop())
	return &memeServiceFixture{
		svc:        svc,
		memes:      memes,
		categories: categories,
		tags:       tags,
		store:      store,
		metadata:   metadata,
		kv:         kv,
	}
}

// pngBytes builds a sniffable PNG payload of the given total size.
func pngBytes(size int) []byte {
	data := make([]byte, size)
	copy(data, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})
	return data
}
