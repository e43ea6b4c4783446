package service

import (
	"context"
	"errors"
	"testing"

	"memestash/api/internal/apperr"
	"memestash/api/internal/models"
)

func TestUploadStoresObjectAndRecord(t *testing.T) {
	fx := newMemeServiceFixture()
	ctx := context.Background()

	meme, err := fx.svc.Upload(ctx, UploadInput{
		UserID:           "u1",
		Title:            "Distracted",
		Data:             pngBytes(256),
		DeclaredType:     "image/png",
		OriginalFilename: "distracted.png",
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if meme.Title != "Distracted" {
		t.Errorf("Title = %q", meme.Title)
	}
	if meme.SizeBytes != 256 {
		t.Errorf("SizeBytes = %d, want 256", meme.SizeBytes)
	}
	if meme.ContentType != "image/png" {
		t.Errorf("ContentType = %q", meme.ContentType)
	}
	if len(fx.store.objects) != 1 {
		t.Fatalf("store holds %d objects, want 1", len(fx.store.objects))
	}
	if _, ok := fx.store.objects[meme.StorageKey]; !ok {
		t.Errorf("stored object key does not match record key %q", meme.StorageKey)
	}
	if len(meme.Categories) != 0 || len(meme.Tags) != 0 {
		t.Errorf("unexpected associations: %v / %v", meme.Categories, meme.Tags)
	}
}

func TestUploadValidation(t *testing.T) {
	cases := []struct {
		name  string
		input UploadInput
		code  apperr.Code
	}{
		{
			"missing title",
			UploadInput{UserID: "u1", Title: "  ", Data: pngBytes(64), DeclaredType: "image/png"},
			apperr.CodeValidation,
		},
		{
			"empty file",
			UploadInput{UserID: "u1", Title: "t", Data: nil, DeclaredType: "image/png"},
			apperr.CodeValidation,
		},
		{
			"oversized file",
			UploadInput{UserID: "u1", Title: "t", Data: pngBytes(10*1024*1024 + 1), DeclaredType: "image/png"},
			apperr.CodePayloadTooLarge,
		},
		{
			"disallowed type",
			UploadInput{UserID: "u1", Title: "t", Data: []byte("BM-not-a-real-bitmap"), DeclaredType: "image/bmp"},
			apperr.CodeUnsupportedMediaType,
		},
		{
			"content does not match declared type",
			UploadInput{UserID: "u1", Title: "t", Data: pngBytes(64), DeclaredType: "image/jpeg"},
			apperr.CodeUnsupportedMediaType,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newMemeServiceFixture()

			_, err := fx.svc.Upload(context.Background(), tc.input)
			if !apperr.IsCode(err, tc.code) {
				t.Fatalf("err = %v, want code %d", err, tc.code)
			}
			// A rejected upload leaves nothing behind.
			if len(fx.store.objects) != 0 {
				t.Errorf("rejected upload left %d objects in store", len(fx.store.objects))
			}
			if len(fx.memes.memes) != 0 {
				t.Errorf("rejected upload left %d catalog records", len(fx.memes.memes))
			}
		})
	}
}

func TestUploadCompensatesOnRecordFailure(t *testing.T) {
	fx := newMemeServiceFixture()
	fx.memes.createErr = errors.New("constraint violation")

	_, err := fx.svc.Upload(context.Background(), UploadInput{
		UserID:       "u1",
		Title:        "t",
		Data:         pngBytes(64),
		DeclaredType: "image/png",
	})
	if err == nil {
		t.Fatal("expected error")
	}

	if fx.store.puts != 1 {
		t.Errorf("puts = %d, want 1", fx.store.puts)
	}
	if len(fx.store.objects) != 0 {
		t.Errorf("compensating delete did not run, %d objects remain", len(fx.store.objects))
	}
}

func TestUploadToleratesFailedCompensation(t *testing.T) {
	fx := newMemeServiceFixture()
	fx.memes.createErr = errors.New("constraint violation")
	fx.store.deleteErr = errors.New("store unreachable")

	_, err := fx.svc.Upload(context.Background(), UploadInput{
		UserID:       "u1",
		Title:        "t",
		Data:         pngBytes(64),
		DeclaredType: "image/png",
	})
	if err == nil {
		t.Fatal("expected the record failure to surface")
	}
	// The orphaned object stays; it is the sweeper's problem now.
	if len(fx.store.objects) != 1 {
		t.Errorf("store holds %d objects, want the orphan", len(fx.store.objects))
	}
}

func TestUploadAppliesOwnedCategoriesAndDropsForeign(t *testing.T) {
	fx := newMemeServiceFixture()
	ctx := context.Background()

	fx.categories.cats["c1"] = models.Category{ID: "c1", UserID: "u1", Name: "reaction"}
	fx.categories.cats["c2"] = models.Category{ID: "c2", UserID: "someone-else", Name: "classics"}

	meme, err := fx.svc.Upload(ctx, UploadInput{
		UserID:       "u1",
		Title:        "t",
		Data:         pngBytes(64),
		DeclaredType: "image/png",
		CategoryIDs:  []string{"c1", "c2", "no-such-id"},
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if len(meme.Categories) != 1 || meme.Categories[0].ID != "c1" {
		t.Errorf("Categories = %v, want only c1", meme.Categories)
	}
}

func TestUploadFindsOrCreatesTagsOnce(t *testing.T) {
	fx := newMemeServiceFixture()
	ctx := context.Background()

	if _, err := fx.tags.FindOrCreate(ctx, "u1", "cats", "t-existing"); err != nil {
		t.Fatal(err)
	}
	fx.tags.created = 0

	meme, err := fx.svc.Upload(ctx, UploadInput{
		UserID:       "u1",
		Title:        "t",
		Data:         pngBytes(64),
		DeclaredType: "image/png",
		TagNames:     []string{"cats", "dogs", "cats", " ", "dogs"},
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if len(meme.Tags) != 2 {
		t.Fatalf("Tags = %v, want cats and dogs", meme.Tags)
	}
	if fx.tags.created != 1 {
		t.Errorf("created %d new tags, want 1 (cats already existed)", fx.tags.created)
	}
}

func TestGetScopedToOwner(t *testing.T) {
	fx := newMemeServiceFixture()
	ctx := context.Background()

	meme, err := fx.svc.Upload(ctx, UploadInput{
		UserID: "u1", Title: "t", Data: pngBytes(64), DeclaredType: "image/png",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := fx.svc.Get(ctx, meme.ID, "u1"); err != nil {
		t.Errorf("owner read failed: %v", err)
	}
	if _, err := fx.svc.Get(ctx, meme.ID, "u2"); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Errorf("foreign read err = %v, want NotFound", err)
	}
}

func TestUpdateFieldSemantics(t *testing.T) {
	fx := newMemeServiceFixture()
	ctx := context.Background()

	desc := "original description"
	meme, err := fx.svc.Upload(ctx, UploadInput{
		UserID: "u1", Title: "original", Description: &desc,
		Data: pngBytes(64), DeclaredType: "image/png",
	})
	if err != nil {
		t.Fatal(err)
	}

	// Absent fields stay untouched.
	got, err := fx.svc.Update(ctx, meme.ID, "u1", UpdateInput{})
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "original" || got.Description == nil || *got.Description != desc {
		t.Errorf("no-op update changed fields: %+v", got)
	}

	// Empty description clears, empty title is ignored.
	empty := ""
	got, err = fx.svc.Update(ctx, meme.ID, "u1", UpdateInput{Title: &empty, Description: &empty})
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "original" {
		t.Errorf("empty title overwrote the existing one: %q", got.Title)
	}
	if got.Description != nil {
		t.Errorf("empty description did not clear: %q", *got.Description)
	}

	newTitle := "renamed"
	got, err = fx.svc.Update(ctx, meme.ID, "u1", UpdateInput{Title: &newTitle})
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "renamed" {
		t.Errorf("Title = %q", got.Title)
	}
}

func TestUpdateReplacesAssociations(t *testing.T) {
	fx := newMemeServiceFixture()
	ctx := context.Background()

	fx.categories.cats["c1"] = models.Category{ID: "c1", UserID: "u1", Name: "a"}
	fx.categories.cats["c2"] = models.Category{ID: "c2", UserID: "u1", Name: "b"}

	meme, err := fx.svc.Upload(ctx, UploadInput{
		UserID: "u1", Title: "t", Data: pngBytes(64), DeclaredType: "image/png",
		CategoryIDs: []string{"c1"},
		TagNames:    []string{"old"},
	})
	if err != nil {
		t.Fatal(err)
	}

	// Present-but-empty clears; a new set replaces wholesale.
	newCats := []string{"c2"}
	noTags := []string{}
	got, err := fx.svc.Update(ctx, meme.ID, "u1", UpdateInput{CategoryIDs: &newCats, TagNames: &noTags})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Categories) != 1 || got.Categories[0].ID != "c2" {
		t.Errorf("Categories = %v, want only c2", got.Categories)
	}
	if len(got.Tags) != 0 {
		t.Errorf("Tags = %v, want none", got.Tags)
	}
}

func TestDeleteRemovesRecordDespiteStoreFailure(t *testing.T) {
	fx := newMemeServiceFixture()
	ctx := context.Background()

	meme, err := fx.svc.Upload(ctx, UploadInput{
		UserID: "u1", Title: "t", Data: pngBytes(64), DeclaredType: "image/png",
	})
	if err != nil {
		t.Fatal(err)
	}

	fx.store.deleteErr = errors.New("store unreachable")
	if err := fx.svc.Delete(ctx, meme.ID, "u1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := fx.svc.Get(ctx, meme.ID, "u1"); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Errorf("deleted meme still readable: %v", err)
	}
	if len(fx.store.objects) != 1 {
		t.Errorf("expected the orphaned object to remain")
	}
}

func TestDeleteForeignMeme(t *testing.T) {
	fx := newMemeServiceFixture()
	ctx := context.Background()

	meme, err := fx.svc.Upload(ctx, UploadInput{
		UserID: "u1", Title: "t", Data: pngBytes(64), DeclaredType: "image/png",
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := fx.svc.Delete(ctx, meme.ID, "u2"); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Errorf("err = %v, want NotFound", err)
	}
	if len(fx.memes.memes) != 1 {
		t.Error("foreign delete removed the record")
	}
}

func TestListPagination(t *testing.T) {
	fx := newMemeServiceFixture()
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		if _, err := fx.svc.Upload(ctx, UploadInput{
			UserID: "u1", Title: "meme", Data: pngBytes(64), DeclaredType: "image/png",
		}); err != nil {
			t.Fatal(err)
		}
	}

	memes, p, err := fx.svc.List(ctx, "u1", ListInput{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(memes) != 10 {
		t.Errorf("page 2 has %d memes, want 10", len(memes))
	}
	if p.Total != 25 || p.Page != 2 || p.Limit != 10 || p.TotalPages != 3 {
		t.Errorf("pagination = %+v", p)
	}

	memes, p, err = fx.svc.List(ctx, "u1", ListInput{Page: 3, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(memes) != 5 {
		t.Errorf("last page has %d memes, want 5", len(memes))
	}

	// Out-of-range pages come back empty, not as an error.
	memes, _, err = fx.svc.List(ctx, "u1", ListInput{Page: 9, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(memes) != 0 {
		t.Errorf("out-of-range page returned %d memes", len(memes))
	}
}

func TestListDefaultsAndCaps(t *testing.T) {
	fx := newMemeServiceFixture()
	ctx := context.Background()

	_, p, err := fx.svc.List(ctx, "u1", ListInput{Page: -3, Limit: 0})
	if err != nil {
		t.Fatal(err)
	}
	if p.Page != 1 || p.Limit != 10 {
		t.Errorf("pagination = %+v, want page 1 limit 10", p)
	}

	_, p, err = fx.svc.List(ctx, "u1", ListInput{Page: 1, Limit: 9999})
	if err != nil {
		t.Fatal(err)
	}
	if p.Limit != 100 {
		t.Errorf("Limit = %d, want capped at 100", p.Limit)
	}
}

func TestGetFileReportsDesync(t *testing.T) {
	fx := newMemeServiceFixture()
	ctx := context.Background()

	meme, err := fx.svc.Upload(ctx, UploadInput{
		UserID: "u1", Title: "t", Data: pngBytes(64), DeclaredType: "image/png",
	})
	if err != nil {
		t.Fatal(err)
	}

	data, _, err := fx.svc.GetFile(ctx, meme.ID, "u1")
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	if len(data) != 64 {
		t.Errorf("data length = %d", len(data))
	}

	// Record survives but the object vanished: FileMissing, not NotFound.
	delete(fx.store.objects, meme.StorageKey)
	if _, _, err := fx.svc.GetFile(ctx, meme.ID, "u1"); !apperr.IsCode(err, apperr.CodeFileMissing) {
		t.Errorf("err = %v, want FileMissing", err)
	}
}

func TestNormalizeSort(t *testing.T) {
	cases := []struct {
		sortBy, sortOrder string
		wantColumn        string
		wantDesc          bool
	}{
		{"title", "asc", "title", false},
		{"title", "desc", "title", true},
		{"fileSize", "asc", "size_bytes", false},
		{"createdAt", "desc", "created_at", true},
		{"createdAt", "ASC", "created_at", false},
		{"id; DROP TABLE memes", "asc", "created_at", true},
		{"title", "sideways", "created_at", true},
		{"", "", "created_at", true},
	}

	for _, tc := range cases {
		column, desc := normalizeSort(tc.sortBy, tc.sortOrder)
		if column != tc.wantColumn || desc != tc.wantDesc {
			t.Errorf("normalizeSort(%q, %q) = (%q, %v), want (%q, %v)",
				tc.sortBy, tc.sortOrder, column, desc, tc.wantColumn, tc.wantDesc)
		}
	}
}
