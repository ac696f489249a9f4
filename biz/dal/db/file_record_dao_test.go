package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/munify/doc_vault/biz/dal/model"
	"gorm.io/gorm"
)

func TestFileRecordDAO_Create(t *testing.T) {
	db := SetupTestDB(t)
	dao := NewFileRecordDAO()
	ctx := context.Background()

	t.Run("AssignsFileID", func(t *testing.T) {
		record := CreateTestFileRecord(t, db, "org-1", "user-1", model.AccessPrivate)
		if record.FileID == "" {
			t.Fatal("expected file id to be assigned")
		}
		if record.ID == 0 {
			t.Fatal("expected primary key to be set")
		}

		found, err := dao.GetByFileID(ctx, db, record.FileID)
		if err != nil {
			t.Fatalf("GetByFileID failed: %v", err)
		}
		if found.StoragePath != record.StoragePath {
			t.Errorf("expected path %q, got %q", record.StoragePath, found.StoragePath)
		}
		if found.AccessLevel != model.AccessPrivate {
			t.Errorf("expected private access, got %q", found.AccessLevel)
		}
	})

	t.Run("NilEntity", func(t *testing.T) {
		if err := dao.Create(ctx, db, nil); err == nil {
			t.Error("expected error for nil entity")
		}
	})

	t.Run("DuplicateFileID", func(t *testing.T) {
		first := CreateTestFileRecord(t, db, "org-1", "user-1", model.AccessPublic)
		dup := &model.FileRecord{FileID: first.FileID, OrganizationID: "org-1"}
		if err := dao.Create(ctx, db, dup); err == nil {
			t.Error("expected error for duplicate file id")
		}
	})
}

func TestFileRecordDAO_Versioning(t *testing.T) {
	db := SetupTestDB(t)
	dao := NewFileRecordDAO()
	ctx := context.Background()

	first := CreateTestFileRecord(t, db, "org-1", "user-1", model.AccessPrivate)
	if first.Version != 1 {
		t.Fatalf("expected first upload to be version 1, got %d", first.Version)
	}
	if err := dao.SoftDelete(ctx, db, first.FileID, "user-1", time.Now()); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}
	second := CreateTestFileRecord(t, db, "org-1", "user-2", model.AccessPrivate)
	if second.Version != 2 {
		t.Fatalf("expected deleted versions to be counted, got %d", second.Version)
	}

	tests := []struct {
		name   string
		mutate func(r *model.FileRecord)
	}{
		{"OtherOrganization", func(r *model.FileRecord) { r.OrganizationID = "org-2" }},
		{"OtherDocumentType", func(r *model.FileRecord) { r.DocumentType = "Aadhaar" }},
		{"OtherFileName", func(r *model.FileRecord) { r.OriginalFileName = "gst.pdf" }},
		{"OtherProject", func(r *model.FileRecord) { r.ProjectReferenceID = "PRJ-9" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := &model.FileRecord{
				OrganizationID:   "org-1",
				Category:         "KYC",
				DocumentType:     "PAN",
				OriginalFileName: "pan.pdf",
				StoragePath:      "org-1/KYC/PAN/" + tt.name + ".pdf",
			}
			tt.mutate(record)
			if err := dao.Create(ctx, db, record); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if record.Version != 1 {
				t.Errorf("expected a separate slot to start at version 1, got %d", record.Version)
			}
		})
	}

	explicit := &model.FileRecord{OrganizationID: "org-1", Category: "KYC", DocumentType: "PAN", OriginalFileName: "pan.pdf", Version: 7}
	if err := dao.Create(ctx, db, explicit); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	latest, err := dao.LatestVersion(ctx, db, explicit)
	if err != nil {
		t.Fatalf("LatestVersion failed: %v", err)
	}
	if latest != 7 {
		t.Fatalf("expected explicit version to be kept, latest is %d", latest)
	}
}

func TestFileRecordDAO_GetByFileIDNotFound(t *testing.T) {
	db := SetupTestDB(t)
	_, err := NewFileRecordDAO().GetByFileID(context.Background(), db, "missing")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestFileRecordDAO_SoftDelete(t *testing.T) {
	db := SetupTestDB(t)
	dao := NewFileRecordDAO()
	ctx := context.Background()
	record := CreateTestFileRecord(t, db, "org-1", "user-1", model.AccessPrivate)
	now := time.Now().UTC()

	if err := dao.SoftDelete(ctx, db, record.FileID, "user-1", now); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	found, err := dao.GetByFileID(ctx, db, record.FileID)
	if err != nil {
		t.Fatalf("record must survive soft delete: %v", err)
	}
	if !found.IsDeleted || found.DeletedAt == nil || found.DeletedBy != "user-1" {
		t.Fatalf("unexpected soft delete state: %+v", found)
	}

	if err := dao.SoftDelete(ctx, db, record.FileID, "user-1", now); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("second delete should report ErrRecordNotFound, got %v", err)
	}
	if err := dao.UpdateAccessLevel(ctx, db, record.FileID, model.AccessPublic, "user-1"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("updating deleted record should report ErrRecordNotFound, got %v", err)
	}
}

func TestFileRecordDAO_UpdateAccessLevel(t *testing.T) {
	db := SetupTestDB(t)
	dao := NewFileRecordDAO()
	ctx := context.Background()
	record := CreateTestFileRecord(t, db, "org-1", "user-1", model.AccessPrivate)

	if err := dao.UpdateAccessLevel(ctx, db, record.FileID, model.AccessRestricted, "admin-1"); err != nil {
		t.Fatalf("UpdateAccessLevel failed: %v", err)
	}
	found, _ := dao.GetByFileID(ctx, db, record.FileID)
	if found.AccessLevel != model.AccessRestricted || found.UpdatedBy != "admin-1" {
		t.Fatalf("unexpected record after update: %+v", found)
	}
	if err := dao.UpdateAccessLevel(ctx, db, "missing", model.AccessPublic, "x"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestFileRecordDAO_IncrementDownloadCount(t *testing.T) {
	db := SetupTestDB(t)
	dao := NewFileRecordDAO()
	ctx := context.Background()
	record := CreateTestFileRecord(t, db, "org-1", "user-1", model.AccessPublic)

	for i := 0; i < 3; i++ {
		if err := dao.IncrementDownloadCount(ctx, db, record.FileID); err != nil {
			t.Fatalf("IncrementDownloadCount failed: %v", err)
		}
	}
	found, _ := dao.GetByFileID(ctx, db, record.FileID)
	if found.DownloadCount != 3 {
		t.Fatalf("expected 3 downloads, got %d", found.DownloadCount)
	}
}

func TestFileRecordDAO_ListByOrganization(t *testing.T) {
	db := SetupTestDB(t)
	dao := NewFileRecordDAO()
	ctx := context.Background()

	a := CreateTestFileRecord(t, db, "org-1", "user-1", model.AccessPublic)
	b := CreateTestFileRecord(t, db, "org-1", "user-2", model.AccessPrivate)
	CreateTestFileRecord(t, db, "org-2", "user-3", model.AccessPublic)
	project := &model.FileRecord{
		OrganizationID:     "org-1",
		UploadedBy:         "user-1",
		Category:           "Project",
		DocumentType:       "DPR",
		ProjectReferenceID: "PROJ-1",
		AccessLevel:        model.AccessPublic,
	}
	if err := dao.Create(ctx, db, project); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := dao.SoftDelete(ctx, db, b.FileID, "user-2", time.Now()); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	t.Run("ExcludesDeletedAndOtherOrgs", func(t *testing.T) {
		records, err := dao.ListByOrganization(ctx, db, "org-1", FileFilter{})
		if err != nil {
			t.Fatalf("ListByOrganization failed: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0].FileID != project.FileID || records[1].FileID != a.FileID {
			t.Errorf("expected newest first ordering")
		}
	})

	t.Run("Filters", func(t *testing.T) {
		records, err := dao.ListByOrganization(ctx, db, "org-1", FileFilter{Category: "Project", ProjectReferenceID: "PROJ-1"})
		if err != nil {
			t.Fatalf("ListByOrganization failed: %v", err)
		}
		if len(records) != 1 || records[0].DocumentType != "DPR" {
			t.Fatalf("unexpected filtered records: %+v", records)
		}
	})
}

func TestFileRecordDAO_FindInBatches(t *testing.T) {
	db := SetupTestDB(t)
	dao := NewFileRecordDAO()
	for i := 0; i < 5; i++ {
		CreateTestFileRecord(t, db, "org-1", "user-1", model.AccessPublic)
	}

	seen := 0
	batches := 0
	err := dao.FindInBatches(context.Background(), db, 2, func(records []model.FileRecord) error {
		batches++
		seen += len(records)
		return nil
	})
	if err != nil {
		t.Fatalf("FindInBatches failed: %v", err)
	}
	if seen != 5 || batches != 3 {
		t.Fatalf("expected 5 records in 3 batches, got %d in %d", seen, batches)
	}
}
