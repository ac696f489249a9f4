package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/munify/doc_vault/biz/dal/db"
	filesvc "github.com/munify/doc_vault/biz/service/file"
	"github.com/munify/doc_vault/pkg/config"
	"github.com/munify/doc_vault/pkg/database"
	"github.com/munify/doc_vault/pkg/storage"
)

var (
	configPath = flag.String("config", "./config.yaml", "path to config file")
	batchSize  = flag.Int("batch", 200, "records checked per database batch")
)

// Reports file records whose blob is missing from storage, for example after
// a failed upload rollback or manual bucket cleanup.
func main() {
	flag.Parse()

	log.Println("========== blob reconcile ==========")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	dbConn, err := database.Open(cfg.Database, "error")
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := db.Migrate(dbConn); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}
	log.Printf("storage backend: %s", store.Type())

	svc := filesvc.NewService(dbConn, store, nil)
	missing, err := svc.MissingBlobs(context.Background(), *batchSize)
	if err != nil {
		log.Fatalf("reconcile failed: %v", err)
	}

	if len(missing) == 0 {
		log.Println("all records have a blob")
		return
	}
	for _, record := range missing {
		state := "live"
		if record.IsDeleted {
			state = "deleted"
		}
		log.Printf("missing blob: file_id=%s org=%s path=%s state=%s", record.FileID, record.OrganizationID, record.StoragePath, state)
	}
	log.Printf("%d record(s) without blob", len(missing))
	os.Exit(1)
}
