package main

import (
	"context"
	"flag"
	"log"
	"time"

	"readhub/internal/fetch"
	"readhub/internal/notify"
	"readhub/internal/records"
	"readhub/pkg/database"
)

func main() {
	notifyAddr := flag.String("notify", "127.0.0.1:9090", "UDP notify server address (empty to disable)")
	interval := flag.Duration("interval", 0, "re-run every interval (0 = run once)")
	timeout := flag.Duration("timeout", 5*time.Minute, "timeout per pass")
	flag.Parse()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	ref := fetch.NewRefresher(records.NewRepo(db), fetch.NewArchiveClient())
	if *notifyAddr != "" {
		ref.Notify = &notify.PushNotifier{Addr: *notifyAddr}
	}

	for {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		updated, failed, err := ref.RefreshAll(ctx)
		cancel()
		if err != nil {
			log.Fatalf("refresh failed: %v", err)
		}
		log.Printf("[refresher] pass done: %d updated, %d failed", updated, failed)

		if *interval <= 0 {
			return
		}
		time.Sleep(*interval)
	}
}
