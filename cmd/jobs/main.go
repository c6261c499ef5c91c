// Command jobs runs the scheduled maintenance batches.  Cron (or any
// external scheduler) invokes one subcommand per run:
//
//	jobs expire  – cancel unconfirmed bookings for imminent sessions
//	jobs remind  – queue reminder mails for sessions ~24h away
//	jobs purge   – delete sessions that already took place
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/surf-school-booking/internal/config"
	"github.com/iliyamo/surf-school-booking/internal/database"
	"github.com/iliyamo/surf-school-booking/internal/queue"
	"github.com/iliyamo/surf-school-booking/internal/repository"
	"github.com/iliyamo/surf-school-booking/internal/service"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <expire|remind|purge>\n", os.Args[0])
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	store := repository.NewStore(db)
	publisher := queue.NewPublisher()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	now := time.Now().UTC()

	switch os.Args[1] {
	case "expire":
		res, err := service.NewJobs(store, publisher).RunExpiryReclamation(ctx, now)
		exit(res, err)
	case "remind":
		res, err := service.NewJobs(store, publisher).RunReminderDispatch(ctx, now)
		exit(res, err)
	case "purge":
		n, err := service.NewSessionService(store, publisher).PurgeFinishedSessions(ctx, now)
		if err != nil {
			log.Fatalf("purge: %v", err)
		}
		log.Printf("purged %d finished sessions", n)
	default:
		fmt.Fprintf(os.Stderr, "unknown job %q\n", os.Args[1])
		os.Exit(2)
	}
}

func exit(res service.BatchResult, err error) {
	if err != nil {
		log.Fatalf("batch aborted: %v", err)
	}
	log.Printf("processed %d bookings", res.Processed)
	for _, f := range res.Failures {
		log.Printf("booking %d failed: %v", f.BookingID, f.Err)
	}
	if res.Failed() {
		os.Exit(1)
	}
}
