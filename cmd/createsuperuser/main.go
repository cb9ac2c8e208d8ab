// Command createsuperuser creates a privileged account interactively.
package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/signin/internal/cli"
	"github.com/dmitrijs2005/signin/internal/logging"
	"github.com/dmitrijs2005/signin/internal/server/config"
	"github.com/dmitrijs2005/signin/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/signin/internal/server/services"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	db, err := repomanager.OpenPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migrations error: %v", err)
	}

	am := services.NewAccountManager(db, rm, logger)
	if _, err := cli.CreateSuperuser(ctx, am, bufio.NewReader(os.Stdin), os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}

}
