package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mikey/mail-digest/internal/adapters/gmail"
	"github.com/mikey/mail-digest/internal/config"
	"github.com/mikey/mail-digest/internal/core"
	"github.com/mikey/mail-digest/internal/di"
	"github.com/mikey/mail-digest/internal/factory"
	"github.com/mikey/mail-digest/internal/ports"
	"go.uber.org/zap"
)

var (
	user    = flag.String("user", "", "mail account to digest, also the digest recipient")
	nEmails = flag.Int("n", 0, "number of emails to process")
)

func main() {
	flag.Parse()

	if *user == "" || *nEmails <= 0 {
		fmt.Fprintf(os.Stderr, "usage: %s -user <account> -n <emails>\n", os.Args[0])
		os.Exit(2)
	}

	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	logger *zap.Logger,
	authorizer *gmail.Authorizer,
	mailFactory *factory.MailFactory,
	pipeline *core.Pipeline,
	classifier core.Classifier,
	cacheRepo core.AnalysisCache,
) error {
	defer logger.Sync()
	defer closeResources(logger, classifier, cacheRepo)

	ctx := context.Background()

	// The authorization handshake must complete before any mailbox call
	if err := ensureAuthorized(ctx, authorizer); err != nil {
		return err
	}

	source, err := mailFactory.CreateMailSource(ctx, authorizer)
	if err != nil {
		return err
	}
	sender, err := mailFactory.CreateMailSender(ctx, authorizer)
	if err != nil {
		return err
	}

	emails, err := source.ListRecent(ctx, *nEmails)
	if err != nil {
		return fmt.Errorf("failed to retrieve emails: %w", err)
	}
	logger.Info("Retrieved emails", zap.Int("requested", *nEmails), zap.Int("count", len(emails)))

	processor := core.NewBatchProcessor(pipeline, logger, cfg.GetPipeline().MaxWorkers,
		func(completed, total int, email *core.Email) {
			fmt.Printf("Processing email (%d/%d): %s\n", completed, total, email.Subject)
		})
	results := processor.Process(ctx, emails)

	digestCfg := cfg.GetDigest()
	report := core.BuildReport(results, *nEmails, core.ReportConfig{
		TopK:               digestCfg.TopK,
		SpamScoreThreshold: digestCfg.SpamScoreThreshold,
		MinSpamCount:       digestCfg.MinSpamCount,
	})

	if err := sender.Send(ctx, report.Subject(), report.Body(), *user); err != nil {
		return fmt.Errorf("failed to deliver digest: %w", err)
	}

	return nil
}

// ensureAuthorized walks the user through the handshake when it is still
// pending
func ensureAuthorized(ctx context.Context, authorizer ports.Authorizer) error {
	status, err := authorizer.Status(ctx)
	if err != nil {
		return err
	}
	if status == ports.AuthCompleted {
		return nil
	}

	fmt.Printf("Click this link to authorize: %s\n", authorizer.AuthorizationURL())
	fmt.Print("After you have authorized, paste the code and press Enter to continue: ")

	code, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return ports.ErrAuthorizationIncomplete
	}
	if err := authorizer.Authorize(ctx, strings.TrimSpace(code)); err != nil {
		return err
	}

	if status, err = authorizer.Status(ctx); err != nil {
		return err
	}
	if status != ports.AuthCompleted {
		return ports.ErrAuthorizationIncomplete
	}
	return nil
}

func closeResources(logger *zap.Logger, classifier core.Classifier, cacheRepo core.AnalysisCache) {
	if closer, ok := classifier.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close classifier", zap.Error(err))
		}
	}
	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}
}
