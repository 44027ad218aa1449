// Package cli provides the vecdocs command line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
	"github.com/custodia-labs/vecdocs/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// Persistent flags.
var (
	verbose   bool
	dataDir   string
	configDir string
	backend   string
	timeout   time.Duration
)

// Service requirements a command declares through annotationServices.
const (
	annotationServices = "vecdocs.services"
	servicesNone       = "none"
	servicesSettings   = "settings"
	servicesLongLived  = "long-lived"
)

var rootCmd = &cobra.Command{
	Use:   "vecdocs",
	Short: "Local semantic document search",
	Long: `vecdocs stores short text documents with their embedding vectors and
ranks them against a query vector by cosine similarity.

Embeddings are either supplied directly as JSON arrays or computed by a
configured embedding provider (Ollama or OpenAI).

The document store is a single collection persisted in the data directory
using the configured backend (jsonfile, sqlite, badger or memory).`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setupCommand,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&dataDir, "data-dir", "", "directory holding the collection (default <config-dir>/data)")
	flags.StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.vecdocs)")
	flags.StringVar(&backend, "backend", "", "storage backend: jsonfile, sqlite, badger or memory")
	flags.DurationVar(&timeout, "timeout", 0, "abort one-shot commands after this duration (0 = no limit)")
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer closeServices()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

func setupCommand(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if backend != "" && !domain.StorageBackend(backend).IsValid() {
		return domain.NewValidationError("unknown backend %q", backend)
	}

	need := cmd.Annotations[annotationServices]
	if need != servicesLongLived && timeout > 0 {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		cmd.SetContext(ctx)
		addCloser(func() error {
			cancel()
			return nil
		})
	}

	if servicesInjected {
		return nil
	}

	switch need {
	case servicesNone:
		return nil
	case servicesSettings:
		return initSettings()
	default:
		return initServices()
	}
}
