package cli

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/vecdocs/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/vecdocs/internal/core/services"
)

var testCreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// setupTestServices wires real services over in-memory stores.
// Document IDs are doc-1, doc-2, ... in ingest order.
func setupTestServices(t *testing.T) *services.Corpus {
	t.Helper()

	corpus := services.NewCorpus(memory.NewCollectionStore())
	n := 0
	corpus.SetIDGenerator(func() string {
		n++
		return fmt.Sprintf("doc-%d", n)
	})
	corpus.SetClock(func() time.Time { return testCreatedAt })

	settings := services.NewSettingsService(memory.NewConfigStore())
	settings.SetEnvLookup(nil)

	searchService = services.NewSearchService(corpus, services.NewRanker(2), nil)
	documentService = services.NewDocumentService(corpus, nil)
	settingsService = settings
	configPath = "/tmp/vecdocs-test/config.toml"
	servicesInjected = true

	t.Cleanup(func() {
		searchService = nil
		documentService = nil
		settingsService = nil
		configPath = ""
		servicesInjected = false
		closeServices()
	})
	return corpus
}

// resetFlags restores every flag to its default; cobra keeps values between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and stdin, returning stdout.
func execute(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(io.Discard)
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return execute(t, nil, args...)
}
