package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vecdocs/internal/core/domain"
	"github.com/custodia-labs/vecdocs/internal/core/services"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View and change settings stored in config.toml.

Environment variables (VECDOCS_BACKEND, VECDOCS_DATA_DIR, VECDOCS_EMBEDDING_*,
OPENAI_API_KEY) and a .env file in the working or config directory are also
read. Command line flags take precedence over both.`,
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show current settings",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationServices: servicesSettings},
	RunE:        runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:         "set [key] [value]",
	Short:       "Change a setting",
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{annotationServices: servicesSettings},
	RunE:        runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the config file location",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationServices: servicesSettings},
	RunE:        runConfigPath,
}

func init() {
	configSetCmd.Long = "Change a setting and save it to config.toml.\n\nKeys:\n  " +
		strings.Join(services.SettingKeys(), "\n  ") +
		"\n\nSet embedding.provider to \"none\" to disable text embedding."

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	w := out(cmd)
	fmt.Fprintln(w, style.Title.Render("Current Settings"))
	fmt.Fprintln(w)

	fmt.Fprintln(w, style.Subtitle.Render("[Storage]"))
	fmt.Fprintf(w, "  Backend: %s\n", settings.Storage.Backend.Description())
	fmt.Fprintf(w, "  Data dir: %s\n", orDefault(settings.Storage.DataDir))
	fmt.Fprintln(w)

	fmt.Fprintln(w, style.Subtitle.Render("[Search]"))
	fmt.Fprintf(w, "  Default limit: %d\n", settings.Search.DefaultLimit)
	fmt.Fprintf(w, "  Workers: %d\n", settings.Search.Workers)
	fmt.Fprintln(w)

	fmt.Fprintln(w, style.Subtitle.Render("[Cache]"))
	fmt.Fprintf(w, "  Enabled: %t\n", settings.Cache.Enabled)
	fmt.Fprintf(w, "  Max cost: %d\n", settings.Cache.MaxCost)
	fmt.Fprintln(w)

	printEmbeddingSettings(w, settings.Embedding)

	if err := settingsService.Validate(); err != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, style.Warning.Render("Warning: "+err.Error()))
	}
	return nil
}

func printEmbeddingSettings(w io.Writer, emb domain.EmbeddingSettings) {
	fmt.Fprintln(w, style.Subtitle.Render("[Embedding]"))
	if emb.Provider == "" {
		fmt.Fprintln(w, "  Provider: none (embeddings must be supplied)")
		return
	}

	fmt.Fprintf(w, "  Provider: %s\n", emb.Provider.Description())
	fmt.Fprintf(w, "  Model: %s\n", emb.Model)
	if emb.BaseURL != "" || emb.Provider.IsLocal() {
		fmt.Fprintf(w, "  Base URL: %s\n", orDefault(emb.BaseURL))
	}
	if emb.Provider.RequiresAPIKey() {
		if emb.APIKey != "" {
			fmt.Fprintf(w, "  API Key: %s\n", maskAPIKey(emb.APIKey))
		} else {
			fmt.Fprintln(w, "  API Key: (not set)")
		}
	}
	if emb.Dimensions > 0 {
		fmt.Fprintf(w, "  Dimensions: %d\n", emb.Dimensions)
	}
	if emb.RequestsPerSecond > 0 {
		fmt.Fprintf(w, "  Requests/sec: %g\n", emb.RequestsPerSecond)
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return err
	}

	shown := value
	if key == services.KeyEmbedAPIKey {
		shown = maskAPIKey(value)
	}
	fmt.Fprintf(out(cmd), "%s = %s\n", key, shown)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if configPath == "" {
		return errors.New("config path not resolved")
	}
	fmt.Fprintln(out(cmd), configPath)
	return nil
}

func orDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}
