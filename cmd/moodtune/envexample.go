package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"moodtune/internal/i18n"
)

const envExampleRule = "# =============================================================================\n"
const envExampleSubRule = "# -----------------------------------------------------------------------------\n"

func generateEnvExample(cmd *cobra.Command) error {
	fmt.Println("Generating .env.example file from current configuration...")

	content := generateEnvExampleContent(cmd)

	if err := os.WriteFile(".env.example", []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write .env.example: %w", err)
	}

	fmt.Println("✅ Successfully generated .env.example file")
	return nil
}

func generateEnvExampleContent(cmd *cobra.Command) string {
	var content strings.Builder

	// Header
	content.WriteString(envExampleRule)
	content.WriteString("# MoodTune Configuration\n")
	content.WriteString(envExampleRule)
	content.WriteString("#\n")
	content.WriteString("# Copy this file to .env and update with your values\n")
	content.WriteString("# All environment variables have CLI flag equivalents (use --help to see them)\n")
	content.WriteString("#\n")
	content.WriteString("# Format: MOODTUNE_<SECTION>_<SETTING>=value\n")
	content.WriteString("# CLI equivalent: --<section>-<setting>\n")
	content.WriteString("#\n\n")

	generateLLMSection(&content, cmd)
	generateYouTubeSection(&content, cmd)
	generateAppSection(&content, cmd)
	generateStoreSection(&content, cmd)
	generateServerSection(&content, cmd)
	generateLoggingSection(&content, cmd)

	return content.String()
}

func flagToEnvVar(flagName string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

func getDefaultValueString(cmd *cobra.Command, flagName string) string {
	if f := cmd.PersistentFlags().Lookup(flagName); f != nil {
		return f.DefValue
	}
	return ""
}

// writeSetting writes one NAME=default line followed by its description.
func writeSetting(content *strings.Builder, cmd *cobra.Command, flagName, description string) {
	def := getDefaultValueString(cmd, flagName)
	fmt.Fprintf(content, "%s=%s  # %s (default: %s)\n", flagToEnvVar(flagName), def, description, def)
}

func writeSectionHeader(content *strings.Builder, title string, flags ...string) {
	content.WriteString(envExampleSubRule)
	fmt.Fprintf(content, "# %s\n", title)
	content.WriteString(envExampleSubRule)
	if len(flags) > 0 {
		fmt.Fprintf(content, "# CLI: --%s\n", strings.Join(flags, ", --"))
	}
}

func generateLLMSection(content *strings.Builder, cmd *cobra.Command) {
	content.WriteString(envExampleRule)
	content.WriteString("# SONG RECOMMENDATIONS - Optional, built-in fallback lists are used without it\n")
	content.WriteString(envExampleRule)
	content.WriteString("\n")
	writeSectionHeader(content, "LLM Provider Selection", "llm-provider", "llm-api-key", "llm-model")

	writeSetting(content, cmd, "llm-provider", "Provider: none, openai, anthropic, ollama")
	writeSetting(content, cmd, "llm-timeout-secs", "Recommendation timeout in seconds")
	writeSetting(content, cmd, "llm-max-suggestions", "Upper bound of songs per recommendation")
	content.WriteString("\n")

	writeSectionHeader(content, "OpenAI Configuration")
	fmt.Fprintf(content, "# Uncomment these lines and set %s=openai\n", flagToEnvVar("llm-provider"))
	fmt.Fprintf(content, "# %s=sk-...       # OpenAI API key\n", flagToEnvVar("llm-api-key"))
	fmt.Fprintf(content, "# %s=gpt-4o-mini  # Model name\n", flagToEnvVar("llm-model"))
	content.WriteString("\n")

	writeSectionHeader(content, "Anthropic Configuration")
	fmt.Fprintf(content, "# Uncomment these lines and set %s=anthropic\n", flagToEnvVar("llm-provider"))
	fmt.Fprintf(content, "# %s=sk-ant-...                # Anthropic API key\n", flagToEnvVar("llm-api-key"))
	fmt.Fprintf(content, "# %s=claude-3-5-haiku-latest  # Model name\n", flagToEnvVar("llm-model"))
	content.WriteString("\n")

	writeSectionHeader(content, "Ollama Configuration (Local/Self-hosted)")
	fmt.Fprintf(content, "# Uncomment these lines and set %s=ollama\n", flagToEnvVar("llm-provider"))
	fmt.Fprintf(content, "# %s=http://localhost:11434  # Ollama server URL\n", flagToEnvVar("llm-base-url"))
	fmt.Fprintf(content, "# %s=llama3.2                 # Model name (must be pulled in Ollama)\n",
		flagToEnvVar("llm-model"))
	content.WriteString("\n")
}

func generateYouTubeSection(content *strings.Builder, cmd *cobra.Command) {
	writeSectionHeader(content, "Video Search", "youtube-api-key", "youtube-timeout-secs")
	content.WriteString("# Without an API key the public results page is searched instead\n")
	fmt.Fprintf(content, "# %s=AIza...  # YouTube Data API v3 key\n", flagToEnvVar("youtube-api-key"))
	writeSetting(content, cmd, "youtube-timeout-secs", "Per search timeout in seconds")
	writeSetting(content, cmd, "youtube-cache-size", "Cached searches")
	writeSetting(content, cmd, "youtube-cache-ttl-mins", "Cache lifetime in minutes")
	content.WriteString("\n")
}

func generateAppSection(content *strings.Builder, cmd *cobra.Command) {
	content.WriteString(envExampleRule)
	content.WriteString("# APPLICATION SETTINGS\n")
	content.WriteString(envExampleRule)
	content.WriteString("\n")

	writeSectionHeader(content, "Localization", "language")
	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")
	writeSetting(content, cmd, "language", "Default message language: "+supportedLangs)
	content.WriteString("\n")

	writeSectionHeader(content, "Queue", "recommend-count", "resolve-batch-size")
	writeSetting(content, cmd, "recommend-count", "Songs requested per queue build")
	writeSetting(content, cmd, "resolve-batch-size", "Concurrent video searches")
	content.WriteString("\n")

	writeSectionHeader(content, "Sessions", "session-idle-timeout-mins", "end-signal-debounce-millis")
	writeSetting(content, cmd, "session-idle-timeout-mins", "Idle minutes before a session is dropped")
	writeSetting(content, cmd, "end-signal-debounce-millis", "Repeated end-of-track signals are ignored within")
	content.WriteString("\n")

	writeSectionHeader(content, "Flood Prevention", "flood-limit-per-minute")
	writeSetting(content, cmd, "flood-limit-per-minute", "Max expensive requests per client per minute, 0=disabled")
	content.WriteString("\n")
}

func generateStoreSection(content *strings.Builder, cmd *cobra.Command) {
	writeSectionHeader(content, "Recent Moods", "store-path", "recent-moods-limit")
	writeSetting(content, cmd, "store-path", "SQLite file, empty keeps nothing")
	writeSetting(content, cmd, "recent-moods-limit", "Moods remembered")
	content.WriteString("\n")
}

func generateServerSection(content *strings.Builder, cmd *cobra.Command) {
	writeSectionHeader(content, "HTTP Server Configuration", "server-host", "server-port")
	writeSetting(content, cmd, "server-host", "Server bind address")
	writeSetting(content, cmd, "server-port", "Server port")
	writeSetting(content, cmd, "server-read-timeout-secs", "Read timeout in seconds")
	writeSetting(content, cmd, "server-write-timeout-secs", "Write timeout in seconds")
	content.WriteString("\n")
}

func generateLoggingSection(content *strings.Builder, cmd *cobra.Command) {
	writeSectionHeader(content, "Logging Configuration", "log-level", "log-format")
	writeSetting(content, cmd, "log-level", "Log level: debug, info, warn, error")
	writeSetting(content, cmd, "log-format", "Log format: json, console")
	content.WriteString("\n")
}
