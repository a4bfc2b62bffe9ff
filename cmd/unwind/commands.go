package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unwindhq/unwind/internal/config"
	"github.com/unwindhq/unwind/internal/mood"
)

// --- recommend ---

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Get recommendations for how you feel right now",
	Long: `Get recommendations for how you feel right now.

Examples:
  unwind recommend --state calm-seeking --focus watch --minutes 90
  unwind recommend --state growth-seeking --focus read --minutes 45 --energy 4
  unwind recommend --state low-stimulation --focus listen --no-heavy`,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, _ := cmd.Flags().GetString("state")
		focus, _ := cmd.Flags().GetString("focus")
		minutes, _ := cmd.Flags().GetInt("minutes")
		energy, _ := cmd.Flags().GetInt("energy")
		noHeavy, _ := cmd.Flags().GetBool("no-heavy")
		topN, _ := cmd.Flags().GetInt("top")

		if _, err := mood.ParseState(state); err != nil {
			return err
		}
		if _, err := mood.ParseFocus(focus); err != nil {
			return err
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		req := map[string]any{
			"state":         state,
			"focus":         focus,
			"available_min": minutes,
			"energy_level":  energy,
			"no_heavy":      noHeavy,
		}
		if topN > 0 {
			req["top_n"] = topN
		}

		resp, err := client.post(cmd.Context(), "/recommendations", req)
		if err != nil {
			return err
		}

		var result struct {
			TotalCandidates int `json:"total_candidates"`
			Recommendations []struct {
				Title string   `json:"title"`
				Type  string   `json:"type"`
				Score float64  `json:"score"`
				Tags  []string `json:"tags"`
				Link  string   `json:"link"`
				Why   string   `json:"why"`
			} `json:"recommendations"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if len(result.Recommendations) == 0 {
			fmt.Println("Nothing to recommend yet. Ingest some content first.")
			return nil
		}

		for i, r := range result.Recommendations {
			header := fmt.Sprintf("%d. %s", i+1, r.Title)
			fmt.Printf("\n%s  %s\n", colorize(colorBold, header), colorize(colorCyan, fmt.Sprintf("[%s, %.1f]", r.Type, r.Score)))
			fmt.Printf("   %s\n", r.Why)
			if len(r.Tags) > 0 {
				fmt.Printf("   tags: %s\n", strings.Join(r.Tags, ", "))
			}
			if r.Link != "" {
				fmt.Printf("   %s\n", r.Link)
			}
		}
		fmt.Printf("\n%d candidates considered\n", result.TotalCandidates)
		return nil
	},
}

func init() {
	recommendCmd.Flags().String("state", "", "emotional state (calm-seeking, high-energy-release, growth-seeking, low-stimulation, undecided)")
	recommendCmd.Flags().String("focus", "", "activity focus (listen, watch, read, move, create, reset)")
	recommendCmd.Flags().Int("minutes", 60, "available minutes")
	recommendCmd.Flags().Int("energy", 3, "energy level 1-5")
	recommendCmd.Flags().Bool("no-heavy", false, "avoid emotionally heavy content")
	recommendCmd.Flags().Int("top", 0, "number of recommendations (default: server setting)")
	recommendCmd.MarkFlagRequired("state")
	recommendCmd.MarkFlagRequired("focus")
}

// --- profiles ---

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Show the built-in state scoring profiles",
	Run: func(cmd *cobra.Command, args []string) {
		for _, state := range mood.States {
			p := mood.ProfileOf(state)
			fmt.Printf("\n%s\n", colorize(colorBold, string(state)))
			fmt.Printf("  intensity: %.2f–%.2f\n", p.IntensityMin, p.IntensityMax)
			fmt.Printf("  novelty:   %s\n", p.NoveltyPref)
			fmt.Printf("  tags:      %s\n", strings.Join(p.Tags, ", "))
			fmt.Printf("  weights:   mood=%.0f time=%.0f energy=%.0f preference=%.0f quality=%.0f novelty=%.0f\n",
				p.Weights.Mood, p.Weights.Time, p.Weights.Energy, p.Weights.Preference, p.Weights.Quality, p.Weights.Novelty)
		}
	},
}

// --- ingest ---

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest raw provider records into the content cache",
	Long: `Ingest raw provider records into the content cache.

The input file must hold a JSON array of provider records. Batches are
queued for the background worker; single records are normalized inline.

Examples:
  unwind ingest --provider movie --file ./tmdb-page.json
  unwind ingest --provider curated --file ./activities.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, _ := cmd.Flags().GetString("provider")
		file, _ := cmd.Flags().GetString("file")

		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		var records []json.RawMessage
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("input must be a JSON array of records: %w", err)
		}
		if len(records) == 0 {
			return fmt.Errorf("input file holds no records")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		if len(records) == 1 {
			resp, err := client.post(cmd.Context(), "/ingest", map[string]any{
				"provider": provider,
				"record":   records[0],
			})
			if err != nil {
				return err
			}
			var result map[string]string
			if err := decodeJSON(resp, &result); err != nil {
				return err
			}
			printSuccess("Cached item %s", result["id"])
			return nil
		}

		resp, err := client.post(cmd.Context(), "/ingest/batch", map[string]any{
			"provider": provider,
			"records":  records,
		})
		if err != nil {
			return err
		}
		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}
		printSuccess("Queued %d records (job %s)", len(records), result["job_id"])
		return nil
	},
}

func init() {
	ingestCmd.Flags().String("provider", "", "provider kind (movie, tv, book, curated)")
	ingestCmd.Flags().String("file", "", "path to a JSON array of records")
	ingestCmd.MarkFlagRequired("provider")
	ingestCmd.MarkFlagRequired("file")
}

// --- prefs ---

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or update user preferences",
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current preferences as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/preferences")
		if err != nil {
			return err
		}

		var p any
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a preference field",
	Long: `Set a preference field.

List keys (liked_tags, disliked_tags, liked_genres, disliked_genres) take a
comma-separated list; tolerance keys take a number in [0,1].

Examples:
  unwind prefs set liked_tags cozy,funny
  unwind prefs set intensity_tolerance 0.3`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, raw := args[0], args[1]

		var value any = raw
		if strings.Contains(raw, ",") || strings.HasSuffix(key, "_tags") || strings.HasSuffix(key, "_genres") {
			parts := strings.Split(raw, ",")
			list := make([]string, 0, len(parts))
			for _, p := range parts {
				if t := strings.TrimSpace(p); t != "" {
					list = append(list, t)
				}
			}
			b, err := json.Marshal(list)
			if err != nil {
				return err
			}
			value = string(b)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.patch(cmd.Context(), "/preferences", map[string]any{key: value})
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, raw)
		return nil
	},
}

func init() {
	prefsCmd.AddCommand(prefsShowCmd)
	prefsCmd.AddCommand(prefsSetCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
