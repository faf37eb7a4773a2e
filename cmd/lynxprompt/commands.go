package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lynxprompt/lynxprompt/internal/config"
	"github.com/lynxprompt/lynxprompt/internal/detect"
	"github.com/lynxprompt/lynxprompt/internal/profile"
	"github.com/lynxprompt/lynxprompt/internal/scan"
	"github.com/lynxprompt/lynxprompt/internal/storage"
	"github.com/lynxprompt/lynxprompt/internal/synth"
	"github.com/lynxprompt/lynxprompt/internal/tui"
	"github.com/lynxprompt/lynxprompt/internal/variables"
	"github.com/lynxprompt/lynxprompt/internal/wizard"
)

// --- shared helpers ---

func openStore(cfg config.Config) (*storage.Store, error) {
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	return store, nil
}

func newDetector(cfg config.Config) *detect.Detector {
	d := detect.New()
	if timeout, err := time.ParseDuration(cfg.Detect.CloneTimeout); err == nil {
		d.CloneTimeout = timeout
	}
	return d
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// --- init ---

var initCmd = &cobra.Command{
	Use:   "init [path-or-url]",
	Short: "Generate AI assistant config files for a project",
	Long: `Generate AI assistant config files for a project.

Inspects the project first, then walks through a short interactive
wizard. With --yes the wizard is skipped and answers come from flags
and detection.

Examples:
  lynxprompt init
  lynxprompt init ./my-service
  lynxprompt init https://github.com/owner/repo --yes --platforms claude,cursor
  lynxprompt init --yes --name api-gateway --stack "Go, chi, PostgreSQL"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		source := "."
		if len(args) == 1 {
			source = args[0]
		}

		printStep("Inspecting %s...", source)
		project := newDetector(cfg).Detect(cmd.Context(), source)
		if project != nil {
			printSuccess("Detected %s", project.Name)
		} else {
			printWarning("No project signals detected, starting blank")
		}

		tier := wizard.TierForPlan(cfg.Billing.Plan)
		assumeYes, _ := cmd.Flags().GetBool("yes")
		interactive := !assumeYes &&
			term.IsTerminal(int(os.Stdin.Fd())) &&
			term.IsTerminal(int(os.Stdout.Fd()))

		var answers wizard.Config
		if !interactive {
			answers, err = batchConfig(cmd, project, tier)
			if err != nil {
				return err
			}
		} else {
			var outcome tui.Outcome
			answers, outcome, err = tui.Run(tier, project)
			if err != nil {
				return err
			}
			if outcome == tui.OutcomeCancelled {
				printWarning("Cancelled, nothing written")
				return nil
			}
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		prof, err := profile.NewManager(store).Get()
		if err != nil {
			return fmt.Errorf("loading profile: %w", err)
		}
		saved, err := store.GetAllVariables()
		if err != nil {
			return fmt.Errorf("loading variables: %w", err)
		}

		files, warnings, err := synth.Generate(answers, prof, saved)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			printWarning("%s", w)
		}
		if len(files) == 0 {
			return fmt.Errorf("no files to generate")
		}

		outDir, _ := cmd.Flags().GetString("out")
		if outDir == "" {
			outDir = "."
			if len(args) == 1 && !strings.Contains(source, "://") && !strings.HasPrefix(source, "git@") {
				outDir = source
			}
		}
		force, _ := cmd.Flags().GetBool("force")
		return writeGeneratedFiles(files, outDir, force || !interactive)
	},
}

// batchConfig assembles answers from flags plus detection, without the
// wizard. Finalize applies the same tier gating the wizard would.
func batchConfig(cmd *cobra.Command, project *detect.Project, tier wizard.Tier) (wizard.Config, error) {
	b := wizard.FromDetection(project)

	if v, _ := cmd.Flags().GetString("name"); v != "" {
		b.SetName(v)
	}
	if v, _ := cmd.Flags().GetString("description"); v != "" {
		b.SetDescription(v)
	}
	if v, _ := cmd.Flags().GetString("stack"); v != "" {
		b.SetStack(splitCSV(v))
	}
	if v, _ := cmd.Flags().GetString("platforms"); v != "" {
		b.SetPlatforms(splitCSV(v))
	}
	if v, _ := cmd.Flags().GetString("persona"); v != "" {
		b.SetPersona(v)
	}
	if v, _ := cmd.Flags().GetString("boundaries"); v != "" {
		b.SetBoundaries(wizard.Boundaries{Preset: v})
	}

	return b.Finalize(tier)
}

// writeGeneratedFiles writes each file under outDir, creating
// intermediate directories. One failed write does not abort the rest;
// the command only fails when nothing could be written at all.
func writeGeneratedFiles(files []synth.GeneratedFile, outDir string, overwrite bool) error {
	failed := 0
	for _, f := range files {
		path := filepath.Join(outDir, f.FileName)

		if !overwrite {
			if _, err := os.Stat(path); err == nil {
				if !confirmOverwrite(path) {
					printWarning("Skipped %s", path)
					continue
				}
			}
		}

		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				printError("Failed to create %s: %v", dir, err)
				failed++
				continue
			}
		}
		if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
			printError("Failed to write %s: %v", path, err)
			failed++
			continue
		}
		printSuccess("Wrote %s", path)
	}
	if failed == len(files) {
		return fmt.Errorf("%d file(s) could not be written", failed)
	}
	if failed > 0 {
		printWarning("%d of %d file(s) could not be written", failed, len(files))
	}
	return nil
}

func confirmOverwrite(path string) bool {
	fmt.Fprintf(os.Stderr, "%s exists. Overwrite? [y/N] ", path)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func init() {
	initCmd.Flags().Bool("yes", false, "skip the wizard and use flags plus detection")
	initCmd.Flags().String("name", "", "project name")
	initCmd.Flags().String("description", "", "one-line project description")
	initCmd.Flags().String("stack", "", "comma-separated tech stack")
	initCmd.Flags().String("platforms", "", "comma-separated platform ids (agents, claude, cursor, ...)")
	initCmd.Flags().String("persona", "", "developer persona for the AI instructions section")
	initCmd.Flags().String("boundaries", "", "boundaries preset (standard, conservative, permissive)")
	initCmd.Flags().String("out", "", "output directory (default: the inspected path)")
	initCmd.Flags().Bool("force", false, "overwrite existing files without asking")
}

// --- detect ---

var detectCmd = &cobra.Command{
	Use:   "detect [path-or-url]",
	Short: "Inspect a project and report what was found",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		source := "."
		if len(args) == 1 {
			source = args[0]
		}

		project := newDetector(cfg).Detect(cmd.Context(), source)
		if project == nil {
			return fmt.Errorf("no project signals detected at %s", source)
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(project)
		}

		printStatus("Name", "%s", project.Name)
		if project.Description != "" {
			printStatus("Description", "%s", project.Description)
		}
		if len(project.Stack) > 0 {
			printStatus("Stack", "%s", strings.Join(project.Stack, ", "))
		}
		if len(project.Databases) > 0 {
			printStatus("Databases", "%s", strings.Join(project.Databases, ", "))
		}
		if project.PackageManager != "" {
			printStatus("Package manager", "%s", project.PackageManager)
		}
		if !project.Commands.Empty() {
			if project.Commands.Build != "" {
				printStatus("Build", "%s", project.Commands.Build)
			}
			if project.Commands.Test != "" {
				printStatus("Test", "%s", project.Commands.Test)
			}
			if project.Commands.Lint != "" {
				printStatus("Lint", "%s", project.Commands.Lint)
			}
		}
		if project.Kind != "" {
			printStatus("Kind", "%s", project.Kind)
		}
		if project.License != "" {
			printStatus("License", "%s", project.License)
		}
		if project.CICD != "" {
			printStatus("CI/CD", "%s", project.CICD)
		}
		if project.RepoHost != "" {
			printStatus("Repo host", "%s", project.RepoHost)
		}
		if len(project.ExistingFiles) > 0 {
			printStatus("Existing AI configs", "%s", strings.Join(project.ExistingFiles, ", "))
		}
		return nil
	},
}

func init() {
	detectCmd.Flags().Bool("json", false, "print the result as JSON")
}

// --- scan ---

var scanCmd = &cobra.Command{
	Use:   "scan <file>",
	Short: "Scan a file for secrets before sharing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		matches := scan.Scan(string(data))
		if len(matches) == 0 {
			printSuccess("No potential secrets found")
			return nil
		}

		for _, m := range matches {
			printWarning("line %d: %s  %s", m.Line, m.Type, m.Snippet)
		}
		return fmt.Errorf("found %d potential secret(s)", len(matches))
	},
}

// --- variables ---

var variablesCmd = &cobra.Command{
	Use:     "variables",
	Aliases: []string{"vars"},
	Short:   "Manage saved template variables",
}

var variablesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved variables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		vars, err := store.ListVariables()
		if err != nil {
			return err
		}
		if len(vars) == 0 {
			fmt.Println("No saved variables.")
			return nil
		}
		for _, v := range vars {
			fmt.Printf("  %s = %s\n", colorize(colorBold, v.Key), v.Value)
		}
		return nil
	},
}

var variablesSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Save a variable for [[KEY]] placeholder resolution",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := variables.Canonical(args[0])
		if !variables.ValidKey(key) {
			return fmt.Errorf("invalid variable key %q (letters, digits, underscores)", args[0])
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.SetVariable(key, args[1]); err != nil {
			return err
		}
		printSuccess("Set %s = %s", key, args[1])
		return nil
	},
}

var variablesRmCmd = &cobra.Command{
	Use:   "rm <key>",
	Short: "Delete a saved variable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		key := variables.Canonical(args[0])
		if err := store.DeleteVariable(key); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("variable %q not found", key)
			}
			return err
		}
		printSuccess("Deleted %s", key)
		return nil
	},
}

func init() {
	variablesCmd.AddCommand(variablesListCmd)
	variablesCmd.AddCommand(variablesSetCmd)
	variablesCmd.AddCommand(variablesRmCmd)
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage user profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current profile as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		p, err := profile.NewManager(store).Get()
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]string{
			profile.KeyDisplayName: p.DisplayName,
			profile.KeyPersona:     p.Persona,
			profile.KeySkillLevel:  p.SkillLevel,
		})
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a profile field",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := profile.NewManager(store).Set(args[0], args[1]); err != nil {
			return err
		}
		printSuccess("Set %s = %s", args[0], args[1])
		return nil
	},
}

func init() {
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
}

// --- blueprint ---

var blueprintCmd = &cobra.Command{
	Use:   "blueprint",
	Short: "Publish and download reusable config blueprints",
}

var blueprintPublishCmd = &cobra.Command{
	Use:   "publish <file>",
	Short: "Publish a config file as a reusable blueprint",
	Long: `Publish a config file as a reusable blueprint.

The content is scanned for secrets first. Publication stops on findings
unless --acknowledge-secrets is set. [[VAR]] placeholders stay
unresolved; downloaders resolve them with their own saved variables.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
		content := string(data)

		title, _ := cmd.Flags().GetString("title")
		if title == "" {
			title = filepath.Base(args[0])
		}
		platform, _ := cmd.Flags().GetString("platform")
		if platform != "" {
			if _, ok := synth.ParsePlatform(platform); !ok {
				return fmt.Errorf("unknown platform %q (valid: %s)", platform, strings.Join(synth.PlatformIDs(), ", "))
			}
		}

		acknowledged, _ := cmd.Flags().GetBool("acknowledge-secrets")
		if matches := scan.Scan(content); len(matches) > 0 && !acknowledged {
			for _, m := range matches {
				printWarning("line %d: %s  %s", m.Line, m.Type, m.Snippet)
			}
			return fmt.Errorf("content may contain secrets; re-run with --acknowledge-secrets to publish anyway")
		}

		defaults := "{}"
		if pairs, _ := cmd.Flags().GetStringSlice("default"); len(pairs) > 0 {
			m := make(map[string]string, len(pairs))
			for _, pair := range pairs {
				k, v, ok := strings.Cut(pair, "=")
				if !ok {
					return fmt.Errorf("invalid --default %q, want KEY=value", pair)
				}
				key := variables.Canonical(k)
				if !variables.ValidKey(key) {
					return fmt.Errorf("invalid variable key %q", k)
				}
				m[key] = v
			}
			b, err := json.Marshal(m)
			if err != nil {
				return err
			}
			defaults = string(b)
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		prof, err := profile.NewManager(store).Get()
		if err != nil {
			return err
		}
		description, _ := cmd.Flags().GetString("description")
		price, _ := cmd.Flags().GetInt("price")

		bp := storage.Blueprint{
			ID:          uuid.New().String(),
			Title:       title,
			Description: description,
			Content:     content,
			Platform:    platform,
			Author:      prof.DisplayName,
			Defaults:    defaults,
			PriceCents:  price,
			Published:   true,
		}
		if err := store.SaveBlueprint(bp); err != nil {
			return err
		}

		printSuccess("Published blueprint %s", bp.ID)
		if vars := variables.Extract(content); len(vars) > 0 {
			printStatus("Variables", "%s", strings.Join(vars, ", "))
		}
		return nil
	},
}

var blueprintListCmd = &cobra.Command{
	Use:   "list",
	Short: "List published blueprints",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		bps, err := store.ListBlueprints(limit, 0)
		if err != nil {
			return err
		}
		if len(bps) == 0 {
			fmt.Println("No blueprints published yet.")
			return nil
		}
		for _, bp := range bps {
			line := fmt.Sprintf("%s  %s", colorize(colorCyan, bp.ID[:8]), bp.Title)
			if bp.Platform != "" {
				line += fmt.Sprintf("  [%s]", bp.Platform)
			}
			if bp.PriceCents > 0 {
				line += fmt.Sprintf("  $%.2f", float64(bp.PriceCents)/100)
			}
			fmt.Println(line)
		}
		return nil
	},
}

var blueprintShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a blueprint's raw content and variables",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		bp, err := findBlueprint(store, args[0])
		if err != nil {
			return err
		}

		printStatus("Title", "%s", bp.Title)
		if bp.Description != "" {
			printStatus("Description", "%s", bp.Description)
		}
		if bp.Author != "" {
			printStatus("Author", "%s", bp.Author)
		}
		if vars := variables.Extract(bp.Content); len(vars) > 0 {
			printStatus("Variables", "%s", strings.Join(vars, ", "))
		}
		fmt.Println()
		fmt.Print(bp.Content)
		return nil
	},
}

var blueprintRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a blueprint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		bp, err := findBlueprint(store, args[0])
		if err != nil {
			return err
		}
		if err := store.DeleteBlueprint(bp.ID); err != nil {
			return err
		}
		printSuccess("Deleted %s", bp.Title)
		return nil
	},
}

var blueprintDownloadCmd = &cobra.Command{
	Use:   "download <id>",
	Short: "Download a blueprint with your variables filled in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		bp, err := findBlueprint(store, args[0])
		if err != nil {
			return err
		}

		saved, err := store.GetAllVariables()
		if err != nil {
			return err
		}
		var authorDefaults map[string]string
		if bp.Defaults != "" {
			json.Unmarshal([]byte(bp.Defaults), &authorDefaults)
		}
		resolved := variables.Resolve(bp.Content, saved, authorDefaults)

		output, _ := cmd.Flags().GetString("out")
		if output == "" {
			fmt.Print(resolved)
			return nil
		}
		if err := os.WriteFile(output, []byte(resolved), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		printSuccess("Wrote %s", output)
		return nil
	},
}

// findBlueprint accepts full ids or unique prefixes, like git.
func findBlueprint(store *storage.Store, id string) (storage.Blueprint, error) {
	bp, err := store.GetBlueprint(id)
	if err == nil {
		return bp, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return storage.Blueprint{}, err
	}

	bps, err := store.ListBlueprints(1000, 0)
	if err != nil {
		return storage.Blueprint{}, err
	}
	var found []storage.Blueprint
	for _, candidate := range bps {
		if strings.HasPrefix(candidate.ID, id) {
			found = append(found, candidate)
		}
	}
	switch len(found) {
	case 0:
		return storage.Blueprint{}, fmt.Errorf("blueprint %q not found", id)
	case 1:
		return found[0], nil
	default:
		return storage.Blueprint{}, fmt.Errorf("blueprint id %q is ambiguous (%d matches)", id, len(found))
	}
}

func init() {
	blueprintPublishCmd.Flags().String("title", "", "blueprint title (default: file name)")
	blueprintPublishCmd.Flags().String("description", "", "short description")
	blueprintPublishCmd.Flags().String("platform", "", "target platform id")
	blueprintPublishCmd.Flags().Int("price", 0, "price in cents (0 = free)")
	blueprintPublishCmd.Flags().StringSlice("default", nil, "author default for a variable, KEY=value (repeatable)")
	blueprintPublishCmd.Flags().Bool("acknowledge-secrets", false, "publish even if the scan finds potential secrets")
	blueprintListCmd.Flags().Int("limit", 20, "maximum number of blueprints to list")
	blueprintDownloadCmd.Flags().String("out", "", "output file path (default: stdout)")

	blueprintCmd.AddCommand(blueprintPublishCmd)
	blueprintCmd.AddCommand(blueprintListCmd)
	blueprintCmd.AddCommand(blueprintShowCmd)
	blueprintCmd.AddCommand(blueprintRmCmd)
	blueprintCmd.AddCommand(blueprintDownloadCmd)
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
