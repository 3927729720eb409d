package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/strata/internal/catalog"
	"github.com/leapstack-labs/strata/internal/cli/config"
	"github.com/leapstack-labs/strata/internal/cli/output"
	sharedcfg "github.com/leapstack-labs/strata/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const scaffoldHeader = `# strata project configuration.
# Every key can be overridden with a STRATA_ environment variable
# (STRATA_TARGET__PASSWORD sets target.password) or a command-line flag.
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var noSchema bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create strata.yaml and the layer schemas",
		Long: `Initialize a strata project.

This creates:
  - strata.yaml with the default DuckDB target and source file locations
  - the source directories the CSV exports are read from
  - the raw, cleansed and curated schemas and every raw and cleansed table

An existing strata.yaml is kept unless --force is given. Schema creation is
idempotent and safe to repeat.`,
		Example: `  # Initialize in the current directory
  strata init

  # Rewrite the config file
  strata init --force

  # Only write the config, create schemas later
  strata init --no-schema`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, force, noSchema)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing strata.yaml")
	cmd.Flags().BoolVar(&noSchema, "no-schema", false, "Skip creating schemas and tables")
	return cmd
}

func runInit(cmd *cobra.Command, force, noSchema bool) error {
	cc := NewCommandContextWithoutEngine(cmd)
	r := cc.Renderer

	root := cc.Cfg.ProjectRoot
	if root == "" {
		root = "."
	}
	configPath := filepath.Join(root, sharedcfg.ConfigFileName)

	res := output.InitOutput{ConfigFile: configPath, Target: cc.Cfg.Target.Type}

	if _, err := os.Stat(configPath); err != nil || force {
		if err := writeScaffold(configPath); err != nil {
			return err
		}
		res.ConfigCreated = true
	}

	if err := createSourceDirs(cc.Cfg.Sources.Dir); err != nil {
		return err
	}

	if !noSchema {
		eng, err := createEngine(cc.Cfg, cc.Logger)
		if err != nil {
			return err
		}
		defer func() { _ = eng.Close() }()

		if err := eng.InitSchema(cmd.Context()); err != nil {
			return fmt.Errorf("failed to create schemas: %w", err)
		}
		for _, e := range catalog.Entities() {
			res.Tables = append(res.Tables, e.Raw.Qualified())
		}
		for _, e := range catalog.Entities() {
			res.Tables = append(res.Tables, e.Cleansed.Qualified())
		}
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(res)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, "strata project initialized"))
		r.Println("")
		r.Println(output.FormatKeyValue("Config", configPath))
		r.Println(output.FormatKeyValue("Target", res.Target))
		r.Println(output.FormatKeyValue("Tables", fmt.Sprint(len(res.Tables))))
	default:
		status := "skipped"
		if res.ConfigCreated {
			status = "success"
		}
		r.StatusLine(configPath, status, "")
		for _, t := range res.Tables {
			r.StatusLine(t, "success", "")
		}
		r.Println("")
		r.Success("strata project initialized!")
		r.Println("")
		r.Println("Next steps:")
		r.Println("  1. Copy the CRM and ERP exports into " + cc.Cfg.Sources.Dir)
		r.Println("  2. Run 'strata run' to load every layer")
		r.Println("  3. Run 'strata history' to review the outcome")
	}
	return nil
}

// scaffold returns the config written by init. Paths stay relative so the
// project directory can be moved.
func scaffold() *config.Config {
	files := make(map[string]string)
	for _, e := range catalog.Entities() {
		files[e.Name] = e.SourceFile
	}

	return &config.Config{
		StatePath: config.DefaultStateFile,
		LogLevel:  config.DefaultLogLevel,
		LogFormat: config.DefaultLogFormat,
		Target: &config.TargetConfig{
			Type:     sharedcfg.DefaultTargetType,
			Database: sharedcfg.DefaultDatabase,
		},
		Sources: config.SourcesConfig{
			Dir:   sharedcfg.DefaultSourcesDir,
			Files: files,
		},
	}
}

func writeScaffold(path string) error {
	var buf bytes.Buffer
	buf.WriteString(scaffoldHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(scaffold()); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// createSourceDirs creates the sources directory and the per-system
// subdirectories the default file names live in.
func createSourceDirs(dir string) error {
	if dir == "" {
		return nil
	}
	seen := make(map[string]bool)
	for _, e := range catalog.Entities() {
		sub := filepath.Join(dir, filepath.Dir(e.SourceFile))
		if seen[sub] {
			continue
		}
		seen[sub] = true
		if err := os.MkdirAll(sub, 0750); err != nil {
			return fmt.Errorf("failed to create source directory: %w", err)
		}
	}
	return nil
}
