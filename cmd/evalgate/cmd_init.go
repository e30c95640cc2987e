package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/evalgate/evalgate/internal/scaffold"
	"github.com/evalgate/evalgate/internal/versioning"
	"github.com/evalgate/evalgate/internal/wizard"
)

func newInitCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "init <target-dir>",
		Short: "Initialize a new evaluation target",
		Long: `Initialize a new evaluation target directory.

Creates prompt.txt, cases.yaml, expected.yaml, and config.yaml, and records
the initial prompt version in .metadata.yaml.

Use --interactive to run a guided wizard that collects target metadata
and generates the config.yaml.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return initCommandE(cmd, args, interactive)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run guided target creation wizard")

	return cmd
}

func initCommandE(cmd *cobra.Command, args []string, interactive bool) error {
	dir := args[0]
	name := filepath.Base(filepath.Clean(dir))
	if err := scaffold.ValidateName(name); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	executor, model := scaffold.ReadProjectDefaults(dir)

	configContent := scaffold.ConfigYAML(name, executor, model)
	if interactive {
		spec, err := wizard.RunTargetWizard(cmd.InOrStdin(), cmd.OutOrStdout(), name)
		if err != nil {
			return err
		}
		configContent, err = wizard.GenerateConfigYAML(spec)
		if err != nil {
			return fmt.Errorf("failed to generate config.yaml: %w", err)
		}
	}

	files := []struct {
		name    string
		content string
	}{
		{"prompt.txt", scaffold.PromptTXT(name)},
		{"cases.yaml", scaffold.CasesYAML()},
		{"expected.yaml", scaffold.ExpectedYAML()},
		{"config.yaml", configContent},
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized target %s:\n", name)
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s (exists, skipped)\n", path)
			continue
		}
		if err := os.WriteFile(path, []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", path)
	}

	// Record the initial prompt version.
	mgr := versioning.NewManager(filepath.Dir(dir))
	if _, err := mgr.Ensure(name, ""); err != nil {
		return fmt.Errorf("failed to write version metadata: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", filepath.Join(dir, versioning.MetadataFile))

	return nil
}
