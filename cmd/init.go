package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nibzard/prospector/internal/config"
	"github.com/nibzard/prospector/internal/leads"
)

// ProjectConfigFile is the config file written by init.
const ProjectConfigFile = "prospector.toml"

// initCommand writes a starter config and leads file into the project root.
func initCommand(cfg *config.Config, args []string) error {
	flags := flag.NewFlagSet("prospector init", flag.ContinueOnError)
	flags.SetOutput(stderr)
	force := flags.Bool("force", false, "Overwrite existing files")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", flags.Args())
	}

	exampleLeads, err := leads.ExampleJSON()
	if err != nil {
		return err
	}
	files := []struct {
		name    string
		content []byte
	}{
		{ProjectConfigFile, []byte(config.ExampleConfig())},
		{config.DefaultLeadsFile, exampleLeads},
	}

	for _, f := range files {
		path := filepath.Join(cfg.ProjectRoot, f.name)
		if _, err := os.Stat(path); err == nil && !*force {
			fmt.Fprintf(stdout, "⚠️  %s exists, skipping (use -force to overwrite)\n", f.name)
			continue
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("checking %s: %w", path, err)
		}
		if err := os.WriteFile(path, f.content, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(stdout, "✅ Created %s\n", f.name)
	}

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Next steps:")
	fmt.Fprintln(stdout, "  1. Set OPENAI_API_KEY and TAVILY_API_KEY (environment, .env or 'prospector keys set')")
	fmt.Fprintf(stdout, "  2. Edit %s with your leads\n", config.DefaultLeadsFile)
	fmt.Fprintln(stdout, "  3. Run 'prospector doctor', then 'prospector run'")
	return nil
}
