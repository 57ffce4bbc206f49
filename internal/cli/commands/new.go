package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/vivjson/vivjson/internal/cli/ui"
)

var projectNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func validateProjectName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) == 0 || len(name) > 100 {
		return fmt.Errorf("project name must be 1-100 characters")
	}
	if filepath.IsAbs(name) {
		return fmt.Errorf("project name cannot be an absolute path")
	}
	if !projectNamePattern.MatchString(name) {
		return fmt.Errorf("project name can only contain letters, numbers, dashes, and underscores")
	}
	return nil
}

const sampleScript = `# %s
greeting = "hello"

function describe(m) {
    keys = 0
    for (k in m) {keys += 1}
    return({"entries": keys, "greeting": greeting})
}

return(describe({"project": "%s"}))
`

const sampleData = `{
  "name": "%s",
  "values": [1, 2, 3]
}
`

const sampleConfig = `server:
  port: 3799
registry:
  sqlite_path: vivjson-modules.db
limits:
  max_depth: 200
  max_loop_times: 1000
  max_array_size: 1000
`

// NewNewCommand creates the new command.
func NewNewCommand() *cobra.Command {
	var withConfig bool

	cmd := &cobra.Command{
		Use:   "new [project-name]",
		Short: "Create a new VivJson project",
		Long: `Create a new VivJson project directory with a sample script, sample
data, and (optionally) a vivjson.yml tooling configuration.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			} else {
				prompt := &survey.Input{
					Message: "Project name:",
					Default: "my-vivjson-project",
				}
				if err := survey.AskOne(prompt, &name, survey.WithValidator(func(ans interface{}) error {
					s, _ := ans.(string)
					return validateProjectName(s)
				})); err != nil {
					return err
				}
				confirm := &survey.Confirm{
					Message: "Include a vivjson.yml tooling config?",
					Default: true,
				}
				if err := survey.AskOne(confirm, &withConfig); err != nil {
					return err
				}
			}
			if err := validateProjectName(name); err != nil {
				return err
			}
			return scaffold(cmd, name, withConfig)
		},
	}
	cmd.Flags().BoolVar(&withConfig, "config", false, "include a vivjson.yml tooling config")
	return cmd
}

func scaffold(cmd *cobra.Command, name string, withConfig bool) error {
	if _, err := os.Stat(name); err == nil {
		return fmt.Errorf("directory %q already exists", name)
	}
	if err := os.MkdirAll(name, 0o755); err != nil {
		return err
	}

	spinner := ui.NewSpinner(cmd.OutOrStdout(), ui.SpinnerOptions{Message: "Scaffolding " + name})
	spinner.Start()

	files := map[string]string{
		"main.viv":  fmt.Sprintf(sampleScript, name, name),
		"data.json": fmt.Sprintf(sampleData, name),
	}
	if withConfig {
		files["vivjson.yml"] = sampleConfig
	}
	for file, content := range files {
		if err := os.WriteFile(filepath.Join(name, file), []byte(content), 0o644); err != nil {
			spinner.Error("Could not create " + file)
			return err
		}
	}

	spinner.Success("Created project " + name)
	fmt.Fprintf(cmd.OutOrStdout(), "\nNext steps:\n  cd %s\n  vivjson run data.json main.viv\n", name)
	return nil
}
