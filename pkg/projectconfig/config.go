package projectconfig

import "fmt"

// DefaultFileName is the project file looked up in the working directory.
const DefaultFileName = "cumulus.toml"

// ProjectConfig represents the complete cumulus.toml configuration
type ProjectConfig struct {
	// ProjectID overrides the project from the user config for this directory
	ProjectID string `mapstructure:"project_id" toml:"project_id,omitempty"`

	Functions []FunctionConfig `mapstructure:"functions" toml:"functions,omitempty"`
	Sites     []SiteConfig     `mapstructure:"sites" toml:"sites,omitempty"`
}

// FunctionConfig is one [[functions]] entry.
type FunctionConfig struct {
	ID         string   `mapstructure:"id" toml:"id"`
	Name       string   `mapstructure:"name" toml:"name,omitempty"`
	Runtime    string   `mapstructure:"runtime" toml:"runtime,omitempty"`
	Path       string   `mapstructure:"path" toml:"path"`
	Entrypoint string   `mapstructure:"entrypoint" toml:"entrypoint"`
	Commands   string   `mapstructure:"commands" toml:"commands,omitempty"`
	Ignore     []string `mapstructure:"ignore" toml:"ignore,omitempty"`
	Activate   *bool    `mapstructure:"activate" toml:"activate,omitempty"`
}

// SiteConfig is one [[sites]] entry.
type SiteConfig struct {
	ID              string   `mapstructure:"id" toml:"id"`
	Name            string   `mapstructure:"name" toml:"name,omitempty"`
	Framework       string   `mapstructure:"framework" toml:"framework,omitempty"`
	Path            string   `mapstructure:"path" toml:"path"`
	InstallCommand  string   `mapstructure:"install_command" toml:"install_command,omitempty"`
	BuildCommand    string   `mapstructure:"build_command" toml:"build_command,omitempty"`
	OutputDirectory string   `mapstructure:"output_directory" toml:"output_directory,omitempty"`
	Ignore          []string `mapstructure:"ignore" toml:"ignore,omitempty"`
	Activate        *bool    `mapstructure:"activate" toml:"activate,omitempty"`
}

// ShouldActivate reports whether the new deployment goes live once built.
func (fc *FunctionConfig) ShouldActivate() bool {
	return fc.Activate == nil || *fc.Activate
}

// ShouldActivate reports whether the new deployment goes live once built.
func (sc *SiteConfig) ShouldActivate() bool {
	return sc.Activate == nil || *sc.Activate
}

// Function returns the function entry with the given id. An empty id selects
// the only function when exactly one is declared.
func (pc *ProjectConfig) Function(id string) (*FunctionConfig, error) {
	if id == "" {
		switch len(pc.Functions) {
		case 0:
			return nil, fmt.Errorf("no functions declared in %s", DefaultFileName)
		case 1:
			return &pc.Functions[0], nil
		default:
			return nil, fmt.Errorf("%s declares %d functions, pass a function id", DefaultFileName, len(pc.Functions))
		}
	}
	for i := range pc.Functions {
		if pc.Functions[i].ID == id {
			return &pc.Functions[i], nil
		}
	}
	return nil, fmt.Errorf("function %q not found in %s", id, DefaultFileName)
}

// Site returns the site entry with the given id, with the same empty-id rule
// as Function.
func (pc *ProjectConfig) Site(id string) (*SiteConfig, error) {
	if id == "" {
		switch len(pc.Sites) {
		case 0:
			return nil, fmt.Errorf("no sites declared in %s", DefaultFileName)
		case 1:
			return &pc.Sites[0], nil
		default:
			return nil, fmt.Errorf("%s declares %d sites, pass a site id", DefaultFileName, len(pc.Sites))
		}
	}
	for i := range pc.Sites {
		if pc.Sites[i].ID == id {
			return &pc.Sites[i], nil
		}
	}
	return nil, fmt.Errorf("site %q not found in %s", id, DefaultFileName)
}
