package workflow

import (
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

// ToolchainRegistry maps toolchain release channels to the shell command
// that provisions them inside a job workspace.
type ToolchainRegistry struct {
	installs map[string]string
}

type registryFile struct {
	Toolchain map[string]toolchainEntry `toml:"toolchain"`
}

type toolchainEntry struct {
	Install string `toml:"install"`
}

// DefaultToolchains returns the built-in channel registry.
func DefaultToolchains() *ToolchainRegistry {
	return &ToolchainRegistry{
		installs: map[string]string{
			"stable":  "rustup toolchain install stable --profile minimal --no-self-update",
			"beta":    "rustup toolchain install beta --profile minimal --no-self-update",
			"nightly": "rustup toolchain install nightly --profile minimal --no-self-update",
		},
	}
}

// LoadToolchains reads a TOML registry file and overlays it on the built-in
// defaults. Entries in the file win over defaults for the same channel.
//
//	[toolchain.nightly]
//	install = "rustup toolchain install nightly --component miri"
func LoadToolchains(path string) (*ToolchainRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read toolchain registry", goerr.V("path", path))
	}

	var file registryFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse toolchain registry", goerr.V("path", path))
	}

	registry := DefaultToolchains()
	for channel, entry := range file.Toolchain {
		if entry.Install == "" {
			return nil, goerr.New("toolchain entry has no install command",
				goerr.V("channel", channel))
		}
		registry.installs[channel] = entry.Install
	}

	return registry, nil
}

// InstallCommand returns the provisioning command for a channel. Unknown
// channels fall back to a plain rustup install so that a workflow can name
// any release track without registry changes.
func (r *ToolchainRegistry) InstallCommand(channel string) string {
	if cmd, ok := r.installs[channel]; ok {
		return cmd
	}
	return fmt.Sprintf("rustup toolchain install %s --profile minimal --no-self-update", channel)
}
