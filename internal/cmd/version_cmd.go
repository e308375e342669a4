/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/openshift-kni/songplays-etl/internal"
)

// Version creates and returns the `version` command.
func Version() *cobra.Command {
	c := NewVersionCommand()
	return &cobra.Command{
		Use:   "version",
		Short: "Prints version information",
		Long:  "Prints the version, commit and build time of the binary",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
}

// VersionCommand contains the data and logic needed to run the `version` command.
type VersionCommand struct {
	readBuildInfo func() (*debug.BuildInfo, bool)
}

// NewVersionCommand creates a new runner that knows how to execute the `version` command.
func NewVersionCommand() *VersionCommand {
	return &VersionCommand{
		readBuildInfo: debug.ReadBuildInfo,
	}
}

// BuildVersion contains the version details extracted from the build information.
type BuildVersion struct {
	Version string
	Commit  string
	Time    string
	Go      string
}

// run executes the `version` command.
func (c *VersionCommand) run(cmd *cobra.Command, argv []string) error {
	tool := internal.ToolFromContext(cmd.Context())
	version := c.buildVersion()
	_, err := fmt.Fprintf(
		tool.Out(),
		"version: %s\ncommit: %s\ntime: %s\ngo: %s\n",
		version.Version, version.Commit, version.Time, version.Go,
	)
	return err
}

func (c *VersionCommand) buildVersion() BuildVersion {
	result := BuildVersion{
		Version: unknownSettingValue,
		Commit:  unknownSettingValue,
		Time:    unknownSettingValue,
		Go:      unknownSettingValue,
	}
	info, ok := c.readBuildInfo()
	if !ok {
		return result
	}
	if info.Main.Version != "" {
		result.Version = info.Main.Version
	}
	if info.GoVersion != "" {
		result.Go = info.GoVersion
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case vcsRevisionSettingKey:
			result.Commit = setting.Value
		case vcsTimeSettingKey:
			result.Time = setting.Value
		}
	}
	return result
}

// Names of build settings we are interested on:
const (
	vcsRevisionSettingKey = "vcs.revision"
	vcsTimeSettingKey     = "vcs.time"
)

// Fallback value for unknown settings:
const unknownSettingValue = "unknown"
