package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GreatAuk/webupdate/internal/artifact"
	logx "github.com/GreatAuk/webupdate/pkg/logx"
)

func initStampCmd() {
	var (
		dir     string
		mode    string
		version string
		level   string
	)

	cmd := &cobra.Command{
		Use:   "stamp",
		Short: "Write the version manifest into the build output",
		Long: "Resolves the current build's version (git short hash, package version " +
			"from the environment, or a timestamp) and writes it to " +
			artifact.DirName + "/" + artifact.FileName + " under the output directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logx.NewConsole(level)

			v := strings.TrimSpace(version)
			if v == "" {
				v = artifact.ResolveVersion(artifact.VersionMode(mode), log)
			}

			if err := artifact.Write(dir, artifact.Manifest{Version: v}); err != nil {
				return fmt.Errorf("stamp: %w", err)
			}
			log.Info("version manifest written",
				logx.String("dir", dir), logx.String("version", v))
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "./dist", "build output directory")
	cmd.Flags().StringVarP(&mode, "mode", "m", string(artifact.VersionGit),
		"version source: git, pkg, or time")
	cmd.Flags().StringVar(&version, "version", "", "explicit version string (overrides --mode)")
	cmd.Flags().StringVar(&level, "log-level", "info", "log level")

	rootCmd.AddCommand(cmd)
}
