package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Barlow1/hoots-sub000/internal/common/logger"
)

const app = "hootsctl"

type rootOptions struct {
	debug  bool
	json   bool
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:           app,
		Short:         "hootsctl runs the Hoots matching rules locally and inspects worker configuration",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			level := "info"
			if opts.debug {
				level = "debug"
			}
			format := "console"
			if opts.json {
				format = "json"
			}
			opts.logger = logger.New(level, format)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "verbose/debug output")
	cmd.PersistentFlags().BoolVarP(&opts.json, "json", "j", false, "json format for logging")

	cmd.AddCommand(
		newMatchCmd(opts),
		newProgressCmd(opts),
		newConfigCmd(opts),
		newRegistryCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// readJSON decodes a file into v. "-" reads from in.
func readJSON(path string, in io.Reader, v interface{}) error {
	var r io.Reader
	if path == "-" {
		r = in
	} else {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
