package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Barlow1/hoots-sub000/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func newRegistryCmd(_ *rootOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect and maintain the activity registry",
	}
	cmd.PersistentFlags().StringVar(&path, "path", defaultRegistryPath, "path to the registry file")

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered activities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TASK TYPE\tCATEGORY\tSTATUS\tTIMEOUT\tRETRIES")
			for _, a := range reg.Activities {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", a.TaskType, a.Category, a.ImplementationStatus, a.Timeout, a.Retries)
			}
			return w.Flush()
		},
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check the registry for duplicates, bad timeouts and unknown error codes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			if err := reg.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registry OK: %d activities\n", len(reg.Activities))
			return nil
		},
	}

	setStatus := &cobra.Command{
		Use:   "set-status <task-type> <status>",
		Short: "Update an activity's implementation status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			a, ok := reg.Find(args[0])
			if !ok {
				return fmt.Errorf("activity %s not found", args[0])
			}
			a.ImplementationStatus = args[1]
			if err := reg.Validate(); err != nil {
				return err
			}
			if err := registry.SaveRegistry(path, reg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], args[1])
			return nil
		},
	}

	cmd.AddCommand(list, validate, setStatus)
	return cmd
}
