package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type DeleteOptions struct {
	GlobalOptions
}

func DefaultDeleteOptions() *DeleteOptions {
	return &DeleteOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdDelete() *cobra.Command {
	o := DefaultDeleteOptions()
	cmd := &cobra.Command{
		Use:   "delete TYPE/KEY",
		Short: "Delete a resource.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), cmd.OutOrStdout(), args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *DeleteOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}

	_, key, err := parseAndValidateKindKey(args[0])
	if err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("a key is required, e.g. server/web-1")
	}
	return nil
}

func (o *DeleteOptions) Run(ctx context.Context, out io.Writer, args []string) error {
	kind, key, err := parseAndValidateKindKey(args[0])
	if err != nil {
		return err
	}

	if err := o.Client().Delete(ctx, plural(kind), key); err != nil {
		return fmt.Errorf("deleting %s/%s: %w", kind, key, err)
	}
	fmt.Fprintf(out, "%s/%s deleted\n", kind, key)
	return nil
}
