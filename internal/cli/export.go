package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dcsim/rack-planner/internal/store"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

type ExportOptions struct{}

func NewCmdExport() *cobra.Command {
	o := &ExportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print every collection as a YAML seed document.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			return o.Run(cmd.Context(), cmd.OutOrStdout(), s)
		},
		SilenceUsage: true,
	}
	return cmd
}

func (o *ExportOptions) Run(ctx context.Context, out io.Writer, s store.Store) error {
	state, err := s.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("reading collections: %w", err)
	}
	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshalling collections: %w", err)
	}
	_, err = out.Write(data)
	return err
}
