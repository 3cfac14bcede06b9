package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dcsim/rack-planner/internal/config"
	"github.com/dcsim/rack-planner/internal/store"
	"github.com/dcsim/rack-planner/internal/store/model"
	"github.com/dcsim/rack-planner/internal/validator"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"sigs.k8s.io/yaml"
)

type SeedOptions struct {
	File           string
	SkipValidation bool
}

func DefaultSeedOptions() *SeedOptions {
	return &SeedOptions{}
}

func NewCmdSeed() *cobra.Command {
	o := DefaultSeedOptions()
	cmd := &cobra.Command{
		Use:   "seed --file FILE",
		Short: "Replace every collection with the content of a YAML or JSON seed file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(args); err != nil {
				return err
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			return o.Run(cmd.Context(), cmd.OutOrStdout(), s)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *SeedOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.File, "file", "f", o.File, "Path to the seed file")
	fs.BoolVar(&o.SkipValidation, "skip-validation", o.SkipValidation, "Write the records without checking their shape")
}

func (o *SeedOptions) Validate(args []string) error {
	if o.File == "" {
		return fmt.Errorf("--file is required")
	}
	return nil
}

func (o *SeedOptions) Run(ctx context.Context, out io.Writer, s store.Store) error {
	state, err := LoadState(o.File)
	if err != nil {
		return err
	}
	if !o.SkipValidation {
		if err := ValidateState(state); err != nil {
			return err
		}
	}
	if err := s.Seed(ctx, state); err != nil {
		return fmt.Errorf("seeding collections: %w", err)
	}
	fmt.Fprintf(out, "seeded %d users, %d workspaces, %d racks, %d servers, %d components, %d networks\n",
		len(state.Users), len(state.Workspaces), len(state.Racks), len(state.Servers), len(state.Components), len(state.Networks))
	return nil
}

// LoadState reads a seed file. JSON is accepted since it is a subset of YAML.
func LoadState(path string) (model.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.State{}, fmt.Errorf("reading seed file: %w", err)
	}
	var state model.State
	if err := yaml.Unmarshal(data, &state); err != nil {
		return model.State{}, fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	return state, nil
}

// ValidateState checks the shape of every record and reports the first offending one.
func ValidateState(state model.State) error {
	v := validator.NewInventoryValidator()
	check := func(collection string, i int, record any) error {
		if err := v.Struct(record); err != nil {
			return fmt.Errorf("%s[%d]: %w", collection, i, err)
		}
		return nil
	}

	for i, r := range state.Users {
		if err := check("users", i, r); err != nil {
			return err
		}
	}
	for i, r := range state.Workspaces {
		if err := check("workspaces", i, r); err != nil {
			return err
		}
	}
	for i, r := range state.Racks {
		if err := check("racks", i, r); err != nil {
			return err
		}
	}
	for i, r := range state.Servers {
		if err := check("servers", i, r); err != nil {
			return err
		}
	}
	for i, r := range state.Components {
		if err := check("components", i, r); err != nil {
			return err
		}
	}
	for i, r := range state.Networks {
		if err := check("networks", i, r); err != nil {
			return err
		}
	}
	return nil
}

func openStore() (store.Store, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}
	db, err := store.InitStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing data store: %w", err)
	}
	return store.NewStore(db), nil
}
