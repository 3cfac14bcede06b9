package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dcsim/rack-planner/internal/store/model"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thoas/go-funk"
	"sigs.k8s.io/yaml"
)

const (
	jsonFormat = "json"
	yamlFormat = "yaml"
)

var (
	legalOutputTypes = []string{jsonFormat, yamlFormat}
)

type GetOptions struct {
	GlobalOptions

	Output string
}

func DefaultGetOptions() *GetOptions {
	return &GetOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdGet() *cobra.Command {
	o := DefaultGetOptions()
	cmd := &cobra.Command{
		Use:   "get (TYPE | TYPE/KEY)",
		Short: "Display one or many resources.",
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

func (o *GetOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(legalOutputTypes, ", ")))
}

func (o *GetOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}

	if _, _, err := parseAndValidateKindKey(args[0]); err != nil {
		return err
	}
	if len(o.Output) > 0 && !funk.Contains(legalOutputTypes, o.Output) {
		return fmt.Errorf("output format must be one of %s", strings.Join(legalOutputTypes, ", "))
	}
	return nil
}

func (o *GetOptions) Run(ctx context.Context, out io.Writer, args []string) error {
	kind, key, err := parseAndValidateKindKey(args[0])
	if err != nil {
		return err
	}

	c := o.Client()

	var records []json.RawMessage
	if key == "" {
		records, err = c.List(ctx, plural(kind))
		if err != nil {
			return fmt.Errorf("listing %s: %w", plural(kind), err)
		}
	} else {
		record, err := c.Get(ctx, plural(kind), key)
		if err != nil {
			return fmt.Errorf("reading %s/%s: %w", kind, key, err)
		}
		records = []json.RawMessage{record}
	}

	return printRecords(out, o.Output, kind, key != "", records)
}

func printRecords(out io.Writer, format string, kind string, single bool, records []json.RawMessage) error {
	var v any = records
	if single {
		v = records[0]
	}

	switch format {
	case jsonFormat:
		marshalled, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling resource: %w", err)
		}
		fmt.Fprintf(out, "%s\n", string(marshalled))
		return nil
	case yamlFormat:
		marshalled, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshalling resource: %w", err)
		}
		y, err := yaml.JSONToYAML(marshalled)
		if err != nil {
			return fmt.Errorf("marshalling resource: %w", err)
		}
		fmt.Fprintf(out, "%s", string(y))
		return nil
	default:
		return printTable(out, kind, records)
	}
}

func printTable(out io.Writer, kind string, records []json.RawMessage) error {
	w := tabwriter.NewWriter(out, 0, 8, 1, '\t', 0)
	var err error
	switch kind {
	case UserKind:
		err = printUsersTable(w, records)
	case WorkspaceKind:
		err = printWorkspacesTable(w, records)
	case RackKind:
		err = printRacksTable(w, records)
	case ServerKind:
		err = printServersTable(w, records)
	case ComponentKind:
		err = printComponentsTable(w, records)
	case NetworkKind:
		err = printNetworksTable(w, records)
	default:
		return fmt.Errorf("unknown resource type %s", kind)
	}
	if err != nil {
		return err
	}
	return w.Flush()
}

func decodeAll[T any](records []json.RawMessage) ([]T, error) {
	items := make([]T, 0, len(records))
	for _, r := range records {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			return nil, fmt.Errorf("decoding resource: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

func printUsersTable(w io.Writer, records []json.RawMessage) error {
	users, err := decodeAll[model.User](records)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "USERNAME")
	for _, u := range users {
		fmt.Fprintf(w, "%s\n", u.Username)
	}
	return nil
}

func printWorkspacesTable(w io.Writer, records []json.RawMessage) error {
	workspaces, err := decodeAll[model.Workspace](records)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "NAME\tNETWORK\tRACKS")
	for _, ws := range workspaces {
		fmt.Fprintf(w, "%s\t%s\t%d\n", ws.Name, ws.Network, len(ws.Racks))
	}
	return nil
}

func printRacksTable(w io.Writer, records []json.RawMessage) error {
	racks, err := decodeAll[model.Rack](records)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "ID\tNAME\tWORKSPACE\tUNITS\tUSED\tTOTAL COST\tHEALTH\tPOWER")
	for _, r := range racks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.2f\t%s\t%s\n",
			r.ID, r.Name, r.WorkspaceName, r.Units, r.UsedUnits(), r.TotalCost, r.HealthStatus, r.PowerStatus)
	}
	return nil
}

func printServersTable(w io.Writer, records []json.RawMessage) error {
	servers, err := decodeAll[model.Server](records)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "NAME\tNETWORK\tRACK\tOS\tCOMPONENTS\tPRICE\tMAINTENANCE\tHEALTH")
	for _, s := range servers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.2f\t%.2f\t%s\n",
			s.Name, s.Network, s.RackName, s.OperatingSystem, len(s.Components), s.TotalPrice, s.TotalMaintenanceCost, s.HealthStatus)
	}
	return nil
}

func printComponentsTable(w io.Writer, records []json.RawMessage) error {
	components, err := decodeAll[model.Component](records)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "NAME\tTYPE\tPRICE\tMAINTENANCE\tCOMPATIBLE")
	for _, c := range components {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%s\n",
			c.Name, c.Type, c.Price, c.MaintenanceCost, strings.Join(c.CompatibleList, ","))
	}
	return nil
}

func printNetworksTable(w io.Writer, records []json.RawMessage) error {
	networks, err := decodeAll[model.Network](records)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "NAME\tIP ADDRESS\tSUBNET MASK\tGATEWAY")
	for _, n := range networks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.Name, n.IPAddress, n.SubnetMask, n.Gateway)
	}
	return nil
}
