// Package console implements the hrc command line client. Every command
// drives a resource.Orchestrator, either against the API server or against
// an embedded in-memory database.
package console

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/config"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/entities"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/log"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/resource"
)

type app struct {
	cfg      *config.Config
	logger   *zap.SugaredLogger
	backend  *backend
	printer  *printer
	in       io.Reader
	embedded bool
	apiURL   string
	format   string
}

// NewRootCommand builds the command tree. out and in stand in for the
// terminal so tests can drive it.
func NewRootCommand(out io.Writer, in io.Reader) *cobra.Command {
	a := &app{in: in}

	root := &cobra.Command{
		Use:           "hrc",
		Short:         "Manage HR Central master data",
		Long:          `Browse and edit HR Central master data such as designations, skills and work shifts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, out)
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a.backend != nil {
				a.backend.close(cmd.Context())
			}
		},
	}
	root.SetOut(out)
	root.SetErr(out)
	root.SetIn(in)

	flags := root.PersistentFlags()
	flags.BoolVar(&a.embedded, "embedded", false, "Use a seeded in-memory database instead of the API server")
	flags.StringVar(&a.apiURL, "api-url", "", "API server base URL (default from HRC_API_BASE_URL)")
	flags.StringVarP(&a.format, "output", "o", FormatTable, "Output format (table, json)")

	root.AddCommand(
		a.kindsCommand(),
		a.listCommand(),
		a.getCommand(),
		a.createCommand(),
		a.updateCommand(),
		a.deleteCommand(),
		a.shellCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, out io.Writer) error {
	switch a.format {
	case FormatTable, FormatJSON:
	default:
		return fmt.Errorf("unknown output format %q", a.format)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.Client.APIBaseURL = a.apiURL
	}

	env := cfg.Env
	if env == "dev" {
		// Keep debug logs out of command output
		env = "test"
	}
	logger, err := log.NewSugar(env)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.backend = newBackend(cfg, a.embedded, logger)
	a.printer = &printer{out: out, format: a.format}
	return nil
}

func (a *app) kindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the kinds of records that can be managed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kinds := entities.All()
			rows := make([]resource.Record, len(kinds))
			for i, k := range kinds {
				rows[i] = resource.Record{"name": k.Name, "label": k.Label, "unique": k.UniqueField}
			}
			return a.printer.records([]string{"name", "label", "unique"}, rows)
		},
	}
}

func (a *app) listCommand() *cobra.Command {
	var (
		search  string
		filters []string
		sortBy  string
		desc    bool
	)
	cmd := &cobra.Command{
		Use:   "list KIND",
		Short: "List records with optional search, filters and sorting",
		Example: `  hrc list designations --search eng --filter department=engineering
  hrc list work-shifts --sort start_time --desc`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := lookupKind(args[0])
			if err != nil {
				return err
			}
			patch, err := parseAssignments(filters)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			orch, err := a.backend.orchestrator(ctx, kind, nil, false)
			if err != nil {
				return err
			}
			defer orch.Close()

			if err := failed(orch.LoadAll(ctx)); err != nil {
				return err
			}
			if search != "" {
				if err := failed(orch.Search(ctx, search)); err != nil {
					return err
				}
			}
			if len(patch) > 0 {
				orch.SetFilters(stringMap(patch))
			}
			if sortBy != "" {
				dir := resource.Asc
				if desc {
					dir = resource.Desc
				}
				orch.SetSort(sortBy, dir)
			}
			return a.printer.records(kind.Columns, orch.DisplayList())
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Free-text search term")
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "Exact match filter as field=value (repeatable)")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Field to sort by")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	return cmd
}

func (a *app) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get KIND ID",
		Short: "Show one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := lookupKind(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			orch, err := a.backend.orchestrator(ctx, kind, nil, false)
			if err != nil {
				return err
			}
			defer orch.Close()

			res := orch.LoadOne(ctx, args[1])
			if err := failed(res); err != nil {
				return err
			}
			return a.printer.record(kind.Columns, res.Data)
		},
	}
}

func (a *app) createCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "create KIND FIELD=VALUE...",
		Short:   "Create a record",
		Example: `  hrc create skills name=Rust category=Technical`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := lookupKind(args[0])
			if err != nil {
				return err
			}
			data, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			orch, err := a.backend.orchestrator(ctx, kind, nil, false)
			if err != nil {
				return err
			}
			defer orch.Close()

			// Load first so duplicates are caught before the request
			if err := failed(orch.LoadAll(ctx)); err != nil {
				return err
			}
			res := orch.Create(ctx, data)
			if err := failed(res); err != nil {
				return err
			}
			a.printer.message("Created %s %s", kind.Label, res.Data.ID())
			return a.printer.record(kind.Columns, res.Data)
		},
	}
}

func (a *app) updateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "update KIND ID FIELD=VALUE...",
		Short:   "Change fields of a record",
		Example: `  hrc update designations 3f1c... department=Finance`,
		Args:    cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := lookupKind(args[0])
			if err != nil {
				return err
			}
			patch, err := parseAssignments(args[2:])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			orch, err := a.backend.orchestrator(ctx, kind, nil, false)
			if err != nil {
				return err
			}
			defer orch.Close()

			if err := failed(orch.LoadAll(ctx)); err != nil {
				return err
			}
			current := orch.OpenEdit(ctx, resource.Record{resource.IDField: args[1]})
			if err := failed(current); err != nil {
				return err
			}
			res := orch.Update(ctx, args[1], patch)
			if err := failed(res); err != nil {
				return err
			}
			a.printer.message("Updated %s %s", kind.Label, args[1])
			return a.printer.record(kind.Columns, res.Data)
		},
	}
}

func (a *app) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete KIND ID",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := lookupKind(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			orch, err := a.backend.orchestrator(ctx, kind, nil, false)
			if err != nil {
				return err
			}
			defer orch.Close()

			if err := failed(orch.Delete(ctx, args[1])); err != nil {
				return err
			}
			a.printer.message("Deleted %s %s", kind.Label, args[1])
			return nil
		},
	}
}

// parseAssignments reads field=value pairs. A bare "field=" clears the field.
func parseAssignments(args []string) (resource.Record, error) {
	out := resource.Record{}
	for _, arg := range args {
		field, value, ok := strings.Cut(arg, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("expected field=value, got %q", arg)
		}
		out[field] = value
	}
	return out, nil
}

func stringMap(r resource.Record) map[string]string {
	out := make(map[string]string, len(r))
	for k, v := range r {
		out[k] = resource.StringOf(v)
	}
	return out
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context, root *cobra.Command) error {
	return root.ExecuteContext(ctx)
}
