package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/akdemia/akdemia/modules"
	"github.com/akdemia/akdemia/modules/importer/domain/importsession"
	"github.com/akdemia/akdemia/modules/importer/infrastructure/persistence"
	importerservices "github.com/akdemia/akdemia/modules/importer/services"
	"github.com/akdemia/akdemia/pkg/application"
	"github.com/akdemia/akdemia/pkg/composables"
	"github.com/akdemia/akdemia/pkg/configuration"
	"github.com/akdemia/akdemia/pkg/eventbus"
	"github.com/akdemia/akdemia/pkg/schema"
)

type importOptions struct {
	target    string
	file      string
	sheet     string
	rangeExpr string
	mapping   []string
	apply     bool
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import entities from a spreadsheet range",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.target, "target", "", "Target entity, e.g. curriculum.subject (required)")
	cmd.Flags().StringVar(&opts.file, "file", "", "Path to the .xlsx workbook (required)")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "Sheet name (required)")
	cmd.Flags().StringVar(&opts.rangeExpr, "range", "", "Cell range including the header row, e.g. A1:F200 (required)")
	cmd.Flags().StringSliceVar(&opts.mapping, "map", nil, "Column mapping field=column, repeatable (e.g. code=0,name=1)")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "Persist the rows; without it the command previews and validates only")

	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("sheet")
	_ = cmd.MarkFlagRequired("range")

	return cmd
}

func newTargetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List entities authorized for import",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, app, _, cleanup, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			for _, id := range app.ImportTargets().IDs() {
				fmt.Println(id)
			}
			return nil
		},
	}
}

func runImport(ctx context.Context, opts importOptions) error {
	mapping, err := parseMapping(opts.mapping)
	if err != nil {
		return withCode(exitUsage, err)
	}

	svc, _, ctx, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	loaded, err := svc.Load(ctx, opts.target, opts.file, opts.sheet, opts.rangeExpr)
	if err != nil {
		return classify(err)
	}
	if len(mapping) == 0 {
		return withCode(exitUsage, fmt.Errorf("--map is required; headers found: %s",
			strings.Join(loaded.Headers, ", ")))
	}

	if !opts.apply {
		return dryRun(ctx, svc, opts.target, loaded, mapping)
	}

	report, err := svc.Commit(ctx, loaded.Token, mapping)
	if err != nil {
		return classify(err)
	}

	for _, row := range report {
		if err := writeJSONLine(row); err != nil {
			return err
		}
	}
	imported, skipped, failed := report.Counts()
	if err := writeJSONLine(map[string]int{
		"imported": imported,
		"skipped":  skipped,
		"failed":   failed,
	}); err != nil {
		return err
	}
	if failed > 0 {
		return withCode(exitValidation, fmt.Errorf("%d row(s) failed", failed))
	}
	return nil
}

// dryRun validates the mapping against the target's required fields and
// prints a preview without persisting anything. The staged session is
// discarded afterwards.
func dryRun(
	ctx context.Context,
	svc *importerservices.ImportService,
	targetID string,
	loaded *importerservices.LoadResult,
	mapping importsession.Mapping,
) error {
	fields, err := svc.Fields(targetID)
	if err != nil {
		return classify(err)
	}

	var missing []string
	for _, field := range fields {
		if !field.Required {
			continue
		}
		if _, ok := mapping[field.Name]; !ok {
			missing = append(missing, field.Name)
		}
	}

	if cancelErr := svc.Cancel(ctx, loaded.Token); cancelErr != nil {
		return classify(cancelErr)
	}

	if err := writeJSONLine(map[string]any{
		"headers":   loaded.Headers,
		"row_count": loaded.RowCount,
		"sample":    loaded.SampleRows,
	}); err != nil {
		return err
	}
	if len(missing) > 0 {
		return withCode(exitUsage, fmt.Errorf("mapping is missing required field(s): %s",
			strings.Join(missing, ", ")))
	}
	return writeJSONLine(map[string]string{
		"status": "dry-run ok, re-run with --apply to import",
	})
}

// setup assembles a single-process application: database pool, modules and
// an in-memory session store. The returned context carries the pool so the
// per-row transactions can begin.
func setup(ctx context.Context) (*importerservices.ImportService, application.Application, context.Context, func(), error) {
	conf := configuration.Use()

	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return nil, nil, nil, nil, withCode(exitDB, fmt.Errorf("connect: %w", err))
	}
	cleanup := func() {
		pool.Close()
		conf.Unload()
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(conf.Logger()),
		Logger:   conf.Logger(),
	})
	if err := modules.Load(app); err != nil {
		cleanup()
		return nil, nil, nil, nil, withCode(exitDB, err)
	}

	resolver := importerservices.NewRelationResolver(app.ImportTargets(), conf.Import.FuzzyThreshold)
	committer := importerservices.NewBatchCommitter(
		importerservices.NewFieldCoercer(resolver),
		importerservices.NewDuplicateDetector(),
	)
	svc := importerservices.NewImportService(
		app.ImportTargets(),
		persistence.NewMemorySessionRepository(),
		committer,
		app.EventPublisher(),
		conf.Import,
	)
	return svc, app, composables.WithPool(ctx, pool), cleanup, nil
}

func parseMapping(pairs []string) (importsession.Mapping, error) {
	mapping := importsession.Mapping{}
	for _, pair := range pairs {
		field, col, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --map entry %q (want field=column)", pair)
		}
		idx, err := strconv.Atoi(strings.TrimSpace(col))
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("invalid column index in --map entry %q", pair)
		}
		mapping[strings.TrimSpace(field)] = idx
	}
	return mapping, nil
}

func classify(err error) error {
	switch {
	case is(err, schema.ErrTargetNotAuthorized):
		return withCode(exitUsage, err)
	case is(err, schema.ErrUnavailable):
		return withCode(exitDB, err)
	default:
		var incomplete *importsession.MappingIncompleteError
		if as(err, &incomplete) {
			return withCode(exitUsage, err)
		}
		return withCode(exitValidation, err)
	}
}
