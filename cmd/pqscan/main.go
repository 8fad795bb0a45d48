// Command pqscan is a small cobra CLI around internal/scanner: scan a
// Parquet file, project a set of top-level columns by name, optionally
// filter with one trivial "column op literal" conjunct, and print the
// materialized rows.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-kit/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/janplus/Impala/internal/column"
	"github.com/janplus/Impala/internal/conjunct"
	"github.com/janplus/Impala/internal/format"
	"github.com/janplus/Impala/internal/ioservice"
	"github.com/janplus/Impala/internal/schema"
	"github.com/janplus/Impala/internal/scanmetrics"
	"github.com/janplus/Impala/internal/scanner"
	"github.com/janplus/Impala/internal/valdecode"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pqscan:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pqscan",
		Short: "Scan a Parquet file's row groups column-by-column",
	}
	root.AddCommand(scanCmd())
	return root
}

func scanCmd() *cobra.Command {
	var columnsFlag string
	var whereFlag string
	var batchSize int
	var rowLimit int64
	var verbose bool

	cmd := &cobra.Command{
		Use:   "scan <file>",
		Short: "Project columns from a Parquet file, optionally filtered by one comparison",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.Context(), args[0], strings.Split(columnsFlag, ","), whereFlag, batchSize, rowLimit, verbose)
		},
	}
	cmd.Flags().StringVar(&columnsFlag, "columns", "", "comma-separated top-level column names to project (required)")
	cmd.Flags().StringVar(&whereFlag, "where", "", `optional "<column> <op> <literal>" conjunct, op one of < <= = >= > !=`)
	cmd.Flags().IntVar(&batchSize, "batch-size", 1024, "output batch size")
	cmd.Flags().Int64Var(&rowLimit, "limit", 0, "stop after this many rows (0 means no limit)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log row-group selection and skip decisions")
	_ = cmd.MarkFlagRequired("columns")
	return cmd
}

func runScan(ctx context.Context, path string, columnNames []string, where string, batchSize int, rowLimit int64, verbose bool) error {
	mgr := ioservice.NewFileManager(afero.NewOsFs())

	logger := log.NewNopLogger()
	if verbose {
		logger = log.NewLogfmtLogger(os.Stderr)
	}

	cfg, err := scanner.NewConfig(
		scanner.WithBatchSize(batchSize),
		scanner.WithLogger(logger),
		scanner.WithMetrics(scanmetrics.New(nil)),
	)
	if err != nil {
		return err
	}

	sc, err := scanner.Open(ctx, mgr, path, cfg)
	if err != nil {
		return errors.Wrap(err, "pqscan: opening file")
	}

	projection := make([]scanner.ColumnRequest, len(columnNames))
	for i, name := range columnNames {
		name = strings.TrimSpace(name)
		if name == "" {
			return errors.Newf("pqscan: empty column name in --columns")
		}
		projection[i] = scanner.ColumnRequest{
			Path:      []schema.Step{{Kind: schema.StepField, Name: name}},
			SlotIndex: i,
		}
	}

	if where != "" {
		cmp, err := parseWhere(where, columnNames)
		if err != nil {
			return err
		}
		cfg.Conjuncts = append(cfg.Conjuncts, cmp)
	}

	template := make(column.Row, len(columnNames))
	for i := range template {
		template[i] = column.Slot{Null: true}
	}

	sink := func(rows []column.Row) error {
		for _, row := range rows {
			printRow(row, columnNames)
		}
		return nil
	}

	split := scanner.SplitRange{Start: 0, End: 1 << 62}
	res, err := sc.Scan(ctx, split, projection, len(columnNames), template, sink, rowLimit)
	if err != nil {
		return errors.Wrap(err, "pqscan: scanning")
	}
	fmt.Fprintf(os.Stderr, "pqscan: %d rows emitted", res.RowsEmitted)
	if res.LimitReached {
		fmt.Fprint(os.Stderr, " (limit reached)")
	}
	fmt.Fprintln(os.Stderr)
	return nil
}

func printRow(row column.Row, names []string) {
	parts := make([]string, len(row))
	for i, slot := range row {
		if slot.Null {
			parts[i] = names[i] + "=NULL"
			continue
		}
		if slot.List != nil {
			parts[i] = fmt.Sprintf("%s=[%d elems]", names[i], len(slot.List))
			continue
		}
		parts[i] = names[i] + "=" + formatValue(slot.Value)
	}
	fmt.Println(strings.Join(parts, "\t"))
}

func formatValue(v valdecode.Value) string {
	if v.HasTime {
		return v.Time.Format("2006-01-02T15:04:05.999999999")
	}
	switch v.Type {
	case format.Boolean:
		return strconv.FormatBool(v.Bool)
	case format.Int32:
		return strconv.FormatInt(int64(v.Int32), 10)
	case format.Int64:
		return strconv.FormatInt(v.Int64, 10)
	case format.Float:
		return strconv.FormatFloat(float64(v.Float32), 'g', -1, 32)
	case format.Double:
		return strconv.FormatFloat(v.Float64, 'g', -1, 64)
	case format.ByteArray, format.FixedLenByteArray:
		return string(v.Bytes)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// parseWhere parses a deliberately minimal "<column> <op> <literal>"
// expression: exactly one comparison, no boolean composition, not a real
// predicate language. column must be one of the projected columns so its
// slot index is known; the literal's type comes from parseLiteral, which
// reads only the literal's spelling, not the column's physical type.
func parseWhere(expr string, columnNames []string) (conjunct.Compare, error) {
	fields := strings.Fields(expr)
	if len(fields) != 3 {
		return conjunct.Compare{}, errors.Newf("pqscan: --where must be \"<column> <op> <literal>\", got %q", expr)
	}
	colName, opStr, litStr := fields[0], fields[1], fields[2]

	slot := -1
	for i, n := range columnNames {
		if n == colName {
			slot = i
			break
		}
	}
	if slot < 0 {
		return conjunct.Compare{}, errors.Newf("pqscan: --where column %q is not in --columns", colName)
	}

	op, err := parseOp(opStr)
	if err != nil {
		return conjunct.Compare{}, err
	}

	return conjunct.Compare{Slot: slot, Op: op, Literal: parseLiteral(litStr)}, nil
}

func parseOp(s string) (conjunct.Op, error) {
	switch s {
	case "<":
		return conjunct.LT, nil
	case "<=":
		return conjunct.LE, nil
	case "=", "==":
		return conjunct.EQ, nil
	case ">=":
		return conjunct.GE, nil
	case ">":
		return conjunct.GT, nil
	case "!=", "<>":
		return conjunct.NE, nil
	default:
		return 0, errors.Newf("pqscan: unknown --where operator %q", s)
	}
}

// parseLiteral guesses a literal's physical type from its own spelling:
// an integer parses as Int64, a float as Double, anything else as a raw
// ByteArray. valdecode.Compare only ever compares like-typed values, so a
// literal that doesn't match its column's actual physical type surfaces as
// ErrIncomparableType at eval time rather than silently miscomparing.
func parseLiteral(s string) valdecode.Value {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return valdecode.Value{Type: format.Int64, Int64: i}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return valdecode.Value{Type: format.Double, Float64: f}
	}
	return valdecode.Value{Type: format.ByteArray, Bytes: []byte(s)}
}
