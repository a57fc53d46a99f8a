// Command export-orders dumps the order book to CSV files for the kitchen
// crew. By default it writes a single gzip-compressed file; with -split it
// writes one file per delivery postal code, which matches how delivery runs
// are planned.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/tamilyouth/preorder-api/internal/domain/order"
	"github.com/tamilyouth/preorder-api/internal/export"
	"github.com/tamilyouth/preorder-api/internal/storage/postgres"
)

func main() {
	var (
		databaseURL string
		outDir      string
		split       bool
		compress    bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&outDir, "out", ".", "output directory")
	flag.BoolVar(&split, "split", false, "write one file per delivery postal code")
	flag.BoolVar(&compress, "gzip", true, "gzip-compress the output files")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, outDir, split, compress); err != nil {
		slog.Error("export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("export completed successfully")
}

func run(ctx context.Context, databaseURL, outDir string, split, compress bool) error {
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	orders, err := postgres.NewOrderRepository(pool).List(ctx)
	if err != nil {
		return errors.Wrap(err, "list orders")
	}

	slog.Info("orders loaded", slog.Int("count", len(orders)))

	if !split {
		return writeFile(filepath.Join(outDir, fileName("bestellungen", compress)), orders, compress)
	}

	groups := order.GroupByPostalCode(orders)
	if len(groups) == 0 {
		slog.Info("no delivery orders to export")
		return nil
	}

	g, _ := errgroup.WithContext(ctx)
	for code, grouped := range groups {
		name := filepath.Join(outDir, fileName("bestellungen_plz_"+code, compress))
		g.Go(func() error {
			if err := writeFile(name, grouped, compress); err != nil {
				return errors.Wrapf(err, "postal code %s", code)
			}
			slog.Info("group written", slog.String("postal_code", code), slog.Int("orders", len(grouped)))
			return nil
		})
	}
	return g.Wait()
}

func fileName(base string, compress bool) string {
	if compress {
		return base + ".csv.gz"
	}
	return base + ".csv"
}

func writeFile(path string, orders []order.Order, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create file")
	}
	defer f.Close()

	var out io.Writer = f
	var gz *pgzip.Writer
	if compress {
		gz = pgzip.NewWriter(f)
		out = gz
	}

	if err := export.WriteCSV(out, orders); err != nil {
		return errors.Wrap(err, "write csv")
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return errors.Wrap(err, "close gzip stream")
		}
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close file")
	}
	fmt.Println(path)
	return nil
}
