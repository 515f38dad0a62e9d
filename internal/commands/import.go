package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"bizdash/internal/core"
	applog "bizdash/internal/log"
	"bizdash/internal/storage"
)

// importFile is the document layout accepted by `bizdash import`. Each
// collection holds raw documents as exported from the original store.
type importFile struct {
	Services     []core.Record `json:"services"`
	Transactions []core.Record `json:"transactions"`
	Expenses     []core.Record `json:"expenses"`
}

type importCounts struct {
	Services     int
	Skipped      int
	Transactions int
	Expenses     int
}

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Load services, transactions and expenses into the SQLite database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(applog.ComponentStorage)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer f.Close()

			doc, err := decodeImport(f)
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, cfg.Location())
			if err != nil {
				return err
			}
			defer repo.Close()

			counts, err := runImport(cmd.Context(), repo, doc)
			if err != nil {
				return err
			}
			logger.Info("Import finished",
				"db_path", cfg.SQLiteDBPath,
				"services", counts.Services,
				"skipped_services", counts.Skipped,
				"transactions", counts.Transactions,
				"expenses", counts.Expenses)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d services (%d skipped), %d transactions, %d expenses\n",
				counts.Services, counts.Skipped, counts.Transactions, counts.Expenses)
			return nil
		},
	}
}

func decodeImport(r io.Reader) (importFile, error) {
	var doc importFile
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return doc, err
	}
	return doc, nil
}

// runImport writes the documents through the repository. Services that
// fail validation are skipped; transactions and expenses are stored as-is
// and coerced on read.
func runImport(ctx context.Context, repo *storage.SQLiteRepository, doc importFile) (importCounts, error) {
	var counts importCounts

	for _, r := range doc.Services {
		svc := core.ServiceFromRecord("", r)
		if err := svc.Validate(); err != nil {
			counts.Skipped++
			continue
		}
		if _, err := repo.CreateService(ctx, svc); err != nil {
			return counts, err
		}
		counts.Services++
	}

	n, err := repo.ImportTransactions(ctx, doc.Transactions)
	if err != nil {
		return counts, err
	}
	counts.Transactions = n

	n, err = repo.ImportExpenses(ctx, doc.Expenses)
	if err != nil {
		return counts, err
	}
	counts.Expenses = n
	return counts, nil
}
