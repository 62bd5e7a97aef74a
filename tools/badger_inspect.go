package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

// Quick CLI to eyeball the store contents without starting the engine.
// Usage: go run tools/badger_inspect.go -db ./data -prefix product:
func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	prefix := flag.String("prefix", "product:", "Prefix to scan (product:, order:, user:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(v []byte) error {
				table.Append([]string{key, recordType(key), summarize(key, v)})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Scan failed: ", err)
	}

	table.Render()
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)
	return badger.Open(opts)
}

func recordType(key string) string {
	switch {
	case strings.HasPrefix(key, "product-name:"):
		return "NAME-IDX"
	case strings.HasPrefix(key, "product:"):
		return "PRODUCT"
	case strings.HasPrefix(key, "user-order:"):
		return "ORDER-IDX"
	case strings.HasPrefix(key, "order:"):
		return "ORDER"
	case strings.HasPrefix(key, "user-id:"):
		return "USER-IDX"
	case strings.HasPrefix(key, "user:"):
		return "USER"
	}
	return "UNKNOWN"
}

// summarize pulls a few readable fields out of the stored JSON. Index
// entries hold raw values, not records, so they are printed as-is.
func summarize(key string, value []byte) string {
	var record map[string]any
	if err := json.Unmarshal(value, &record); err != nil {
		return string(value)
	}

	switch recordType(key) {
	case "PRODUCT":
		return fmt.Sprintf("%v (price=%v stock=%v)", record["name"], record["price"], record["stock"])
	case "ORDER":
		return fmt.Sprintf("user=%v total=%v status=%v", record["user_id"], record["total"], record["status"])
	case "USER":
		return fmt.Sprintf("%v roles=%v active=%v", record["email"], record["roles"], record["is_active"])
	}
	return string(value)
}
