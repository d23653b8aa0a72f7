package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

// Offline dump of a chat database. Run it against a stopped server's
// badger directory to see stored messages, users or groups.
func main() {
	dbPath := flag.String("db", "/tmp/group-chat/badger", "Path to badger DB")
	prefix := flag.String("prefix", "msg:", "Prefix to scan (msg:, user:, group:, gcode:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	color.New(color.BgBlack, color.FgGreen).Printf("  ====== %s @ %s ======\n", *prefix, *dbPath)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Group", "Time", "User", "Content"})
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
			rawKey := string(item.Key())

			err := item.Value(func(v []byte) error {
				if strings.HasPrefix(rawKey, "msg:") {
					var stored struct {
						UserID   string `json:"user_id"`
						Username string `json:"username"`
						GroupID  string `json:"group_id"`
						Content  string `json:"content"`
						At       int64  `json:"at"`
					}
					if err := json.Unmarshal(v, &stored); err != nil {
						fmt.Printf("Error unmarshaling key %s: %v\n", rawKey, err)
						return nil
					}

					displayGroup := stored.GroupID
					if len(displayGroup) > 8 {
						displayGroup = displayGroup[:8]
					}

					table.Append([]string{
						rawKey,
						displayGroup,
						time.Unix(0, stored.At).Format("15:04:05"),
						stored.Username,
						stored.Content,
					})
					return nil
				}

				// Non-message namespaces are stored as plain JSON documents.
				table.Append([]string{rawKey, "-", "-", "-", string(v)})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	return badger.Open(opts)
}
