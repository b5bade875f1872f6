package main

import (
	"chat-relay/domain"
	"chat-relay/storage"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/olekukonko/tablewriter"
)

// history_inspect prints the message history a client keeps in its data dir.
func main() {
	dir := flag.String("dir", ".chat", "Client data directory")
	flag.Parse()

	store, err := storage.NewLocalStore(*dir)
	if err != nil {
		log.Fatal("Error while opening store: ", err)
	}
	messages, err := storage.NewHistoryStore(store).Load()
	if err != nil {
		log.Fatal(err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Sent at", "Sender", "Read", "Status", "Text"})
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

	for _, m := range messages {
		status := string(m.Status)
		if status == "" {
			status = string(domain.StatusSent)
		}
		table.Append([]string{
			m.ID.String(),
			domain.TimeOf(m.ID).Format("2006-01-02 15:04:05"),
			m.Sender.String(),
			fmt.Sprint(m.Read),
			status,
			m.Text,
		})
	}
	table.Render()
}
