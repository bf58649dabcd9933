package main

import (
	"artist-hub/domain"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

const maxValueWidth = 80

func newTable(out io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
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
	return table
}

func renderProjects(out io.Writer, projects []domain.Project) {
	table := newTable(out, "ID", "Name", "Service", "Status", "Updated", "Deadline", "Messages")
	for _, project := range projects {
		deadline := "-"
		if project.Timeline.Deadline != nil {
			deadline = project.Timeline.Deadline.Local().Format(time.DateOnly)
		}
		table.Append([]string{
			project.ID,
			project.Name,
			string(project.ServiceType),
			string(project.Status),
			project.Timeline.Updated.Local().Format(time.DateTime),
			deadline,
			strconv.Itoa(len(project.Messages)),
		})
	}
	table.Render()
}

// renderConversations lists counterparties, most recent conversation first.
func renderConversations(out io.Writer, conversations domain.Conversations) {
	counterparties := lo.Keys(conversations)
	slices.SortFunc(counterparties, func(a, b domain.UserID) int {
		return last(conversations[b]).Timestamp.Compare(last(conversations[a]).Timestamp)
	})

	table := newTable(out, "With", "Messages", "Last", "At")
	for _, counterparty := range counterparties {
		message := last(conversations[counterparty])
		table.Append([]string{
			counterparty.String(),
			strconv.Itoa(len(conversations[counterparty])),
			truncate(message.Body),
			message.Timestamp.Local().Format(time.DateTime),
		})
	}
	table.Render()
}

func renderPlans(out io.Writer, plans []domain.Plan) {
	table := newTable(out, "Service", "Plan", "Name", "Cost")
	for _, plan := range plans {
		table.Append([]string{string(plan.Service), plan.ID, plan.Name, strconv.Itoa(plan.Cost)})
	}
	table.Render()
}

func renderTransactions(out io.Writer, history []domain.CreditTransaction) {
	table := newTable(out, "Date", "Type", "Amount", "Description")
	for _, tx := range history {
		table.Append([]string{
			tx.Date.Local().Format(time.DateTime),
			string(tx.Type),
			strconv.Itoa(tx.Amount),
			tx.Description,
		})
	}
	table.Render()
}

// renderKeys dumps the raw records stored under prefix in the local backend.
func renderKeys(out io.Writer, db *badger.DB, prefix string) error {
	table := newTable(out, "Key", "Size", "Value")
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				fmt.Fprintf(out, "Error reading key %s: %v\n", item.Key(), err)
				continue
			}
			table.Append([]string{string(item.KeyCopy(nil)), strconv.Itoa(len(value)), truncate(string(value))})
		}
		return nil
	})
	if err != nil {
		return err
	}
	table.Render()
	return nil
}

func last(messages []domain.Message) domain.Message {
	if len(messages) == 0 {
		return domain.Message{}
	}
	return messages[len(messages)-1]
}

func truncate(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	runes := []rune(text)
	if len(runes) <= maxValueWidth {
		return text
	}
	return string(runes[:maxValueWidth-1]) + "…"
}
