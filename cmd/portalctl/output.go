package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shirkaty/portal/internal/model"
	"github.com/shirkaty/portal/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

// formatPence renders an amount held in integer pence as pounds.
func formatPence(p int64) string {
	sign := ""
	if p < 0 {
		sign = "-"
		p = -p
	}
	return fmt.Sprintf("%s£%d.%02d", sign, p/100, p%100)
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func printTicketTable(tickets []*model.Ticket, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tSUBJECT\tCREATED")
	for _, tk := range tickets {
		subject := tk.Subject
		if len(subject) > 50 {
			subject = subject[:47] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			tk.ID,
			ui.RenderStatus(string(tk.Status)),
			ui.RenderPriority(string(tk.Priority)),
			subject,
			formatTime(tk.CreatedAt),
		)
	}
	w.Flush()
	fmt.Printf("\n%d tickets (%d total)\n", len(tickets), total)
}

func printTicket(tk *model.Ticket) {
	fmt.Printf("ID:          %s\n", tk.ID)
	fmt.Printf("Subject:     %s\n", tk.Subject)
	fmt.Printf("Status:      %s\n", ui.RenderStatus(string(tk.Status)))
	fmt.Printf("Priority:    %s\n", ui.RenderPriority(string(tk.Priority)))
	if tk.Category != "" {
		fmt.Printf("Category:    %s\n", tk.Category)
	}
	if tk.AssignedTo != "" {
		fmt.Printf("Assigned To: %s\n", tk.AssignedTo)
	}
	fmt.Printf("Created At:  %s\n", formatTime(tk.CreatedAt))
	fmt.Printf("Updated At:  %s\n", formatTime(tk.UpdatedAt))
	if tk.ResolvedAt != nil {
		fmt.Printf("Resolved At: %s\n", formatTime(*tk.ResolvedAt))
	}
	if tk.Description != "" {
		fmt.Printf("\n%s\n", tk.Description)
	}
}

func printMessages(messages []*model.Message) {
	for _, m := range messages {
		sender := m.SenderID
		if m.IsAdmin {
			sender = ui.RenderAccent("support")
		}
		fmt.Printf("%s %s\n", ui.RenderMuted(formatTime(m.CreatedAt)), sender)
		fmt.Printf("  %s\n\n", m.Body)
	}
}

func printNotificationTable(notifications []*model.Notification, unread int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTITLE\tREAD\tCREATED")
	for _, n := range notifications {
		read := "yes"
		if !n.Read {
			read = ui.RenderUnread("no")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", n.ID, n.Kind, n.Title, read, formatTime(n.CreatedAt))
	}
	w.Flush()
	if unread > 0 {
		fmt.Printf("\n%s unread\n", ui.RenderUnread(fmt.Sprint(unread)))
	}
}

func printCompany(c *model.Company) {
	fmt.Printf("ID:            %s\n", c.ID)
	fmt.Printf("Name:          %s\n", c.Name)
	if c.Number != "" {
		fmt.Printf("Number:        %s\n", c.Number)
	}
	fmt.Printf("Status:        %s\n", ui.RenderStatus(string(c.Status)))
	if c.IncorporatedAt != nil {
		fmt.Printf("Incorporated:  %s\n", c.IncorporatedAt.Format("2006-01-02"))
	}
	if c.Subscription != nil {
		s := c.Subscription
		fmt.Printf("Plan:          %s (%s/year, %s)\n", s.Plan, formatPence(s.Price), ui.RenderStatus(string(s.Status)))
		fmt.Printf("Renews:        %s\n", s.RenewalDate.Format("2006-01-02"))
	}
}

func printDocumentTable(documents []*model.Document) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTYPE\tNAME\tFILE\tCREATED")
	for _, d := range documents {
		file := "-"
		if d.FileKey != "" {
			file = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			d.ID, ui.RenderStatus(string(d.Status)), d.Type, d.Name, file, formatTime(d.CreatedAt))
	}
	w.Flush()
	fmt.Printf("\n%d documents\n", len(documents))
}

func printTransactionTable(transactions []*model.Transaction) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tREFERENCE\tTYPE\tSTATUS\tAMOUNT\tCREATED")
	for _, t := range transactions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Reference, t.Type, ui.RenderStatus(string(t.Status)), formatPence(t.Amount), formatTime(t.CreatedAt))
	}
	w.Flush()
	fmt.Printf("\n%d transactions\n", len(transactions))
}

func printTransaction(t *model.Transaction) {
	fmt.Printf("ID:           %s\n", t.ID)
	fmt.Printf("Reference:    %s\n", t.Reference)
	fmt.Printf("Type:         %s\n", t.Type)
	fmt.Printf("Status:       %s\n", ui.RenderStatus(string(t.Status)))
	fmt.Printf("Amount:       %s\n", formatPence(t.Amount))
	if t.Description != "" {
		fmt.Printf("Description:  %s\n", t.Description)
	}
	fmt.Printf("Created At:   %s\n", formatTime(t.CreatedAt))
	if t.CompletedAt != nil {
		fmt.Printf("Completed At: %s\n", formatTime(*t.CompletedAt))
	}
	if len(t.Updates) > 0 {
		fmt.Println("\nTimeline:")
		for _, u := range t.Updates {
			note := u.Note
			if note == "" {
				note = "status changed to " + string(u.Status)
			}
			fmt.Printf("  %s  %s\n", ui.RenderMuted(formatTime(u.CreatedAt)), note)
		}
	}
}

func printUserTable(users []*model.User, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Name, u.Role, formatTime(u.CreatedAt))
	}
	w.Flush()
	fmt.Printf("\n%d users (%d total)\n", len(users), total)
}
