package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"customer-manager/internal/controller"
	"customer-manager/internal/domain/customer"
)

const createdAtLayout = "2006-01-02 15:04"

// terminalView prints controller output as plain text tables.
type terminalView struct {
	out io.Writer
	// lists is false for mutating commands, which reload the list but
	// should only print their notification.
	lists bool
}

var _ controller.View = (*terminalView)(nil)

func (v *terminalView) RenderList(customers []*customer.Customer, filter customer.Filter) {
	if !v.lists {
		return
	}
	if len(customers) == 0 {
		if filter.IsAll() {
			fmt.Fprintln(v.out, "No customers found.")
		} else {
			fmt.Fprintf(v.out, "No customers with payment status %s.\n", filter)
		}
		return
	}

	tw := tabwriter.NewWriter(v.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tADDRESS\tPAYMENT STATUS\tCREATED")
	for _, c := range customers {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Address, c.PaymentStatus.OrDefault(), formatCreatedAt(c.CreatedAt))
	}
	tw.Flush()
}

func (v *terminalView) ShowDetail(c *customer.Customer) {
	tw := tabwriter.NewWriter(v.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", c.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", c.Name)
	fmt.Fprintf(tw, "Address:\t%s\n", c.Address)
	fmt.Fprintf(tw, "Payment status:\t%s\n", c.PaymentStatus.OrDefault())
	fmt.Fprintf(tw, "Created:\t%s\n", formatCreatedAt(c.CreatedAt))
	tw.Flush()
}

func (v *terminalView) OpenForm(form controller.Form) {
	fmt.Fprintf(v.out, "Editing customer %d (%s)\n", form.ID, form.Name)
}

func formatCreatedAt(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(createdAtLayout)
}

type terminalNotifier struct {
	out io.Writer
}

func (n terminalNotifier) Success(msg string) { fmt.Fprintf(n.out, "✓ %s\n", msg) }

func (n terminalNotifier) Error(msg string) { fmt.Fprintf(n.out, "✗ %s\n", msg) }

// promptConfirmer asks on out and reads one answer line from in. Anything but
// y or yes, including EOF, declines.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptConfirmer(in io.Reader, out io.Writer) promptConfirmer {
	return promptConfirmer{in: bufio.NewReader(in), out: out}
}

func (c promptConfirmer) Confirm(prompt string) bool {
	fmt.Fprintf(c.out, "%s [y/N]: ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(c.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

type assumeYes struct{}

func (assumeYes) Confirm(string) bool { return true }
