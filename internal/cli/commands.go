package cli

import (
	"strings"

	"customer-manager/internal/controller"
	"customer-manager/internal/domain/customer"

	"github.com/spf13/cobra"
)

func newListCommand(opts *options) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List customers, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := customer.ParseFilter(status)
			if err != nil {
				return err
			}
			view := &terminalView{out: opts.out, lists: true}
			return opts.run(view, assumeYes{}, func(ctrl *controller.Controller) error {
				return ctrl.SetFilter(cmd.Context(), filter)
			})
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", string(customer.FilterAll), "Payment status filter: All, None, Partial or Full")
	return cmd
}

func newShowCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCustomerID(args[0])
			if err != nil {
				return err
			}
			view := &terminalView{out: opts.out}
			return opts.run(view, assumeYes{}, func(ctrl *controller.Controller) error {
				return ctrl.ViewDetail(cmd.Context(), id)
			})
		},
	}
}

func newAddCommand(opts *options) *cobra.Command {
	var form controller.Form
	var status string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form.PaymentStatus = customer.PaymentStatus(strings.TrimSpace(status))
			view := &terminalView{out: opts.out}
			return opts.run(view, assumeYes{}, func(ctrl *controller.Controller) error {
				return ctrl.Submit(cmd.Context(), form)
			})
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "Customer name (required)")
	cmd.Flags().StringVar(&form.Address, "address", "", "Customer address (required)")
	cmd.Flags().StringVar(&status, "status", string(customer.PaymentNone), "Payment status: None, Partial or Full")
	return cmd
}

func newEditCommand(opts *options) *cobra.Command {
	var name, address, status string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace a customer's name, address or payment status",
		Long: "Loads the customer, applies the given flags on top of its current values " +
			"and saves the result as a full replacement.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCustomerID(args[0])
			if err != nil {
				return err
			}
			view := &terminalView{out: opts.out}
			return opts.run(view, assumeYes{}, func(ctrl *controller.Controller) error {
				form, err := ctrl.Edit(cmd.Context(), id)
				if err != nil {
					return err
				}
				flags := cmd.Flags()
				if flags.Changed("name") {
					form.Name = name
				}
				if flags.Changed("address") {
					form.Address = address
				}
				if flags.Changed("status") {
					form.PaymentStatus = customer.PaymentStatus(strings.TrimSpace(status))
				}
				return ctrl.Submit(cmd.Context(), form)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New customer name")
	cmd.Flags().StringVar(&address, "address", "", "New customer address")
	cmd.Flags().StringVar(&status, "status", "", "New payment status: None, Partial or Full")
	return cmd
}

func newDeleteCommand(opts *options) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Permanently delete a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCustomerID(args[0])
			if err != nil {
				return err
			}
			var confirmer controller.Confirmer = newPromptConfirmer(opts.in, opts.out)
			if yes {
				confirmer = assumeYes{}
			}
			view := &terminalView{out: opts.out}
			return opts.run(view, confirmer, func(ctrl *controller.Controller) error {
				return ctrl.Delete(cmd.Context(), id)
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
