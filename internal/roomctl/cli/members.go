package cli

import (
	"github.com/spf13/cobra"

	"roomly/pkg/model"
)

func newMembersCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage members",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:     "list",
			Short:   "List members",
			Aliases: []string{"ls"},
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.printResponse(opts.clients().Members.GetAll())
			},
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show a member",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.printResponse(opts.clients().Members.GetByID(args[0]))
			},
		},
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create a member",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.printResponse(opts.clients().Members.Create(model.Member{Name: args[0]}))
			},
		},
		&cobra.Command{
			Use:   "rename <id> <name>",
			Short: "Rename a member",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.printResponse(opts.clients().Members.Update(args[0], model.MemberUpdate{Name: args[1]}))
			},
		},
		&cobra.Command{
			Use:     "delete <id>",
			Short:   "Delete a member",
			Aliases: []string{"rm"},
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.printResponse(opts.clients().Members.Delete(args[0]))
			},
		},
	)
	return cmd
}
