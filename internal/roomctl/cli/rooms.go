package cli

import (
	"github.com/spf13/cobra"

	"roomly/pkg/model"
)

func newRoomsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Manage rooms",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:     "list",
			Short:   "List rooms",
			Aliases: []string{"ls"},
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.printResponse(opts.clients().Rooms.GetAll())
			},
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show a room",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.printResponse(opts.clients().Rooms.GetByID(args[0]))
			},
		},
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create a room",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.printResponse(opts.clients().Rooms.Create(model.Room{Name: args[0]}))
			},
		},
		&cobra.Command{
			Use:   "rename <id> <name>",
			Short: "Rename a room",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.printResponse(opts.clients().Rooms.Update(args[0], model.RoomUpdate{Name: args[1]}))
			},
		},
		&cobra.Command{
			Use:     "delete <id>",
			Short:   "Delete a room",
			Aliases: []string{"rm"},
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.printResponse(opts.clients().Rooms.Delete(args[0]))
			},
		},
	)
	return cmd
}
