package cli

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"roomly/internal/roomctl/core"
	"roomly/internal/roomctl/flows"
)

func newBookCmd(opts *options) *cobra.Command {
	var (
		name, room, from, to, idempotencyKey string
		participants                         []string
	)

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Check a slot and book it in one step",
		Long: `Resolve the room by id or name, confirm that the room and every
participant are free, then create the meeting. A random Idempotency-Key is
sent unless one is given, so re-running after a network error is safe only
when the same key is passed again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fromMs, err := parseInstant(from)
			if err != nil {
				return err
			}
			toMs, err := parseInstant(to)
			if err != nil {
				return err
			}
			if idempotencyKey == "" {
				idempotencyKey = uuid.NewString()
			}

			ctx := core.NewFlowContext(map[string]any{
				flows.ROOM:            room,
				flows.NAME:            name,
				flows.PARTICIPANTS:    participants,
				flows.FROM:            fromMs,
				flows.TO:              toMs,
				flows.IDEMPOTENCY_KEY: idempotencyKey,
			}, opts.clients())
			if err := flows.NewEngine().Run(flows.BookMeetingFlow, ctx); err != nil {
				return err
			}
			return opts.printJSON(ctx.Output[flows.MEETING])
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "meeting name")
	cmd.Flags().StringVar(&room, "room", "", "room id or name")
	cmd.Flags().StringSliceVarP(&participants, "participant", "p", nil, "participant member id (repeatable)")
	cmd.Flags().StringVar(&from, "from", "", "start time")
	cmd.Flags().StringVar(&to, "to", "", "end time")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency-Key header (random when empty)")
	_ = cmd.MarkFlagRequired("room")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newFreeRoomsCmd(opts *options) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "free-rooms",
		Short: "List rooms with no meeting in the given window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fromMs, err := parseInstant(from)
			if err != nil {
				return err
			}
			toMs, err := parseInstant(to)
			if err != nil {
				return err
			}

			ctx := core.NewFlowContext(map[string]any{
				flows.FROM: fromMs,
				flows.TO:   toMs,
			}, opts.clients())
			if err := flows.NewEngine().Run(flows.FreeRoomsFlow, ctx); err != nil {
				return err
			}
			return opts.printJSON(ctx.Output[flows.ROOMS])
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "window start")
	cmd.Flags().StringVar(&to, "to", "", "window end")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
