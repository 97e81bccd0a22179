package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"roomly/pkg/client"
	"roomly/pkg/model"
)

func newMeetingsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meetings",
		Short: "Book, inspect and cancel meetings",
	}

	cmd.AddCommand(
		newMeetingCreateCmd(opts),
		newMeetingAvailabilityCmd(opts),
		newMeetingListCmd(opts),
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show a meeting",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.printResponse(opts.clients().Meetings.GetByID(args[0]))
			},
		},
		&cobra.Command{
			Use:     "delete <id>",
			Short:   "Cancel a meeting",
			Aliases: []string{"rm"},
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.printResponse(opts.clients().Meetings.Delete(args[0]))
			},
		},
		&cobra.Command{
			Use:   "calendar <room-id>",
			Short: "Print a room's meetings as iCalendar",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				resp, err := opts.clients().Meetings.RoomCalendar(args[0])
				if err != nil {
					return err
				}
				if resp.StatusCode != http.StatusOK {
					return fmt.Errorf("%s", client.GetErrorMessage(resp))
				}
				_, err = opts.out.Write(resp.Body)
				return err
			},
		},
	)
	return cmd
}

func newMeetingCreateCmd(opts *options) *cobra.Command {
	var (
		name, room, from, to, idempotencyKey string
		participants                         []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Book a meeting",
		Long: `Book a meeting in a room for a set of members.

Times are Unix milliseconds or RFC 3339 timestamps.

Examples:
  roomctl meetings create --name Planning --room 65f0... --participant 65f1... \
    --from 2026-03-02T09:00:00Z --to 2026-03-02T10:00:00Z`,
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
			return opts.printResponse(opts.clients().Meetings.Create(model.CreateMeetingRequest{
				Name:           name,
				RoomID:         room,
				ParticipantIDs: participants,
				From:           fromMs,
				To:             toMs,
			}, idempotencyKey))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "meeting name")
	cmd.Flags().StringVar(&room, "room", "", "room id")
	cmd.Flags().StringSliceVarP(&participants, "participant", "p", nil, "participant member id (repeatable)")
	cmd.Flags().StringVar(&from, "from", "", "start time")
	cmd.Flags().StringVar(&to, "to", "", "end time")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency-Key header for safe retries")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newMeetingAvailabilityCmd(opts *options) *cobra.Command {
	var (
		room, from, to string
		participants   []string
	)

	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Check whether a room and/or members are free",
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
			return opts.printResponse(opts.clients().Meetings.Availability(model.AvailabilityRequest{
				RoomID:         room,
				ParticipantIDs: participants,
				From:           fromMs,
				To:             toMs,
			}))
		},
	}

	cmd.Flags().StringVar(&room, "room", "", "room id")
	cmd.Flags().StringSliceVarP(&participants, "participant", "p", nil, "member id (repeatable)")
	cmd.Flags().StringVar(&from, "from", "", "start time")
	cmd.Flags().StringVar(&to, "to", "", "end time")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newMeetingListCmd(opts *options) *cobra.Command {
	var room, member, from, to string

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List meetings, optionally filtered by room, member or time window",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fromMs, toMs, err := parseWindow(from, to)
			if err != nil {
				return err
			}
			return opts.printResponse(opts.clients().Meetings.Search(room, member, fromMs, toMs))
		},
	}

	cmd.Flags().StringVar(&room, "room", "", "only meetings in this room")
	cmd.Flags().StringVar(&member, "member", "", "only meetings this member attends")
	cmd.Flags().StringVar(&from, "from", "", "only meetings ending after this time")
	cmd.Flags().StringVar(&to, "to", "", "only meetings starting before this time")
	return cmd
}
