// Package cli implements the roomctl command tree.
package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"roomly/internal/roomctl/core"
	"roomly/pkg/client"
)

const (
	EnvServerURL     = "ROOMLY_URL"
	DefaultServerURL = "http://localhost:8080"
)

type options struct {
	server string
	out    io.Writer
}

func (o *options) clients() *core.Clients {
	return core.NewClients(o.server)
}

// NewRootCmd builds the command tree. Output goes to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	opts := &options{out: out}

	root := &cobra.Command{
		Use:           "roomctl",
		Short:         "roomctl - command line client for the roomly booking API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	defaultServer := os.Getenv(EnvServerURL)
	if defaultServer == "" {
		defaultServer = DefaultServerURL
	}
	root.PersistentFlags().StringVarP(&opts.server, "server", "s", defaultServer, "roomly API base URL (env "+EnvServerURL+")")

	root.AddCommand(
		newRoomsCmd(opts),
		newMembersCmd(opts),
		newMeetingsCmd(opts),
		newBookCmd(opts),
		newFreeRoomsCmd(opts),
	)
	return root
}

// Execute runs roomctl against os.Args and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// printResponse pretty-prints a successful JSON body and turns any other
// status into an error carrying the server's message.
func (o *options) printResponse(resp *client.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s", client.GetErrorMessage(resp))
	}
	return o.printJSONBytes(resp.Body)
}

func (o *options) printJSONBytes(body []byte) error {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		_, werr := o.out.Write(body)
		return werr
	}
	pretty.WriteByte('\n')
	_, err := o.out.Write(pretty.Bytes())
	return err
}

func (o *options) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(o.out, string(data))
	return err
}

// parseInstant accepts Unix milliseconds or an RFC 3339 timestamp.
func parseInstant(value string) (int64, error) {
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return ms, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: use Unix milliseconds or RFC 3339", value)
	}
	return t.UnixMilli(), nil
}

// parseWindow parses the optional --from/--to pair. Empty values are nil.
func parseWindow(from, to string) (*int64, *int64, error) {
	var fromMs, toMs *int64
	if from != "" {
		v, err := parseInstant(from)
		if err != nil {
			return nil, nil, err
		}
		fromMs = &v
	}
	if to != "" {
		v, err := parseInstant(to)
		if err != nil {
			return nil, nil, err
		}
		toMs = &v
	}
	return fromMs, toMs, nil
}
