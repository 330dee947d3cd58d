package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fncall/client"
	"github.com/fncall/types"

	"github.com/spf13/cobra"
)

var (
	askCmd = &cobra.Command{
		Use:   "ask [prompt]",
		Short: "run a single prompt and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAskCmd,
	}
)

func init() {
	askCmd.Flags().StringP("model", "m", "gpt4", "model identifier")
	askCmd.Flags().String("remote", "", "URL of a running fncall server; runs in-process when empty")
	askCmd.Flags().Bool("transcript", false, "print the whole conversation as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAskCmd(cmd *cobra.Command, args []string) error {
	model, _ := cmd.Flags().GetString("model")
	remote, _ := cmd.Flags().GetString("remote")
	transcript, _ := cmd.Flags().GetBool("transcript")
	req := types.CallRequest{Model: model, Prompt: strings.Join(args, " ")}

	var resp types.CallResponse
	if remote != "" {
		c := client.New(remote)
		if err := c.Health(cmd.Context()); err != nil {
			return fmt.Errorf("server %s is not healthy: %w", remote, err)
		}
		msgs, err := c.Call(cmd.Context(), req)
		var ce *client.CallError
		if err != nil && !errors.As(err, &ce) {
			return err
		}
		resp = types.CallResponse{Messages: msgs}
		if ce != nil {
			resp.Error = ce.Message
		}
	} else {
		a, err := newApp()
		if err != nil {
			return err
		}
		var code int
		code, resp = a.svc.Call(cmd.Context(), &req)
		if code != http.StatusOK && resp.Error == "" {
			resp.Error = http.StatusText(code)
		}
	}

	out := cmd.OutOrStdout()
	if transcript || resp.Error != "" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return err
		}
		if resp.Error != "" {
			return fmt.Errorf("request failed: %s", resp.Error)
		}
		return nil
	}

	if last, ok := types.Last(resp.Messages); ok {
		fmt.Fprintln(out, last.Content)
	}
	return nil
}
