package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

const (
	chatQuit   = "/quit"
	chatFile   = "/file "
	chatPrompt = "you> "
)

// ChatCommand creates the interactive chat command
func ChatCommand(cfg AppConfig) *cobra.Command {
	var cid string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the intake assistant from the terminal",
		Long: `Run an interactive intake conversation on stdin.

Type a message and press enter. Special inputs:
  /file <path>   attach a file (optionally followed by " | message")
  /quit          leave the conversation`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := Build(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()
			return runChat(cmd.Context(), app, cid, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&cid, "cid", "", "Resume an existing conversation id")
	return cmd
}

func runChat(ctx context.Context, app *App, cid string, in io.Reader, out io.Writer) error {
	res, err := app.Service.HandleTurn(ctx, cid, "", "")
	if err != nil {
		return err
	}
	cid = res.CID
	fmt.Fprintf(out, "💬 conversation %s\n", cid)
	printReplies(out, res.Messages)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, chatPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == chatQuit {
			fmt.Fprintln(out, "👋 bye")
			return nil
		}

		text, attachment := line, ""
		if strings.HasPrefix(line, chatFile) {
			attachment = strings.TrimSpace(strings.TrimPrefix(line, chatFile))
			text = ""
			if path, msg, ok := strings.Cut(attachment, "|"); ok {
				attachment, text = strings.TrimSpace(path), strings.TrimSpace(msg)
			}
		}

		res, err := app.Service.HandleTurn(ctx, cid, text, attachment)
		if err != nil {
			fmt.Fprintf(out, "❌ %v\n", err)
		}
		printReplies(out, res.Messages)
		if res.Stage.Terminal() {
			fmt.Fprintf(out, "✅ conversation %s is %s\n", cid, res.Stage)
		}
	}
}

func printReplies(out io.Writer, msgs []string) {
	for _, m := range msgs {
		fmt.Fprintf(out, "bot> %s\n", m)
	}
}
