package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/castline/castline-go/internal/compose"
	"github.com/castline/castline-go/internal/threads"
)

var (
	composeTo      []string
	composeCc      []string
	composeBcc     []string
	composeSubject string
	composeThread  string
	composeReplyTo string
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Write a draft with auto-save",
	Long: `compose reads the message body from stdin and auto-saves it as you
go. When a thread id is given, an existing in-progress draft for that
thread is resumed, and the thread's participants and subject seed the new
draft when none are provided. The draft stays unsent; use "drafts send".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newClientEnv()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		seed := compose.Seed{
			To:               composeTo,
			Cc:               composeCc,
			Bcc:              composeBcc,
			Subject:          composeSubject,
			ThreadID:         composeThread,
			ReplyToMessageID: composeReplyTo,
		}
		opts := compose.Options{
			Debounce: env.cfg.Debounce,
			OnCreated: func(id int64) {
				fmt.Fprintf(cmd.ErrOrStderr(), "(draft %d created)\n", id)
			},
		}

		if composeThread != "" {
			// Thread context supplies recipients and subject for a reply.
			t, err := env.threads.ByID(ctx, composeThread)
			if err != nil && !errors.Is(err, threads.ErrNotFound) {
				return err
			}
			if t != nil {
				if len(seed.To) == 0 {
					seed.To = t.Participants
				}
				if seed.Subject == "" {
					seed.Subject = t.Subject
				}
			}

			existing, err := env.loader.Resolve(ctx, composeThread, env.owner)
			if err != nil {
				return err
			}
			if existing != nil {
				opts.ResumeID = existing.ID
				opts.ResumeBody = existing.Body
				fmt.Fprintf(cmd.ErrOrStderr(), "(resuming draft %d)\n", existing.ID)
			}
		}

		if len(seed.To) == 0 {
			return errors.New("--to is required (or a thread with participants)")
		}

		engine := compose.NewEngine(env.drafts, env.owner, seed, opts)
		defer engine.Close()

		var body strings.Builder
		body.WriteString(opts.ResumeBody)

		scanner := bufio.NewScanner(cmd.InOrStdin())
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			body.WriteString(scanner.Text())
			body.WriteString("\n")
			engine.UpdateBody(body.String())
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading body: %w", err)
		}

		// Wait for the final save instead of relying on Close's
		// fire-and-forget flush; the process is about to exit.
		if err := engine.Flush(ctx); err != nil {
			return fmt.Errorf("saving draft: %w", err)
		}
		env.loader.Invalidate(env.owner)

		if id := engine.DraftID(); id != 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Draft %d saved\n", id)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to save")
		}
		return nil
	},
}

func init() {
	composeCmd.Flags().StringSliceVar(&composeTo, "to", nil, "recipient addresses")
	composeCmd.Flags().StringSliceVar(&composeCc, "cc", nil, "cc addresses")
	composeCmd.Flags().StringSliceVar(&composeBcc, "bcc", nil, "bcc addresses")
	composeCmd.Flags().StringVar(&composeSubject, "subject", "", "message subject")
	composeCmd.Flags().StringVar(&composeThread, "thread", "", "conversation thread id")
	composeCmd.Flags().StringVar(&composeReplyTo, "reply-to", "", "message id this draft replies to")

	rootCmd.AddCommand(composeCmd)
}
