package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/castline/castline-go/internal/threads"
)

var (
	threadsCampaign   string
	threadsHasReplies bool
	threadsLimit      int
	threadsPitch      string
	threadsPlacement  string
)

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "Resolve conversation threads",
}

var threadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List threads for a campaign",
	RunE: func(cmd *cobra.Command, args []string) error {
		if threadsCampaign == "" {
			return errors.New("--campaign is required")
		}
		env, err := newClientEnv()
		if err != nil {
			return err
		}
		opts := threads.CampaignOptions{Limit: threadsLimit}
		if cmd.Flags().Changed("has-replies") {
			opts.HasReplies = &threadsHasReplies
		}
		list, err := env.threads.ByCampaign(cmd.Context(), threadsCampaign, opts)
		if err != nil {
			return err
		}
		printThreads(cmd, list)
		return nil
	},
}

var threadsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one thread by id, pitch, or placement",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newClientEnv()
		if err != nil {
			return err
		}

		var t *threads.Thread
		switch {
		case len(args) == 1:
			t, err = env.threads.ByID(cmd.Context(), args[0])
		case threadsPitch != "":
			t, err = env.threads.ByPitch(cmd.Context(), threadsPitch)
		case threadsPlacement != "":
			t, err = env.threads.ByPlacement(cmd.Context(), threadsPlacement)
		default:
			return errors.New("provide a thread id, --pitch, or --placement")
		}
		if err != nil {
			return err
		}
		if t == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No matching thread")
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Thread %s\n", t.ID)
		fmt.Fprintf(out, "Subject: %s\n", t.Subject)
		fmt.Fprintf(out, "Participants: %v\n", t.Participants)
		fmt.Fprintf(out, "Messages: %d\n", t.MessageCount)
		if t.LastReplyAt != nil {
			fmt.Fprintf(out, "Last reply: %s\n", t.LastReplyAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var threadsMarkReadCmd = &cobra.Command{
	Use:   "mark-read <id>",
	Short: "Mark a thread as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newClientEnv()
		if err != nil {
			return err
		}
		if err := env.threads.MarkRead(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Thread %s marked read\n", args[0])
		return nil
	},
}

var repliesWatch bool

var repliesCmd = &cobra.Command{
	Use:   "replies",
	Short: "List threads with recent replies",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newClientEnv()
		if err != nil {
			return err
		}
		opts := threads.RecentOptions{CampaignID: threadsCampaign, Limit: threadsLimit}

		if repliesWatch {
			poller := threads.NewPoller(env.threads, opts, func(list []threads.Thread) {
				printThreads(cmd, list)
			}, env.cfg.PollInterval)
			poller.Run(cmd.Context())
			return nil
		}

		list, err := env.threads.RecentReplies(cmd.Context(), opts)
		if err != nil {
			return err
		}
		printThreads(cmd, list)
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Trigger a manual inbox re-sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newClientEnv()
		if err != nil {
			return err
		}
		return env.threads.Sync(cmd.Context())
	},
}

func printThreads(cmd *cobra.Command, list []threads.Thread) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSUBJECT\tMESSAGES\tLAST REPLY")
	for _, t := range list {
		lastReply := "-"
		if t.LastReplyAt != nil {
			lastReply = t.LastReplyAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", t.ID, t.Subject, t.MessageCount, lastReply)
	}
	w.Flush()
}

func init() {
	threadsListCmd.Flags().StringVar(&threadsCampaign, "campaign", "", "campaign id")
	threadsListCmd.Flags().BoolVar(&threadsHasReplies, "has-replies", false, "only threads with (or without) replies")
	threadsListCmd.Flags().IntVar(&threadsLimit, "limit", 0, "bound the result count")

	threadsShowCmd.Flags().StringVar(&threadsPitch, "pitch", "", "resolve by pitch id")
	threadsShowCmd.Flags().StringVar(&threadsPlacement, "placement", "", "resolve by placement id")

	repliesCmd.Flags().StringVar(&threadsCampaign, "campaign", "", "restrict to a campaign")
	repliesCmd.Flags().IntVar(&threadsLimit, "limit", 0, "bound the result count")
	repliesCmd.Flags().BoolVar(&repliesWatch, "watch", false, "poll for new replies until interrupted")

	threadsCmd.AddCommand(threadsListCmd, threadsShowCmd, threadsMarkReadCmd)
	rootCmd.AddCommand(threadsCmd, repliesCmd, syncCmd)
}
