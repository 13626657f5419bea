package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	draftsLimit  int
	draftsOffset int
)

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Work with saved drafts",
}

var draftsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List drafts, most recently edited first",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newClientEnv()
		if err != nil {
			return err
		}
		page, err := env.drafts.List(cmd.Context(), env.owner, draftsLimit, draftsOffset)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tTHREAD\tSUBJECT\tLAST EDITED")
		for _, d := range page.Drafts {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				d.ID, d.Status, d.ThreadID, d.Subject,
				d.LastEditedAt.Format("2006-01-02 15:04"))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d drafts\n", len(page.Drafts), page.Total)
		return nil
	},
}

var draftsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid draft id %q", args[0])
		}
		env, err := newClientEnv()
		if err != nil {
			return err
		}
		d, err := env.drafts.Get(cmd.Context(), env.owner, id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Draft %d (%s)\n", d.ID, d.Status)
		fmt.Fprintf(out, "To: %v\n", d.To)
		if len(d.Cc) > 0 {
			fmt.Fprintf(out, "Cc: %v\n", d.Cc)
		}
		fmt.Fprintf(out, "Subject: %s\n", d.Subject)
		if d.ThreadID != "" {
			fmt.Fprintf(out, "Thread: %s\n", d.ThreadID)
		}
		if d.ScheduledSendAt != nil {
			fmt.Fprintf(out, "Scheduled: %s\n", d.ScheduledSendAt.Format("2006-01-02 15:04"))
		}
		fmt.Fprintf(out, "\n%s\n", d.Body)
		return nil
	},
}

var draftsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid draft id %q", args[0])
		}
		env, err := newClientEnv()
		if err != nil {
			return err
		}
		if err := env.drafts.Delete(cmd.Context(), env.owner, id); err != nil {
			return err
		}
		env.loader.Invalidate(env.owner)
		fmt.Fprintf(cmd.OutOrStdout(), "Draft %d deleted\n", id)
		return nil
	},
}

var draftsSendCmd = &cobra.Command{
	Use:   "send <id>",
	Short: "Send a draft immediately",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid draft id %q", args[0])
		}
		env, err := newClientEnv()
		if err != nil {
			return err
		}
		res, err := env.drafts.Send(cmd.Context(), env.owner, id)
		if err != nil {
			return err
		}
		env.loader.Invalidate(env.owner)
		fmt.Fprintf(cmd.OutOrStdout(), "Sent as message %s at %s\n",
			res.MessageID, res.SentAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	draftsListCmd.Flags().IntVar(&draftsLimit, "limit", 50, "page size")
	draftsListCmd.Flags().IntVar(&draftsOffset, "offset", 0, "page offset")

	draftsCmd.AddCommand(draftsListCmd, draftsGetCmd, draftsDeleteCmd, draftsSendCmd)
	rootCmd.AddCommand(draftsCmd)
}
