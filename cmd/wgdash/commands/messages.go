package commands

import (
	"github.com/spf13/cobra"

	"github.com/wgdashboard/wgdash/cmd/wgdash/formatting"
	"github.com/wgdashboard/wgdash/pkg/terminal"
)

func messagesCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Show the latest notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := sessionFrom(cmd)
			if err != nil {
				return err
			}
			dao, err := s.DAO()
			if err != nil {
				return err
			}
			messages, err := dao.ListMessages(cmd.Context(), limit)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(messages))
			for _, m := range messages {
				rows = append(rows, []string{m.CreatedAt.Local().Format("2006-01-02 15:04:05"), m.Type, m.Title, m.Content})
			}
			widths := terminal.ColumnWidths(terminal.Width(cmd.OutOrStdout()), []int{19, 7, 12, 0})
			formatting.PrettyPrintTable(cmd.OutOrStdout(), rows, widths, []string{"TIME", "TYPE", "TITLE", "MESSAGE"})
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of notifications to show")
	return cmd
}
