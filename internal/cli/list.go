package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/clio-cli/clio/internal/discovery"
	"github.com/clio-cli/clio/internal/store"
)

var listProjectFilter string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported projects or sessions",
}

var listProjectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List discovered projects under the log store root",
	RunE:  runListProjects,
}

var listSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List imported sessions",
	RunE:  runListSessions,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.AddCommand(listProjectsCmd)
	listCmd.AddCommand(listSessionsCmd)
	listSessionsCmd.Flags().StringVar(&listProjectFilter, "project", "", "Filter by project path")
}

func runListProjects(cmd *cobra.Command, args []string) error {
	root, err := discovery.ResolveRoot(rootFlag)
	if err != nil {
		return err
	}
	projects, err := discovery.ListProjects(root)
	if err != nil {
		return err
	}

	table := tablewriter.NewTable(cmd.OutOrStdout())
	table.Header([]string{"Path", "Sessions"})
	for _, p := range projects {
		sessions, err := discovery.ListSessions(p)
		if err != nil {
			continue
		}
		table.Append([]string{p.Path, fmt.Sprintf("%d", len(sessions))})
	}
	return table.Render()
}


func runListSessions(cmd *cobra.Command, args []string) error {
	st, err := store.Open(dbFlag)
	if err != nil {
		return err
	}
	defer st.Close()

	query := `
		SELECT s.session_id, s.project_path, s.is_subagent,
			COUNT(m.id) AS message_count,
			MIN(m.timestamp) AS started,
			MAX(m.timestamp) AS updated
		FROM sessions s
		LEFT JOIN messages m ON m.session_id = s.session_id
		WHERE (? = '' OR s.project_path = ?)
		GROUP BY s.session_id
		ORDER BY updated DESC
	`
	rows, err := st.Query(query, listProjectFilter, listProjectFilter)
	if err != nil {
		return err
	}
	defer rows.Close()

	table := tablewriter.NewTable(cmd.OutOrStdout())
	table.Header([]string{"Session", "Project", "Subagent", "Messages", "Updated"})
	for rows.Next() {
		var sessionID, projectPath string
		var isSubagent bool
		var messageCount int
		var started, updated *string
		if err := rows.Scan(&sessionID, &projectPath, &isSubagent, &messageCount, &started, &updated); err != nil {
			return err
		}
		updatedDisplay := "-"
		if updated != nil {
			if t, err := parseStoreTimestamp(*updated); err == nil {
				updatedDisplay = humanize.Time(t)
			} else {
				updatedDisplay = *updated
			}
		}
		table.Append([]string{
			shortID(sessionID),
			projectPath,
			fmt.Sprintf("%v", isSubagent),
			fmt.Sprintf("%d", messageCount),
			updatedDisplay,
		})
	}
	return table.Render()
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
