package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"quiz-api/internal/apiclient"
	"quiz-api/internal/domain"
)

type clientFlags struct {
	baseURL string
	token   string
}

func (f *clientFlags) register(cmd *cobra.Command) {
	baseURL := os.Getenv("QUIZ_API_URL")
	if baseURL == "" {
		baseURL = apiclient.DefaultBaseURL
	}
	cmd.Flags().StringVar(&f.baseURL, "api-url", baseURL, "quiz API base URL")
	cmd.Flags().StringVar(&f.token, "token", os.Getenv("QUIZ_API_TOKEN"), "bearer token (see `login`)")
}

func (f *clientFlags) client() *apiclient.Client {
	return apiclient.New(apiclient.Config{BaseURL: f.baseURL, Token: f.token})
}

// newClientCmds are thin wrappers over apiclient for poking a running server.
func newClientCmds() []*cobra.Command {
	return []*cobra.Command{
		newLoginCmd(),
		newQuizzesCmd(),
		newSubmitCmd(),
		newLeaderboardCmd(),
	}
}

func newLoginCmd() *cobra.Command {
	var (
		flags      clientFlags
		identifier string
		password   string
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print an access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := flags.client().Login(cmd.Context(), identifier, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Token)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&identifier, "identifier", "", "username or email")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("identifier")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newQuizzesCmd() *cobra.Command {
	var flags clientFlags
	cmd := &cobra.Command{
		Use:   "quizzes",
		Short: "List available quizzes",
		RunE: func(cmd *cobra.Command, args []string) error {
			quizzes, err := flags.client().ListQuizzes(cmd.Context())
			if err != nil {
				return err
			}
			return printQuizzes(cmd.OutOrStdout(), quizzes)
		},
	}
	flags.register(cmd)
	return cmd
}

func newSubmitCmd() *cobra.Command {
	var flags clientFlags
	cmd := &cobra.Command{
		Use:   "submit <quiz-id> <answers-json>",
		Short: `Submit answers, e.g. submit abc '[1, [0, 2], 0]'`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var answers []any
			if err := json.Unmarshal([]byte(args[1]), &answers); err != nil {
				return fmt.Errorf("answers must be a JSON array: %w", err)
			}
			result, err := flags.client().Submit(cmd.Context(), args[0], answers)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d (%d%%)\n", result.Score, result.MaxScore, result.Percentage)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newLeaderboardCmd() *cobra.Command {
	var (
		flags clientFlags
		limit int
	)
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the public leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := flags.client().Leaderboard(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printLeaderboard(cmd.OutOrStdout(), entries)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&limit, "limit", 10, "number of entries (0 for all)")
	return cmd
}

func printQuizzes(out io.Writer, quizzes []domain.QuizSummary) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tQUESTIONS")
	for _, q := range quizzes {
		fmt.Fprintf(w, "%s\t%s\t%d\n", q.ID, q.Title, q.QuestionCount)
	}
	return w.Flush()
}

func printLeaderboard(out io.Writer, entries []domain.LeaderboardEntry) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tUSER\tSCORE\tQUIZZES\tPERCENT")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%d/%d\t%d\t%d%%\n", e.Rank, e.Username, e.TotalScore, e.TotalMaxScore, e.QuizzesCompleted, e.Percentage)
	}
	return w.Flush()
}
