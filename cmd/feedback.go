package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eduwrench/simclient/sim"
	"github.com/eduwrench/simclient/sim/feedback"
	"github.com/eduwrench/simclient/sim/session"
	"github.com/eduwrench/simclient/sim/submit"
)

var (
	feedbackServer  string        // Base URL of the simulation service
	feedbackTimeout time.Duration // Request deadline
	feedbackForm    feedback.Form // Answers from flags
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Tell the course authors how useful a module was",
	Run: func(cmd *cobra.Command, args []string) {
		svc, err := openSessions()
		if err != nil {
			logrus.Fatalf("Failed to open session: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), feedbackTimeout)
		defer cancel()
		if err := sendFeedback(ctx, submit.NewClient(feedbackServer, 0), svc, feedbackForm, cmd.OutOrStdout()); err != nil {
			logrus.Debugf("feedback %s: %v", feedbackForm.Key, err)
			cancel()
			os.Exit(1)
		}
	},
}

// sendFeedback submits f and explains the outcome on out.
func sendFeedback(ctx context.Context, poster feedback.Poster, sessions feedback.SessionSource, f feedback.Form, out io.Writer) error {
	sender := feedback.NewSender(feedback.DefaultQuestions(), sessions, poster)
	_, err := sender.Submit(ctx, f)
	var verr *sim.ValidationError
	switch {
	case err == nil:
		fmt.Fprintln(out, "Thank you for your feedback.")
	case errors.Is(err, sim.ErrUnauthorized):
		fmt.Fprintln(out, session.SignInPrompt)
	case errors.Is(err, feedback.ErrMissingKey):
		fmt.Fprintln(out, "--key is required: name the module the feedback is for")
	case errors.As(err, &verr):
		for _, field := range verr.Result.Fields() {
			fmt.Fprintf(out, "%s: %s\n", field, verr.Result[field].Message)
		}
	default:
		fmt.Fprintln(out, "Error submitting feedback.")
	}
	return err
}

func init() {
	q := feedback.DefaultQuestions()
	feedbackCmd.Flags().StringVar(&feedbackServer, "server", "http://localhost:3000", "Base URL of the simulation service")
	feedbackCmd.Flags().DurationVar(&feedbackTimeout, "timeout", 30*time.Second, "Request timeout")
	feedbackCmd.Flags().StringVar(&feedbackForm.Key, "key", "", "Module the feedback is for (e.g. a scenario name)")
	feedbackCmd.Flags().StringVar(&feedbackForm.Useful, "useful", "", "How useful the module was: "+strings.Join(q.Useful, " | "))
	feedbackCmd.Flags().StringVar(&feedbackForm.Quality, "quality", "", "Quality of the module: "+strings.Join(q.Quality, " | "))
	feedbackCmd.Flags().StringVar(&feedbackForm.Comments, "comments", "", "Suggestions to improve the content")

	rootCmd.AddCommand(feedbackCmd)
}
