package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"track_agents/generator"
	"track_agents/server"
)

var (
	serveAddr string
	trackFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the agents over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, agent, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		srv, err := server.New(agent, cfg, logger)
		if err != nil {
			return err
		}
		listen := cfg.ServerAddr
		if serveAddr != "" {
			listen = serveAddr
		}
		if listen == "" {
			listen = ":8080"
		}
		logger.Info("starting web server", zap.String("addr", listen))
		return http.ListenAndServe(listen, srv.Routes())
	},
}

var blogCmd = &cobra.Command{
	Use:   "blog",
	Short: "Write and publish this week's blog post",
	Long: `Runs the weekly blog pipeline once: fetch the best tracks of the last
week, generate a post, publish it and store a memory note. Meant for cron.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, agent, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		runID := uuid.NewString()
		logger.Info("blog run", zap.String("run", runID))

		out, err := agent.WriteBlog(cmd.Context(), time.Now())
		if err != nil {
			return err
		}
		if !out.Published {
			color.Red("%s", out.Message)
			return fmt.Errorf("run %s: %w", runID, out.Rejection)
		}
		color.Green("Published %q", out.Content.Title)
		if out.MemoryError != nil {
			color.Yellow("Memory note not stored: %v", out.MemoryError)
		}
		fmt.Println(string(out.Response))
		return nil
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Comment on a finished track read from --file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrack(cmd, func(a *generator.Agent) trackRunner { return a.CommentTrack })
	},
}

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Write a brief for a finished track read from --file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrack(cmd, func(a *generator.Agent) trackRunner { return a.BriefTrack })
	},
}

var smsCmd = &cobra.Command{
	Use:   "sms [text]",
	Short: "Reply to a text message",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, agent, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		reply, err := agent.ReplySMS(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		printReply(reply)
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "http listen address (overrides config.server_addr)")
	for _, c := range []*cobra.Command{commentCmd, briefCmd} {
		c.Flags().StringVar(&trackFile, "file", "", "path to a track summary JSON file")
		_ = c.MarkFlagRequired("file")
	}
}

type trackRunner func(context.Context, generator.TrackSummary) (generator.Reply, error)

func runTrack(cmd *cobra.Command, pick func(*generator.Agent) trackRunner) error {
	data, err := os.ReadFile(trackFile)
	if err != nil {
		return err
	}
	var t generator.TrackSummary
	if err := json.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("parse %s: %w", trackFile, err)
	}
	_, agent, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	reply, err := pick(agent)(cmd.Context(), t)
	if err != nil {
		return err
	}
	printReply(reply)
	return nil
}

func printReply(r generator.Reply) {
	if r.Success {
		color.Green("ok")
	} else {
		color.Red("failed")
	}
	fmt.Println(r.Message)
}
