package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/akolanti/DocAssistant/internal/app"
	"github.com/akolanti/DocAssistant/internal/config"
	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
	"github.com/akolanti/DocAssistant/internal/domain/ragErrors"
	"github.com/akolanti/DocAssistant/internal/mcpserver"
	"github.com/spf13/cobra"
)

type opener func(ctx context.Context, verbose bool) (*app.App, error)

type cli struct {
	open    opener
	verbose bool
	asJSON  bool

	maxResults int
	useTools   bool
	documentId string
	source     string
	allDocs    bool
	yes        bool
}

func newRootCmd(open opener) *cobra.Command {
	c := &cli{open: open}

	root := &cobra.Command{
		Use:           "ragctl",
		Short:         "Operate the document Q&A store from the command line",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging on stderr")
	root.PersistentFlags().BoolVar(&c.asJSON, "json", false, "print results as JSON")

	ingestCmd := &cobra.Command{
		Use:   "ingest [file...]",
		Short: "Load, chunk and store documents",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.runIngest,
	}

	askCmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a question from the stored documents",
		Long: `Retrieves the closest chunks and asks the configured model.
Without --document-id or --source only the newest document is searched.`,
		Args: cobra.ExactArgs(1),
		RunE: c.runAsk,
	}
	askCmd.Flags().IntVarP(&c.maxResults, "max-results", "n", config.DefaultMaxResults, "chunks to retrieve, 1 to 10")
	askCmd.Flags().BoolVar(&c.useTools, "tools", false, "allow the company policy lookup")
	askCmd.Flags().StringVar(&c.documentId, "document-id", "", "restrict retrieval to a document id")
	askCmd.Flags().StringVar(&c.source, "source", "", "restrict retrieval to a filename")
	askCmd.Flags().BoolVar(&c.allDocs, "all", false, "search every document")

	sourcesCmd := &cobra.Command{
		Use:   "sources",
		Short: "List stored documents, newest first",
		Args:  cobra.NoArgs,
		RunE:  c.runSources,
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the stored chunk count",
		Args:  cobra.NoArgs,
		RunE:  c.runStats,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [chunk-id...]",
		Short: "Delete chunks by id",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.runDelete,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored chunk",
		Args:  cobra.NoArgs,
		RunE:  c.runClear,
	}
	clearCmd.Flags().BoolVar(&c.yes, "yes", false, "confirm deleting everything")

	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE:  c.runMCP,
	}

	root.AddCommand(ingestCmd, askCmd, sourcesCmd, statsCmd, deleteCmd, clearCmd, mcpCmd)
	return root
}

func (c *cli) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := c.open(ctx, c.verbose)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func (c *cli) runIngest(cmd *cobra.Command, args []string) error {
	return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
		results := make([]commonModels.IngestResult, 0, len(args))
		for _, path := range args {
			res, err := a.Rag.Ingest(ctx, commonModels.Upload{Filename: filepath.Base(path), Path: path})
			if err != nil {
				return fmt.Errorf("ingest %s: %w", path, err)
			}
			results = append(results, res)
			if !c.asJSON {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d chunks (document %s)\n", res.Filename, res.ChunkCount, res.DocumentId)
			}
		}
		if c.asJSON {
			return printJSON(cmd, results)
		}
		return nil
	})
}

func (c *cli) runAsk(cmd *cobra.Command, args []string) error {
	if c.maxResults < config.MinMaxResults {
		return ragErrors.New(ragErrors.InvalidArgument, "--max-results must be between %d and %d, got %d",
			config.MinMaxResults, config.MaxMaxResults, c.maxResults)
	}
	return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
		answer, err := a.Rag.AnswerQuestion(ctx, commonModels.Question{
			Text:       args[0],
			MaxResults: c.maxResults,
			UseTools:   c.useTools,
			Scope: commonModels.Scope{
				DocumentId: c.documentId,
				Source:     c.source,
				UseLatest:  !c.allDocs,
			},
		})
		if err != nil {
			return err
		}
		if c.asJSON {
			return printJSON(cmd, answer)
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer.Answer)
		fmt.Fprintln(cmd.OutOrStdout())
		for i, r := range answer.Retrieved {
			fmt.Fprintf(cmd.OutOrStdout(), "[%d] %s (%.2f)\n", i+1, r.Chunk.Metadata.Source(), r.Score)
		}
		for _, tc := range answer.ToolCalls {
			fmt.Fprintf(cmd.OutOrStdout(), "tool %s %v\n", tc.ToolName, tc.Arguments)
		}
		return nil
	})
}

func (c *cli) runSources(cmd *cobra.Command, _ []string) error {
	return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
		sources, err := a.Store.ListUniqueSources(ctx)
		if err != nil {
			return err
		}
		if c.asJSON {
			return printJSON(cmd, sources)
		}
		if len(sources) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No documents stored.")
			return nil
		}
		for _, s := range sources {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", s.Source, s.DocumentId, s.FileType)
		}
		return nil
	})
}

func (c *cli) runStats(cmd *cobra.Command, _ []string) error {
	return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
		n, err := a.Store.Count(ctx)
		if err != nil {
			return err
		}
		if c.asJSON {
			return printJSON(cmd, map[string]any{"total_chunks": n, "backend": a.Store.BackendName()})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d chunks in %s\n", n, a.Store.BackendName())
		return nil
	})
}

func (c *cli) runDelete(cmd *cobra.Command, args []string) error {
	return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
		if err := a.Store.Delete(ctx, args); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d chunks\n", len(args))
		return nil
	})
}

func (c *cli) runClear(cmd *cobra.Command, _ []string) error {
	if !c.yes {
		return errors.New("clear deletes every stored chunk, pass --yes to confirm")
	}
	return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
		if err := a.Store.ClearAll(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All documents cleared")
		return nil
	})
}

func (c *cli) runMCP(cmd *cobra.Command, _ []string) error {
	return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
		s, err := mcpserver.NewServer(a.Rag, a.Store)
		if err != nil {
			return err
		}
		return s.Run(ctx)
	})
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
