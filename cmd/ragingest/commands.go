package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wenqiu42/ragingest/config"
	"github.com/wenqiu42/ragingest/internal/ingest"
	"github.com/wenqiu42/ragingest/pkg/logger"
	"github.com/wenqiu42/ragingest/pkg/ragflow"
)

// app holds what every command needs once the persistent flags are parsed.
type app struct {
	cfg    *config.Config
	log    logger.Logger
	client *ragflow.Client

	configPath string
	logLevel   string
	fullReport bool
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg

	log, err := logger.NewLogger(
		logger.WithLevel(cfg.Log.Level),
		logger.WithEncoding(cfg.Log.Encoding),
		logger.WithOutputPaths(cfg.Log.OutputPaths),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = log

	client, err := ragflow.NewClient(&cfg.API, log)
	if err != nil {
		return err
	}
	a.client = client
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "ragingest <dataset_name> <doc_dir>",
		Short: "Upload a directory of documents into a dataset and trigger parsing",
		Long: `ragingest uploads every supported file (doc, docx, pdf, xls, xlsx, md, txt)
found directly in <doc_dir> into the dataset named <dataset_name>, then
triggers one parse request for the uploaded batch.`,
		Args:              cobra.ExactArgs(2),
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runIngest(cmd, args[0], args[1])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.Flags().BoolVar(&a.fullReport, "report", false, "print the full per-file report instead of the summary")

	root.AddCommand(
		newDatasetsCmd(a),
		newRetrieveCmd(a),
		newDownloadCmd(a),
		newChunksCmd(a),
		newChatCmd(a),
	)
	return root
}

func (a *app) runIngest(cmd *cobra.Command, datasetName, docDir string) error {
	defer a.log.Sync()

	svc := ingest.NewService(a.client, a.log, &ingest.ServiceConfig{
		MaxFileSize:      a.cfg.Ingest.MaxFileSize,
		MaxPDFPages:      a.cfg.Ingest.MaxPDFPages,
		PreflightWorkers: a.cfg.Ingest.PreflightWorkers,
	})

	report, err := svc.Run(cmd.Context(), datasetName, docDir)
	if err != nil {
		return err
	}

	if a.fullReport {
		if err := ingest.WriteReport(os.Stdout, report); err != nil {
			return err
		}
	} else {
		if err := ingest.WriteSummary(os.Stdout, report); err != nil {
			return err
		}
	}

	if failed := report.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, failed+report.Uploaded())
	}
	return nil
}

func newDatasetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "Manage datasets",
	}

	var listName string
	list := &cobra.Command{
		Use:   "list",
		Short: "List datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			datasets, err := a.client.ListDatasets(cmd.Context(), ragflow.ListDatasetsOptions{Name: listName})
			if err != nil {
				return err
			}
			for _, d := range datasets {
				fmt.Fprintf(os.Stdout, "%s\t%s\t%d documents\t%d chunks\n", d.ID, d.Name, d.DocumentCount, d.ChunkCount)
			}
			return nil
		},
	}
	list.Flags().StringVar(&listName, "name", "", "filter by name")

	var embeddingModel, chunkMethod, description string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset, err := a.client.CreateDataset(cmd.Context(), ragflow.CreateDatasetRequest{
				Name:           args[0],
				EmbeddingModel: embeddingModel,
				ChunkMethod:    chunkMethod,
				Description:    description,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "created dataset %s (%s)\n", dataset.Name, dataset.ID)
			return nil
		},
	}
	create.Flags().StringVar(&embeddingModel, "embedding-model", "", "embedding model for the dataset")
	create.Flags().StringVar(&chunkMethod, "chunk-method", "naive", "chunking method")
	create.Flags().StringVar(&description, "description", "", "dataset description")

	del := &cobra.Command{
		Use:   "delete <id> [id...]",
		Short: "Delete datasets by ID",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteDatasets(cmd.Context(), args); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "deleted %d dataset(s)\n", len(args))
			return nil
		},
	}

	cmd.AddCommand(list, create, del)
	return cmd
}

func newRetrieveCmd(a *app) *cobra.Command {
	var datasets []string
	var limit int

	cmd := &cobra.Command{
		Use:   "retrieve <question>",
		Short: "Retrieve chunks matching a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var datasetIDs []string
			for _, name := range datasets {
				dataset, err := a.client.FindDatasetByName(cmd.Context(), name)
				if err != nil {
					return err
				}
				datasetIDs = append(datasetIDs, dataset.ID)
			}

			result, err := a.client.Retrieve(cmd.Context(), ragflow.RetrievalRequest{
				Question:   args[0],
				DatasetIDs: datasetIDs,
				PageSize:   limit,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "%d chunks (of %d total)\n", len(result.Chunks), result.Total)
			for _, chunk := range result.Chunks {
				fmt.Fprintf(os.Stdout, "--- %s (doc %s, similarity %.3f)\n%s\n", chunk.ID, chunk.DocumentID, chunk.Similarity, chunk.Content)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&datasets, "dataset", nil, "dataset name to search (repeatable)")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum chunks to return")
	return cmd
}

func newDownloadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "download <dataset_name> <document_id> <out_file>",
		Short: "Download a document's original file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset, err := a.client.FindDatasetByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out, err := os.Create(args[2])
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer out.Close()

			if err := a.client.DownloadDocument(cmd.Context(), dataset.ID, args[1], out); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "downloaded document %s to %s\n", args[1], args[2])
			return nil
		},
	}
}

func newChatCmd(a *app) *cobra.Command {
	var model string
	var stream bool

	cmd := &cobra.Command{
		Use:   "chat <chat_id> <question>",
		Short: "Ask a chat assistant a question",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ragflow.ChatCompletionRequest{
				Model:    model,
				Messages: []ragflow.ChatMessage{{Role: "user", Content: args[1]}},
			}

			if stream {
				chunks, err := a.client.StreamChatCompletion(cmd.Context(), args[0], req)
				if err != nil {
					return err
				}
				for _, chunk := range chunks {
					for _, choice := range chunk.Choices {
						fmt.Fprint(os.Stdout, choice.Delta.Content)
					}
				}
				fmt.Fprintln(os.Stdout)
				return nil
			}

			resp, err := a.client.CreateChatCompletion(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			for _, choice := range resp.Choices {
				fmt.Fprintln(os.Stdout, choice.Message.Content)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&model, "model", "", "model name to request")
	cmd.Flags().BoolVar(&stream, "stream", false, "stream the answer and print the assembled text")
	return cmd
}

func newChunksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chunks",
		Short: "Inspect parsed chunks",
	}

	list := &cobra.Command{
		Use:   "list <dataset_name> <document_id>",
		Short: "List the chunks of a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset, err := a.client.FindDatasetByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			chunks, err := a.client.ListChunks(cmd.Context(), dataset.ID, args[1], ragflow.ListChunksOptions{})
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "%d chunks (of %d total)\n", len(chunks.Chunks), chunks.Total)
			for _, chunk := range chunks.Chunks {
				fmt.Fprintf(os.Stdout, "--- %s\n%s\n", chunk.ID, chunk.Content)
			}
			return nil
		},
	}

	cmd.AddCommand(list)
	return cmd
}
