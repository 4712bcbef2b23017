package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sensor-collector/core/config"
	"sensor-collector/core/dispatch"
	"sensor-collector/core/logger"
	"sensor-collector/core/sensor"
	"sensor-collector/core/storage"
	"sensor-collector/feature/nodes"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	submitName     string
	submitType     string
	submitMate     string
	submitChildren []string
	submitImages   []string
	submitBucket   string
	submitDerived  bool
	submitTimeout  time.Duration
)

// submitResult is one line of the submit report.
type submitResult struct {
	Task  string `json:"task"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// submitCmd represents the submit command
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a sensor node and its images to storage",
	Long: `Builds a node (with an optional mate and children), saves it to the configured bucket
and uploads the given images. Every write runs independently; the command waits for all of them
and reports each outcome.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		startTime := time.Now()

		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logg.Sync()

		client, err := storage.NewClient(cfg.Storage.Provider, cfg.Storage.Options(), logg)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}

		node := buildSubmitNode()

		images, err := readImages(node, submitImages)
		if err != nil {
			return err
		}

		bucket := cfg.Storage.Bucket
		if submitBucket != "" {
			bucket = submitBucket
		}

		dispatcher := dispatch.New(logg)
		service := nodes.NewService(client, dispatcher, bucket, logg)

		logg.Info("Submitting node",
			zap.String("uuid", node.UUID()),
			zap.String("bucket", service.Bucket()),
			zap.Int("images", len(images)),
		)

		tasks := service.SubmitWithImages(cmd.Context(), node, images)

		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		waitErr := dispatch.WaitAll(ctx, tasks...)

		results := make([]submitResult, 0, len(tasks))
		for _, t := range tasks {
			r := submitResult{Task: t.Name(), OK: true}
			if err := t.Err(); err != nil {
				r.OK = false
				r.Error = err.Error()
			}
			results = append(results, r)
		}

		data, err := json.MarshalIndent(map[string]any{
			"uuid":    node.UUID(),
			"bucket":  service.Bucket(),
			"results": results,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))

		logg.Info("Submit completed",
			zap.String("uuid", node.UUID()),
			zap.Int("tasks", len(tasks)),
			zap.Duration("execution_time", time.Since(startTime)),
		)

		if errors.Is(waitErr, context.DeadlineExceeded) {
			return fmt.Errorf("gave up waiting after %s: %w", submitTimeout, waitErr)
		}
		return waitErr
	},
}

func buildSubmitNode() *sensor.Node {
	newNode := sensor.New
	if submitDerived {
		newNode = sensor.NewDerived
	}

	node := newNode(submitName, submitType)
	if submitMate != "" {
		node.SetMate(newNode(submitMate, sensor.TypeMate))
	}
	for _, name := range submitChildren {
		node.AddChild(newNode(name, sensor.TypeChild))
	}
	return node
}

// readImages loads each file and takes its image type from the extension.
func readImages(node *sensor.Node, paths []string) ([]nodes.Image, error) {
	images := make([]nodes.Image, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read image %s: %w", p, err)
		}
		imageType := strings.ToLower(strings.TrimPrefix(filepath.Ext(p), "."))
		if imageType == "" {
			imageType = "png"
		}
		images = append(images, nodes.Image{Node: node, Type: imageType, Data: data})
	}
	return images, nil
}

func init() {
	RootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringVar(&submitName, "name", "", "Name of the head node")
	submitCmd.Flags().StringVar(&submitType, "type", sensor.TypeHead, "Type of the head node")
	submitCmd.Flags().StringVar(&submitMate, "mate", "", "Name of the mate node")
	submitCmd.Flags().StringSliceVar(&submitChildren, "child", nil, "Name of a child node (repeatable)")
	submitCmd.Flags().StringSliceVar(&submitImages, "image", nil, "Path of an image of the head node (repeatable)")
	submitCmd.Flags().StringVar(&submitBucket, "bucket", "", "Override the configured bucket")
	submitCmd.Flags().BoolVar(&submitDerived, "derived", false, "Derive node ids from type and name")
	submitCmd.Flags().DurationVar(&submitTimeout, "timeout", 2*time.Minute, "How long to wait for the writes")
	_ = submitCmd.MarkFlagRequired("name")
}
