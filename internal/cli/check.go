package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/storykeeper/internal/knowledge"
	"github.com/HendryAvila/storykeeper/internal/metrics"
	"github.com/HendryAvila/storykeeper/internal/server"
	"github.com/HendryAvila/storykeeper/internal/tools"
)

// errSceneInvalid makes `check scene` exit non-zero without printing usage.
var errSceneInvalid = errors.New("scene violates the character's knowledge")

var (
	checkCharacter int64
	checkChapter   int64
	checkItem      string
	checkType      string
	checkFile      string
	checkJSON      bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check character knowledge from the command line",
}

var checkReferenceCmd = &cobra.Command{
	Use:   "reference",
	Short: "Check whether a character can reference an item at a chapter",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd.Context(), func(ctx context.Context, engine *knowledge.Engine) error {
			start := time.Now()
			res, err := engine.CanReference(ctx, checkCharacter, checkItem, checkChapter)
			metrics.ObserveOperation(tools.CanReferenceName, metrics.TransportCLI, start, err)
			if err != nil {
				return err
			}
			if checkJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderReference(res))
			return nil
		})
	},
}

var checkSceneCmd = &cobra.Command{
	Use:   "scene",
	Short: "Validate a scene (from --file or stdin) against a character's knowledge",
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readScene(cmd.InOrStdin(), checkFile)
		if err != nil {
			return err
		}
		return withEngine(cmd.Context(), func(ctx context.Context, engine *knowledge.Engine) error {
			start := time.Now()
			res, err := engine.ValidateScene(ctx, checkCharacter, checkChapter, content, knowledge.ContentType(checkType))
			metrics.ObserveOperation(tools.ValidateSceneName, metrics.TransportCLI, start, err)
			if err != nil {
				return err
			}
			metrics.RecordFindings(res)

			out := cmd.OutOrStdout()
			if checkJSON {
				if err := writeJSON(out, res); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(out, renderValidation(res))
			}
			if !res.Valid {
				return errSceneInvalid
			}
			return nil
		})
	},
}

var checkStateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show what a character knows as of a chapter",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd.Context(), func(ctx context.Context, engine *knowledge.Engine) error {
			start := time.Now()
			res, err := engine.KnowledgeState(ctx, checkCharacter, checkChapter)
			metrics.ObserveOperation(tools.KnowledgeStateName, metrics.TransportCLI, start, err)
			if err != nil {
				return err
			}
			if checkJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderState(res))
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{checkReferenceCmd, checkSceneCmd, checkStateCmd} {
		c.Flags().Int64Var(&checkCharacter, "character", 0, "character ID")
		c.Flags().Int64Var(&checkChapter, "chapter", 0, "chapter ID")
		c.Flags().BoolVar(&checkJSON, "json", false, "print the result as JSON")
		_ = c.MarkFlagRequired("character")
		_ = c.MarkFlagRequired("chapter")
		checkCmd.AddCommand(c)
	}
	checkReferenceCmd.Flags().StringVar(&checkItem, "item", "", "knowledge item")
	_ = checkReferenceCmd.MarkFlagRequired("item")
	checkSceneCmd.Flags().StringVar(&checkType, "type", string(knowledge.ContentDialogue), "content type: dialogue, internal_thought, narration")
	checkSceneCmd.Flags().StringVar(&checkFile, "file", "-", "scene file, - for stdin")

	rootCmd.AddCommand(checkCmd)
}

// withEngine opens the store for the duration of fn.
func withEngine(ctx context.Context, fn func(context.Context, *knowledge.Engine) error) error {
	app, cleanup, err := server.New(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(ctx, app.Engine)
}

func readScene(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading scene: %w", err)
	}
	return string(data), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
