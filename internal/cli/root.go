// Package cli implements the eduqa command: it drives a grading run against the
// server and renders reports in the terminal.
package cli

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"eduqa-backend/internal/client"
	"eduqa-backend/internal/extract"
	"eduqa-backend/internal/flow"
	"eduqa-backend/internal/report"
)

const defaultServer = "http://localhost:5000"

// NewRootCommand builds the eduqa command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "eduqa",
		Short:         "Evaluate course material against the course rubric",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("server", serverFromEnv(), "grading server base URL")

	root.AddCommand(newGradeCommand(), newParseCommand(), newExtractCommand(), newRubricCommand())
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

func newGradeCommand() *cobra.Command {
	var overviewPath, lessonPath, xlsxPath string
	var raw bool
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Upload a course overview and a lesson and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			server, _ := cmd.Flags().GetString("server")
			overview, err := readFile(overviewPath)
			if err != nil {
				return err
			}
			lesson, err := readFile(lessonPath)
			if err != nil {
				return err
			}

			f := flow.New(client.New(server))
			if err := f.Start(); err != nil {
				return err
			}
			if err := f.SelectOverview(overview); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Evaluating, this can take a minute...")
			res, err := f.SelectLesson(cmd.Context(), lesson)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Failed {
				fmt.Fprintln(out, res.Text)
				return fmt.Errorf("grading failed")
			}
			if raw {
				fmt.Fprintln(out, res.Text)
			} else {
				RenderReport(out, res.Report)
			}
			if xlsxPath != "" {
				return writeXLSX(xlsxPath, res.Report.Report)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&overviewPath, "overview", "", "course overview document (step 1)")
	cmd.Flags().StringVar(&lessonPath, "lesson", "", "lesson document (step 2)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also export the report to this XLSX file")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the raw report text")
	_ = cmd.MarkFlagRequired("overview")
	_ = cmd.MarkFlagRequired("lesson")
	return cmd
}

func newParseCommand() *cobra.Command {
	var xlsxPath string
	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Render a saved raw report without contacting the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			rep := report.Parse(string(data))
			RenderReport(cmd.OutOrStdout(), rep.Summarize())
			if xlsxPath != "" {
				return writeXLSX(xlsxPath, rep)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also export the report to this XLSX file")
	return cmd
}

func newExtractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract FILE",
		Short: "Print the plain text extracted from a DOCX, PDF, PPTX or text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readFile(args[0])
			if err != nil {
				return err
			}
			text, err := extract.Extract(cmd.Context(), f.Data, f.MediaType, f.Name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func newRubricCommand() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "rubric",
		Short: "Download the rubric document used for grading",
		RunE: func(cmd *cobra.Command, args []string) error {
			server, _ := cmd.Flags().GetString("server")
			out, err := os.Create(outPath)
			if err != nil {
				return err
			}
			if err := client.New(server).DownloadRubric(cmd.Context(), out); err != nil {
				_ = out.Close()
				_ = os.Remove(outPath)
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "Rubric.docx", "output path")
	return cmd
}

func readFile(path string) (flow.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return flow.File{}, err
	}
	name := filepath.Base(path)
	mediaType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	return flow.File{
		Name:      name,
		MediaType: extract.NormalizeMediaType(mediaType, name, data),
		Data:      data,
	}, nil
}

func writeXLSX(path string, rep report.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteXLSX(f, rep); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func serverFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("EDUQA_SERVER")); v != "" {
		return v
	}
	return defaultServer
}
