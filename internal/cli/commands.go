package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"apidesk/internal/httpclient"
	"apidesk/internal/openapi"
	"apidesk/internal/render"
)

func (c *CLI) treeCmd() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the endpoints grouped by tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			doc := s.bench.Document()
			p := c.painter(cmd, s)
			tree := s.bench.Tree(filter)
			fmt.Fprintf(out, "%s %s  %s\n", p.Accent(doc.Title), doc.Version, p.Dim(fmt.Sprintf("%d endpoints", tree.Count())))
			for _, line := range render.TreeLines(tree.Lines(nil), nil, p) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "fuzzy filter on path, summary and method")
	return cmd
}

func (c *CLI) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show METHOD PATH",
		Short: "Show an endpoint with its parameters and examples",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer s.Close()

			ep, err := s.bench.Endpoint(args[1], args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			p := c.painter(cmd, s)
			render.Detail(out, ep, nil, p)

			ex := s.bench.Examples(ep.Operation)
			if ex.HasRequest {
				fmt.Fprintf(out, "\n%s\n", p.Accent("Request example"))
				fmt.Fprintln(out, p.Body(exampleJSON(ex.Request), "json"))
			}
			for _, r := range ex.Responses {
				if !r.HasValue {
					continue
				}
				fmt.Fprintf(out, "\n%s\n", p.Accent("Response "+r.Status))
				fmt.Fprintln(out, p.Body(exampleJSON(r.Value), "json"))
			}
			return nil
		},
	}
}

func exampleJSON(v any) string {
	s, _ := render.Example(v, render.JSON)
	return s
}

func (c *CLI) exampleCmd() *cobra.Command {
	var (
		status  string
		request bool
		format  string
	)
	cmd := &cobra.Command{
		Use:   "example METHOD PATH",
		Short: "Print a generated request or response example",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer s.Close()

			ep, err := s.bench.Endpoint(args[1], args[0])
			if err != nil {
				return err
			}
			gen := s.bench.Generator()

			var v any
			switch {
			case request || (status == "" && ep.Operation.HasJSONBody()):
				v = gen.RequestExample(ep.Operation)
				if v == nil {
					return fmt.Errorf("%s %s takes no JSON body", strings.ToUpper(ep.Method), ep.Path)
				}
			default:
				var ok bool
				if v, ok = gen.ResponseExample(ep.Operation, status); !ok {
					return fmt.Errorf("no response schema for %s %s %s", strings.ToUpper(ep.Method), ep.Path, status)
				}
			}

			text, err := render.Example(v, render.Format(strings.ToLower(format)))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(text, "\n"))
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "response status, e.g. 200 (default: first documented response)")
	cmd.Flags().BoolVar(&request, "request", false, "print the request body example")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json, yaml")
	return cmd
}

func (c *CLI) sendCmd() *cobra.Command {
	var (
		params  []string
		files   []string
		body    string
		curl    bool
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "send METHOD PATH",
		Short: "Send a request to an endpoint",
		Long: `Send a request to an endpoint using the global headers and the selected
environment. Parameters are given as name=value; file parameters as
name=path and may repeat. A body starting with @ is read from that file.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer s.Close()

			ep, err := s.bench.Endpoint(args[1], args[0])
			if err != nil {
				return err
			}
			debug := s.bench.Debug()
			for _, kv := range params {
				name, value, err := splitAssign(kv)
				if err != nil {
					return err
				}
				debug.SetParam(ep.Path, ep.Method, name, value)
			}
			paths := map[string][]string{}
			var order []string
			for _, kv := range files {
				name, value, err := splitAssign(kv)
				if err != nil {
					return err
				}
				if _, ok := paths[name]; !ok {
					order = append(order, name)
				}
				paths[name] = append(paths[name], value)
			}
			for _, name := range order {
				debug.SetParam(ep.Path, ep.Method, name, strings.Join(paths[name], ","))
			}
			if body != "" {
				text, err := readBody(body)
				if err != nil {
					return err
				}
				debug.SetBody(ep.Path, ep.Method, text)
			}

			out := cmd.OutOrStdout()
			if curl {
				spec, err := s.bench.Build(ep.Path, ep.Method)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, httpclient.Curl(spec))
				return nil
			}

			res, err := s.bench.Send(cmd.Context(), ep.Path, ep.Method)
			var de *httpclient.DispatchError
			if err != nil && !errors.As(err, &de) {
				return err
			}
			render.Snapshot(out, res.Snapshot, verbose, c.painter(cmd, s))
			return err
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "parameter as name=value (repeatable)")
	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "file parameter as name=path (repeatable)")
	cmd.Flags().StringVarP(&body, "data", "d", "", "JSON request body, or @file")
	cmd.Flags().BoolVar(&curl, "curl", false, "print the request as a cURL command instead of sending it")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print response headers")
	return cmd
}

func splitAssign(kv string) (string, string, error) {
	name, value, ok := strings.Cut(kv, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("expected name=value, got %q", kv)
	}
	return name, value, nil
}

func readBody(arg string) (string, error) {
	if !strings.HasPrefix(arg, "@") {
		return arg, nil
	}
	b, err := os.ReadFile(strings.TrimPrefix(arg, "@"))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(b), nil
}

func (c *CLI) exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the API document exactly as loaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer s.Close()

			if output == "" || output == "-" {
				return openapi.Export(cmd.OutOrStdout(), s.bench.Document())
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := openapi.Export(f, s.bench.Document()); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(c.errOut, "exported %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
